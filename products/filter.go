package products

import (
	"regexp"
	"strings"
	"unicode"

	"calufestas/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AllCategories selects every product.
const AllCategories = "todos"

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s, strips accents and joins words with dashes,
// so "Decoração Infantil" becomes "decoracao-infantil".
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		plain = strings.ToLower(s)
	}
	return strings.Trim(nonSlug.ReplaceAllString(plain, "-"), "-")
}

type Category struct {
	Slug          string   `json:"slug"`
	Label         string   `json:"label"`
	Subcategories []string `json:"subcategorias,omitempty"`
}

var preferredOrder = []string{"mesas", "cadeiras", "conjuntos"}

// Categories lists the distinct categories, the usual ones first.
func Categories(list []models.Product) []Category {
	bySlug := make(map[string]*Category)
	var order []string
	for _, p := range list {
		slug := Slug(p.Category)
		if slug == "" {
			continue
		}
		c, ok := bySlug[slug]
		if !ok {
			c = &Category{Slug: slug, Label: strings.TrimSpace(p.Category)}
			bySlug[slug] = c
			order = append(order, slug)
		}
		if sub := strings.TrimSpace(p.Subcategory); sub != "" && !contains(c.Subcategories, sub) {
			c.Subcategories = append(c.Subcategories, sub)
		}
	}

	out := make([]Category, 0, len(order))
	for _, slug := range preferredOrder {
		if c, ok := bySlug[slug]; ok {
			out = append(out, *c)
		}
	}
	for _, slug := range order {
		if !contains(preferredOrder, slug) {
			out = append(out, *bySlug[slug])
		}
	}
	return out
}

// Filter keeps products of category (a slug or "todos") and, when set,
// of the exact subcategory.
func Filter(list []models.Product, category, subcategory string) []models.Product {
	out := make([]models.Product, 0, len(list))
	for _, p := range list {
		if category != "" && category != AllCategories && Slug(p.Category) != Slug(category) {
			continue
		}
		if subcategory != "" && p.Subcategory != subcategory {
			continue
		}
		out = append(out, p)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
