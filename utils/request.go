package utils

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a bounded JSON body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

type QueryOptions struct {
	Page   int
	Limit  int
	Search string
	State  string
}

func ParseQueryOptions(r *http.Request) QueryOptions {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	return QueryOptions{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(q.Get("search")),
		State:  strings.TrimSpace(q.Get("estado")),
	}
}

// Paginate returns the window of n elements selected by opts.
func (o QueryOptions) Paginate(n int) (start, end int) {
	start = (o.Page - 1) * o.Limit
	if start > n {
		start = n
	}
	end = start + o.Limit
	if end > n {
		end = n
	}
	return start, end
}
