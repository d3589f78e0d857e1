package models

import "strings"

const RoleAdmin = "admin"

// Profile is what the storefront knows about the signed-in customer.
type Profile struct {
	Name  string `json:"nome"`
	Email string `json:"email"`
	Role  string `json:"cargo"`
}

func (p *Profile) IsAdmin() bool {
	return p != nil && strings.EqualFold(p.Role, RoleAdmin)
}

// DisplayName falls back to the local part of the email.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.Name != "" {
		return p.Name
	}
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}
