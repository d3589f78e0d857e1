package utils

import (
	"context"
	"net/http"

	"calufestas/globals"
	"calufestas/models"
)

func GetSessionIDFromRequest(r *http.Request) string {
	sid, _ := r.Context().Value(globals.SessionIDKey).(string)
	return sid
}

// GetProfileFromRequest is nil for guests.
func GetProfileFromRequest(r *http.Request) *models.Profile {
	p, _ := r.Context().Value(globals.ProfileKey).(*models.Profile)
	return p
}

func GetTokenFromRequest(r *http.Request) string {
	tok, _ := r.Context().Value(globals.TokenKey).(string)
	return tok
}

// WithSession stores the request's session, profile and token.
func WithSession(ctx context.Context, sid string, p *models.Profile, token string) context.Context {
	ctx = context.WithValue(ctx, globals.SessionIDKey, sid)
	if p != nil {
		ctx = context.WithValue(ctx, globals.ProfileKey, p)
		ctx = context.WithValue(ctx, globals.TokenKey, token)
	}
	return ctx
}
