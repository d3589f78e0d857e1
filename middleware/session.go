package middleware

import (
	"context"
	"net/http"
	"strings"

	"calufestas/globals"
	"calufestas/models"
	"calufestas/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// SessionReader resolves who is signed in.
type SessionReader interface {
	Current(ctx context.Context, sid string) (*models.Profile, string, error)
	FromToken(token string) (*models.Profile, error)
}

type Auth struct {
	sessions     SessionReader
	secureCookie bool
	log          *zap.Logger
}

func NewAuth(sessions SessionReader, secureCookie bool, log *zap.Logger) *Auth {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auth{sessions: sessions, secureCookie: secureCookie, log: log}
}

func sessionID(r *http.Request) string {
	if c, err := r.Cookie(globals.SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	if h := r.Header.Get("X-Session-ID"); h != "" {
		if _, err := uuid.Parse(h); err == nil {
			return h
		}
	}
	return ""
}

// Session gives every request a session id, issuing the cookie on first
// visit, and attaches the signed-in profile when there is one. A bearer
// token takes precedence over the session's stored token.
func (a *Auth) Session(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sid := sessionID(r)
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     globals.SessionCookie,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				Secure:   a.secureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}

		var (
			profile *models.Profile
			token   string
		)
		if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && bearer != "" {
			p, err := a.sessions.FromToken(bearer)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			profile, token = p, bearer
		} else {
			p, tok, err := a.sessions.Current(r.Context(), sid)
			if err == nil {
				profile, token = p, tok
			}
		}

		next(w, r.WithContext(utils.WithSession(r.Context(), sid, profile, token)), ps)
	}
}

// Authenticate rejects guests.
func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return a.Session(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if utils.GetProfileFromRequest(r) == nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Faça login para continuar.")
			return
		}
		next(w, r, ps)
	})
}

// RequireAdmin only lets the admin role through.
func (a *Auth) RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return a.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !utils.GetProfileFromRequest(r).IsAdmin() {
			a.log.Warn("admin route denied", zap.String("path", r.URL.Path))
			utils.RespondWithError(w, http.StatusForbidden, "Acesso restrito")
			return
		}
		next(w, r, ps)
	})
}
