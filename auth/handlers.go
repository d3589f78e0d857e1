package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"calufestas/backend"
	"calufestas/models"
	"calufestas/notify"
	"calufestas/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Backend is the part of the rental API that handles accounts.
type Backend interface {
	Login(ctx context.Context, cred backend.Credentials) (string, error)
	Register(ctx context.Context, reg backend.Registration) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, r backend.PasswordReset) error
	Me(ctx context.Context, token string) (models.Profile, error)
}

// CartDropper forgets a session's cart.
type CartDropper interface {
	Drop(ctx context.Context, sid string) error
}

type Handler struct {
	backend  Backend
	sessions *Sessions
	carts    CartDropper
	log      *zap.Logger
}

func NewHandler(b Backend, sessions *Sessions, carts CartDropper, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{backend: b, sessions: sessions, carts: carts, log: log}
}

type sessionResponse struct {
	Profile     *models.Profile `json:"profile"`
	DisplayName string          `json:"displayName,omitempty"`
	Notice      *notify.Toast   `json:"notice,omitempty"`
}

func (h *Handler) backendError(w http.ResponseWriter, op string, err error, fallback string) {
	var status int
	switch {
	case backend.IsStatus(err, http.StatusBadRequest):
		status = http.StatusBadRequest
	case backend.IsStatus(err, http.StatusUnauthorized):
		status = http.StatusUnauthorized
	case backend.IsStatus(err, http.StatusNotFound):
		status = http.StatusNotFound
	default:
		h.log.Error(op, zap.Error(err))
		status = http.StatusBadGateway
	}
	utils.RespondWithError(w, status, backend.MessageOf(err, fallback))
}

// Login signs the session in with the backend and keeps the token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var cred backend.Credentials
	if err := utils.DecodeJSON(w, r, &cred); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	cred.Email = strings.TrimSpace(cred.Email)
	if cred.Email == "" || cred.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Informe email e senha")
		return
	}

	token, err := h.backend.Login(ctx, cred)
	if err != nil {
		h.backendError(w, "login", err, "Email ou senha inválidos")
		return
	}

	profile, err := h.sessions.Save(ctx, utils.GetSessionIDFromRequest(r), token)
	if err != nil {
		h.log.Error("login token rejected", zap.Error(err))
		utils.RespondWithError(w, http.StatusBadGateway, "Token de login inválido")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, sessionResponse{
		Profile:     profile,
		DisplayName: profile.DisplayName(),
		Notice:      notify.Welcome(profile.DisplayName()),
	})
}

// Logout drops the token and the cart of the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sid := utils.GetSessionIDFromRequest(r)
	if err := h.sessions.Discard(ctx, sid); err != nil {
		h.log.Error("logout token delete", zap.Error(err))
		http.Error(w, "Failed to invalidate session", http.StatusInternalServerError)
		return
	}
	if h.carts != nil {
		if err := h.carts.Drop(ctx, sid); err != nil {
			h.log.Warn("logout cart drop", zap.Error(err))
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, sessionResponse{Notice: notify.LoggedOut()})
}

// Me reports who is signed in, as the backend knows them now. When the
// backend cannot be reached the token's claims are returned.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p := utils.GetProfileFromRequest(r)
	if p != nil {
		fresh, err := h.backend.Me(ctx, utils.GetTokenFromRequest(r))
		switch {
		case backend.IsStatus(err, http.StatusUnauthorized):
			if derr := h.sessions.Discard(ctx, utils.GetSessionIDFromRequest(r)); derr != nil {
				h.log.Warn("token delete failed", zap.Error(derr))
			}
			utils.RespondWithError(w, http.StatusUnauthorized, "Sessão expirada")
			return
		case err != nil:
			h.log.Warn("profile refresh", zap.Error(err))
		default:
			if fresh.Role == "" {
				fresh.Role = p.Role
			}
			p = &fresh
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, sessionResponse{Profile: p, DisplayName: p.DisplayName()})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var reg backend.Registration
	if err := utils.DecodeJSON(w, r, &reg); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Preencha nome, email e senha")
		return
	}
	if err := h.backend.Register(ctx, reg); err != nil {
		h.backendError(w, "register", err, "Não foi possível criar a conta")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": "Conta criada com sucesso"})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req backend.PasswordReset
	if err := utils.DecodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Informe o email")
		return
	}
	if err := h.backend.ForgotPassword(ctx, strings.TrimSpace(req.Email)); err != nil {
		h.backendError(w, "forgot password", err, "Não foi possível enviar o código")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Instruções enviadas com sucesso!"})
}

func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req backend.PasswordReset
	if err := utils.DecodeJSON(w, r, &req); err != nil || req.Email == "" || req.Code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Informe email e código")
		return
	}
	if err := h.backend.VerifyCode(ctx, req.Email, req.Code); err != nil {
		h.backendError(w, "verify code", err, "Código inválido")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Código verificado"})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req backend.PasswordReset
	if err := utils.DecodeJSON(w, r, &req); err != nil || req.Email == "" || req.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Informe email e nova senha")
		return
	}
	if err := h.backend.ResetPassword(ctx, req); err != nil {
		h.backendError(w, "reset password", err, "Não foi possível alterar a senha")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Senha alterada com sucesso"})
}
