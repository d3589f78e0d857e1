package orders

import (
	"context"
	"errors"
	"net/http"
	"time"

	"calufestas/backend"
	"calufestas/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type Handler struct {
	orders *Service
	log    *zap.Logger
}

func NewHandler(orders *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{orders: orders, log: log}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Locação não encontrada")
	case errors.Is(err, ErrInvalidTransition):
		utils.RespondWithError(w, http.StatusConflict, "Só é possível decidir locações em análise")
	case backend.IsStatus(err, http.StatusUnauthorized):
		utils.RespondWithError(w, http.StatusUnauthorized, "Sessão expirada")
	default:
		h.log.Error(op, zap.Error(err))
		utils.RespondWithError(w, http.StatusBadGateway, backend.MessageOf(err, "Falha ao consultar as locações"))
	}
}

// GetMine lists the signed-in customer's orders.
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p := utils.GetProfileFromRequest(r)
	if p == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Faça login para ver suas locações")
		return
	}
	list, err := h.orders.Mine(ctx, utils.GetTokenFromRequest(r), p.Email)
	if err != nil {
		h.fail(w, "GetMine", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GetAll lists every order, ?search=, ?estado=, ?page= and ?limit= apply.
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	page, err := h.orders.All(ctx, utils.GetTokenFromRequest(r), utils.ParseQueryOptions(r))
	if err != nil {
		h.fail(w, "GetAll", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, page)
}

type stateRequest struct {
	State string `json:"estado"`
}

func (h *Handler) UpdateState(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req stateRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil || req.State == "" {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	id := ps.ByName("id")
	if err := h.orders.SetState(ctx, utils.GetTokenFromRequest(r), id, req.State); err != nil {
		h.fail(w, "UpdateState", err)
		return
	}
	h.log.Info("order state changed", zap.String("id", id), zap.String("estado", req.State))
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"_id": id, "estado": req.State})
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	if err := h.orders.Delete(ctx, utils.GetTokenFromRequest(r), id); err != nil {
		h.fail(w, "DeleteOrder", err)
		return
	}
	h.log.Info("order deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}
