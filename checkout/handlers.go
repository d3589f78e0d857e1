package checkout

import (
	"context"
	"net/http"
	"time"

	"calufestas/models"
	"calufestas/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Handler struct {
	flow *Flow
	log  *zap.Logger
}

func NewHandler(flow *Flow, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{flow: flow, log: log}
}

type view struct {
	Items     []models.CartItem      `json:"items"`
	Total     decimal.Decimal        `json:"total"`
	Guest     bool                   `json:"guest"`
	CanSubmit bool                   `json:"canSubmit"`
	Phase     Phase                  `json:"phase"`
	Payments  []models.PaymentMethod `json:"pagamentos"`
}

func requestFrom(r *http.Request) Request {
	return Request{
		SessionID: utils.GetSessionIDFromRequest(r),
		Token:     utils.GetTokenFromRequest(r),
		Profile:   utils.GetProfileFromRequest(r),
		Preview:   r.URL.Query().Get("preview") == "1",
	}
}

// GetCheckout describes the checkout page: the cart snapshot and whether
// the visitor may submit.
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	req := requestFrom(r)
	s := h.flow.carts.Open(ctx, req.SessionID)
	items := s.Items()
	phase := h.flow.Phase(req.SessionID)
	utils.RespondWithJSON(w, http.StatusOK, view{
		Items:     items,
		Total:     models.CartTotal(items),
		Guest:     req.guest(),
		CanSubmit: len(items) > 0 && !req.guest() && phase == PhaseIdle,
		Phase:     phase,
		Payments:  models.PaymentMethods,
	})
}

// Submit validates the form and sends the order.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	req := requestFrom(r)
	if err := utils.DecodeJSON(w, r, &req.Form); err != nil {
		h.log.Debug("checkout payload", zap.Error(err))
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	out := h.flow.Submit(ctx, req)
	utils.RespondWithJSON(w, statusCode(out.Status), out)
}

func statusCode(s Status) int {
	switch s {
	case StatusSubmitted:
		return http.StatusCreated
	case StatusInvalid, StatusEmptyCart:
		return http.StatusUnprocessableEntity
	case StatusLoginRequired:
		return http.StatusUnauthorized
	case StatusBusy:
		return http.StatusConflict
	case StatusFailed:
		return http.StatusBadGateway
	}
	return http.StatusOK
}
