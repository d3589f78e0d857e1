package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"calufestas/models"
	"calufestas/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// ProductFinder resolves a product with its current stock. Unknown ids
// give models.ErrProductNotFound.
type ProductFinder interface {
	Find(ctx context.Context, id string) (models.Product, error)
}

// Sockets joins a websocket room.
type Sockets interface {
	Serve(w http.ResponseWriter, r *http.Request, room string, initial []byte, onMessage func(data []byte)) error
}

type Handler struct {
	carts    *Registry
	products ProductFinder
	sockets  Sockets
	log      *zap.Logger
}

func NewHandler(carts *Registry, products ProductFinder, sockets Sockets, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{carts: carts, products: products, sockets: sockets, log: log}
}

type addRequest struct {
	ID       string `json:"_id"`
	Quantity int    `json:"quantidade"`
}

type quantityRequest struct {
	Quantity int `json:"quantidade"`
}

func respondCart(w http.ResponseWriter, status int, s *Store, ev *Event) {
	items := s.Items()
	if ev == nil {
		utils.RespondWithJSON(w, status, NewSyncMessage(items, Event{Kind: Unchanged}))
		return
	}
	utils.RespondWithJSON(w, status, NewSyncMessage(items, *ev))
}

// GetCart returns the session's lines and totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	s := h.carts.Open(ctx, utils.GetSessionIDFromRequest(r))
	respondCart(w, http.StatusOK, s, nil)
}

// AddItem adds units of a catalog product.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req addRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil || req.ID == "" {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	product, err := h.products.Find(ctx, req.ID)
	if errors.Is(err, models.ErrProductNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Produto não encontrado")
		return
	}
	if err != nil {
		h.log.Error("AddItem product lookup", zap.String("id", req.ID), zap.Error(err))
		utils.RespondWithError(w, http.StatusBadGateway, "Falha ao consultar o produto")
		return
	}

	s := h.carts.Open(ctx, utils.GetSessionIDFromRequest(r))
	ev := s.AddToCart(ctx, product, req.Quantity)
	status := http.StatusOK
	if ev.Kind == Rejected {
		status = http.StatusUnprocessableEntity
	}
	respondCart(w, status, s, &ev)
}

// UpdateItem sets a line's quantity; zero or less removes it.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req quantityRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	s := h.carts.Open(ctx, utils.GetSessionIDFromRequest(r))
	ev := s.ChangeQuantity(ctx, ps.ByName("id"), req.Quantity)
	respondCart(w, http.StatusOK, s, &ev)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	s := h.carts.Open(ctx, utils.GetSessionIDFromRequest(r))
	ev := s.RemoveFromCart(ctx, ps.ByName("id"))
	respondCart(w, http.StatusOK, s, &ev)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	s := h.carts.Open(ctx, utils.GetSessionIDFromRequest(r))
	ev := s.ClearCart(ctx)
	respondCart(w, http.StatusOK, s, &ev)
}

// inbound is what a tab may send over the socket.
type inbound struct {
	Action string          `json:"action"`
	Items  json.RawMessage `json:"items"`
}

// Sync upgrades to a websocket that streams every change of the session's
// cart. A tab may push {"action":"replace","items":[...]} to overwrite it.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sid := utils.GetSessionIDFromRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	s := h.carts.Open(ctx, sid)
	cancel()

	initial, err := json.Marshal(NewSyncMessage(s.Items(), Event{Kind: Unchanged}))
	if err != nil {
		http.Error(w, "Failed to encode cart", http.StatusInternalServerError)
		return
	}

	err = h.sockets.Serve(w, r, sid, initial, func(data []byte) {
		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			h.log.Debug("invalid cart frame", zap.Error(err))
			return
		}
		if in.Action != "replace" {
			h.log.Debug("unknown cart action", zap.String("action", in.Action))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.carts.WriteFromTab(ctx, sid, in.Items); err != nil {
			h.log.Warn("ignoring cart written by tab", zap.Error(err))
		}
	})
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
	}
}
