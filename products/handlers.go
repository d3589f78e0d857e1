package products

import (
	"context"
	"errors"
	"net/http"
	"time"

	"calufestas/backend"
	"calufestas/models"
	"calufestas/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

type listResponse struct {
	Products   []models.Product `json:"products"`
	Categories []Category       `json:"categories"`
}

// GetProducts lists the catalog, optionally filtered by ?categoria= (a
// slug) and ?subcategoria=.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, err := h.svc.List(ctx)
	if err != nil {
		h.log.Error("list products", zap.Error(err))
		utils.RespondWithError(w, http.StatusBadGateway, "Erro ao carregar produtos. Tente novamente mais tarde.")
		return
	}
	q := r.URL.Query()
	utils.RespondWithJSON(w, http.StatusOK, listResponse{
		Products:   Filter(list, q.Get("categoria"), q.Get("subcategoria")),
		Categories: Categories(list),
	})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p, err := h.svc.Find(ctx, ps.ByName("id"))
	if errors.Is(err, models.ErrProductNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Produto não encontrado")
		return
	}
	if err != nil {
		h.log.Error("find product", zap.Error(err))
		utils.RespondWithError(w, http.StatusBadGateway, "Erro ao carregar produto")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) GetThumbnail(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	data, err := h.svc.Thumbnail(ctx, ps.ByName("id"))
	switch {
	case errors.Is(err, models.ErrProductNotFound), errors.Is(err, ErrNoImage):
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	case err != nil:
		h.log.Warn("thumbnail", zap.String("id", ps.ByName("id")), zap.Error(err))
		http.Error(w, "Image unavailable", http.StatusBadGateway)
		return
	}
	utils.RespondWithBytes(w, "image/jpeg", "", data)
}

// CreateProduct registers a product; admin only.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var f Form
	if err := utils.DecodeJSON(w, r, &f); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if errs := f.Validate(); len(errs) > 0 {
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, utils.M{
			"error":  "Corrija os erros antes de enviar.",
			"errors": errs,
		})
		return
	}

	if err := h.svc.Create(ctx, utils.GetTokenFromRequest(r), f.Product()); err != nil {
		h.log.Error("create product", zap.Error(err))
		utils.RespondWithError(w, http.StatusBadGateway, backend.MessageOf(err, "Erro ao cadastrar produto"))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": "Produto cadastrado com sucesso!"})
}
