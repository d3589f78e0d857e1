package confirmation

import (
	"context"
	"errors"
	"net/http"
	"time"

	"calufestas/checkout"
	"calufestas/storage"
	"calufestas/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type Handler struct {
	receipts storage.KV
	number   string
	log      *zap.Logger
}

// NewHandler serves the last order of each session. number is the store's
// WhatsApp number in international format.
func NewHandler(receipts storage.KV, number string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{receipts: receipts, number: number, log: log}
}

type view struct {
	Payload  *checkout.Submission `json:"payload"`
	Message  string               `json:"message"`
	WhatsApp string               `json:"whatsapp"`
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*checkout.Submission, string, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sub, err := checkout.LastSubmission(ctx, h.receipts, utils.GetSessionIDFromRequest(r))
	if errors.Is(err, storage.ErrNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Nenhum pedido recente")
		return nil, "", false
	}
	if err != nil {
		h.log.Error("load confirmation", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Falha ao carregar o pedido")
		return nil, "", false
	}
	return sub, WhatsAppURL(h.number, Message(*sub)), true
}

func (h *Handler) GetConfirmation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sub, link, ok := h.load(w, r)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view{Payload: sub, Message: Message(*sub), WhatsApp: link})
}

func (h *Handler) GetQRCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	_, link, ok := h.load(w, r)
	if !ok {
		return
	}
	png, err := QRCode(link)
	if err != nil {
		h.log.Error("qr code", zap.Error(err))
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}
	utils.RespondWithBytes(w, "image/png", "", png)
}

func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sub, link, ok := h.load(w, r)
	if !ok {
		return
	}
	pdf, err := Receipt(*sub, link)
	if err != nil {
		h.log.Error("receipt", zap.Error(err))
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}
	utils.RespondWithBytes(w, "application/pdf", "pedido.pdf", pdf)
}
