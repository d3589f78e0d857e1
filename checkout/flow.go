package checkout

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"calufestas/backend"
	"calufestas/cart"
	"calufestas/globals"
	"calufestas/models"
	"calufestas/notify"
	"calufestas/storage"

	"go.uber.org/zap"
)

// Phase is where a session's submission currently is.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
)

// Status is the outcome of one submit attempt.
type Status string

const (
	StatusEmptyCart     Status = "empty_cart"
	StatusLoginRequired Status = "login_required"
	StatusBusy          Status = "busy"
	StatusInvalid       Status = "invalid"
	StatusSubmitted     Status = "submitted"
	StatusFailed        Status = "failed"
)

const (
	LoginPath        = "/login"
	ConfirmationPath = "/redirecionamento"
	confirmationTTL  = 24 * time.Hour
)

// OrderCreator posts an order with the customer's credential.
type OrderCreator interface {
	CreateLocation(ctx context.Context, token string, payload any) error
}

// CatalogInvalidator drops the cached product listing.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Carts hands out the cart of a session.
type Carts interface {
	Open(ctx context.Context, sid string) *cart.Store
}

// Request is one press of the submit button.
type Request struct {
	SessionID string
	Token     string
	Profile   *models.Profile
	// Preview renders the page as a guest even when signed in.
	Preview bool
	Form    Form
}

func (r Request) guest() bool {
	return r.Profile == nil || r.Token == "" || r.Preview
}

type Outcome struct {
	Status   Status        `json:"status"`
	Errors   FieldErrors   `json:"errors,omitempty"`
	Payload  *Submission   `json:"payload,omitempty"`
	Redirect string        `json:"redirect,omitempty"`
	Form     Form          `json:"form"`
	Notice   *notify.Toast `json:"notice,omitempty"`
}

type Flow struct {
	validator *Validator
	orders    OrderCreator
	catalog   CatalogInvalidator
	carts     Carts
	receipts  storage.KV

	mu     sync.Mutex
	phases map[string]Phase

	log *zap.Logger
}

func NewFlow(v *Validator, orders OrderCreator, catalog CatalogInvalidator, carts Carts, receipts storage.KV, log *zap.Logger) *Flow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{
		validator: v,
		orders:    orders,
		catalog:   catalog,
		carts:     carts,
		receipts:  receipts,
		phases:    make(map[string]Phase),
		log:       log,
	}
}

// Phase reports the current phase of sid.
func (f *Flow) Phase(sid string) Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.phases[sid]; ok {
		return p
	}
	return PhaseIdle
}

// enter moves sid out of Idle; false when a submission is already running.
func (f *Flow) enter(sid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.phases[sid]; busy {
		return false
	}
	f.phases[sid] = PhaseValidating
	return true
}

func (f *Flow) set(sid string, p Phase) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p == PhaseIdle {
		delete(f.phases, sid)
		return
	}
	f.phases[sid] = p
}

// Submit runs the submission state machine once. The cart and the form
// survive every failure.
func (f *Flow) Submit(ctx context.Context, req Request) Outcome {
	store := f.carts.Open(ctx, req.SessionID)
	items := store.Items()
	if len(items) == 0 {
		return Outcome{Status: StatusEmptyCart, Form: req.Form}
	}
	if req.guest() {
		return Outcome{Status: StatusLoginRequired, Redirect: LoginPath, Form: req.Form, Notice: notify.LoginRequired()}
	}
	if !f.enter(req.SessionID) {
		return Outcome{Status: StatusBusy, Form: req.Form}
	}
	defer f.set(req.SessionID, PhaseIdle)

	if errs := f.validator.Validate(req.Form); len(errs) > 0 {
		return Outcome{Status: StatusInvalid, Errors: errs, Form: req.Form, Notice: notify.FixFields()}
	}

	f.set(req.SessionID, PhaseSubmitting)
	sub := NewSubmission(req.Form, items, req.Profile.Email)
	if err := f.orders.CreateLocation(ctx, req.Token, sub); err != nil {
		f.log.Warn("order submission failed", zap.String("session", req.SessionID), zap.Error(err))
		msg := backend.MessageOf(err, notify.OrderFailedMessage)
		return Outcome{Status: StatusFailed, Form: req.Form, Notice: notify.OrderFailed(msg)}
	}

	store.ClearCart(ctx)
	if err := f.catalog.Invalidate(ctx); err != nil {
		f.log.Warn("catalog invalidate after order", zap.Error(err))
	}
	f.keep(ctx, req.SessionID, sub)
	f.log.Info("order submitted",
		zap.String("session", req.SessionID),
		zap.Int("items", len(sub.Items)),
		zap.String("total", sub.Total.StringFixed(2)),
	)
	return Outcome{
		Status:   StatusSubmitted,
		Payload:  &sub,
		Redirect: ConfirmationPath,
		Form:     EmptyForm(),
		Notice:   notify.OrderSent(),
	}
}

func confirmationKey(sid string) string {
	return globals.Slot(globals.ConfirmationKey, sid)
}

// keep stores the payload for the confirmation page.
func (f *Flow) keep(ctx context.Context, sid string, sub Submission) {
	data, err := json.Marshal(sub)
	if err != nil {
		f.log.Error("encode confirmation", zap.Error(err))
		return
	}
	if err := f.receipts.Set(ctx, confirmationKey(sid), data, confirmationTTL); err != nil {
		f.log.Warn("store confirmation", zap.Error(err))
	}
}

// LastSubmission returns the most recent order of sid, if still kept.
func LastSubmission(ctx context.Context, kv storage.KV, sid string) (*Submission, error) {
	data, err := kv.Get(ctx, confirmationKey(sid))
	if err != nil {
		return nil, err
	}
	var sub Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
