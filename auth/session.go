package auth

import (
	"context"
	"errors"
	"time"

	"calufestas/globals"
	"calufestas/models"
	"calufestas/storage"

	"go.uber.org/zap"
)

// Sessions keeps each browser session's token in the token slot, the way
// the storefront keeps it in local storage.
type Sessions struct {
	kv     storage.KV
	secret []byte
	now    func() time.Time
	log    *zap.Logger
}

func NewSessions(kv storage.KV, secret []byte, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{kv: kv, secret: secret, now: time.Now, log: log}
}

// WithClock swaps the time source.
func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	s.now = now
	return s
}

func tokenKey(sid string) string {
	return globals.Slot(globals.TokenSlot, sid)
}

// Save stores token for sid after checking it can be read and is current.
func (s *Sessions) Save(ctx context.Context, sid, token string) (*models.Profile, error) {
	claims, err := DecodeToken(token, s.secret)
	if err != nil {
		return nil, err
	}
	if err := CheckExpiry(claims, s.now()); err != nil {
		return nil, err
	}
	exp, _ := claims.ExpiresAt()
	if err := s.kv.Set(ctx, tokenKey(sid), []byte(token), exp.Sub(s.now())); err != nil {
		return nil, err
	}
	return claims.Profile(), nil
}

// Current returns the signed-in profile and its token. Expired or
// unreadable tokens are discarded and reported as ErrLoggedOut.
func (s *Sessions) Current(ctx context.Context, sid string) (*models.Profile, string, error) {
	if sid == "" {
		return nil, "", ErrLoggedOut
	}
	raw, err := s.kv.Get(ctx, tokenKey(sid))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrLoggedOut
	}
	if err != nil {
		return nil, "", err
	}
	token := string(raw)
	claims, err := DecodeToken(token, s.secret)
	if err == nil {
		err = CheckExpiry(claims, s.now())
	}
	if err != nil {
		s.log.Info("discarding session token", zap.Error(err))
		if derr := s.kv.Delete(ctx, tokenKey(sid)); derr != nil {
			s.log.Warn("token delete failed", zap.Error(derr))
		}
		return nil, "", ErrLoggedOut
	}
	return claims.Profile(), token, nil
}

// Discard forgets the token of sid.
func (s *Sessions) Discard(ctx context.Context, sid string) error {
	return s.kv.Delete(ctx, tokenKey(sid))
}

// FromToken reads a bearer token sent by a non-browser client.
func (s *Sessions) FromToken(token string) (*models.Profile, error) {
	claims, err := DecodeToken(token, s.secret)
	if err != nil {
		return nil, err
	}
	if err := CheckExpiry(claims, s.now()); err != nil {
		return nil, err
	}
	return claims.Profile(), nil
}
