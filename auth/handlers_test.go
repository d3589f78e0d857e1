package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"calufestas/backend"
	"calufestas/models"
	"calufestas/storage"
	"calufestas/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	token string
}

func (f *fakeBackend) Login(_ context.Context, cred backend.Credentials) (string, error) {
	if cred.Password != "secret" {
		return "", &backend.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return f.token, nil
}

func (f *fakeBackend) Register(context.Context, backend.Registration) error { return nil }
func (f *fakeBackend) ForgotPassword(context.Context, string) error         { return nil }
func (f *fakeBackend) VerifyCode(_ context.Context, _, code string) error {
	if code != "123456" {
		return &backend.APIError{Status: http.StatusBadRequest, Message: "Invalid OTP"}
	}
	return nil
}
func (f *fakeBackend) ResetPassword(context.Context, backend.PasswordReset) error { return nil }

func (f *fakeBackend) Me(_ context.Context, token string) (models.Profile, error) {
	if token != f.token {
		return models.Profile{}, &backend.APIError{Status: http.StatusUnauthorized}
	}
	return models.Profile{Name: "Ana Maria", Email: "ana@x.com"}, nil
}

type fakeCarts struct{ dropped []string }

func (f *fakeCarts) Drop(_ context.Context, sid string) error {
	f.dropped = append(f.dropped, sid)
	return nil
}

func withSID(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		next(w, r.WithContext(utils.WithSession(r.Context(), "sid-1", nil, "")), ps)
	}
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", path, strings.NewReader(body)))
	return rec
}

func TestLoginLogout(t *testing.T) {
	kv := storage.NewMemory()
	sessions := NewSessions(kv, testSecret, nil)
	carts := &fakeCarts{}
	h := NewHandler(&fakeBackend{token: customerToken(t, time.Now().Add(48*time.Hour))}, sessions, carts, nil)

	router := httprouter.New()
	router.POST("/login", withSID(h.Login))
	router.POST("/logout", withSID(h.Logout))
	router.POST("/verify", withSID(h.VerifyCode))

	rec := post(router, "/login", `{"email":"ana@example.com","senha":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")

	rec = post(router, "/login", `{"email":"ana@example.com","senha":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Ana", resp.DisplayName)
	assert.Equal(t, "Bem-vindo(a), Ana!", resp.Notice.Message)

	p, _, err := sessions.Current(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", p.Email)

	rec = post(router, "/logout", ``)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"sid-1"}, carts.dropped)
	_, _, err = sessions.Current(context.Background(), "sid-1")
	assert.ErrorIs(t, err, ErrLoggedOut)

	rec = post(router, "/verify", `{"email":"ana@example.com","otp_code":"000000"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid OTP")
}

func TestLoginRequiresFields(t *testing.T) {
	h := NewHandler(&fakeBackend{}, NewSessions(storage.NewMemory(), nil, nil), nil, nil)
	router := httprouter.New()
	router.POST("/login", withSID(h.Login))

	rec := post(router, "/login", `{"email":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRefreshesProfile(t *testing.T) {
	fb := &fakeBackend{token: "tok"}
	kv := storage.NewMemory()
	h := NewHandler(fb, NewSessions(kv, nil, nil), nil, nil)
	claims := &models.Profile{Name: "Ana", Email: "ana@x.com", Role: "admin"}
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "token:sid-1", []byte("stale"), 0))

	get := func(p *models.Profile, token string) *httptest.ResponseRecorder {
		r := httptest.NewRequest("GET", "/me", nil)
		r = r.WithContext(utils.WithSession(r.Context(), "sid-1", p, token))
		rec := httptest.NewRecorder()
		h.Me(rec, r, nil)
		return rec
	}

	rec := get(nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"profile":null}`, rec.Body.String())

	rec = get(claims, "tok")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Ana Maria", resp.DisplayName)
	assert.True(t, resp.Profile.IsAdmin())

	_, err := kv.Get(ctx, "token:sid-1")
	require.NoError(t, err)

	// a token the backend refuses is forgotten
	rec = get(claims, "stale")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, err = kv.Get(ctx, "token:sid-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
