package backend

import (
	"context"
	"net/http"
	"net/url"

	"calufestas/models"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type Registration struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type PasswordReset struct {
	Email    string `json:"email"`
	Code     string `json:"otp_code,omitempty"`
	Password string `json:"password,omitempty"`
}

// Login exchanges credentials for a signed token.
func (c *Client) Login(ctx context.Context, cred Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/clients/login", "", cred, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", &APIError{Status: http.StatusBadGateway, Message: "Resposta de login sem token"}
	}
	return out.Token, nil
}

func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.do(ctx, http.MethodPost, "/clients/", "", reg, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/clients/ForgotPassword", "", PasswordReset{Email: email}, nil)
}

func (c *Client) VerifyCode(ctx context.Context, email, code string) error {
	return c.do(ctx, http.MethodPost, "/clients/verifyCode", "", PasswordReset{Email: email, Code: code}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, r PasswordReset) error {
	return c.do(ctx, http.MethodPost, "/clients/ResetPassword", "", r, nil)
}

// Me returns the profile behind token.
func (c *Client) Me(ctx context.Context, token string) (models.Profile, error) {
	var p models.Profile
	err := c.do(ctx, http.MethodGet, "/privateClients/me", token, nil, &p)
	return p, err
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, "/products/", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, p models.Product) error {
	return c.do(ctx, http.MethodPost, "/privateProducts/register", token, p, nil)
}

// CreateLocation submits a rental order. Any 2xx is success.
func (c *Client) CreateLocation(ctx context.Context, token string, payload any) error {
	return c.do(ctx, http.MethodPost, "/locations/", token, payload, nil)
}

func (c *Client) ListLocations(ctx context.Context, token string) ([]models.Locacao, error) {
	var out []models.Locacao
	if err := c.do(ctx, http.MethodGet, "/locations/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LocationsByClient lists the orders placed with email.
func (c *Client) LocationsByClient(ctx context.Context, token, email string) ([]models.Locacao, error) {
	var out []models.Locacao
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/locations/cliente", token, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateLocationState moves an order to state. The backend returns the
// order's items to stock for final states.
func (c *Client) UpdateLocationState(ctx context.Context, token, id, state string) error {
	body := map[string]string{"estado": state}
	return c.do(ctx, http.MethodPut, "/locations/"+url.PathEscape(id), token, body, nil)
}

// DeleteLocation removes an order, handing its items back to stock.
func (c *Client) DeleteLocation(ctx context.Context, token, id string, items []models.Item) error {
	body := map[string]any{"items": items}
	return c.do(ctx, http.MethodPost, "/locations/"+url.PathEscape(id)+"/delete", token, body, nil)
}
