package appwrite

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jsmfood/food-ordering/internal/core/domain"
)

type accountResponse struct {
	ID    string `json:"$id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (a accountResponse) toDomain() *domain.Account {
	return &domain.Account{ID: a.ID, Email: a.Email, Name: a.Name}
}

type sessionResponse struct {
	ID     string    `json:"$id"`
	UserID string    `json:"userId"`
	Expire time.Time `json:"expire"`
}

// CreateAccount registers a new email/password account.
func (c *Client) CreateAccount(ctx context.Context, accountID, email, password, name string) (*domain.Account, error) {
	body := map[string]string{
		"userId":   accountID,
		"email":    email,
		"password": password,
	}
	if name != "" {
		body["name"] = name
	}

	var resp accountResponse
	if err := c.do(ctx, "account.create", http.MethodPost, "/account", nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, nil
	}
	return resp.toDomain(), nil
}

// CreateEmailPasswordSession signs in; the session cookie is kept by the client.
func (c *Client) CreateEmailPasswordSession(ctx context.Context, email, password string) (*domain.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var resp sessionResponse
	if err := c.do(ctx, "account.create_session", http.MethodPost, "/account/sessions/email", nil, body, &resp); err != nil {
		return nil, err
	}
	return &domain.Session{ID: resp.ID, UserID: resp.UserID, ExpireAt: resp.Expire}, nil
}

// GetAccount returns the account behind the current session, or ok=false when
// the backend reports no session.
func (c *Client) GetAccount(ctx context.Context) (*domain.Account, bool, error) {
	var resp accountResponse
	err := c.do(ctx, "account.get", http.MethodGet, "/account", nil, nil, &resp)
	if errors.Is(err, domain.ErrUnauthenticated) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return resp.toDomain(), true, nil
}

// DeleteSession deletes a session and forgets the local fallback cookie.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	err := c.do(ctx, "account.delete_session", http.MethodDelete, escapePath("account", "sessions", sessionID), nil, nil, nil)
	if err == nil {
		c.setFallbackCookies("")
	}
	return err
}
