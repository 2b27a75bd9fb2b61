package domain

import "time"

// Account is the credential identity owned by the backend's account service.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is the credential relationship issued on sign-in. Its lifecycle is
// managed entirely by the backend.
type Session struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	ExpireAt time.Time `json:"expire_at"`
}

// User is the profile record stored alongside an account, keyed by AccountID.
type User struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
}
