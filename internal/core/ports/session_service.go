package ports

import (
	"context"

	"github.com/jsmfood/food-ordering/internal/core/domain"
)

// CreateUserInput carries sign-up data.
type CreateUserInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Name     string `validate:"required"`
}

// SessionService groups the account and session operations.
type SessionService interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	GetCurrentUser(ctx context.Context) (*domain.User, error)
}

// MenuService groups the catalog read operations.
type MenuService interface {
	GetMenu(ctx context.Context, q domain.MenuQuery) ([]domain.MenuItem, error)
	GetCategories(ctx context.Context) ([]domain.Category, error)
	FileURL(fileID string) string
}
