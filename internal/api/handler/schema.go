package handler

import "github.com/jsmfood/food-ordering/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type signUpRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"     validate:"required,max=128"`
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type stateResponse struct {
	IsAuthenticated bool         `json:"is_authenticated"`
	User            *domain.User `json:"user"`
	IsLoading       bool         `json:"is_loading"`
}

func toStateResponse(st domain.AuthState) stateResponse {
	return stateResponse{
		IsAuthenticated: st.IsAuthenticated,
		User:            st.User,
		IsLoading:       st.IsLoading,
	}
}

// --- Menu ---

type menuResponse struct {
	Items []domain.MenuItem `json:"items"`
	Count int               `json:"count"`
}

type categoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}
