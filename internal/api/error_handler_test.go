package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jsmfood/food-ordering/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"unauthenticated", domain.Wrap(domain.KindUnauthenticated, "getCurrentUser", errors.New("no session")), http.StatusUnauthorized, "not authenticated"},
		{"not found", domain.Errorf(domain.KindNotFound, "getCurrentUser", "no user record"), http.StatusNotFound, "not found"},
		{"validation", domain.Wrap(domain.KindTransport, "createUser", domain.Errorf(domain.KindValidation, "account.create", "email must be a valid email")), http.StatusUnprocessableEntity, "email must be a valid email"},
		{"conflict", domain.Wrap(domain.KindTransport, "createUser", domain.Errorf(domain.KindConflict, "account.create", "account already exists")), http.StatusConflict, "account already exists"},
		{"transport", domain.Wrap(domain.KindTransport, "getMenu", errors.New("dial tcp: refused")), http.StatusBadGateway, "backend unavailable"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/menu", nil), rec)

			h(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tc.msg {
				t.Fatalf("expected message %q, got %q", tc.msg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/menu", nil), rec)
	_ = c.String(http.StatusOK, "partial")

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	if rec.Code != http.StatusOK || rec.Body.String() != "partial" {
		t.Fatalf("committed response was rewritten: %d %q", rec.Code, rec.Body.String())
	}
}
