package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jsmfood/food-ordering/internal/api/middleware"
	"github.com/jsmfood/food-ordering/internal/core/authstore"
	"github.com/jsmfood/food-ordering/internal/core/domain"
	"github.com/jsmfood/food-ordering/internal/core/ports"
)

const heartbeatInterval = 15 * time.Second

// StateStore is the part of the auth state store the HTTP layer drives.
type StateStore interface {
	Read() domain.AuthState
	Subscribe(l authstore.Listener) (unsubscribe func())
	FetchAuthenticatedUser(ctx context.Context)
	Reset()
}

type AuthHandler struct {
	sessions  ports.SessionService
	store     StateStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthHandler(sessions ports.SessionService, store StateStore, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:  sessions,
		store:     store,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// SignUp creates an account and its user record, then opens a session.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.sessions.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return err
	}

	// The new session is live: bring the store in line with it.
	h.store.FetchAuthenticatedUser(context.WithoutCancel(c.Request().Context()))

	token, err := middleware.IssueToken(h.jwtSecret, h.tokenTTL, user)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

// SignIn opens a session and refreshes the auth state from it.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.sessions.SignIn(c.Request().Context(), req.Email, req.Password); err != nil {
		return err
	}

	h.store.FetchAuthenticatedUser(context.WithoutCancel(c.Request().Context()))

	st := h.store.Read()
	if !st.IsAuthenticated || st.User == nil {
		if err := h.sessions.SignOut(context.WithoutCancel(c.Request().Context())); err != nil {
			h.log.Warn().Err(err).Str("email", req.Email).Msg("sign-in without user record: session not closed")
		}
		return domain.Errorf(domain.KindUnauthenticated, "signIn", "session has no user record")
	}

	token, err := middleware.IssueToken(h.jwtSecret, h.tokenTTL, st.User)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: st.User})
}

// SignOut deletes the backend session and resets the auth state.
//
// @Summary      Sign out
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}
	// The backend session is shared; only the account it belongs to may end it.
	if st := h.store.Read(); st.User == nil || st.User.AccountID != accountID {
		return domain.Errorf(domain.KindUnauthenticated, "signOut", "token does not match the signed-in account")
	}

	if err := h.sessions.SignOut(c.Request().Context()); err != nil {
		return err
	}
	h.store.Reset()

	h.log.Info().Str("account_id", accountID).Msg("signed out")
	return c.NoContent(http.StatusNoContent)
}

// State returns the current auth state.
//
// @Summary      Current auth state
// @Tags         auth
// @Produce      json
// @Success      200  {object}  stateResponse
// @Router       /auth/state [get]
func (h *AuthHandler) State(c echo.Context) error {
	return c.JSON(http.StatusOK, toStateResponse(h.store.Read()))
}

// Refresh re-reads the session from the backend and returns the settled state.
// Failures never surface here: they leave the state unauthenticated.
//
// @Summary      Refresh auth state
// @Tags         auth
// @Produce      json
// @Success      200  {object}  stateResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	h.store.FetchAuthenticatedUser(c.Request().Context())
	return c.JSON(http.StatusOK, toStateResponse(h.store.Read()))
}

// Events streams every auth state change as server-sent events, starting
// with the current state. Bursts of changes collapse into the latest state.
//
// @Summary      Auth state stream
// @Tags         auth
// @Produce      text/event-stream
// @Success      200
// @Router       /auth/state/events [get]
func (h *AuthHandler) Events(c echo.Context) error {
	changed := make(chan struct{}, 1)
	unsubscribe := h.store.Subscribe(func(domain.AuthState) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeStateEvent(w, h.store.Read()); err != nil {
		return nil
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			if err := writeStateEvent(w, h.store.Read()); err != nil {
				h.log.Debug().Err(err).Msg("state stream closed")
				return nil
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

func writeStateEvent(w *echo.Response, st domain.AuthState) error {
	b, err := json.Marshal(toStateResponse(st))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", b); err != nil {
		return err
	}
	w.Flush()
	return nil
}
