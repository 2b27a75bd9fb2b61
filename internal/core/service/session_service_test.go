package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jsmfood/food-ordering/internal/core/domain"
	"github.com/jsmfood/food-ordering/internal/core/ports"
)

var discardLogger = zerolog.Nop()

var testCollections = Collections{
	DatabaseID:             "db",
	UserCollectionID:       "users",
	CategoriesCollectionID: "categories",
	MenuCollectionID:       "menu",
	BucketID:               "assets",
}

func newSessionSvc(gw *stubGateway) *SessionService {
	return NewSessionService(gw.gateway(), testCollections, discardLogger)
}

func signUpInput() ports.CreateUserInput {
	return ports.CreateUserInput{Email: "jo@example.com", Password: "password123", Name: "Jo Doe"}
}

// ---------------------------------------------------------------------------
// CreateUser
// ---------------------------------------------------------------------------

func TestSessionService_CreateUser_Success(t *testing.T) {
	gw := newStubGateway()
	svc := newSessionSvc(gw)

	user, err := svc.CreateUser(context.Background(), signUpInput())
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	acct := gw.accounts["jo@example.com"].account
	if user.AccountID != acct.ID {
		t.Fatalf("expected account id %q, got %q", acct.ID, user.AccountID)
	}
	if user.ID == "" || user.ID == acct.ID {
		t.Fatalf("expected a distinct user record id, got %q", user.ID)
	}
	if !strings.Contains(user.Avatar, "name=Jo+Doe") {
		t.Fatalf("unexpected avatar url: %s", user.Avatar)
	}
	if gw.active == nil || gw.active.ID != acct.ID {
		t.Fatalf("expected CreateUser to leave an active session")
	}

	current, err := svc.GetCurrentUser(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentUser returned error: %v", err)
	}
	if current.AccountID != user.AccountID {
		t.Fatalf("expected current user for account %q, got %q", user.AccountID, current.AccountID)
	}
}

func TestSessionService_CreateUser_Validation(t *testing.T) {
	cases := map[string]ports.CreateUserInput{
		"bad email":      {Email: "not-an-email", Password: "password123", Name: "Jo"},
		"short password": {Email: "jo@example.com", Password: "short", Name: "Jo"},
		"missing name":   {Email: "jo@example.com", Password: "password123"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			gw := newStubGateway()
			svc := newSessionSvc(gw)

			if _, err := svc.CreateUser(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if len(gw.accounts) != 0 {
				t.Fatalf("no account should be created on invalid input")
			}
		})
	}
}

func TestSessionService_CreateUser_NoAccountReturned(t *testing.T) {
	gw := newStubGateway()
	gw.noAccount = true
	svc := newSessionSvc(gw)

	if _, err := svc.CreateUser(context.Background(), signUpInput()); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if len(gw.documents["users"]) != 0 {
		t.Fatalf("no user record should be written")
	}
}

func TestSessionService_CreateUser_Duplicate(t *testing.T) {
	gw := newStubGateway()
	svc := newSessionSvc(gw)

	_, _ = svc.CreateUser(context.Background(), signUpInput())
	_, err := svc.CreateUser(context.Background(), signUpInput())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate account, got %v", err)
	}
	if !strings.Contains(err.Error(), "account already exists") {
		t.Fatalf("expected upstream message to be kept, got %q", err.Error())
	}
}

func TestSessionService_CreateUser_BackendDown(t *testing.T) {
	gw := newStubGateway()
	gw.createAccountErr = errBackendDown
	svc := newSessionSvc(gw)

	_, err := svc.CreateUser(context.Background(), signUpInput())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if !errors.Is(err, errBackendDown) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// SignIn / SignOut
// ---------------------------------------------------------------------------

func TestSessionService_SignIn_InvalidCredentials(t *testing.T) {
	gw := newStubGateway()
	svc := newSessionSvc(gw)
	_, _ = svc.CreateUser(context.Background(), signUpInput())
	gw.active = nil

	if err := svc.SignIn(context.Background(), "jo@example.com", "wrong-password"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if gw.active != nil {
		t.Fatalf("no session should be active")
	}
}

func TestSessionService_SignIn_EmptyCredentials(t *testing.T) {
	svc := newSessionSvc(newStubGateway())

	if err := svc.SignIn(context.Background(), "", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSessionService_SignOut(t *testing.T) {
	gw := newStubGateway()
	svc := newSessionSvc(gw)
	_, _ = svc.CreateUser(context.Background(), signUpInput())

	if err := svc.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if _, err := svc.GetCurrentUser(context.Background()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after sign out, got %v", err)
	}

	// A second sign out has no session to delete.
	if err := svc.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut without session returned error: %v", err)
	}
}

// ---------------------------------------------------------------------------
// GetCurrentUser
// ---------------------------------------------------------------------------

func TestSessionService_GetCurrentUser_NoSession(t *testing.T) {
	svc := newSessionSvc(newStubGateway())

	user, err := svc.GetCurrentUser(context.Background())
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if user != nil {
		t.Fatalf("expected no user, got %+v", user)
	}
}

func TestSessionService_GetCurrentUser_NoRecord(t *testing.T) {
	gw := newStubGateway()
	gw.active = &domain.Account{ID: "A1"}
	svc := newSessionSvc(gw)

	if _, err := svc.GetCurrentUser(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(gw.lastQueries) != 1 || gw.lastQueries[0].String() != `{"method":"equal","attribute":"accountId","values":["A1"]}` {
		t.Fatalf("unexpected queries: %+v", gw.lastQueries)
	}
}

func TestSessionService_GetCurrentUser_FirstMatchWins(t *testing.T) {
	gw := newStubGateway()
	gw.active = &domain.Account{ID: "A1"}
	gw.documents["users"] = []map[string]any{
		{"$id": "u2", "accountId": "A2", "name": "Other"},
		{"$id": "u1", "accountId": "A1", "name": "Jo"},
		{"$id": "u3", "accountId": "A1", "name": "Jo again"},
	}
	svc := newSessionSvc(gw)

	user, err := svc.GetCurrentUser(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" || user.Name != "Jo" {
		t.Fatalf("expected first matching record, got %+v", user)
	}
}

func TestSessionService_GetCurrentUser_TransportError(t *testing.T) {
	gw := newStubGateway()
	gw.getAccountErr = errBackendDown
	svc := newSessionSvc(gw)

	_, err := svc.GetCurrentUser(context.Background())
	if !errors.Is(err, domain.ErrTransport) || !errors.Is(err, errBackendDown) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}
