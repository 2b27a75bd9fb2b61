package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jsmfood/food-ordering/internal/core/domain"
	"github.com/jsmfood/food-ordering/internal/core/ports"
)

const currentSession = "current"

// SessionService implements sign-up, sign-in, sign-out and current user lookup
// on top of the backend gateway.
type SessionService struct {
	gw       ports.Gateway
	cols     Collections
	validate *validator.Validate
	newID    func() string
	logger   zerolog.Logger
}

func NewSessionService(gw ports.Gateway, cols Collections, logger zerolog.Logger) *SessionService {
	return &SessionService{
		gw:       gw,
		cols:     cols,
		validate: validator.New(),
		newID:    uniqueID,
		logger:   logger,
	}
}

// userDocument is the user record as stored in the users collection.
type userDocument struct {
	ID        string `json:"$id,omitempty"`
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:        d.ID,
		AccountID: d.AccountID,
		Email:     d.Email,
		Name:      d.Name,
		Avatar:    d.Avatar,
	}
}

// CreateUser creates an account, signs in with the same credentials and stores
// the matching user record with an initials avatar.
func (s *SessionService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	const op = "createUser"

	if err := s.validate.Struct(in); err != nil {
		return nil, domain.Wrap(domain.KindValidation, op, err)
	}

	acct, err := s.gw.Account.CreateAccount(ctx, s.newID(), in.Email, in.Password, in.Name)
	if err != nil {
		return nil, domain.Wrap(domain.KindTransport, op, err)
	}
	if acct == nil {
		return nil, domain.Errorf(domain.KindTransport, op, "backend returned no account")
	}

	if err := s.SignIn(ctx, in.Email, in.Password); err != nil {
		return nil, domain.Wrap(domain.KindTransport, op, err)
	}

	doc := userDocument{
		AccountID: acct.ID,
		Email:     in.Email,
		Name:      in.Name,
		Avatar:    s.gw.Avatars.InitialsURL(in.Name),
	}
	rec, err := s.gw.Documents.CreateDocument(ctx, s.cols.DatabaseID, s.cols.UserCollectionID, s.newID(), doc)
	if err != nil {
		return nil, domain.Wrap(domain.KindTransport, op, err)
	}

	var created userDocument
	if err := json.Unmarshal(rec, &created); err != nil {
		return nil, domain.Wrap(domain.KindTransport, op, err)
	}

	s.logger.Info().Str("account_id", acct.ID).Str("user_id", created.ID).Msg("user created")
	return created.toDomain(), nil
}

// SignIn creates an email/password session. The session itself stays with the
// gateway; only its id and expiry are logged.
func (s *SessionService) SignIn(ctx context.Context, email, password string) error {
	const op = "signIn"

	if email == "" || password == "" {
		return domain.Errorf(domain.KindValidation, op, "email and password are required")
	}

	session, err := s.gw.Account.CreateEmailPasswordSession(ctx, email, password)
	if err != nil {
		return domain.Wrap(domain.KindTransport, op, err)
	}
	if session != nil {
		s.logger.Debug().Str("session_id", session.ID).Time("expire_at", session.ExpireAt).Msg("session created")
	}
	return nil
}

// SignOut deletes the current session. Having no session is not an error.
func (s *SessionService) SignOut(ctx context.Context) error {
	const op = "signOut"

	err := s.gw.Account.DeleteSession(ctx, currentSession)
	if err != nil && !errors.Is(err, domain.ErrUnauthenticated) {
		return domain.Wrap(domain.KindTransport, op, err)
	}
	return nil
}

// GetCurrentUser resolves the active account to its user record. The first
// record in the backend's default order wins when several match.
func (s *SessionService) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	const op = "getCurrentUser"

	acct, ok, err := s.gw.Account.GetAccount(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.KindTransport, op, err)
	}
	if !ok || acct == nil {
		return nil, domain.Errorf(domain.KindUnauthenticated, op, "no active session")
	}

	recs, err := s.gw.Documents.ListDocuments(ctx, s.cols.DatabaseID, s.cols.UserCollectionID,
		[]ports.Query{ports.Equal("accountId", acct.ID)})
	if err != nil {
		return nil, domain.Wrap(domain.KindTransport, op, err)
	}
	if len(recs) == 0 {
		return nil, domain.Errorf(domain.KindNotFound, op, "no user record for account %s", acct.ID)
	}
	if len(recs) > 1 {
		s.logger.Warn().Str("account_id", acct.ID).Int("matches", len(recs)).Msg("multiple user records, using first")
	}

	var doc userDocument
	if err := json.Unmarshal(recs[0], &doc); err != nil {
		return nil, domain.Wrap(domain.KindTransport, op, err)
	}
	return doc.toDomain(), nil
}
