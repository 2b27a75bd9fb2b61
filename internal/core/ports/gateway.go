package ports

import (
	"context"
	"encoding/json"

	"github.com/jsmfood/food-ordering/internal/core/domain"
)

// Record is a raw document or row as returned by the backend.
type Record = json.RawMessage

// AccountGateway is the backend's account sub-client.
type AccountGateway interface {
	CreateAccount(ctx context.Context, accountID, email, password, name string) (*domain.Account, error)
	CreateEmailPasswordSession(ctx context.Context, email, password string) (*domain.Session, error)
	// GetAccount returns ok=false when no session is active.
	GetAccount(ctx context.Context) (acct *domain.Account, ok bool, err error)
	// DeleteSession removes a session; "current" targets the active one.
	DeleteSession(ctx context.Context, sessionID string) error
}

// DocumentGateway is the backend's collection/document sub-client.
type DocumentGateway interface {
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (Record, error)
	ListDocuments(ctx context.Context, databaseID, collectionID string, queries []Query) ([]Record, error)
}

// ListRowsParams selects rows from a table.
type ListRowsParams struct {
	DatabaseID string
	TableID    string
	Queries    []Query
}

// TableGateway is the backend's table/row sub-client.
type TableGateway interface {
	ListRows(ctx context.Context, params ListRowsParams) ([]Record, error)
}

// AvatarGateway builds avatar URLs without a network round-trip.
type AvatarGateway interface {
	InitialsURL(name string) string
}

// StorageGateway builds file URLs for a storage bucket.
type StorageGateway interface {
	FileViewURL(bucketID, fileID string) string
}

// Gateway bundles the sub-clients a configured backend client exposes.
type Gateway struct {
	Account   AccountGateway
	Documents DocumentGateway
	Tables    TableGateway
	Avatars   AvatarGateway
	Storage   StorageGateway
}
