package service

import (
	"strings"

	"github.com/google/uuid"
)

// Collections names the database, collections and bucket the operations use.
type Collections struct {
	DatabaseID             string
	UserCollectionID       string
	CategoriesCollectionID string
	MenuCollectionID       string
	BucketID               string
}

// uniqueID returns a backend-compatible unique id: 32 lowercase hex chars.
func uniqueID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
