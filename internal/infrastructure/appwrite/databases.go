package appwrite

import (
	"context"
	"net/http"

	"github.com/jsmfood/food-ordering/internal/core/ports"
)

type documentList struct {
	Total     int            `json:"total"`
	Documents []ports.Record `json:"documents"`
}

type rowList struct {
	Total int            `json:"total"`
	Rows  []ports.Record `json:"rows"`
}

// CreateDocument stores data as a new document.
func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (ports.Record, error) {
	body := map[string]any{
		"documentId": documentID,
		"data":       data,
	}

	var rec ports.Record
	path := escapePath("databases", databaseID, "collections", collectionID, "documents")
	if err := c.do(ctx, "databases.create_document", http.MethodPost, path, nil, body, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListDocuments lists the documents of a collection matching all queries.
func (c *Client) ListDocuments(ctx context.Context, databaseID, collectionID string, queries []ports.Query) ([]ports.Record, error) {
	var resp documentList
	path := escapePath("databases", databaseID, "collections", collectionID, "documents")
	if err := c.do(ctx, "databases.list_documents", http.MethodGet, path, queryValues(queries), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Documents == nil {
		return []ports.Record{}, nil
	}
	return resp.Documents, nil
}

// ListRows lists the rows of a table matching all queries.
func (c *Client) ListRows(ctx context.Context, p ports.ListRowsParams) ([]ports.Record, error) {
	var resp rowList
	path := escapePath("tablesdb", p.DatabaseID, "tables", p.TableID, "rows")
	if err := c.do(ctx, "tables.list_rows", http.MethodGet, path, queryValues(p.Queries), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Rows == nil {
		return []ports.Record{}, nil
	}
	return resp.Rows, nil
}
