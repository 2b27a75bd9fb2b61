package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/jsmfood/food-ordering/internal/core/domain"
	"github.com/jsmfood/food-ordering/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub gateway
// ---------------------------------------------------------------------------

type stubAccount struct {
	account  domain.Account
	password string
}

type stubGateway struct {
	accounts  map[string]stubAccount // by email
	active    *domain.Account
	documents map[string][]map[string]any // by collection id
	rows      map[string][]map[string]any // by table id

	createAccountErr error
	noAccount        bool // CreateAccount returns nil, nil
	getAccountErr    error
	listErr          error

	listRowsCalls int
	lastQueries   []ports.Query
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		accounts:  make(map[string]stubAccount),
		documents: make(map[string][]map[string]any),
		rows:      make(map[string][]map[string]any),
	}
}

func (g *stubGateway) gateway() ports.Gateway {
	return ports.Gateway{Account: g, Documents: g, Tables: g, Avatars: g, Storage: g}
}

func (g *stubGateway) CreateAccount(_ context.Context, accountID, email, password, name string) (*domain.Account, error) {
	if g.createAccountErr != nil {
		return nil, g.createAccountErr
	}
	if g.noAccount {
		return nil, nil
	}
	if _, exists := g.accounts[email]; exists {
		return nil, domain.Errorf(domain.KindConflict, "account.create", "account already exists")
	}
	acct := domain.Account{ID: accountID, Email: email, Name: name}
	g.accounts[email] = stubAccount{account: acct, password: password}
	return &acct, nil
}

func (g *stubGateway) CreateEmailPasswordSession(_ context.Context, email, password string) (*domain.Session, error) {
	a, ok := g.accounts[email]
	if !ok || a.password != password {
		return nil, domain.Errorf(domain.KindUnauthenticated, "account.createSession", "invalid credentials")
	}
	acct := a.account
	g.active = &acct
	return &domain.Session{ID: "sess_" + acct.ID, UserID: acct.ID}, nil
}

func (g *stubGateway) GetAccount(_ context.Context) (*domain.Account, bool, error) {
	if g.getAccountErr != nil {
		return nil, false, g.getAccountErr
	}
	if g.active == nil {
		return nil, false, nil
	}
	acct := *g.active
	return &acct, true, nil
}

func (g *stubGateway) DeleteSession(_ context.Context, _ string) error {
	if g.active == nil {
		return domain.Errorf(domain.KindUnauthenticated, "account.deleteSession", "no session")
	}
	g.active = nil
	return nil
}

func (g *stubGateway) CreateDocument(_ context.Context, _, collectionID, documentID string, data any) (ports.Record, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	doc["$id"] = documentID
	g.documents[collectionID] = append(g.documents[collectionID], doc)
	return json.Marshal(doc)
}

func (g *stubGateway) ListDocuments(_ context.Context, _, collectionID string, queries []ports.Query) ([]ports.Record, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	g.lastQueries = queries
	return filterRecords(g.documents[collectionID], queries)
}

func (g *stubGateway) ListRows(_ context.Context, p ports.ListRowsParams) ([]ports.Record, error) {
	g.listRowsCalls++
	if g.listErr != nil {
		return nil, g.listErr
	}
	g.lastQueries = p.Queries
	return filterRecords(g.rows[p.TableID], p.Queries)
}

func (g *stubGateway) InitialsURL(name string) string {
	return "https://avatars.test/initials?name=" + url.QueryEscape(name)
}

func (g *stubGateway) FileViewURL(bucketID, fileID string) string {
	return "https://files.test/" + bucketID + "/" + fileID
}

// filterRecords mirrors the backend's query semantics: equality (containment
// on arrays, by id on nested documents) and case-insensitive substring search.
func filterRecords(docs []map[string]any, queries []ports.Query) ([]ports.Record, error) {
	out := []ports.Record{}
	for _, doc := range docs {
		if !matchesAll(doc, queries) {
			continue
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func matchesAll(doc map[string]any, queries []ports.Query) bool {
	for _, q := range queries {
		if len(q.Values) != 1 {
			return false
		}
		want, _ := q.Values[0].(string)
		switch q.Method {
		case ports.QueryEqual:
			if !fieldEquals(doc[q.Attribute], want) {
				return false
			}
		case ports.QuerySearch:
			s, _ := doc[q.Attribute].(string)
			if !strings.Contains(strings.ToLower(s), strings.ToLower(want)) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func fieldEquals(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return t == want
	case map[string]any:
		return t["$id"] == want
	case []any:
		for _, e := range t {
			if fieldEquals(e, want) {
				return true
			}
		}
	}
	return false
}

var errBackendDown = errors.New("dial tcp: connection refused")
