package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jsmfood/food-ordering/internal/core/domain"
	"github.com/jsmfood/food-ordering/internal/core/ports"
	"github.com/jsmfood/food-ordering/internal/pkg/metrics"
)

const (
	listingMenu       = "menu"
	listingCategories = "categories"
	categoriesKey     = "catalog:categories"

	catalogLoadTimeout = 15 * time.Second
)

// MenuService lists menu items and categories, read-through a catalog cache
// when one is configured. Concurrent misses for the same listing share one
// backend call.
type MenuService struct {
	tables   ports.TableGateway
	storage  ports.StorageGateway
	cols     Collections
	cache    ports.CatalogCache // nil disables caching
	cacheTTL time.Duration
	flight   singleflight.Group
	logger   zerolog.Logger
}

func NewMenuService(gw ports.Gateway, cols Collections, cache ports.CatalogCache, cacheTTL time.Duration, logger zerolog.Logger) *MenuService {
	return &MenuService{
		tables:   gw.Tables,
		storage:  gw.Storage,
		cols:     cols,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

type menuRow struct {
	ID          string       `json:"$id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	ImageURL    string       `json:"image_url"`
	Price       float64      `json:"price"`
	Rating      float64      `json:"rating"`
	Calories    int          `json:"calories"`
	Protein     int          `json:"protein"`
	Type        string       `json:"type"`
	Categories  categoryRefs `json:"categories"`
}

type categoryRow struct {
	ID          string `json:"$id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// categoryRefs decodes a relationship attribute that the backend returns
// either as ids or as nested documents, single or many.
type categoryRefs []string

func (c *categoryRefs) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = nil
		return nil
	}
	if b[0] != '[' {
		id, err := refID(b)
		if err != nil {
			return err
		}
		*c = categoryRefs{id}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	ids := make(categoryRefs, 0, len(raw))
	for _, r := range raw {
		id, err := refID(r)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	*c = ids
	return nil
}

func refID(b json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		return id, nil
	}
	var doc struct {
		ID string `json:"$id"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return "", fmt.Errorf("category reference: %w", err)
	}
	return doc.ID, nil
}

// GetMenu lists menu items. A category narrows by equality on the categories
// relationship, search text by full-text search on name; both apply together.
func (s *MenuService) GetMenu(ctx context.Context, q domain.MenuQuery) ([]domain.MenuItem, error) {
	key := menuKey(q)
	var items []domain.MenuItem
	if s.cachedInto(ctx, listingMenu, key, &items) {
		return items, nil
	}

	return shared(ctx, &s.flight, "getMenu", key, func(ctx context.Context) ([]domain.MenuItem, error) {
		return s.loadMenu(ctx, q, key)
	})
}

func (s *MenuService) loadMenu(ctx context.Context, q domain.MenuQuery, key string) ([]domain.MenuItem, error) {
	const op = "getMenu"

	recs, err := s.tables.ListRows(ctx, ports.ListRowsParams{
		DatabaseID: s.cols.DatabaseID,
		TableID:    s.cols.MenuCollectionID,
		Queries:    menuQueries(q),
	})
	if err != nil {
		return nil, domain.Wrap(domain.KindTransport, op, err)
	}

	items := make([]domain.MenuItem, 0, len(recs))
	for _, rec := range recs {
		var row menuRow
		if err := json.Unmarshal(rec, &row); err != nil {
			return nil, domain.Wrap(domain.KindTransport, op, err)
		}
		items = append(items, domain.MenuItem{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			ImageURL:    row.ImageURL,
			Price:       row.Price,
			Rating:      row.Rating,
			Calories:    row.Calories,
			Protein:     row.Protein,
			Type:        row.Type,
			Categories:  []string(row.Categories),
		})
	}

	s.store(ctx, listingMenu, key, items)
	return items, nil
}

// GetCategories lists every category. An empty collection yields an empty slice.
func (s *MenuService) GetCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if s.cachedInto(ctx, listingCategories, categoriesKey, &categories) {
		return categories, nil
	}

	return shared(ctx, &s.flight, "getCategories", categoriesKey, s.loadCategories)
}

func (s *MenuService) loadCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "getCategories"

	recs, err := s.tables.ListRows(ctx, ports.ListRowsParams{
		DatabaseID: s.cols.DatabaseID,
		TableID:    s.cols.CategoriesCollectionID,
	})
	if err != nil {
		return nil, domain.Wrap(domain.KindTransport, op, err)
	}

	categories := make([]domain.Category, 0, len(recs))
	for _, rec := range recs {
		var row categoryRow
		if err := json.Unmarshal(rec, &row); err != nil {
			return nil, domain.Wrap(domain.KindTransport, op, err)
		}
		categories = append(categories, domain.Category{ID: row.ID, Name: row.Name, Description: row.Description})
	}

	s.store(ctx, listingCategories, categoriesKey, categories)
	return categories, nil
}

// FileURL returns the view URL of a file in the configured bucket.
func (s *MenuService) FileURL(fileID string) string {
	return s.storage.FileViewURL(s.cols.BucketID, fileID)
}

// shared runs load once per key for all concurrent callers. The load is
// detached from any one caller's cancellation and bounded by its own timeout;
// each caller still stops waiting when its ctx ends and gets its own copy.
func shared[T any](ctx context.Context, g *singleflight.Group, op, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	ch := g.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogLoadTimeout)
		defer cancel()
		return load(lctx)
	})

	select {
	case <-ctx.Done():
		return nil, domain.Wrap(domain.KindTransport, op, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]T)), nil
	}
}

func menuQueries(q domain.MenuQuery) []ports.Query {
	var queries []ports.Query
	if q.Category != "" {
		queries = append(queries, ports.Equal("categories", q.Category))
	}
	if q.SearchText != "" {
		queries = append(queries, ports.Search("name", q.SearchText))
	}
	return queries
}

func menuKey(q domain.MenuQuery) string {
	return fmt.Sprintf("catalog:menu:%s:%s", url.QueryEscape(q.Category), url.QueryEscape(q.SearchText))
}

// cachedInto decodes a cached listing into out. Cache failures are logged and
// treated as misses.
func (s *MenuService) cachedInto(ctx context.Context, listing, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CatalogCacheTotal.WithLabelValues(listing, "error").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		return false
	}
	if !ok {
		metrics.CatalogCacheTotal.WithLabelValues(listing, "miss").Inc()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		metrics.CatalogCacheTotal.WithLabelValues(listing, "error").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache entry undecodable")
		return false
	}
	metrics.CatalogCacheTotal.WithLabelValues(listing, "hit").Inc()
	return true
}

func (s *MenuService) store(ctx context.Context, listing, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("listing", listing).Msg("catalog cache write failed")
	}
}
