package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/georgemunganga/catalog-api/internal/pkg/clock"
)

// Service defines catalog business logic.
type Service interface {
	ListProducts(ctx context.Context, q ListQuery) (*Page, error)
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	// UpdateProduct replaces the product's fields. With partial set only the
	// supplied fields are validated and changed.
	UpdateProduct(ctx context.Context, id int64, in ProductInput, partial bool) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ProductStats(ctx context.Context, id int64) (*Stats, error)
}

// ListQuery carries the raw list parameters. Limit of zero means no paging.
type ListQuery struct {
	OnSale string
	Search string
	ID     string
	Limit  int
	Offset int
}

// Page is one slice of a product listing.
type Page struct {
	Count    int
	Products []*Product
}

type service struct {
	repo  Repository
	cache Cache
	clock clock.Clock
	cfg   ListConfig
}

// NewService creates the catalog service over the given ports.
func NewService(repo Repository, cache Cache, clk clock.Clock, cfg ListConfig) Service {
	return &service{repo: repo, cache: cache, clock: clk, cfg: cfg}
}

func (s *service) ListProducts(ctx context.Context, q ListQuery) (*Page, error) {
	f := ListFilter{
		Sale:         ParseSaleFilter(q.OnSale),
		Now:          s.clock.Now(),
		SearchTerms:  SplitSearchTerms(q.Search),
		SearchFields: s.cfg.SearchFields,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
	if id := strings.TrimSpace(q.ID); id != "" {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fieldError("id", msgInvalidInteger)
		}
		f.ID = &n
	}

	products, count, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Page{Count: count, Products: products}, nil
}

func (s *service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := checkCreatePrice(in); err != nil {
		return nil, err
	}
	changes, err := in.validate(false)
	if err != nil {
		return nil, err
	}
	p := &Product{}
	changes.applyTo(p)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "product created", "product_id", p.ID)
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateProduct(ctx context.Context, id int64, in ProductInput, partial bool) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	changes, err := in.validate(partial)
	if err != nil {
		return nil, err
	}
	changes.applyTo(p)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, CacheKey(p.ID), NewCacheEntry(p)); err != nil {
		return nil, fmt.Errorf("cache product %d: %w", p.ID, err)
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, CacheKey(id)); err != nil {
		return fmt.Errorf("evict product %d: %w", id, err)
	}
	slog.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

// ProductStats returns a fixed series; there is no sales data to derive it from.
func (s *service) ProductStats(ctx context.Context, id int64) (*Stats, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return &Stats{Stats: map[string][]int{
		"2021-01-01": {5, 10, 15},
		"2021-01-02": {20, 1, 1},
	}}, nil
}
