package catalog

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// Repository defines the interface for product storage.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	// List returns one page of matching products ordered by id, plus the
	// number of matches across all pages.
	List(ctx context.Context, f ListFilter) ([]*Product, int, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}

// Cache stores per-product snapshots for consumers outside this service.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}

// SaleFilter selects products by where now falls relative to their sale window.
type SaleFilter int

const (
	SaleAny SaleFilter = iota
	// SaleActive keeps products with sale_start <= now <= sale_end.
	SaleActive
	// SaleEnded keeps products whose sale_start and sale_end are both before now.
	// Products without a window, or with one in the future, match neither
	// SaleActive nor SaleEnded.
	SaleEnded
)

// ParseSaleFilter maps the on_sale query value. Anything other than
// "true" or "false" (any case) means no filter.
func ParseSaleFilter(v string) SaleFilter {
	switch strings.ToLower(v) {
	case "true":
		return SaleActive
	case "false":
		return SaleEnded
	default:
		return SaleAny
	}
}

// ListFilter narrows a product listing.
type ListFilter struct {
	ID           *int64
	Sale         SaleFilter
	Now          time.Time
	SearchTerms  []string
	SearchFields []string
	// Limit of zero returns every match.
	Limit  int
	Offset int
}

// Matches reports whether p satisfies every condition of f except paging.
func (f ListFilter) Matches(p *Product) bool {
	if f.ID != nil && p.ID != *f.ID {
		return false
	}
	switch f.Sale {
	case SaleActive:
		if !p.IsOnSale(f.Now) {
			return false
		}
	case SaleEnded:
		if !p.SaleEnded(f.Now) {
			return false
		}
	}
	for _, term := range f.SearchTerms {
		term = strings.ToLower(term)
		found := false
		for _, field := range f.SearchFields {
			if strings.Contains(strings.ToLower(searchValue(p, field)), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func searchValue(p *Product, field string) string {
	switch field {
	case "product_name":
		return p.ProductName
	case "description":
		return p.Description
	}
	return ""
}

// SplitSearchTerms splits a search query on whitespace and commas.
func SplitSearchTerms(q string) []string {
	return strings.FieldsFunc(q, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}
