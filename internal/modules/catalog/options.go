package catalog

import "fmt"

// searchableFields lists the product columns free-text search may target.
var searchableFields = map[string]bool{
	"product_name": true,
	"description":  true,
}

// ListConfig controls the list endpoint: which fields free-text search
// looks at and whether results are paginated.
type ListConfig struct {
	SearchFields []string
	Paginate     bool
	DefaultLimit int
	MaxLimit     int
}

// ListOption customises a ListConfig.
type ListOption func(*ListConfig)

// WithSearchFields replaces the searchable fields.
func WithSearchFields(fields ...string) ListOption {
	return func(c *ListConfig) {
		c.SearchFields = append([]string(nil), fields...)
	}
}

// WithoutPagination makes the list endpoint return every match as a bare array.
func WithoutPagination() ListOption {
	return func(c *ListConfig) { c.Paginate = false }
}

// WithLimits sets the page size used when the client sends none, and the
// largest page size a client may ask for.
func WithLimits(defaultLimit, maxLimit int) ListOption {
	return func(c *ListConfig) {
		c.DefaultLimit = defaultLimit
		c.MaxLimit = maxLimit
	}
}

// NewListConfig returns the default configuration (search on name and
// description, pages of 10, at most 100) with opts applied.
func NewListConfig(opts ...ListOption) (ListConfig, error) {
	cfg := ListConfig{
		SearchFields: []string{"product_name", "description"},
		Paginate:     true,
		DefaultLimit: 10,
		MaxLimit:     100,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, f := range cfg.SearchFields {
		if !searchableFields[f] {
			return ListConfig{}, fmt.Errorf("field %q is not searchable", f)
		}
	}
	if cfg.DefaultLimit <= 0 || cfg.MaxLimit < cfg.DefaultLimit {
		return ListConfig{}, fmt.Errorf("invalid page limits: default %d, max %d", cfg.DefaultLimit, cfg.MaxLimit)
	}
	return cfg, nil
}
