package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type memoryRepo struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]Product
	err      error
}

func newMemoryRepo(seed ...*Product) *memoryRepo {
	r := &memoryRepo{products: map[int64]Product{}}
	for _, p := range seed {
		r.Create(context.Background(), p)
	}
	return r
}

func (r *memoryRepo) Create(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nextID++
	p.ID = r.nextID
	r.products[p.ID] = *p
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) List(_ context.Context, f ListFilter) ([]*Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, 0, r.err
	}
	var matched []*Product
	for _, p := range r.products {
		p := p
		if f.Matches(&p) {
			matched = append(matched, &p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	count := len(matched)
	if f.Offset > len(matched) {
		matched = nil
	} else {
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, count, nil
}

func (r *memoryRepo) Update(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.products[p.ID]; !ok {
		return ErrNotFound
	}
	r.products[p.ID] = *p
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products)
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
	err     error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]interface{}{}}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

func product(name, desc, price string, start, end *time.Time) *Product {
	return &Product{
		ProductName: name,
		Description: desc,
		Price:       decimal.RequireFromString(price),
		SaleStart:   start,
		SaleEnd:     end,
	}
}

// seedCatalog returns a repo holding one product of each sale state:
// 1 on sale, 2 sale ended, 3 no window, 4 future sale.
func seedCatalog() *memoryRepo {
	return newMemoryRepo(
		product("Mechanical Keyboard", "Tactile switches", "89.99", at(-24*time.Hour), at(24*time.Hour)),
		product("Wireless Mouse", "Ergonomic grip", "25.00", at(-72*time.Hour), at(-48*time.Hour)),
		product("USB-C Cable", "Braided, 2m", "9.50", nil, nil),
		product("Monitor Arm", "Holds one keyboard tray", "45.00", at(24*time.Hour), at(48*time.Hour)),
	)
}
