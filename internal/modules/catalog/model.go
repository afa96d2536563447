package catalog

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. A product is on sale while the current time
// lies inside [SaleStart, SaleEnd]; either bound may be unset.
type Product struct {
	ID          int64
	ProductName string
	Description string
	Price       decimal.Decimal
	SaleStart   *time.Time
	SaleEnd     *time.Time
}

// IsOnSale reports whether now falls inside the sale window, both ends inclusive.
func (p *Product) IsOnSale(now time.Time) bool {
	if p.SaleStart == nil || p.SaleEnd == nil {
		return false
	}
	return !now.Before(*p.SaleStart) && !now.After(*p.SaleEnd)
}

// SaleEnded reports whether the whole sale window lies strictly before now.
func (p *Product) SaleEnded(now time.Time) bool {
	if p.SaleStart == nil || p.SaleEnd == nil {
		return false
	}
	return p.SaleStart.Before(now) && p.SaleEnd.Before(now)
}

// CurrentPrice is the price a buyer pays right now. Sales do not discount yet.
func (p *Product) CurrentPrice() decimal.Decimal {
	return p.Price
}

// ProductView is the JSON representation of a Product.
type ProductView struct {
	ID           int64      `json:"id"`
	ProductName  string     `json:"product_name"`
	Description  string     `json:"description"`
	Price        string     `json:"price"`
	IsOnSale     bool       `json:"is_on_sale"`
	CurrentPrice float64    `json:"current_price"`
	SaleStart    *time.Time `json:"sale_start"`
	SaleEnd      *time.Time `json:"sale_end"`
}

func NewProductView(p *Product, now time.Time) ProductView {
	return ProductView{
		ID:           p.ID,
		ProductName:  p.ProductName,
		Description:  p.Description,
		Price:        p.Price.StringFixed(pricePlaces),
		IsOnSale:     p.IsOnSale(now),
		CurrentPrice: p.CurrentPrice().InexactFloat64(),
		SaleStart:    p.SaleStart,
		SaleEnd:      p.SaleEnd,
	}
}

// CacheEntry is the snapshot written to the cache after an update.
type CacheEntry struct {
	ProductName string `json:"product_name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

func NewCacheEntry(p *Product) CacheEntry {
	return CacheEntry{
		ProductName: p.ProductName,
		Description: p.Description,
		Price:       p.Price.StringFixed(pricePlaces),
	}
}

// CacheKey is the cache key holding the snapshot of product id.
func CacheKey(id int64) string {
	return fmt.Sprintf("product_data_%d", id)
}

// Stats is the per-day sales series returned by the stats endpoint.
type Stats struct {
	Stats map[string][]int `json:"stats"`
}
