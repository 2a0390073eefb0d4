package models

import "time"

// Product holds all the data extracted for one product in one city.
type Product struct {
	ID           string    `json:"id" db:"article"`
	Name         string    `json:"name" db:"name"`
	Link         string    `json:"link" db:"link"`
	RegularPrice string    `json:"regular_price" db:"regular_price"`
	PromoPrice   string    `json:"promo_price" db:"promo_price"`
	BrandName    string    `json:"brand_name" db:"brand_name"`
	City         string    `json:"city" db:"city"`
	ScrapedAt    time.Time `json:"scraped_at" db:"scraped_at"`
}

// IsEmpty reports whether nothing was extracted, which is how out-of-stock pages end up.
func (p Product) IsEmpty() bool {
	return p.ID == "" && p.Name == "" && p.PromoPrice == ""
}

// ListingItem is one product card on a category page.
type ListingItem struct {
	Link    string
	SoldOut bool
}

// ProductFilters holds all possible query parameters for filtering products.
type ProductFilters struct {
	City     string
	Brand    string
	MinPrice float64
	MaxPrice float64
	// For Pagination
	Limit  int
	Offset int
}
