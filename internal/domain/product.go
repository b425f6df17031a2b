package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus represents the lifecycle status of a catalog entry
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusDraft      ProductStatus = "draft"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

// Valid reports whether s is a known product status
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusDraft, ProductStatusOutOfStock:
		return true
	}
	return false
}

// Default technical values applied when a product is created without them
const (
	DefaultMaxSpeedKmh   = 25
	DefaultWarrantyYears = 2
)

// Product represents a bike or accessory in the catalog
type Product struct {
	ID                  int64            `json:"id" yaml:"id" db:"id"`
	Slug                string           `json:"slug" yaml:"slug" db:"slug"`
	Name                string           `json:"name" yaml:"name" db:"name"`
	Category            Category         `json:"category" yaml:"category" db:"category"`
	Brand               string           `json:"brand,omitempty" yaml:"brand" db:"brand"`
	Price               decimal.Decimal  `json:"price" yaml:"price" db:"price"`
	OriginalPrice       *decimal.Decimal `json:"originalPrice,omitempty" yaml:"original_price" db:"original_price"`
	ShortDescription    string           `json:"shortDescription,omitempty" yaml:"short_description" db:"short_description"`
	FullDescription     string           `json:"fullDescription,omitempty" yaml:"full_description" db:"full_description"`
	DetailedDescription string           `json:"detailedDescription,omitempty" yaml:"detailed_description" db:"detailed_description"`
	Motor               string           `json:"motor,omitempty" yaml:"motor" db:"motor"`
	BatteryWh           int              `json:"batteryWh" yaml:"battery_wh" db:"battery_wh"`
	AutonomyKm          int              `json:"autonomyKm" yaml:"autonomy_km" db:"autonomy_km"`
	MaxSpeedKmh         int              `json:"maxSpeedKmh" yaml:"max_speed_kmh" db:"max_speed_kmh"`
	WeightKg            *decimal.Decimal `json:"weightKg,omitempty" yaml:"weight_kg" db:"weight_kg"`
	WarrantyYears       int              `json:"warrantyYears" yaml:"warranty_years" db:"warranty_years"`
	StockQuantity       int              `json:"stockQuantity" yaml:"stock_quantity" db:"stock_quantity"`
	MainImage           string           `json:"mainImage" yaml:"main_image" db:"main_image"`
	GalleryImages       []string         `json:"galleryImages" yaml:"gallery_images" db:"gallery_images"`
	IsBestseller        bool             `json:"isBestseller" yaml:"is_bestseller" db:"is_bestseller"`
	IsFeatured          bool             `json:"isFeatured" yaml:"is_featured" db:"is_featured"`
	Status              ProductStatus    `json:"status" yaml:"status" db:"status"`
	CreatedAt           time.Time        `json:"createdAt" yaml:"-" db:"created_at"`
}

// ApplyDefaults fills the zero-valued optional attributes the way the
// products table defaults them
func (p *Product) ApplyDefaults() {
	if p.MaxSpeedKmh == 0 {
		p.MaxSpeedKmh = DefaultMaxSpeedKmh
	}
	if p.WarrantyYears == 0 {
		p.WarrantyYears = DefaultWarrantyYears
	}
	if p.Status == "" {
		p.Status = ProductStatusActive
	}
	if p.GalleryImages == nil {
		p.GalleryImages = []string{}
	}
}
