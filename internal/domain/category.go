package domain

import (
	"errors"
	"strings"
)

var (
	ErrUnknownCategory = errors.New("unknown product category")
)

// Category is one of the fixed catalog sections
type Category string

const (
	CategoryEMTB        Category = "E-MTB"
	CategoryECityUrban  Category = "E-City & Urban"
	CategoryTrekking    Category = "Trekking & Gravel"
	CategoryAccessories Category = "Accessori & Sicurezza"
)

// Categories lists every catalog section in display order
var Categories = []Category{
	CategoryEMTB,
	CategoryECityUrban,
	CategoryTrekking,
	CategoryAccessories,
}

// categoryAliases maps lower-cased free-text names used in links and
// imported data to their canonical category
var categoryAliases = map[string]Category{
	"e-mtb":                 CategoryEMTB,
	"emtb":                  CategoryEMTB,
	"mtb":                   CategoryEMTB,
	"e-city":                CategoryECityUrban,
	"e-city & urban":        CategoryECityUrban,
	"e-city-urban":          CategoryECityUrban,
	"city":                  CategoryECityUrban,
	"urban":                 CategoryECityUrban,
	"trekking":              CategoryTrekking,
	"trekking & gravel":     CategoryTrekking,
	"trekking-gravel":       CategoryTrekking,
	"gravel":                CategoryTrekking,
	"accessori":             CategoryAccessories,
	"accessori & sicurezza": CategoryAccessories,
	"accessori-sicurezza":   CategoryAccessories,
	"accessories":           CategoryAccessories,
}

// ParseCategory normalizes a raw category name. Unknown names return
// ErrUnknownCategory instead of falling back to a default section.
func ParseCategory(raw string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if c, ok := categoryAliases[key]; ok {
		return c, nil
	}
	return "", ErrUnknownCategory
}

// Valid reports whether c is one of the canonical categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
