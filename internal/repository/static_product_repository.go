package repository

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"cicli-volante/internal/domain"

	"gopkg.in/yaml.v3"
)

// staticCatalogFile is the on-disk layout of a static catalog
type staticCatalogFile struct {
	Products []*domain.Product `yaml:"products"`
}

type staticProductRepository struct {
	byID   map[int64]*domain.Product
	bySlug map[string]*domain.Product
	ids    []int64
}

// NewStaticProductRepository serves a fixed, read-only product list.
// Products without an id are numbered after the highest explicit id.
func NewStaticProductRepository(products []*domain.Product) (ProductRepository, error) {
	r := &staticProductRepository{
		byID:   make(map[int64]*domain.Product, len(products)),
		bySlug: make(map[string]*domain.Product, len(products)),
	}

	var maxID int64
	for _, p := range products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	now := time.Now()
	for _, src := range products {
		p := *src
		if p.ID == 0 {
			maxID++
			p.ID = maxID
		}
		if _, ok := r.byID[p.ID]; ok {
			return nil, fmt.Errorf("duplicate product id %d in static catalog", p.ID)
		}
		if _, ok := r.bySlug[p.Slug]; ok {
			return nil, fmt.Errorf("duplicate product slug %q in static catalog", p.Slug)
		}
		if !p.Category.Valid() {
			category, err := domain.ParseCategory(string(p.Category))
			if err != nil {
				return nil, fmt.Errorf("product %q: %w", p.Slug, err)
			}
			p.Category = category
		}
		p.ApplyDefaults()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}

		r.byID[p.ID] = &p
		r.bySlug[p.Slug] = &p
		r.ids = append(r.ids, p.ID)
	}

	sort.Slice(r.ids, func(i, j int) bool { return r.ids[i] < r.ids[j] })
	return r, nil
}

// LoadStaticCatalog reads a YAML catalog file
func LoadStaticCatalog(path string) (ProductRepository, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file staticCatalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return NewStaticProductRepository(file.Products)
}

func (r *staticProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return ErrCatalogReadOnly
}

func (r *staticProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return ErrCatalogReadOnly
}

func (r *staticProductRepository) Delete(ctx context.Context, id int64) error {
	return ErrCatalogReadOnly
}

func (r *staticProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *staticProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, ok := r.bySlug[slug]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *staticProductRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, id := range r.ids {
		p := r.byID[id]
		if filter.Matches(p) {
			cp := *p
			products = append(products, &cp)
		}
	}
	return products, nil
}

func (r *staticProductRepository) Count(ctx context.Context) (int, error) {
	return len(r.ids), nil
}
