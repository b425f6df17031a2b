package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cicli-volante/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSlugAlreadyExists = errors.New("product with this slug already exists")
	ErrCatalogReadOnly   = errors.New("catalog is read-only")
)

// ProductFilter narrows a catalog listing. Zero values match everything.
type ProductFilter struct {
	Category   domain.Category
	Featured   bool
	Bestseller bool
	Search     string
}

// Matches reports whether p passes the filter
func (f ProductFilter) Matches(p *domain.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Featured && !p.IsFeatured {
		return false
	}
	if f.Bestseller && !p.IsBestseller {
		return false
	}
	if q := strings.TrimSpace(f.Search); q != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
		return false
	}
	return true
}

// ProductRepository defines the interface for catalog access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	Count(ctx context.Context) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a PostgreSQL backed ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, slug, name, category, brand, price, original_price, short_description,
	full_description, detailed_description, motor, battery_wh, autonomy_km, max_speed_kmh,
	weight_kg, warranty_years, stock_quantity, main_image, gallery_images, is_bestseller,
	is_featured, status, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product       domain.Product
		brand         sql.NullString
		originalPrice decimal.NullDecimal
		shortDesc     sql.NullString
		fullDesc      sql.NullString
		detailedDesc  sql.NullString
		motor         sql.NullString
		weight        decimal.NullDecimal
		gallery       []byte
	)

	err := row.Scan(
		&product.ID,
		&product.Slug,
		&product.Name,
		&product.Category,
		&brand,
		&product.Price,
		&originalPrice,
		&shortDesc,
		&fullDesc,
		&detailedDesc,
		&motor,
		&product.BatteryWh,
		&product.AutonomyKm,
		&product.MaxSpeedKmh,
		&weight,
		&product.WarrantyYears,
		&product.StockQuantity,
		&product.MainImage,
		&gallery,
		&product.IsBestseller,
		&product.IsFeatured,
		&product.Status,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Brand = brand.String
	product.ShortDescription = shortDesc.String
	product.FullDescription = fullDesc.String
	product.DetailedDescription = detailedDesc.String
	product.Motor = motor.String
	if originalPrice.Valid {
		product.OriginalPrice = &originalPrice.Decimal
	}
	if weight.Valid {
		product.WeightKg = &weight.Decimal
	}

	product.GalleryImages = []string{}
	if len(gallery) > 0 {
		if err := json.Unmarshal(gallery, &product.GalleryImages); err != nil {
			return nil, fmt.Errorf("failed to decode gallery images: %w", err)
		}
	}

	return &product, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// Create inserts a new product and assigns its id and creation time
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	product.ApplyDefaults()

	gallery, err := json.Marshal(product.GalleryImages)
	if err != nil {
		return fmt.Errorf("failed to encode gallery images: %w", err)
	}

	query := `
		INSERT INTO products (slug, name, category, brand, price, original_price, short_description,
			full_description, detailed_description, motor, battery_wh, autonomy_km, max_speed_kmh,
			weight_kg, warranty_years, stock_quantity, main_image, gallery_images, is_bestseller,
			is_featured, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id, created_at
	`

	err = r.db.QueryRowContext(
		ctx,
		query,
		product.Slug,
		product.Name,
		product.Category,
		product.Brand,
		product.Price,
		nullDecimal(product.OriginalPrice),
		product.ShortDescription,
		product.FullDescription,
		product.DetailedDescription,
		product.Motor,
		product.BatteryWh,
		product.AutonomyKm,
		product.MaxSpeedKmh,
		nullDecimal(product.WeightKg),
		product.WarrantyYears,
		product.StockQuantity,
		product.MainImage,
		string(gallery),
		product.IsBestseller,
		product.IsFeatured,
		product.Status,
	).Scan(&product.ID, &product.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "products_slug_key") {
			return ErrSlugAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites every mutable attribute of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	product.ApplyDefaults()

	gallery, err := json.Marshal(product.GalleryImages)
	if err != nil {
		return fmt.Errorf("failed to encode gallery images: %w", err)
	}

	query := `
		UPDATE products
		SET slug = $2, name = $3, category = $4, brand = $5, price = $6, original_price = $7,
		    short_description = $8, full_description = $9, detailed_description = $10, motor = $11,
		    battery_wh = $12, autonomy_km = $13, max_speed_kmh = $14, weight_kg = $15,
		    warranty_years = $16, stock_quantity = $17, main_image = $18, gallery_images = $19,
		    is_bestseller = $20, is_featured = $21, status = $22
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Slug,
		product.Name,
		product.Category,
		product.Brand,
		product.Price,
		nullDecimal(product.OriginalPrice),
		product.ShortDescription,
		product.FullDescription,
		product.DetailedDescription,
		product.Motor,
		product.BatteryWh,
		product.AutonomyKm,
		product.MaxSpeedKmh,
		nullDecimal(product.WeightKg),
		product.WarrantyYears,
		product.StockQuantity,
		product.MainImage,
		string(gallery),
		product.IsBestseller,
		product.IsFeatured,
		product.Status,
	)
	if err != nil {
		if isUniqueViolation(err, "products_slug_key") {
			return ErrSlugAlreadyExists
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the catalog
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by its numeric id
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindBySlug retrieves a product by its unique slug
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by slug: %w", err)
	}

	return product, nil
}

// List retrieves the products matching filter ordered by id
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Featured {
		conditions = append(conditions, "is_featured = TRUE")
	}
	if filter.Bestseller {
		conditions = append(conditions, "is_bestseller = TRUE")
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		args = append(args, "%"+q+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY id ASC`, productColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Count returns the number of products in the catalog
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}
