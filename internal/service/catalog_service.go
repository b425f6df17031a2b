package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidPrice         = errors.New("price out of range")
	ErrInvalidProductStatus = errors.New("invalid product status")
)

// ProductQuery are the listing filters accepted from the API. Category is
// free text and normalized through domain.ParseCategory.
type ProductQuery struct {
	Category   string
	Featured   bool
	Bestseller bool
	Search     string
}

// ProductInput is the writable part of a product
type ProductInput struct {
	Slug                string           `json:"slug" validate:"omitempty,min=2,max=255"`
	Name                string           `json:"name" validate:"required,min=2,max=255"`
	Category            string           `json:"category" validate:"required"`
	Brand               string           `json:"brand" validate:"max=100"`
	Price               decimal.Decimal  `json:"price"`
	OriginalPrice       *decimal.Decimal `json:"originalPrice"`
	ShortDescription    string           `json:"shortDescription"`
	FullDescription     string           `json:"fullDescription"`
	DetailedDescription string           `json:"detailedDescription"`
	Motor               string           `json:"motor" validate:"max=255"`
	BatteryWh           int              `json:"batteryWh" validate:"gte=0"`
	AutonomyKm          int              `json:"autonomyKm" validate:"gte=0"`
	MaxSpeedKmh         int              `json:"maxSpeedKmh" validate:"gte=0"`
	WeightKg            *decimal.Decimal `json:"weightKg"`
	WarrantyYears       int              `json:"warrantyYears" validate:"gte=0"`
	StockQuantity       int              `json:"stockQuantity" validate:"gte=0"`
	MainImage           string           `json:"mainImage" validate:"required,max=500"`
	GalleryImages       []string         `json:"galleryImages" validate:"omitempty,dive,required"`
	IsBestseller        bool             `json:"isBestseller"`
	IsFeatured          bool             `json:"isFeatured"`
	Status              string           `json:"status" validate:"omitempty,oneof=active draft out_of_stock"`
}

// CatalogService defines the catalog business logic
type CatalogService interface {
	ListProducts(ctx context.Context, query ProductQuery) ([]*domain.Product, error)
	GetProduct(ctx context.Context, ref string) (*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, ref string, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, ref string) error
}

type catalogService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *catalogService) ListProducts(ctx context.Context, query ProductQuery) ([]*domain.Product, error) {
	filter := repository.ProductFilter{
		Featured:   query.Featured,
		Bestseller: query.Bestseller,
		Search:     query.Search,
	}

	if raw := strings.TrimSpace(query.Category); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, raw)
		}
		filter.Category = category
	}

	return s.productRepo.List(ctx, filter)
}

// GetProduct resolves ref as a slug first, then as a numeric id
func (s *catalogService) GetProduct(ctx context.Context, ref string) (*domain.Product, error) {
	ref = strings.TrimSpace(ref)

	product, err := s.productRepo.FindBySlug(ctx, ref)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, repository.ErrProductNotFound) {
		return nil, err
	}

	id, convErr := strconv.ParseInt(ref, 10, 64)
	if convErr != nil {
		return nil, repository.ErrProductNotFound
	}
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	product := &domain.Product{}
	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("slug", product.Slug),
	)
	return product, nil
}

// UpdateProduct replaces every writable attribute of the product ref points to
func (s *catalogService) UpdateProduct(ctx context.Context, ref string, input ProductInput) (*domain.Product, error) {
	product, err := s.GetProduct(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product updated",
		zap.Int64("product_id", product.ID),
		zap.String("slug", product.Slug),
	)
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, ref string) error {
	product, err := s.GetProduct(ctx, ref)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, product.ID); err != nil {
		return err
	}

	s.logger.Info("Product deleted",
		zap.Int64("product_id", product.ID),
		zap.String("slug", product.Slug),
	)
	return nil
}

// applyProductInput copies input onto product, keeping id and createdAt
func applyProductInput(product *domain.Product, input ProductInput) error {
	category, err := domain.ParseCategory(input.Category)
	if err != nil {
		return fmt.Errorf("%w: %q", err, input.Category)
	}
	if input.Price.IsNegative() || input.Price.GreaterThan(domain.MaxAmount) {
		return ErrInvalidPrice
	}
	if input.OriginalPrice != nil && (input.OriginalPrice.IsNegative() || input.OriginalPrice.GreaterThan(domain.MaxAmount)) {
		return ErrInvalidPrice
	}

	status := domain.ProductStatus(input.Status)
	if status == "" {
		status = domain.ProductStatusActive
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidProductStatus, input.Status)
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = domain.Slugify(input.Name)
	}

	gallery := input.GalleryImages
	if gallery == nil {
		gallery = []string{}
	}

	product.Slug = slug
	product.Name = strings.TrimSpace(input.Name)
	product.Category = category
	product.Brand = input.Brand
	product.Price = input.Price
	product.OriginalPrice = input.OriginalPrice
	product.ShortDescription = input.ShortDescription
	product.FullDescription = input.FullDescription
	product.DetailedDescription = input.DetailedDescription
	product.Motor = input.Motor
	product.BatteryWh = input.BatteryWh
	product.AutonomyKm = input.AutonomyKm
	product.MaxSpeedKmh = input.MaxSpeedKmh
	product.WeightKg = input.WeightKg
	product.WarrantyYears = input.WarrantyYears
	product.StockQuantity = input.StockQuantity
	product.MainImage = input.MainImage
	product.GalleryImages = gallery
	product.IsBestseller = input.IsBestseller
	product.IsFeatured = input.IsFeatured
	product.Status = status
	product.ApplyDefaults()

	return nil
}
