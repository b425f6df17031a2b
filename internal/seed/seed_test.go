package seed

import (
	"context"
	"errors"
	"testing"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDemoCatalog(t *testing.T) {
	products := DemoCatalog()
	require.Len(t, products, DemoCatalogSize)

	perCategory := map[domain.Category]int{}
	slugs := map[string]bool{}
	featured := 0
	for _, p := range products {
		perCategory[p.Category]++
		assert.False(t, slugs[p.Slug], "duplicate slug %s", p.Slug)
		slugs[p.Slug] = true
		assert.True(t, p.Category.Valid())
		assert.Equal(t, domain.ProductStatusActive, p.Status)
		assert.Equal(t, domain.DefaultWarrantyYears, p.WarrantyYears)
		if p.IsFeatured {
			featured++
		}
	}

	assert.Equal(t, 15, perCategory[domain.CategoryEMTB])
	assert.Equal(t, 20, perCategory[domain.CategoryECityUrban])
	assert.Equal(t, 15, perCategory[domain.CategoryTrekking])
	assert.Equal(t, 25, perCategory[domain.CategoryAccessories])
	assert.Equal(t, 5, featured)

	first := products[0]
	assert.Equal(t, "Specialized Turbo Levo Pro Modello 1", first.Name)
	assert.Equal(t, "specialized-turbo-levo-pro-modello-1-1", first.Slug)
	assert.Equal(t, "Specialized", first.Brand)
	assert.True(t, first.Price.Equal(decimal.NewFromInt(2570)))

	last := products[len(products)-1]
	assert.Equal(t, "Accessorio 75", last.Name)
	assert.True(t, last.Price.Equal(decimal.NewFromInt(120)))
	assert.Zero(t, last.BatteryWh)
	assert.True(t, last.IsBestseller == (75%8 == 0))
}

func TestDemoCatalog_LoadsIntoStaticRepository(t *testing.T) {
	repo, err := repository.NewStaticProductRepository(DemoCatalog())
	require.NoError(t, err)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DemoCatalogSize, count)
}

// memoryProducts records the products it is asked to create
type memoryProducts struct {
	repository.ProductRepository
	existing int
	created  []*domain.Product
	failAt   int
}

func (m *memoryProducts) Count(ctx context.Context) (int, error) {
	return m.existing + len(m.created), nil
}

func (m *memoryProducts) Create(ctx context.Context, p *domain.Product) error {
	if m.failAt > 0 && len(m.created)+1 == m.failAt {
		return repository.ErrSlugAlreadyExists
	}
	m.created = append(m.created, p)
	return nil
}

func TestProducts(t *testing.T) {
	ctx := context.Background()

	empty := &memoryProducts{}
	n, err := Products(ctx, empty, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DemoCatalogSize, n)
	assert.Len(t, empty.created, DemoCatalogSize)

	// A second start leaves the catalog alone
	n, err = Products(ctx, empty, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, n)

	failing := &memoryProducts{failAt: 3}
	n, err = Products(ctx, failing, zap.NewNop())
	assert.ErrorIs(t, err, repository.ErrSlugAlreadyExists)
	assert.Equal(t, 2, n)
}

type fakeAdmins struct {
	username string
	password string
	role     string
	exists   bool
	err      error
}

func (f *fakeAdmins) EnsureAdmin(ctx context.Context, username, password, role string) (*domain.AdminUser, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	f.username, f.password, f.role = username, password, role
	return &domain.AdminUser{ID: 1, Username: username, Role: role}, !f.exists, nil
}

func TestAdmin(t *testing.T) {
	ctx := context.Background()

	admins := &fakeAdmins{}
	require.NoError(t, Admin(ctx, admins, "admin", "s3cret-pass", zap.NewNop()))
	assert.Equal(t, "admin", admins.username)
	assert.Equal(t, "s3cret-pass", admins.password)
	assert.Equal(t, domain.AdminRoleAdmin, admins.role)

	generated := &fakeAdmins{}
	require.NoError(t, Admin(ctx, generated, "admin", "", zap.NewNop()))
	assert.Len(t, generated.password, 36)

	broken := &fakeAdmins{err: errors.New("db down")}
	assert.Error(t, Admin(ctx, broken, "admin", "x", zap.NewNop()))
}
