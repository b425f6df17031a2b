package seed

import (
	"context"
	"fmt"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/repository"
	"cicli-volante/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminSeeder creates the admin account when missing
type AdminSeeder interface {
	EnsureAdmin(ctx context.Context, username, password, role string) (*domain.AdminUser, bool, error)
}

var _ AdminSeeder = service.AdminService(nil)

// Admin makes sure username exists. An empty password is replaced by a
// random one that is logged once, so no well-known default ever ships.
func Admin(ctx context.Context, admins AdminSeeder, username, password string, logger *zap.Logger) error {
	generated := password == ""
	if generated {
		password = uuid.NewString()
	}

	admin, created, err := admins.EnsureAdmin(ctx, username, password, domain.AdminRoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	if !created {
		logger.Debug("Admin account already present", zap.String("username", admin.Username))
		return nil
	}

	if generated {
		logger.Warn("Admin account created with a generated password; set ADMIN_PASSWORD to choose one",
			zap.String("username", admin.Username),
			zap.String("password", password),
		)
		return nil
	}

	logger.Info("Admin account created", zap.String("username", admin.Username))
	return nil
}

// Products inserts the demo catalog when the catalog is empty and reports
// how many products were written
func Products(ctx context.Context, products repository.ProductRepository, logger *zap.Logger) (int, error) {
	count, err := products.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		logger.Debug("Catalog already seeded", zap.Int("products", count))
		return 0, nil
	}

	seeded := 0
	for _, p := range DemoCatalog() {
		if err := products.Create(ctx, p); err != nil {
			return seeded, fmt.Errorf("failed to seed product %q: %w", p.Slug, err)
		}
		seeded++
	}

	logger.Info("Demo catalog seeded", zap.Int("products", seeded))
	return seeded, nil
}
