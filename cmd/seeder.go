package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/category"
	"github.com/frahmantamala/school-store/internal/product"
	"github.com/frahmantamala/school-store/internal/role"
	"github.com/frahmantamala/school-store/internal/user"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed roles and the bootstrap administrator",
	Long: `Create every role with its default claims, make sure Admin holds all
Admin claims, and create the bootstrap administrator account.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		ctx := context.Background()
		app, err := newApplication(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := seedRoles(ctx, app); err != nil {
			return err
		}
		if err := seedAdmin(ctx, app, cfg.Bootstrap); err != nil {
			return err
		}
		if withSamples {
			return seedSamples(ctx, app)
		}
		return nil
	},
}

func seedRoles(ctx context.Context, app *application) error {
	admin, err := app.roles.BootstrapAdmin(ctx)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin role: %w", err)
	}
	app.logger.Info("seeded role", "role", admin.Name, "claims", admin.Claims)

	for _, name := range auth.Roles() {
		if name == auth.RoleAdmin {
			continue
		}
		r, err := app.roles.AddRole(ctx, role.AddRoleDTO{Name: name})
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}
		app.logger.Info("seeded role", "role", r.Name, "claims", r.Claims)
	}
	return nil
}

func seedAdmin(ctx context.Context, app *application, cfg internal.BootstrapConfig) error {
	if cfg.AdminPassword == "" {
		app.logger.Warn("bootstrap admin password not set, skipping admin account")
		return nil
	}

	u, err := app.users.EnsureUser(ctx, user.RegisterDTO{
		Username:  cfg.AdminUsername,
		Email:     cfg.AdminEmail,
		Password:  cfg.AdminPassword,
		FirstName: "Store",
		LastName:  "Administrator",
		Role:      auth.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	app.logger.Info("seeded admin user", "user_id", u.ID, "username", u.Username)
	return nil
}

var sampleCatalog = map[string][]product.CreateProductDTO{
	"Stationery": {
		{Name: "Pencil HB", Price: decimal.RequireFromString("0.50"), Stock: 200},
		{Name: "Notebook A5", Price: decimal.RequireFromString("2.00"), Stock: 100},
	},
	"Art Supplies": {
		{Name: "Watercolor Set", Price: decimal.RequireFromString("7.25"), Stock: 30},
	},
	"Lab Equipment": {
		{Name: "Safety Goggles", Price: decimal.RequireFromString("4.10"), Stock: 40},
	},
}

func seedSamples(ctx context.Context, app *application) error {
	for name, products := range sampleCatalog {
		_, err := app.categories.AddCategory(ctx, category.CreateCategoryDTO{Name: name})
		if err != nil {
			if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeDuplicateCategory {
				app.logger.Info("sample category already exists", "category", name)
				continue
			}
			return fmt.Errorf("failed to seed category %s: %w", name, err)
		}

		for _, dto := range products {
			dto.Category = name
			if _, err := app.products.AddProduct(ctx, dto); err != nil {
				return fmt.Errorf("failed to seed product %s: %w", dto.Name, err)
			}
		}
		app.logger.Info("seeded sample category", "category", name, "products", len(products))
	}
	return nil
}
