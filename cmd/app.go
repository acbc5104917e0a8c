package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/category"
	categoryPostgres "github.com/frahmantamala/school-store/internal/category/postgres"
	"github.com/frahmantamala/school-store/internal/core/database"
	"github.com/frahmantamala/school-store/internal/core/events"
	"github.com/frahmantamala/school-store/internal/order"
	orderPostgres "github.com/frahmantamala/school-store/internal/order/postgres"
	"github.com/frahmantamala/school-store/internal/product"
	productPostgres "github.com/frahmantamala/school-store/internal/product/postgres"
	"github.com/frahmantamala/school-store/internal/role"
	rolePostgres "github.com/frahmantamala/school-store/internal/role/postgres"
	"github.com/frahmantamala/school-store/internal/thumbnail"
	"github.com/frahmantamala/school-store/internal/user"
	userPostgres "github.com/frahmantamala/school-store/internal/user/postgres"
	"github.com/frahmantamala/school-store/pkg/cache"
	"github.com/frahmantamala/school-store/pkg/logger"
)

// application holds the wired services shared by the server and seed commands.
type application struct {
	cfg    *internal.Config
	db     *database.Handles
	cache  *cache.Cache
	bus    *events.EventBus
	logger *slog.Logger

	policies *auth.PolicyEngine
	issuer   *auth.TokenIssuer

	roles      *role.Service
	users      *user.Service
	auth       *auth.Service
	categories *category.Service
	products   *product.Service
	orders     *order.Service
}

func newApplication(ctx context.Context, cfg *internal.Config) (*application, error) {
	lg := logger.LoggerWrapper()

	policies, err := auth.NewPolicyEngine(auth.DefaultPolicies())
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.GetTokenDuration(), internal.SystemClock{})
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &application{
		cfg:      cfg,
		db:       db,
		bus:      events.NewEventBus(lg),
		logger:   lg,
		policies: policies,
		issuer:   issuer,
	}
	events.RegisterObservers(app.bus, lg)

	var categoryCache category.Cache
	if cfg.Cache.Enabled() {
		c, err := cache.Connect(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
		if err != nil {
			// the catalog still works uncached
			lg.Warn("redis unavailable, continuing without cache", "error", err, "addr", cfg.Cache.RedisAddr)
		} else {
			app.cache = c
			categoryCache = c
		}
	}

	thumbnails, err := thumbnail.New(ctx, cfg.Storage)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize thumbnail storage: %w", err)
	}

	app.roles = role.NewService(rolePostgres.NewRoleRepository(db.Gorm), app.bus, lg)
	app.users = user.NewService(userPostgres.NewUserRepository(db.Gorm), app.roles, cfg.Security.BCryptCost, lg)
	app.auth = auth.NewService(app.users, auth.NewClaimResolver(app.users, app.roles), issuer, lg)
	app.categories = category.NewService(categoryPostgres.NewCategoryRepository(db.Gorm), categoryCache, thumbnails, lg)
	app.products = product.NewService(productPostgres.NewProductRepository(db.Gorm), thumbnails, lg)
	app.orders = order.NewService(
		orderPostgres.NewOrderRepository(db.Gorm),
		orderPostgres.NewOrderViewRepository(db.SQLX),
		app.bus,
		lg,
	)

	return app, nil
}

// Close drains pending event handlers before releasing connections.
func (a *application) Close() {
	a.bus.Wait()
	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache close error", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("database close error", "error", err)
	}
}
