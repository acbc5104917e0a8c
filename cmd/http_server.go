package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/category"
	"github.com/frahmantamala/school-store/internal/order"
	"github.com/frahmantamala/school-store/internal/product"
	"github.com/frahmantamala/school-store/internal/role"
	"github.com/frahmantamala/school-store/internal/transport"
	"github.com/frahmantamala/school-store/internal/transport/rest"
	"github.com/frahmantamala/school-store/internal/user"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

func startHTTPServer() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	app, err := newApplication(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer app.Close()

	router := chi.NewRouter()
	setupRoutes(router, app)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		app.logger.Info("starting HTTP server", "address", addr, "database", cfg.Database.DriverName())
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		app.logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			app.logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	app.logger.Info("server stopped")
	return nil
}

func setupRoutes(router *chi.Mux, app *application) {
	base := transport.NewBaseHandler(app.logger)

	metricsPath := ""
	if app.cfg.Observability.Metrics.Enabled {
		metricsPath = app.cfg.Observability.Metrics.Path
	}

	var cachePinger rest.Pinger
	if app.cache != nil {
		cachePinger = app.cache
	}

	rest.RegisterAllRoutes(router, rest.Routes{
		Health:   rest.NewHealthHandler(app.db.SQLX.DB, app.cfg.Database.DriverName(), cachePinger),
		Auth:     auth.NewHandler(base, app.auth),
		User:     user.NewHandler(base, app.users, app.auth),
		Role:     role.NewHandler(base, app.roles),
		Category: category.NewHandler(base, app.categories),
		Product:  product.NewHandler(base, app.products, app.cfg.Storage.MaxUploadMB),
		Order:    order.NewHandler(base, app.orders, app.policies.MustRequire(auth.PolicyManageStore)),

		Verifier: app.issuer,
		Policies: app.policies,

		AllowedOrigins: app.cfg.Server.AllowedOrigins,
		RequestTimeout: app.cfg.Server.RequestTimeout,
		MetricsPath:    metricsPath,
		Logger:         app.logger,
	})
}
