package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/category"
	"github.com/frahmantamala/school-store/internal/order"
	"github.com/frahmantamala/school-store/internal/product"
	"github.com/frahmantamala/school-store/internal/role"
	"github.com/frahmantamala/school-store/internal/transport/middleware"
	"github.com/frahmantamala/school-store/internal/transport/swagger"
	"github.com/frahmantamala/school-store/internal/user"
	"github.com/frahmantamala/school-store/pkg/metrics"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Routes carries everything the router mounts. Nil handlers are skipped.
type Routes struct {
	Health   *HealthHandler
	Auth     *auth.Handler
	User     *user.Handler
	Role     *role.Handler
	Category *category.Handler
	Product  *product.Handler
	Order    *order.Handler

	Verifier middleware.TokenVerifier
	Policies *auth.PolicyEngine

	AllowedOrigins string
	RequestTimeout time.Duration
	MetricsPath    string
	OpenAPIPath    string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, rt Routes) {
	lg := rt.Logger

	// Apply global middleware
	router.Use(middleware.CORS(rt.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.LoggingMiddleware(lg))
	router.Use(middleware.RecoveryMiddleware(lg))
	if rt.MetricsPath != "" {
		router.Use(metrics.Middleware())
	}
	if rt.RequestTimeout > 0 {
		router.Use(chiMiddleware.Timeout(rt.RequestTimeout))
	}

	if rt.MetricsPath != "" {
		router.Get(rt.MetricsPath, metrics.Handler())
	}

	openAPIPath := rt.OpenAPIPath
	if openAPIPath == "" {
		openAPIPath = "./api/openapi.yml"
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	policy := func(name string) func(http.Handler) http.Handler {
		return middleware.RequirePolicy(rt.Policies, name, lg)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if rt.Health != nil {
			r.Get("/health", rt.Health.healthCheckHandler)
			r.Get("/ping", rt.Health.pingHandler)
		}

		if rt.Auth != nil {
			r.Post("/auth/login", rt.Auth.Login)
		}

		if rt.Verifier == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authenticate(rt.Verifier, lg))

			if rt.Auth != nil {
				pr.Post("/auth/refresh", rt.Auth.Refresh)
			}

			if rt.User != nil {
				pr.Get("/users/me", rt.User.GetCurrentUser)

				pr.Group(func(ar chi.Router) {
					ar.Use(middleware.RequireRole(auth.RoleAdmin, lg))
					ar.Post("/admin/register", rt.User.Register)
					ar.Post("/admin/users/{id}/roles", rt.User.AssignRole)
				})
			}

			if rt.Role != nil {
				pr.Group(func(rr chi.Router) {
					rr.Use(policy(auth.PolicyManageRoles))
					rr.Get("/roles", rt.Role.ListRoles)
					rr.Post("/roles", rt.Role.AddRole)
					rr.Patch("/roles", rt.Role.ModifyRoleClaims)
					rr.Get("/roles/claims", rt.Role.GetRoleClaims)
				})
			}

			// Store reads
			pr.Group(func(sr chi.Router) {
				sr.Use(policy(auth.PolicyAccessStore))
				if rt.Category != nil {
					sr.Get("/categories", rt.Category.GetCategories)
				}
				if rt.Product != nil {
					sr.Get("/products", rt.Product.ListProducts)
					sr.Get("/products/{id}", rt.Product.GetProduct)
				}
				if rt.Order != nil {
					sr.Get("/orders/{id}", rt.Order.GetOrder)
				}
			})

			// Store management
			pr.Group(func(mr chi.Router) {
				mr.Use(policy(auth.PolicyManageStore))
				if rt.Category != nil {
					mr.Post("/categories", rt.Category.CreateCategory)
					mr.Delete("/categories/{id}", rt.Category.DeleteCategory)
				}
				if rt.Product != nil {
					mr.Post("/products", rt.Product.CreateProduct)
					mr.Patch("/products/{id}", rt.Product.UpdateProduct)
					mr.Delete("/products/{id}", rt.Product.DeleteProduct)
					mr.Put("/products/{id}/thumbnail", rt.Product.UploadThumbnail)
				}
				if rt.Order != nil {
					mr.Get("/orders", rt.Order.ListOrders)
					mr.Patch("/orders/{id}/deliver", rt.Order.DeliverOrder)
				}
			})

			if rt.Order != nil {
				pr.Group(func(or chi.Router) {
					or.Use(policy(auth.PolicyOrderFromStore))
					or.Post("/orders", rt.Order.PlaceOrder)
					or.Get("/orders/mine", rt.Order.ListMyOrders)
				})
			}
		})
	})
}
