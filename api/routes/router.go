package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vhovsepyan/storefront-backend/api/controllers"
	"github.com/vhovsepyan/storefront-backend/api/middleware"
	"github.com/vhovsepyan/storefront-backend/internal/auth"
	"github.com/vhovsepyan/storefront-backend/internal/catalog"
	"github.com/vhovsepyan/storefront-backend/internal/orders"
	"github.com/vhovsepyan/storefront-backend/internal/users"
	"github.com/vhovsepyan/storefront-backend/pkg/auth/session"
	"github.com/vhovsepyan/storefront-backend/pkg/config"
	"github.com/vhovsepyan/storefront-backend/pkg/db"
	"github.com/vhovsepyan/storefront-backend/pkg/logger"
	"github.com/vhovsepyan/storefront-backend/pkg/metrics"
	"github.com/vhovsepyan/storefront-backend/pkg/redis"
)

// NewRouter wires every HTTP surface of the storefront API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	usersService users.Service,
	catalogService catalog.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	authed := middleware.Auth(cfg.JWT, sessionChecker, logg)
	idempotent := middleware.Idempotency(redisClient, logg)
	staffOnly := middleware.RequireStaff(logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			idempotent,
		).Post("/register", controllers.UserRegister(usersService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authed, idempotent)
			r.Get("/me", controllers.UserMe(usersService, logg))
			r.Patch("/me", controllers.UserUpdateMe(usersService, logg))
			r.Post("/change-password", controllers.UserChangePassword(usersService, logg))
			r.Post("/request-supplier", controllers.UserRequestSupplier(usersService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authed, staffOnly, idempotent)
			r.Get("/", controllers.UserList(usersService, logg))
			r.Delete("/{userID}", controllers.UserDelete(usersService, logg))
			r.Post("/workers/register", controllers.WorkerRegister(usersService, logg))
			r.Post("/workers/{userID}/approve", controllers.WorkerReview(usersService, logg))
		})
	})

	// Browsing the catalog needs no account. Mutations carry their own
	// object-level checks in the catalog service.
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", controllers.CategoryList(catalogService, logg))
		r.Get("/{categoryID}", controllers.CategoryGet(catalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authed, staffOnly, idempotent)
			r.Post("/", controllers.CategoryCreate(catalogService, usersService, logg))
			r.Put("/{categoryID}", controllers.CategoryUpdate(catalogService, usersService, logg))
			r.Delete("/{categoryID}", controllers.CategoryDelete(catalogService, usersService, logg))
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(catalogService, logg))
		r.Get("/search", controllers.ProductSearch(catalogService, logg))
		r.Get("/{productID}", controllers.ProductGet(catalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authed, idempotent)
			r.Post("/", controllers.ProductCreate(catalogService, usersService, logg))
			r.Patch("/{productID}", controllers.ProductUpdate(catalogService, usersService, logg))
			r.Delete("/{productID}", controllers.ProductDelete(catalogService, usersService, logg))
		})
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(authed, idempotent)
		r.Post("/", controllers.OrderPlace(ordersService, logg))
		r.Get("/", controllers.OrderList(ordersService, usersService, logg))
		r.Get("/{orderID}", controllers.OrderGet(ordersService, usersService, logg))
		r.Post("/{orderID}/status", controllers.OrderUpdateStatus(ordersService, usersService, logg))
		r.With(staffOnly).Put("/{orderID}", controllers.OrderUpdate(ordersService, usersService, logg))
		r.With(staffOnly).Delete("/{orderID}", controllers.OrderDelete(ordersService, usersService, logg))
	})

	return r
}
