package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RafaGarcia5/grocerease-api/api/controllers"
	"github.com/RafaGarcia5/grocerease-api/api/middleware"
	"github.com/RafaGarcia5/grocerease-api/internal/auth"
	"github.com/RafaGarcia5/grocerease-api/internal/cart"
	"github.com/RafaGarcia5/grocerease-api/internal/categories"
	"github.com/RafaGarcia5/grocerease-api/internal/checkout"
	"github.com/RafaGarcia5/grocerease-api/internal/orders"
	"github.com/RafaGarcia5/grocerease-api/internal/products"
	"github.com/RafaGarcia5/grocerease-api/internal/users"
	"github.com/RafaGarcia5/grocerease-api/pkg/auth/session"
	"github.com/RafaGarcia5/grocerease-api/pkg/config"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	"github.com/RafaGarcia5/grocerease-api/pkg/logger"
	"github.com/RafaGarcia5/grocerease-api/pkg/metrics"
	"github.com/RafaGarcia5/grocerease-api/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type readinessPinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              readinessPinger
	Redis           *redis.Client
	SessionManager  sessionManager
	HTTPMetrics     *metrics.HTTPMetrics
	AuthService     auth.Service
	RegisterService auth.RegisterService
	UserService     users.Service
	CategoryService categories.Service
	ProductService  products.Service
	CartService     cart.Service
	OrderService    orders.Service
	CheckoutService checkout.Service
}

// NewRouter assembles the full route table.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Checkout.FrontendURL),
	)
	if d.HTTPMetrics != nil {
		r.Use(middleware.Metrics(d.HTTPMetrics))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Redis, logg))
	})
	if d.HTTPMetrics != nil {
		r.Handle("/metrics", d.HTTPMetrics.Handler())
	}

	// Public surface: registration, login and read-only catalog browsing.
	r.Group(func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).Post("/register", controllers.Register(d.RegisterService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.Login(d.AuthService, logg))

		r.Get("/category", controllers.ListCategories(d.CategoryService, logg))
		r.Get("/category/{id}", controllers.GetCategory(d.CategoryService, logg))

		r.Get("/product", controllers.ListProducts(d.ProductService, logg))
		r.Get("/product/search", controllers.SearchProducts(d.ProductService, logg))
		r.Get("/product/category/{categoryId}", controllers.ProductsByCategory(d.ProductService, logg))
		r.Get("/product/{id}", controllers.GetProduct(d.ProductService, logg))
	})

	// Everything below requires a live session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.SessionManager, logg))

		r.Post("/logout", controllers.Logout(d.AuthService, cfg.JWT, logg))
		r.Post("/refresh", controllers.Refresh(d.SessionManager, cfg.JWT, logg))

		r.Get("/user", controllers.CurrentUser(d.UserService, logg))
		r.Put("/user/{id}", controllers.UpdateUser(d.UserService, logg))
		r.Delete("/user/{id}", controllers.DeleteUser(d.UserService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(d.CartService, logg))
			r.Post("/add", controllers.AddCartItem(d.CartService, logg))
			r.Put("/item/{id}", controllers.UpdateCartItem(d.CartService, logg))
			r.Delete("/item/{id}", controllers.RemoveCartItem(d.CartService, logg))
			r.Delete("/clear", controllers.ClearCart(d.CartService, logg))
			r.Post("/confirmPayment", controllers.ConfirmPayment(d.CheckoutService, logg))
		})

		r.Route("/order", func(r chi.Router) {
			r.With(middleware.RequireRole(enums.RoleCustomer.String(), logg)).Post("/", controllers.CreateOrder(d.OrderService, logg))
			r.Get("/", controllers.ListOrders(d.OrderService, logg))
			r.Post("/checkout", controllers.Checkout(d.CheckoutService, logg))
			r.With(middleware.RequireRole(enums.RoleVendor.String(), logg)).Get("/search", controllers.SearchOrders(d.OrderService, logg))
			r.Get("/{id}", controllers.GetOrder(d.OrderService, logg))
			r.Put("/{id}", controllers.UpdateOrder(d.OrderService, logg))
			r.Delete("/{id}", controllers.DeleteOrder(d.OrderService, logg))
		})

		r.Route("/order-details", func(r chi.Router) {
			r.Get("/", controllers.ListOrderDetails(d.OrderService, logg))
			r.Get("/{id}", controllers.GetOrderDetail(d.OrderService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleVendor.String(), logg))
				r.Post("/", controllers.CreateOrderDetail(d.OrderService, logg))
				r.Put("/{id}", controllers.UpdateOrderDetail(d.OrderService, logg))
				r.Delete("/{id}", controllers.DeleteOrderDetail(d.OrderService, logg))
			})
		})

		// Catalog writes and back-office views are vendor only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleVendor.String(), logg))

			r.Post("/category", controllers.CreateCategory(d.CategoryService, logg))
			r.Put("/category/{id}", controllers.UpdateCategory(d.CategoryService, logg))
			r.Delete("/category/{id}", controllers.DeleteCategory(d.CategoryService, logg))

			r.Post("/product", controllers.CreateProduct(d.ProductService, logg))
			r.Put("/product/{id}", controllers.UpdateProduct(d.ProductService, logg))
			r.Delete("/product/{id}", controllers.DeleteProduct(d.ProductService, logg))

			r.Get("/admin/orders", controllers.AdminOrders(d.OrderService, logg))
			r.Get("/admin/users", controllers.AdminUsers(d.UserService, logg))
		})
	})

	return r
}
