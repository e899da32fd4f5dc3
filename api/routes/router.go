package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	cartpkg "github.com/angelmondragon/storefront-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/identity"
	ordersvc "github.com/angelmondragon/storefront-backend/internal/orders"
	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	reviewsvc "github.com/angelmondragon/storefront-backend/internal/reviews"
	wishlistsvc "github.com/angelmondragon/storefront-backend/internal/wishlist"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	redisclient "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redisclient.Client
	Sessions session.AccessSessionChecker
	Metrics  *metrics.HTTPMetrics
	Registry *prometheus.Registry

	Identity    identity.Service
	Products    productsvc.Service
	CartManager *cartpkg.Manager
	Checkout    checkoutsvc.Service
	Orders      ordersvc.Service
	Reviews     reviewsvc.Service
	Wishlist    wishlistsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

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
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.Register(deps.Identity, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.Identity, logg))
		r.Post("/refresh", controllers.Refresh(deps.Identity, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Post("/logout", controllers.Logout(deps.Identity, logg))
			r.Get("/me", controllers.CurrentUser(deps.Identity, logg))
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, logg))
		r.Get("/categories", controllers.ListCategories(deps.Products, logg))
		r.Get("/{productID}", controllers.GetProduct(deps.Products, logg))
		r.Get("/{productID}/reviews", controllers.ListProductReviews(deps.Reviews, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.CartManager, logg))
			r.Post("/items", controllers.AddCartItem(deps.CartManager, deps.Products, logg))
			r.Patch("/items/{itemID}", controllers.UpdateCartItem(deps.CartManager, logg))
			r.Delete("/items/{itemID}", controllers.RemoveCartItem(deps.CartManager, logg))
			r.Delete("/", controllers.ClearCart(deps.CartManager, logg))
			r.Post("/coupon", controllers.ApplyCoupon(deps.CartManager, logg))
			r.Delete("/coupon", controllers.RemoveCoupon(deps.CartManager, logg))
			r.Put("/shipping", controllers.SetShippingMethod(deps.CartManager, logg))
		})

		r.Post("/checkout", controllers.PlaceOrder(deps.CartManager, deps.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(deps.Orders, logg))
			r.Get("/number/{orderNumber}", controllers.GetOrderByNumber(deps.Orders, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", controllers.AddReview(deps.Reviews, logg))
			r.Patch("/{reviewID}", controllers.UpdateReview(deps.Reviews, logg))
			r.Delete("/{reviewID}", controllers.DeleteReview(deps.Reviews, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.ListWishlist(deps.Wishlist, logg))
			r.Post("/items", controllers.AddWishlistItem(deps.Wishlist, logg))
			r.Delete("/items/{productID}", controllers.RemoveWishlistItem(deps.Wishlist, logg))
		})
	})

	return r
}
