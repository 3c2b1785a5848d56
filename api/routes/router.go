package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brightbasket/storefront-backend/api/controllers"
	"github.com/brightbasket/storefront-backend/api/middleware"
	"github.com/brightbasket/storefront-backend/internal/auth"
	"github.com/brightbasket/storefront-backend/internal/cart"
	"github.com/brightbasket/storefront-backend/internal/catalog"
	"github.com/brightbasket/storefront-backend/internal/orders"
	"github.com/brightbasket/storefront-backend/internal/wishlist"
	authsession "github.com/brightbasket/storefront-backend/pkg/auth/session"
	"github.com/brightbasket/storefront-backend/pkg/config"
	"github.com/brightbasket/storefront-backend/pkg/db"
	"github.com/brightbasket/storefront-backend/pkg/enums"
	"github.com/brightbasket/storefront-backend/pkg/logger"
	"github.com/brightbasket/storefront-backend/pkg/metrics"
	"github.com/brightbasket/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessions authsession.Checker,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	catalogService catalog.Service,
	cartService cart.Service,
	wishlistService wishlist.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	requireAuth := middleware.Auth(cfg.JWT, sessions, logg)
	requireAdmin := middleware.RequireRole(enums.RoleAdmin.String(), logg)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(catalogService, logg))
		r.Get("/{id}", controllers.GetProduct(catalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Post("/", controllers.CreateProduct(catalogService, logg))
			r.Put("/{id}", controllers.UpdateProduct(catalogService, logg))
			r.Delete("/{id}", controllers.DeleteProduct(catalogService, logg))
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", controllers.Register(authService, logg))
		r.Post("/login", controllers.Login(authService, logg))
		r.Post("/forgot-password", controllers.ForgotPassword(authService, logg))
		r.Post("/reset-password", controllers.ResetPassword(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", controllers.Logout(authService, logg))
			r.Get("/profile", controllers.Profile(authService, logg))
			r.With(requireAdmin).Get("/", controllers.ListUsers(authService, logg))
		})
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/mine", controllers.GetCart(cartService, logg))
		r.Put("/mine", controllers.SetCartItems(cartService, logg))
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/mine", controllers.ListWishlist(wishlistService, logg))
		r.Post("/toggle", controllers.ToggleWishlist(wishlistService, logg))
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", controllers.CreateOrder(ordersService, logg))
		r.Get("/mine", controllers.ListMyOrders(ordersService, logg))
		r.Post("/create-razorpay-order", controllers.CreatePaymentOrder(ordersService, logg))
		r.Post("/verify-razorpay-payment", controllers.VerifyPayment(ordersService, logg))
		r.Get("/{id}", controllers.GetOrder(ordersService, logg))
		r.Put("/{id}/pay", controllers.PayOrder(ordersService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", controllers.ListAllOrders(ordersService, logg))
			r.Put("/{id}/deliver", controllers.DeliverOrder(ordersService, logg))
		})
	})

	return r
}
