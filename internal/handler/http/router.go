package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kssweets/sweetshop/internal/event"
	"github.com/kssweets/sweetshop/internal/repository"
	"github.com/kssweets/sweetshop/internal/service"
	"github.com/kssweets/sweetshop/pkg/health"
	"github.com/kssweets/sweetshop/pkg/middleware"
)

// Deps bundles everything the router mounts.
type Deps struct {
	CategoryService  *service.CategoryService
	ProductService   *service.ProductService
	CartRepo         repository.CartRepository
	WishlistRepo     repository.WishlistRepository
	OrderRepo        repository.OrderRepository
	FeedbackRepo     repository.FeedbackRepository
	NotificationRepo repository.NotificationRepository
	Producer         *event.Producer
	Health           *health.Handler

	// ImagesDir is the on-disk root served under /images/.
	ImagesDir string

	// PprofCIDRs enables the pprof endpoints for the given networks when
	// non-empty.
	PprofCIDRs []string

	// CORSOrigins restricts cross-origin callers; Environment "development"
	// keeps the wildcard behavior.
	CORSOrigins []string
	Environment string

	Logger *slog.Logger
}

// NewRouter creates a chi router with all storefront and admin routes registered.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	corsCfg := middleware.DefaultCORSConfig()
	if len(deps.CORSOrigins) > 0 {
		corsCfg.AllowedOrigins = deps.CORSOrigins
	}
	if deps.Environment != "" {
		corsCfg.Environment = deps.Environment
	}
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(deps.Logger))
	// RequestLogging assigns the correlation ID; RequestLogger builds the
	// request-scoped logger from it, so the order matters.
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics("sweetshop"))

	// Health check and metrics endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if len(deps.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, deps.PprofCIDRs, deps.Logger)
	}

	// Uploaded images
	if deps.ImagesDir != "" {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(deps.ImagesDir))))
	}

	// Category API endpoints
	categoryHandler := NewCategoryHandler(deps.CategoryService, deps.Logger)

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", categoryHandler.ListCategories)
		r.Get("/datatable", categoryHandler.DataTable)
		r.Post("/", categoryHandler.CreateCategory)
		r.Post("/bulk/status", categoryHandler.BulkStatus)
		r.Post("/bulk/delete", categoryHandler.BulkDelete)
		r.Get("/{id}", categoryHandler.GetCategory)
		r.Get("/{id}/view", categoryHandler.GetCategoryView)
		r.Put("/{id}", categoryHandler.UpdateCategory)
		r.Post("/{id}/toggle", categoryHandler.ToggleStatus)
		r.Delete("/{id}/image", categoryHandler.RemoveImage)
		r.Delete("/{id}", categoryHandler.DeleteCategory)
	})

	// Product API endpoints
	productHandler := NewProductHandler(deps.ProductService, deps.Logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", productHandler.ListProducts)
		r.Post("/", productHandler.CreateProduct)
		r.Get("/{id}", productHandler.GetProduct)
		r.Put("/{id}", productHandler.UpdateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)
		r.Post("/{id}/images", productHandler.AddImage)
		r.Delete("/{id}/images/{imageID}", productHandler.RemoveImage)
	})

	// Feedback API endpoints (nested under products)
	feedbackHandler := NewFeedbackHandler(deps.FeedbackRepo, deps.Logger)

	r.Route("/api/v1/products/{productID}/feedback", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", feedbackHandler.ListByProduct)
		r.Post("/", feedbackHandler.Create)
	})

	r.Route("/api/v1/feedback", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", feedbackHandler.ListMine)
		r.Get("/pending", feedbackHandler.ListPending)
		r.Post("/{id}/approve", feedbackHandler.Approve)
		r.Delete("/{id}", feedbackHandler.Delete)
	})

	// Cart API endpoints
	cartHandler := NewCartHandler(deps.CartRepo, deps.Logger)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)
		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{id}", cartHandler.UpdateCount)
		r.Delete("/items/{id}", cartHandler.RemoveItem)
	})

	// Wishlist API endpoints
	wishlistHandler := NewWishlistHandler(deps.WishlistRepo, deps.Logger)

	r.Route("/api/v1/wishlist", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", wishlistHandler.GetWishlist)
		r.Post("/", wishlistHandler.AddItem)
		r.Get("/{productID}", wishlistHandler.Contains)
		r.Delete("/{productID}", wishlistHandler.RemoveItem)
	})

	// Order API endpoints
	orderHandler := NewOrderHandler(deps.OrderRepo, deps.Producer, deps.Logger)

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", orderHandler.ListOrders)
		r.Post("/", orderHandler.CreateOrder)
		r.Get("/{id}", orderHandler.GetOrder)
		r.Put("/{id}/status", orderHandler.UpdateStatus)
		r.Put("/{id}/payment-ids", orderHandler.UpdatePaymentIDs)
		r.Post("/{id}/paid", orderHandler.MarkPaid)
	})

	// Notification API endpoints
	notificationHandler := NewNotificationHandler(deps.NotificationRepo, deps.Logger)

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", notificationHandler.List)
		r.Get("/unread-count", notificationHandler.UnreadCount)
		r.Post("/read-all", notificationHandler.MarkAllRead)
		r.Post("/{id}/read", notificationHandler.MarkRead)
	})

	return r
}
