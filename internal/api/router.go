package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/otaku-market/internal/api/middleware"
	"github.com/example/otaku-market/internal/auth"
	"github.com/example/otaku-market/internal/metrics"
)

// NewRouter wires every route. Method-qualified patterns let the mux handle
// method dispatch and 405s.
func NewRouter(handlers *Handlers, tokens *auth.TokenService, m *metrics.ServerMetrics, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)
	requireAdmin := func(h http.HandlerFunc) http.Handler {
		return requireAuth(middleware.RequireAdmin(h))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /sitemap.xml", handlers.Sitemap)

	// Auth
	mux.HandleFunc("POST /auth/register", handlers.Register)
	mux.HandleFunc("POST /auth/login", handlers.Login)
	mux.HandleFunc("POST /auth/logout", handlers.Logout)
	mux.Handle("GET /me", requireAuth(http.HandlerFunc(handlers.Me)))

	// Catalog
	mux.HandleFunc("GET /products", handlers.ListProducts)
	mux.HandleFunc("GET /products/{id}", handlers.GetProduct)
	mux.HandleFunc("GET /p/{slug}", handlers.GetProductBySlug)
	mux.Handle("POST /products", requireAdmin(handlers.CreateProduct))
	mux.Handle("PUT /products/{id}", requireAdmin(handlers.UpdateProduct))
	mux.Handle("DELETE /products/{id}", requireAdmin(handlers.DeleteProduct))
	mux.Handle("PUT /products/{id}/stock", requireAdmin(handlers.SetProductStock))

	// Orders
	mux.Handle("POST /orders", optionalAuth(http.HandlerFunc(handlers.PlaceOrder)))
	mux.Handle("GET /orders", requireAuth(http.HandlerFunc(handlers.GetOrders)))
	mux.Handle("GET /orders/{id}", requireAuth(http.HandlerFunc(handlers.GetOrder)))
	mux.Handle("POST /orders/{id}/checkout", requireAuth(http.HandlerFunc(handlers.RetryCheckout)))
	mux.Handle("POST /admin/orders/{id}/status", requireAdmin(handlers.UpdateOrderStatus))

	// Wishlist
	mux.Handle("GET /wishlist", requireAuth(http.HandlerFunc(handlers.GetWishlist)))
	mux.Handle("POST /wishlist/{productID}", requireAuth(http.HandlerFunc(handlers.AddToWishlist)))
	mux.Handle("DELETE /wishlist/{productID}", requireAuth(http.HandlerFunc(handlers.RemoveFromWishlist)))

	// Stock alerts
	mux.Handle("GET /stock-alerts", requireAuth(http.HandlerFunc(handlers.ListStockAlerts)))
	mux.Handle("POST /stock-alerts/{productID}", requireAuth(http.HandlerFunc(handlers.SubscribeStockAlert)))
	mux.Handle("DELETE /stock-alerts/{productID}", requireAuth(http.HandlerFunc(handlers.UnsubscribeStockAlert)))

	// Addresses
	mux.Handle("GET /addresses", requireAuth(http.HandlerFunc(handlers.ListAddresses)))
	mux.Handle("POST /addresses", requireAuth(http.HandlerFunc(handlers.CreateAddress)))
	mux.Handle("PUT /addresses/{id}", requireAuth(http.HandlerFunc(handlers.UpdateAddress)))
	mux.Handle("DELETE /addresses/{id}", requireAuth(http.HandlerFunc(handlers.DeleteAddress)))

	// Payment provider callbacks
	mux.HandleFunc("POST /webhooks/payment", handlers.PaymentWebhook)

	return m.Middleware(withLogging(mux, logger))
}

func withLogging(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}
