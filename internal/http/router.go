package http

import (
	"net/http"
	"time"

	"github.com/aims/storefront/internal/backend"
	"github.com/aims/storefront/internal/catalog"
	"github.com/aims/storefront/internal/checkout"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Deps struct {
	Catalog       *catalog.Catalog
	Session       *checkout.Session
	Fees          FeeQuoter
	Notifications NotificationSource
	// Simulator is mounted under /api/backend when set.
	Simulator *backend.Simulator

	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	AllowedOrigins     []string
	// RateLimit is requests per second per client on /api/v1. Zero disables it.
	RateLimit float64
	RateBurst int
}

func NewRouter(d Deps) http.Handler {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}
	if d.MaxRequestBodySize <= 0 {
		d.MaxRequestBodySize = 1 << 20 // 1MB
	}

	productHandler := NewProductHandler(d.Catalog)
	cartHandler := NewCartHandler(d.Session, d.Catalog)
	checkoutHandler := NewCheckoutHandler(d.Session, d.RequestTimeout)
	deliveryHandler := NewDeliveryHandler(d.Fees, d.RequestTimeout)
	notificationHandler := NewNotificationHandler(d.Notifications)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(LimitBody(d.MaxRequestBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		if d.RateLimit > 0 {
			r.Use(NewRateLimiter(d.RateLimit, d.RateBurst).Limit)
		}

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{product_id}", productHandler.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Post("/lines/{line_id}/toggle", cartHandler.ToggleSelection)
			r.Post("/select", cartHandler.SelectAll)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.GetView)
			r.Get("/summary", checkoutHandler.GetSummary)
			r.Post("/proceed", checkoutHandler.Proceed)
			r.Post("/shipping", checkoutHandler.SubmitShipping)
			r.Post("/back", checkoutHandler.Back)

			r.Route("/payment", func(r chi.Router) {
				r.Post("/method", checkoutHandler.SelectPaymentMethod)
				r.Post("/confirm", checkoutHandler.ConfirmPayment)
				r.Post("/card", checkoutHandler.PayByCard)
				r.Post("/cancel", checkoutHandler.CancelPayment)
				r.Post("/retry", checkoutHandler.RetryPayment)
				r.Get("/qr.png", checkoutHandler.QRCode)
			})
		})

		r.Route("/delivery", func(r chi.Router) {
			r.Get("/options", deliveryHandler.Options)
			r.Post("/quote", deliveryHandler.Quote)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Delete("/{id}", notificationHandler.Dismiss)
		})
	})

	if d.Simulator != nil {
		backendHandler := NewBackendHandler(d.Simulator)
		r.Route("/api/backend", func(r chi.Router) {
			r.Post("/availability", backendHandler.CheckAvailability)
			r.Post("/delivery/fee", backendHandler.CalculateDeliveryFee)
			r.Post("/delivery", backendHandler.SubmitDeliveryInfo)
			r.Post("/payments", backendHandler.InitializePayment)
			r.Post("/payments/card", backendHandler.ProcessCardPayment)
			r.Get("/payments/{transaction_id}", backendHandler.GetTransaction)
			r.Get("/payments/{transaction_id}/status", backendHandler.VerifyPayment)
		})
	}

	if len(d.AllowedOrigins) == 0 {
		d.AllowedOrigins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(r)

	return otelhttp.NewHandler(corsHandler, "storefront")
}
