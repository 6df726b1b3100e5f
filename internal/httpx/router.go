package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jcmexdev/pizzaflow/internal/pkg/metrics"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware("pizzaflow"))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stores", h.ListStores)
		r.Get("/stores/{storeID}/menu", h.ListMenu)
		r.Get("/orders/{id}", h.GetOrder)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Get("/", h.GetProfile)
			r.Put("/name", h.SetName)
			r.Put("/age", h.SetAge)
			r.Put("/address", h.SetAddress)
			r.Get("/stores", h.StoresNear)

			r.Get("/cart", h.ViewCart)
			r.Post("/cart/items", h.AddItem)
			r.Post("/cart/batch", h.AddBatch)
			r.Delete("/cart", h.ClearCart)

			r.Post("/orders", h.ConfirmOrder)
			r.Get("/orders/last", h.LastOrder)
			r.Post("/payments", h.SettlePayment)
		})
	})
	return r
}
