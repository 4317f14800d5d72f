package http

import (
	"net/http"
	"time"

	"github.com/fjod/rocketshoes-cart/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig wires the handler and the operational endpoints.
// Ready and Metrics are optional.
type RouterConfig struct {
	Cart           *CartHandler
	Ready          <-chan struct{}
	Metrics        http.Handler
	Logger         *logger.Logger
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware(log))
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			select {
			case <-cfg.Ready:
			default:
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.GetCart)
			r.Post("/items", cfg.Cart.AddItem)
			r.Patch("/items/{product_id}", cfg.Cart.StepAmount)
			r.Put("/items/{product_id}", cfg.Cart.SetAmount)
			r.Delete("/items/{product_id}", cfg.Cart.RemoveItem)
		})
	})

	return r
}
