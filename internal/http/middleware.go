package http

import (
	"net/http"
	"time"

	"github.com/fjod/rocketshoes-cart/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestIDMiddleware echoes the chi request id and binds it to the request
// logger. It must run after middleware.RequestID.
func RequestIDMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := middleware.GetReqID(r.Context())
			if requestID == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(middleware.RequestIDHeader, requestID)
			ctx := log.WithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggingMiddleware writes one line per request.
func LoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			ctx := log.WithField(r.Context(), "method", r.Method)
			ctx = log.WithField(ctx, "path", r.URL.Path)
			ctx = log.WithField(ctx, "status", ww.Status())
			ctx = log.WithField(ctx, "duration_ms", time.Since(start).Milliseconds())
			log.Info(ctx, "http request")
		})
	}
}
