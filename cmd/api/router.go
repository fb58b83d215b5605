package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/httpx"
	"bookstore/internal/platform/database"
)

// newRouter mounts the health probes and the book API behind the middleware
// chain. The returned func stops background work owned by the router.
func newRouter(cfg *config.Config, store *database.Store, logger *slog.Logger) (http.Handler, func()) {
	bookService := book.NewService(store.Books, logger)
	bookHandler := book.NewHTTPHandler(bookService, logger)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "db not ready")
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	bookHandler.Routes(router)
	router.Handle("/", httpx.NotFoundHandler())

	rateLimit := httpx.NewRateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxy)

	handler := httpx.Chain(router,
		httpx.RecoveryMiddleware(logger),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.HTTP.EnableHSTS),
		httpx.CORSMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimit.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.HTTP.MaxBodyBytes),
	)
	return handler, rateLimit.Stop
}
