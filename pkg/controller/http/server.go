package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookSecret string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret sets the secret of the sync hook. The hook is disabled without it.
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates the HTTP server exposing reports, charts, queries and the sync hook
func NewServer(
	ctx context.Context,
	catalogUC interfaces.CatalogUseCase,
	syncUC interfaces.SyncUseCase,
	webhookUC interfaces.WebhookUseCase,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr: "localhost:8080",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)

	api := NewAPIHandler(catalogUC, syncUC)
	router.Route("/api", func(r chi.Router) {
		r.Get("/reports", api.ListReports)
		r.Get("/reports/{month}", api.GetReport)
		r.Get("/dashboard", api.GetDashboard)
		r.Post("/query", api.Query)
		r.Get("/runs", api.ListRuns)
	})

	if cfg.webhookSecret != "" {
		webhookHandler := NewWebhookHandler(cfg.webhookSecret, webhookUC)
		router.Post("/hooks/sync", webhookHandler.Handle)
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
