package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/catalog"
	"github.com/comptoir-erp/comptoir-erp/internal/clients"
	"github.com/comptoir-erp/comptoir-erp/internal/invoices"
	"github.com/comptoir-erp/comptoir-erp/internal/orders"
	"github.com/comptoir-erp/comptoir-erp/internal/stats"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthMiddleware auth.Middleware

	CatalogHandler *catalog.Handler
	ClientHandler  *clients.Handler
	OrderHandler   *orders.Handler
	InvoiceHandler *invoices.Handler
	StatsHandler   *stats.Handler
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireIdentity)

		params.CatalogHandler.MountRoutes(r)
		params.ClientHandler.MountRoutes(r)
		params.OrderHandler.MountRoutes(r)
		params.InvoiceHandler.MountRoutes(r)
		params.StatsHandler.MountRoutes(r)
	})

	return r
}
