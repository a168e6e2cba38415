package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/comptoir-erp/comptoir-erp/internal/app"
	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/catalog"
	"github.com/comptoir-erp/comptoir-erp/internal/clients"
	"github.com/comptoir-erp/comptoir-erp/internal/fixtures"
	"github.com/comptoir-erp/comptoir-erp/internal/invoices"
	"github.com/comptoir-erp/comptoir-erp/internal/orders"
	"github.com/comptoir-erp/comptoir-erp/internal/platform/cache"
	"github.com/comptoir-erp/comptoir-erp/internal/platform/db"
	"github.com/comptoir-erp/comptoir-erp/internal/realtime"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
	"github.com/comptoir-erp/comptoir-erp/internal/stats"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	var (
		catalogRepo catalog.Repository
		clientRepo  clients.Repository
		orderRepo   orders.Repository
		invoiceRepo invoices.Repository
		statsRepo   stats.Repository
		provider    auth.Provider
		idemGuard   catalog.IdempotencyGuard
	)

	switch cfg.StoreBackend {
	case app.BackendPostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()

		catalogRepo = catalog.NewPostgresRepository(pool)
		clientRepo = clients.NewPostgresRepository(pool)
		orderRepo = orders.NewPostgresRepository(pool)
		invoiceRepo = invoices.NewPostgresRepository(pool)
		statsRepo = stats.NewPostgresRepository(pool)
		provider = auth.NewProfileProvider(pool)
		idemGuard = shared.NewIdempotencyStore(pool)
	case app.BackendMemory:
		catalogRepo = catalog.NewMemoryRepository(fixtures.Products(), nil)
		clientRepo = clients.NewMemoryRepository(fixtures.Clients())
		orderRepo = orders.NewMemoryRepository(fixtures.Orders())
		invoiceRepo = invoices.NewMemoryRepository(fixtures.Invoices())
		statsRepo = stats.NewMemoryRepository(catalogRepo, clientRepo, orderRepo, invoiceRepo)
		provider = auth.NewStaticProvider(fixtures.Profiles())
	}

	notifier := realtime.Notifier(realtime.Noop{})
	if cfg.RedisAddr != "" {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		notifier = realtime.NewRedisNotifier(redisClient)
	}

	productRefs := func(ctx context.Context, productID string) (bool, error) {
		return orderRepo.ReferencesProduct(ctx, productID)
	}
	clientRefs := func(ctx context.Context, clientID string) (bool, error) {
		if referenced, err := orderRepo.ReferencesClient(ctx, clientID); err != nil || referenced {
			return referenced, err
		}
		return invoiceRepo.ReferencesClient(ctx, clientID)
	}

	catalogService := catalog.NewService(catalogRepo, idemGuard, productRefs)
	clientService := clients.NewService(clientRepo, clientRefs)
	orderService := orders.NewService(orderRepo, catalogService, clientService, logger)
	invoiceService := invoices.NewService(invoiceRepo, clientService)
	statsService := stats.NewService(statsRepo)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthMiddleware: auth.Middleware{Provider: provider, Logger: logger},
		CatalogHandler: catalog.NewHandler(logger, catalogService, notifier),
		ClientHandler:  clients.NewHandler(logger, clientService, notifier),
		OrderHandler:   orders.NewHandler(logger, orderService, notifier),
		InvoiceHandler: invoices.NewHandler(logger, invoiceService, notifier),
		StatsHandler:   stats.NewHandler(logger, statsService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("backend", cfg.StoreBackend))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
