package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/nordmart/storefront/internal/handlers"
	"github.com/nordmart/storefront/internal/payments"
	"github.com/nordmart/storefront/internal/platform/config"
	"github.com/nordmart/storefront/internal/platform/idempotency"
	"github.com/nordmart/storefront/internal/platform/observability"
	"github.com/nordmart/storefront/internal/repositories/postgres"
	"github.com/nordmart/storefront/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	registry, err := postgres.NewRegistry(ctx, postgres.Options{
		DSN:           cfg.Database.DSN(),
		MigrationsDir: cfg.Database.MigrationsDir,
		Logf:          observability.NewPrintfAdapter(logger.Named("migrate")).Printf,
	})
	if err != nil {
		logger.Fatal("failed to initialise database", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := registry.Close(closeCtx); err != nil {
			logger.Warn("database close error", zap.Error(err))
		}
	}()

	gateway, err := newPaymentGateway(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise payment gateway", zap.Error(err))
	}

	eventLogger := observability.EventLogger(logger.Named("services"))

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: registry.Products(),
		Logger:   eventLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	customerService, err := services.NewCustomerService(services.CustomerServiceDeps{
		Customers: registry.Customers(),
		Logger:    eventLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise customer service", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:     registry.Orders(),
		Customers:  registry.Customers(),
		UnitOfWork: registry,
		Logger:     eventLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Gateway:     gateway,
		Orders:      registry.Orders(),
		Currency:    cfg.Checkout.Currency,
		FrontendURL: cfg.Checkout.FrontendURL,
		Logger:      eventLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	systemService, err := services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: registry.Health(),
	})
	if err != nil {
		logger.Fatal("failed to initialise system service", zap.Error(err))
	}

	idempotencyStore := idempotency.NewMemoryStore()
	idempotencyMiddleware := idempotency.Middleware(idempotency.Options{
		Store:  idempotencyStore,
		TTL:    cfg.Idempotency.TTL,
		Header: cfg.Idempotency.Header,
		Logger: logger.Named("idempotency"),
	})

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go runIdempotencySweeper(cleanupCtx, idempotencyStore, cfg.Idempotency, logger.Named("idempotency"))

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthSystemService(systemService),
		handlers.WithHealthStartedAt(startedAt),
	)

	productHandlers := handlers.NewProductHandlers(catalogService)
	customerHandlers := handlers.NewCustomerHandlers(customerService)
	orderHandlers := handlers.NewOrderHandlers(orderService)
	checkoutHandlers := handlers.NewCheckoutHandlers(checkoutService)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger.Named("http")),
			observability.TraceMiddleware(),
			observability.RecoveryMiddleware(logger.Named("http")),
			observability.RequestLoggerMiddleware(),
			idempotencyMiddleware,
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithProductRoutes(productHandlers.Routes),
		handlers.WithCustomerRoutes(customerHandlers.Routes),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithOrderItemRoutes(orderHandlers.ItemRoutes),
		handlers.WithCheckoutRoutes(checkoutHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelhttp.NewHandler(router, "storefront-api"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("storefront api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	cleanupCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newPaymentGateway(cfg config.Config, logger *zap.Logger) (*payments.Manager, error) {
	stripeProvider, err := payments.NewStripeProvider(payments.StripeProviderConfig{
		APIKey: cfg.PSP.StripeAPIKey,
		Logger: observability.EventLogger(logger.Named("stripe")),
	})
	if err != nil {
		return nil, err
	}
	return payments.NewManager(
		map[string]payments.Provider{"stripe": stripeProvider},
		payments.WithDefaultProvider("stripe"),
	)
}

func runIdempotencySweeper(ctx context.Context, store *idempotency.MemoryStore, cfg config.IdempotencyConfig, logger *zap.Logger) {
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := store.Sweep(cfg.CleanupBatchSize); removed > 0 {
				logger.Debug("expired idempotency records removed", zap.Int("count", removed))
			}
		}
	}
}
