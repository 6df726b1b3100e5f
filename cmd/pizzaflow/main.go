package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/pizzaflow/internal/cart"
	"github.com/jcmexdev/pizzaflow/internal/catalog"
	"github.com/jcmexdev/pizzaflow/internal/config"
	"github.com/jcmexdev/pizzaflow/internal/httpx"
	"github.com/jcmexdev/pizzaflow/internal/order"
	"github.com/jcmexdev/pizzaflow/internal/payment"
	"github.com/jcmexdev/pizzaflow/internal/pkg/cache"
	"github.com/jcmexdev/pizzaflow/internal/pkg/telemetry"
	"github.com/jcmexdev/pizzaflow/internal/pkg/userlock"
	"github.com/jcmexdev/pizzaflow/internal/store/sqlite"
	"github.com/jcmexdev/pizzaflow/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.Common.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, "pizzaflow")
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	st, err := sqlite.Open(cfg.SQLite.Path)
	if err != nil {
		slog.Error("failed to open state store", "path", cfg.SQLite.Path, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var cat catalog.Provider
	cat, err = catalog.NewFileProvider(cfg.Catalog.StoresPath, cfg.Catalog.MenuPath)
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis.Addr, "pizzaflow")
		cat = catalog.NewCachedProvider(cat, redisCache, time.Duration(cfg.Redis.CacheTTL)*time.Second)
		slog.Info("catalog cache enabled", "addr", cfg.Redis.Addr)
	}

	locks := userlock.New()
	userService := users.NewService(st, cat)
	cartManager := cart.NewManager(st, cat, locks)
	engine := order.NewEngine(st, payment.MockProvider{}, locks)

	handler := httpx.NewHandler(userService, cartManager, engine, cat)
	router := otelhttp.NewHandler(httpx.NewRouter(handler), "pizzaflow.http")

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("http started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("shutdown...")
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
}
