package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/gopersonal/storefront/internal/api"
	"github.com/gopersonal/storefront/internal/cart"
	"github.com/gopersonal/storefront/internal/checkout"
	"github.com/gopersonal/storefront/internal/orders"
	"github.com/gopersonal/storefront/internal/session"
	"github.com/gopersonal/storefront/internal/storage"
	"github.com/gopersonal/storefront/internal/ui"
	"github.com/gopersonal/storefront/pkg/config"
	"github.com/gopersonal/storefront/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	storageClient, err := storage.New(cfg.Storage)
	if err != nil {
		logg.Error(context.Background(), "failed to open device storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := storageClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing device storage", err)
		}
	}()

	store := storage.NewStore(storageClient)

	apiClient, err := api.NewClient(cfg.API, cfg.Upload, store, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build api client", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionMgr := session.NewManager(apiClient, store, logg)
	if err := sessionMgr.Bootstrap(ctx); err != nil {
		logg.Warn(ctx, "session bootstrap failed, starting signed out")
	}

	cartMgr := cart.NewManager(apiClient, sessionMgr, logg)
	if sessionMgr.IsAuthenticated() {
		if err := cartMgr.RefreshCart(ctx); err != nil {
			logg.Warn(ctx, "initial cart refresh failed")
		}
	}

	checkoutSvc := checkout.NewService(apiClient, cartMgr, cfg.Checkout, logg)
	orderSvc := orders.NewService(apiClient, logg)

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"api_url": cfg.API.BaseURL,
	})
	logg.Info(startCtx, "starting storefront")

	app := ui.NewApp(apiClient, sessionMgr, cartMgr, checkoutSvc, orderSvc, logg, os.Stdin, os.Stdout)
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "storefront stopped unexpectedly", err)
		os.Exit(1)
	}
}
