package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/atacadao/internal/advisor"
	"github.com/MrJamesThe3rd/atacadao/internal/auth"
	authStore "github.com/MrJamesThe3rd/atacadao/internal/auth/store"
	"github.com/MrJamesThe3rd/atacadao/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/atacadao/internal/catalog/store"
	"github.com/MrJamesThe3rd/atacadao/internal/config"
	"github.com/MrJamesThe3rd/atacadao/internal/database"
	atacadaoHttp "github.com/MrJamesThe3rd/atacadao/internal/http"
	authHandler "github.com/MrJamesThe3rd/atacadao/internal/http/auth"
	catalogHandler "github.com/MrJamesThe3rd/atacadao/internal/http/catalog"
	matchingHandler "github.com/MrJamesThe3rd/atacadao/internal/http/matching"
	notificationHandler "github.com/MrJamesThe3rd/atacadao/internal/http/notification"
	orderHandler "github.com/MrJamesThe3rd/atacadao/internal/http/order"
	reportHandler "github.com/MrJamesThe3rd/atacadao/internal/http/report"
	txHandler "github.com/MrJamesThe3rd/atacadao/internal/http/transaction"
	"github.com/MrJamesThe3rd/atacadao/internal/logging"
	"github.com/MrJamesThe3rd/atacadao/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/atacadao/internal/matching/store"
	"github.com/MrJamesThe3rd/atacadao/internal/notification"
	notificationStore "github.com/MrJamesThe3rd/atacadao/internal/notification/store"
	"github.com/MrJamesThe3rd/atacadao/internal/order"
	orderStore "github.com/MrJamesThe3rd/atacadao/internal/order/store"
	"github.com/MrJamesThe3rd/atacadao/internal/transaction"
	txStore "github.com/MrJamesThe3rd/atacadao/internal/transaction/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DB.Migrate {
		if err := database.Migrate(cfg.ConnectionString()); err != nil {
			return err
		}
	}

	db, err := database.Open(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	var advisorClient advisor.Client
	if cfg.Advisor.APIKey != "" {
		advisorClient = advisor.NewGeminiClient(cfg.Advisor.BaseURL, cfg.Advisor.Model, cfg.Advisor.APIKey, cfg.Advisor.Timeout)
	} else {
		slog.Info("advisor disabled, GEMINI_API_KEY not set")
	}

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.SessionTTL, cfg.Auth.ActionTTL)

	var (
		authService = auth.NewService(authStore.New(db), tokens, auth.LogMailer{},
			auth.WithFreshWindow(cfg.Auth.FreshWindow), auth.WithCost(cfg.Auth.BcryptCost))
		notificationService = notification.NewService(notificationStore.New(db))
		catalogService      = catalog.NewService(catalogStore.New(db))
		orderService        = order.NewService(orderStore.New(db), notificationService, authService, catalogService,
			order.WithFreshWindow(cfg.Auth.FreshWindow))
		matchingService    = matching.NewService(matchingStore.New(db))
		transactionService = transaction.NewService(txStore.New(db), matchingService,
			transaction.WithMaxBatch(cfg.Batch.MaxSize))
		advisorService = advisor.NewService(advisorClient)
	)

	router := atacadaoHttp.New(
		atacadaoHttp.Options{Timeout: cfg.Server.Timeout, CORSOrigins: cfg.Server.CORSOrigins},
		authService,
		atacadaoHttp.Handlers{
			Auth:          authHandler.NewHandler(authService),
			Orders:        orderHandler.NewHandler(orderService),
			Reports:       reportHandler.NewHandler(orderService, loc),
			Notifications: notificationHandler.NewHandler(notificationService),
			Transactions:  txHandler.NewHandler(transactionService, advisorService),
			Categories:    matchingHandler.NewHandler(matchingService),
			Products:      catalogHandler.NewHandler(catalogService, advisorService),
		},
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "port", cfg.App.Port, "timezone", loc.String())

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
