package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/yahtzee-backend/internal/config"
	"github.com/DoyleJ11/yahtzee-backend/internal/httpapi"
	"github.com/DoyleJ11/yahtzee-backend/internal/hub"
	"github.com/DoyleJ11/yahtzee-backend/internal/observability"
	"github.com/DoyleJ11/yahtzee-backend/internal/results"
	"github.com/DoyleJ11/yahtzee-backend/internal/ws"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}

	logger, err := observability.NewLogger(cfg.Logging())
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openResults(cfg, logger)
	if err != nil {
		return err
	}

	h := hub.NewHub(ctx, hub.Options{
		IdleTTL:  cfg.RoomIdleTTL,
		Logger:   logger,
		OnFinish: results.Recorder(store, logger, 5*time.Second),
	})

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(httpapi.Deps{
		Hub:          h,
		Results:      store,
		ResultsLimit: cfg.ResultsLimit,
		WS: ws.Options{
			Logger:         logger,
			ClientBuffer:   cfg.ClientBuffer,
			PingInterval:   cfg.PingInterval,
			PingTimeout:    cfg.PingTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			OriginPatterns: cfg.Origins(),
		},
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		h.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openResults(cfg config.Config, logger *zap.Logger) (results.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("keeping game results in memory")
		return results.NewMemoryStore(cfg.ResultsLimit), nil
	}
	db, err := results.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	store, err := results.NewGormStore(db)
	if err != nil {
		return nil, err
	}
	logger.Info("recording game results in postgres")
	return store, nil
}
