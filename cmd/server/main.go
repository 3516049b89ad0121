package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/helldraft/helldraft/internal/analytics"
	"github.com/helldraft/helldraft/internal/catalog"
	"github.com/helldraft/helldraft/internal/config"
	"github.com/helldraft/helldraft/internal/engine"
	"github.com/helldraft/helldraft/internal/httpapi"
	"github.com/helldraft/helldraft/internal/hub"
	"github.com/helldraft/helldraft/internal/lobby"
	"github.com/helldraft/helldraft/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := buildLogger(cfg.Dev)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	cat, err := catalog.Load(cfg.CatalogDir)
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}

	var snaps store.Store
	if cfg.DatabaseURL != "" {
		snaps, err = store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("open snapshot store", zap.Error(err))
		}
	} else {
		logger.Info("no database configured, snapshots held in memory")
		snaps = store.NewMemory()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, lobby.Deps{
		Engine:    engine.New(cat, nil),
		Store:     snaps,
		Analytics: analytics.NewLog(logger),
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(h, logger),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func buildLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
