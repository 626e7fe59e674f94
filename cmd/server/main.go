package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/draftarena/backend/internal/catalog"
	"github.com/draftarena/backend/internal/config"
	"github.com/draftarena/backend/internal/draft"
	"github.com/draftarena/backend/internal/httpapi"
	"github.com/draftarena/backend/internal/hub"
	"github.com/draftarena/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("database open failed", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	st := store.NewGorm(db)

	champs := catalog.New(cfg.CatalogURL, logger)
	if err := champs.Refresh(ctx); err != nil {
		// Non-fatal: the validator degrades open until a refresh lands.
		logger.Warn("initial catalog fetch failed", zap.Error(err))
	}
	scheduler, err := catalog.StartRefresher(ctx, champs, cfg.CatalogRefresh, logger)
	if err != nil {
		logger.Fatal("catalog refresher failed", zap.Error(err))
	}
	defer func() { _ = scheduler.Shutdown() }()

	orc := draft.NewOrchestrator(st, champs.Valid, logger)
	h := hub.New(ctx, orc, clockwork.NewRealClock(), cfg.TurnSeconds, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapi.SetupRoutes(h, st, logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		h.Inbox() <- hub.Shutdown{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
