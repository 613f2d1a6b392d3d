package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/dealbrief/internal/api"
	"github.com/hyperjump/dealbrief/internal/briefer"
	"github.com/hyperjump/dealbrief/internal/config"
	"github.com/hyperjump/dealbrief/internal/inbox"
	"github.com/hyperjump/dealbrief/internal/metrics"
	"github.com/hyperjump/dealbrief/internal/search"
	"github.com/hyperjump/dealbrief/internal/storage"
	"github.com/hyperjump/dealbrief/internal/web"
)

const shutdownTimeout = 10 * time.Second

// httpServer is implemented by the API and dashboard servers.
type httpServer interface {
	Start() error
	Stop(ctx context.Context) error
}

// serve runs srv until SIGINT/SIGTERM, then shuts it down gracefully.
func serve(srv httpServer, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	return g.Wait()
}

func runAPI(args []string) error {
	fs := flag.NewFlagSet("api", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	_ = fs.Parse(args)

	cfg, resolved, err := common.setup()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Info("config loaded", zap.String("config_path", resolved), zap.Bool("debug", cfg.Debug))

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	index, err := search.NewBleveIndex(cfg.Storage.SearchIndexPath)
	if err != nil {
		return fmt.Errorf("failed to initialize search index: %w", err)
	}
	defer index.Close()

	gen, closeGen := newGenerator(cfg.Briefer, logger)
	defer closeGen()

	m := metrics.New("dealbrief_api")
	svc := briefer.NewService(store, index, gen, briefer.Options{
		Async:   cfg.Briefer.Async,
		Workers: cfg.Briefer.Workers,
		Logger:  logger,
		Metrics: m,
	})
	srv := api.NewServer(store, index, svc, &cfg.Server, &cfg.Storage, logger, m)
	err = serve(srv, logger)
	if waitErr := svc.Wait(); waitErr != nil {
		logger.Warn("background brief generation failed", zap.Error(waitErr))
	}
	return err
}

// newGenerator returns the Vertex AI generator when a project is configured and a
// generator that fails every request otherwise, so deals are still stored.
func newGenerator(cfg config.BrieferConfig, logger *zap.Logger) (briefer.Generator, func()) {
	if cfg.ProjectID == "" {
		logger.Warn("brief generation disabled", zap.Error(briefer.ErrNotConfigured))
		return briefer.UnavailableGenerator{}, func() {}
	}
	gen, err := briefer.NewVertexGenerator(context.Background(), cfg.ProjectID, cfg.Region, cfg.Model, logger)
	if err != nil {
		logger.Error("vertex ai client failed, brief generation disabled", zap.Error(err))
		return briefer.UnavailableGenerator{}, func() {}
	}
	logger.Info("brief generation enabled",
		zap.String("project", cfg.ProjectID), zap.String("region", cfg.Region), zap.String("model", cfg.Model))
	return gen, func() { _ = gen.Close() }
}

func runWeb(args []string) error {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	port := fs.Int("port", 0, "listen port (overrides config)")
	_ = fs.Parse(args)

	cfg, resolved, err := common.setup()
	if err != nil {
		return err
	}
	if *port > 0 {
		cfg.Dashboard.Port = *port
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolved), zap.String("api_base_url", cfg.API.BaseURL), zap.Bool("debug", cfg.Debug))

	m := metrics.New("dealbrief_web")
	deals, err := newClient(cfg, logger, m)
	if err != nil {
		return err
	}
	srv, err := web.NewServer(deals, &cfg.Dashboard, logger, m)
	if err != nil {
		return err
	}
	return serve(srv, logger)
}

func runInbox(args []string) error {
	fs := flag.NewFlagSet("inbox", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	syncExisting := fs.Bool("sync", false, "submit files already in the inbox at start")
	_ = fs.Parse(args)

	cfg, resolved, err := common.setup()
	if err != nil {
		return err
	}
	if fs.NArg() > 0 {
		cfg.Inbox.Directories = fs.Args()
	}
	cfg.Inbox.SyncExisting = cfg.Inbox.SyncExisting || *syncExisting
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Info("config loaded", zap.String("config_path", resolved), zap.String("api_base_url", cfg.API.BaseURL))

	deals, err := newClient(cfg, logger, nil)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return inbox.NewImporter(deals, logger).Run(ctx, cfg.Inbox)
}
