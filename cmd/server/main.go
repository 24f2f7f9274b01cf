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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Brownie44l1/plaga-api/config"
	"github.com/Brownie44l1/plaga-api/internal/catalog"
	"github.com/Brownie44l1/plaga-api/internal/diagnosis"
	"github.com/Brownie44l1/plaga-api/internal/handlers"
	"github.com/Brownie44l1/plaga-api/internal/model"
	"github.com/Brownie44l1/plaga-api/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pests, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	engine := model.NewONNXEngine(cfg.OnnxLibrary)
	defer engine.Close()

	classifier := model.NewClassifier(engine, cfg.ModelPath, cfg.LabelsPath, logger)
	defer classifier.Dispose()

	svc := diagnosis.NewService(classifier, pests, logger)
	handler := handlers.NewHandler(svc, pests, cfg.MaxUploadBytes, logger)

	var bot *telegram.Bot
	if cfg.TelegramToken != "" {
		if bot, err = telegram.NewBot(cfg.TelegramToken, svc, logger); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.EagerLoad {
		go svc.Warmup(gctx, cfg.LoadDelay)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("server starting", "port", cfg.Port, "model", cfg.ModelPath, "labels", cfg.LabelsPath)
	slog.Info("endpoints",
		"page", "GET / , POST /analyze, POST /describe",
		"api", "POST /api/analyze, POST /api/describe, GET /api/status, GET /api/pests",
		"health", "GET /health")
	g.Go(func() error { return serve(gctx, srv) })

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		slog.Info("metrics listening", "addr", cfg.MetricsAddr)
		g.Go(func() error { return serve(gctx, metricsSrv) })
	}

	if bot != nil {
		g.Go(func() error {
			if err := bot.Run(gctx); err != nil {
				return fmt.Errorf("telegram bot: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// serve runs srv until ctx is done, then shuts it down gracefully.
// A listener failure is returned so the whole process stops.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down", "addr", srv.Addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
