// Package main запускает HTTP-сервер сервиса синхронизации CRM.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/crmsync-system/internal/config"
	"github.com/mmeshcher/crmsync-system/internal/handler"
	"github.com/mmeshcher/crmsync-system/internal/ledger"
	"github.com/mmeshcher/crmsync-system/internal/notify"
	"github.com/mmeshcher/crmsync-system/internal/platform"
	"github.com/mmeshcher/crmsync-system/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	store := ledger.NewStore(cfg.LedgerFile)
	client := platform.NewClient(cfg.PlatformBaseURL, cfg.PlatformAPIToken)
	notifier := notify.NewEmailNotifier(logger)

	processor := service.NewProcessor(client, notifier, logger)

	h := handler.NewHandler(processor, store, logger, cfg.DefaultPlan, cfg.RevenueShare)
	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting crmsync server",
			"addr", cfg.RunAddress,
			"platform", cfg.PlatformBaseURL,
			"ledger", cfg.LedgerFile,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
