package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trends-dashboard/internal/config"
	"trends-dashboard/internal/handler"
	"trends-dashboard/pkg/api"
	"trends-dashboard/pkg/dashboard"
	"trends-dashboard/pkg/logger"
	"trends-dashboard/pkg/trends"
	"trends-dashboard/pkg/wordcloud"
)

type Application struct {
	configPath string
	debug      bool
}

func main() {
	app := &Application{}

	flag.StringVar(&app.configPath, "config", "", "Configuration file path (optional)")
	flag.BoolVar(&app.debug, "debug", false, "Enable debug mode")
	flag.Parse()

	if err := app.Run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func (app *Application) Run() error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.NewManager().Load(app.configPath)
	if err != nil {
		return err
	}
	if app.debug {
		cfg.Logger.Level = "debug"
	}
	logger.SetLogger(logger.New(cfg.Logger))
	lg := logger.GetLogger().WithField("component", "server")

	client := api.NewClient(cfg.Trends.Client)
	defer client.Close()

	fetcher := trends.NewFetcher(client, cfg.Retry)
	board := dashboard.New(fetcher, wordcloud.NewBuilder(cfg.Render.WordCloud), dashboard.Options{
		Geos:         cfg.Trends.Geos,
		Timeframe:    cfg.Trends.Timeframe,
		DefaultTerms: cfg.Trends.DefaultTerms,
		RisingLimit:  cfg.Render.RisingLimit,
		Chart:        cfg.Render.Chart,
	})

	web := handler.NewController(board).App(handler.ControllerConfig{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			lg.Info("Shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		lg.WithFields(map[string]interface{}{
			"addr":         addr,
			"geos":         len(cfg.Trends.Geos),
			"timeframe":    cfg.Trends.Timeframe,
			"max_attempts": cfg.Retry.MaxAttempts,
			"retry_delay":  cfg.Retry.Delay.String(),
		}).Info("Dashboard listening")
		errCh <- web.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lg.Info("Shutting down gracefully")
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	if err := web.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	lg.Info("Server stopped")
	return nil
}
