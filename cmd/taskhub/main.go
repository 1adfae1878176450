package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub/internal/handler"
	"taskhub/internal/logger"
	"taskhub/internal/metrics"
	"taskhub/internal/server"
	storage "taskhub/repository/inmemory"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type apiServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

func main() {
	// Bootstrap logger so config warnings are not lost; replaced once config is read.
	if err := logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL")); err != nil {
		panic(err)
	}

	cfg, err := server.ReadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		logger.Error("invalid command line", zap.Error(err))
		_ = logger.Sync()
		os.Exit(2)
	}

	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting service",
		zap.String("service", cfg.ServiceName),
		zap.String("env", cfg.Env),
		zap.String("addr", cfg.ListenAddr()),
	)

	m := metrics.New(cfg.ServiceName)
	h := handler.New(storage.NewStorage(),
		handler.WithMetrics(m),
		handler.WithLogger(logger.Get().Named("handler")),
	)
	api := server.NewTaskAPI(h, m, cfg, logger.Get().Named("http"))
	if api == nil {
		logger.Fatal("failed to initialize API")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := run(api, sigChan, cfg.ShutdownTimeout); err != nil {
		logger.Error("service stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("service stopped")
}

// run serves until a signal arrives or the server fails, then shuts down
// within timeout.
func run(api apiServer, sigChan <-chan os.Signal, timeout time.Duration) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := api.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			return err
		}
		logger.Info("graceful shutdown complete")
		return nil

	case err := <-serverErr:
		return err
	}
}
