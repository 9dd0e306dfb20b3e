package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iudanet/messagely/internal/config"
	"github.com/iudanet/messagely/internal/logging"
	"github.com/iudanet/messagely/internal/server"
	"github.com/iudanet/messagely/internal/server/apierr"
	"github.com/iudanet/messagely/internal/server/metrics"
	"github.com/iudanet/messagely/internal/server/middleware"
	"github.com/iudanet/messagely/internal/server/storage/sqlite"
	"github.com/iudanet/messagely/internal/server/token"
	"github.com/iudanet/messagely/internal/server/users"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run собирает зависимости и блокируется до SIGINT/SIGTERM.
// Все defer выполняются до выхода из процесса.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, os.Stdout)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing database...")
		_ = store.Close()
	}()

	tokens, err := token.NewService([]byte(cfg.SecretKey), cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	userService, err := users.NewService(store, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("user service: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, logger)

	handler := server.NewRouter(server.Deps{
		Logger:      logger,
		Tokens:      tokens,
		Users:       userService,
		Messages:    store,
		DB:          store,
		Responder:   apierr.NewResponder(logger, cfg.HideMissingMessages),
		Metrics:     metrics.New(reg),
		Gatherer:    reg,
		AuthLimiter: limiter,
		Version:     Version,
	})

	srv := server.New(cfg.ServerAddr, handler, logger, cfg.ShutdownTimeout, limiter.Stop)
	if err := srv.Run(ctx); err != nil {
		return err
	}

	logger.Info("Server stopped cleanly")
	return nil
}

func printVersion() {
	fmt.Printf("Messagely Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
