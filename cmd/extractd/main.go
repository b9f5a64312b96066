// Extractd is an entity-extraction daemon for Hebrew calendar messages.
//
// It exposes a single HTTP endpoint that turns free-form text plus a
// classified intent into a structured event/reminder record, using a
// deterministic pattern pass and an optional model-backed pass.
//
// Usage:
//
//	# Start with config from ~/.config/extractd/config.yaml
//	extractd
//
//	# Explicit config file
//	extractd -config /etc/extractd/config.yaml
//
//	# Configure via environment
//	EXTRACTD_SERVER_PORT=8700 extractd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/luachlabs/extractd/internal/config"
	"github.com/luachlabs/extractd/internal/extraction"
	httpserver "github.com/luachlabs/extractd/internal/http"
	"github.com/luachlabs/extractd/internal/logging"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/extractd/config.yaml)")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  extractd           Start the extraction daemon\n")
			fmt.Fprintf(os.Stderr, "  extractd version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("extractd by Luach Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the daemon and blocks until the context is cancelled.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	logger.Info("Starting extractd",
		zap.Int("port", cfg.Server.Port),
		zap.String("provider", cfg.Extraction.Provider),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout.Duration()))

	engineCfg := engineConfig(cfg)
	completer, err := extraction.NewCompleter(engineCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize model provider: %w", err)
	}

	orchestrator := extraction.NewOrchestrator(
		engineCfg,
		completer,
		extraction.SystemClock(),
		logger.Named("extraction"),
		extraction.NewMetrics(logger.Named("metrics")),
	)

	srv, err := httpserver.NewServer(orchestrator, logger.Named("http"), &httpserver.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		DefaultTimezone: cfg.Extraction.DefaultTimezone,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}
	srv.Use(httpserver.NewHTTPMetrics(logger.Named("http")).MetricsMiddleware())

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("starting metrics server", zap.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// engineConfig maps daemon configuration onto the extraction engine's
// own config shape, unwrapping the Secret and Duration types.
func engineConfig(cfg *config.Config) extraction.Config {
	providers := make(map[string]extraction.ProviderConfig, len(cfg.Extraction.Providers))
	for name, pc := range cfg.Extraction.Providers {
		providers[name] = extraction.ProviderConfig{
			Model:     pc.Model,
			APIKey:    pc.APIKey.Value(),
			BaseURL:   pc.BaseURL,
			MaxTokens: pc.MaxTokens,
			Timeout:   int(pc.Timeout.Duration().Seconds()),
		}
	}
	return extraction.Config{
		Provider:            cfg.Extraction.Provider,
		Providers:           providers,
		ConfidenceThreshold: cfg.Extraction.ConfidenceThreshold,
		ModelTimeout:        cfg.Extraction.ModelTimeout.Duration(),
	}
}
