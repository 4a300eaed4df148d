package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/tinct/internal/logging"
	httpAdapter "github.com/aretw0/tinct/pkg/adapters/http"
	"github.com/aretw0/tinct/pkg/adapters/mcp"
	"github.com/aretw0/tinct/pkg/observability"
)

// ServeOptions contains the configuration for the serve and mcp commands.
type ServeOptions struct {
	Dir         string
	RedisAddr   string
	RedisPrefix string
	Port        int
	// Transport is "stdio" or "sse"; mcp only.
	Transport string
	Debug     bool
}

func serverLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWith(os.Stderr, level, logging.FormatJSON)
}

// RunServe starts the HTTP API and blocks until ctx is cancelled.
func RunServe(ctx context.Context, opts ServeOptions) error {
	logger := serverLogger(opts.Debug)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return err
	}

	engine, closeEngine, err := createEngine(EngineOptions{
		Dir:         opts.Dir,
		RedisAddr:   opts.RedisAddr,
		RedisPrefix: opts.RedisPrefix,
		Hooks:       []observability.Hooks{metrics.Hooks()},
		Debug:       opts.Debug,
	}, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	// Keep the cache fresh when the source can report changes.
	if _, err := engine.Watch(ctx); err != nil {
		logger.Debug("Template source is not watchable", "err", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           httpAdapter.NewHandler(engine, httpAdapter.WithLogger(logger), httpAdapter.WithMetrics(reg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting Tinct Server", "address", srv.Addr, "templates", engine.Name)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Start shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		logger.Info("Tinct Server stopped gracefully")
		return nil
	}
}

// RunMCP serves the engine as an MCP server over stdio or SSE.
func RunMCP(ctx context.Context, opts ServeOptions) error {
	// Stdout belongs to the JSON-RPC stream; logs go to stderr.
	logger := serverLogger(opts.Debug)

	engine, closeEngine, err := createEngine(EngineOptions{
		Dir:         opts.Dir,
		RedisAddr:   opts.RedisAddr,
		RedisPrefix: opts.RedisPrefix,
		Debug:       opts.Debug,
	}, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	if _, err := engine.Watch(ctx); err != nil {
		logger.Debug("Template source is not watchable", "err", err)
	}

	srv := mcp.NewServer(engine, logger)
	switch opts.Transport {
	case "", "stdio":
		logger.Info("Starting Tinct MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		err := srv.ServeSSE(ctx, opts.Port)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}
}
