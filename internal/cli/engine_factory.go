package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tinct"
	"github.com/aretw0/tinct/pkg/adapters/redis"
	"github.com/aretw0/tinct/pkg/observability"
)

// EngineOptions describes how the CLI builds an engine.
type EngineOptions struct {
	// Dir is the template directory. Ignored when RedisAddr is set.
	Dir string
	// RedisAddr switches the template source to a Redis store.
	RedisAddr   string
	RedisPrefix string
	Formats     map[string]string
	MaxDepth    int
	Hooks       []observability.Hooks
	Debug       bool
}

// createEngine initializes a Tinct engine with standard CLI conventions.
// The returned close function releases the template source.
func createEngine(opts EngineOptions, logger *slog.Logger) (*tinct.Engine, func() error, error) {
	engineOpts := []tinct.Option{
		tinct.WithLogger(logger),
		tinct.WithFormats(opts.Formats),
	}
	if opts.MaxDepth > 0 {
		engineOpts = append(engineOpts, tinct.WithMaxDepth(opts.MaxDepth))
	}

	hooks := opts.Hooks
	if opts.Debug {
		hooks = append(hooks, createDebugHooks(logger))
	}
	if len(hooks) > 0 {
		engineOpts = append(engineOpts, tinct.WithHooks(observability.Chain(hooks...)))
	}

	closer := func() error { return nil }
	if opts.RedisAddr != "" {
		storeOpts := []redis.Option{redis.WithLogger(logger)}
		if opts.RedisPrefix != "" {
			storeOpts = append(storeOpts, redis.WithPrefix(opts.RedisPrefix))
		}
		store := redis.New(opts.RedisAddr, "", 0, storeOpts...)
		engineOpts = append(engineOpts, tinct.WithSource(store))
		closer = store.Close
	}

	engine, err := tinct.New(opts.Dir, engineOpts...)
	if err != nil {
		_ = closer()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, closer, nil
}

func createDebugHooks(logger *slog.Logger) observability.Hooks {
	return observability.Hooks{
		OnParse: func(_ context.Context, e *observability.ParseEvent) {
			if e.Cached {
				logger.Debug("Template cache hit", "template", e.Template)
				return
			}
			logger.Debug("Template parsed", "template", e.Template, "duration", e.Duration, "outcome", e.Outcome())
		},
		OnRender: func(_ context.Context, e *observability.RenderEvent) {
			logger.Debug("Template rendered", "template", e.Template, "bytes", e.Bytes, "duration", e.Duration, "outcome", e.Outcome())
		},
	}
}
