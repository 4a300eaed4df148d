package tinct

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/tinct/pkg/adapters/file"
	"github.com/aretw0/tinct/pkg/observability"
	"github.com/aretw0/tinct/pkg/ports"
	"github.com/aretw0/tinct/pkg/template"
)

// Engine is the high-level entry point for the Tinct library.
// It resolves templates through a TemplateSource, caches the parsed result and
// renders host data into them.
type Engine struct {
	source    ports.TemplateSource
	hooks     observability.Hooks
	logger    *slog.Logger
	formats   map[string]string
	parseOpts []template.ParseOption
	Name      string

	mu    sync.RWMutex
	cache map[string]*template.Template
	// gen counts invalidations. A load that started before one is not cached.
	gen uint64
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSource injects a custom TemplateSource, bypassing the default directory source.
func WithSource(s ports.TemplateSource) Option {
	return func(e *Engine) {
		e.source = s
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks observability.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithFormats sets per-type format overrides applied to every template the
// engine loads, e.g. {"color": "{rx}{gx}{bx}"}.
func WithFormats(formats map[string]string) Option {
	return func(e *Engine) {
		for typeName, format := range formats {
			e.formats[typeName] = format
		}
	}
}

// WithMaxDepth limits section nesting in every template the engine parses.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.parseOpts = append(e.parseOpts, template.WithMaxDepth(depth))
	}
}

// WithDelimiters sets the initial tag delimiters for every template.
func WithDelimiters(start, end string) Option {
	return func(e *Engine) {
		e.parseOpts = append(e.parseOpts, template.WithDelimiters(start, end))
	}
}

// New initializes a new Tinct Engine.
// By default, templates are read from the directory at templateDir.
// If WithSource option is provided, templateDir can be empty and is only used as a label.
func New(templateDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{
		formats: map[string]string{},
		cache:   map[string]*template.Template{},
	}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.DiscardHandler)
	}

	if eng.source == nil {
		if templateDir == "" {
			return nil, fmt.Errorf("templateDir is required when no custom source is provided")
		}
		absPath, err := filepath.Abs(templateDir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)
		eng.source = file.New(absPath, file.WithLogger(eng.logger))
	} else if templateDir != "" {
		eng.Name = filepath.Base(templateDir)
	}

	if eng.Name != "" {
		eng.logger = eng.logger.With("templates", eng.Name)
	}

	return eng, nil
}

// RenderOption adjusts a single render call.
type RenderOption func(*renderConfig)

type renderConfig struct {
	formats map[string]string
}

// Override sets a format override for one render only. It wins over the
// engine-wide formats from WithFormats.
func Override(typeName, format string) RenderOption {
	return func(c *renderConfig) {
		if c.formats == nil {
			c.formats = map[string]string{}
		}
		c.formats[typeName] = format
	}
}

// Template returns the parsed template for name, loading and caching it on
// first use.
func (e *Engine) Template(ctx context.Context, name string) (*template.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[name]
	gen := e.gen
	e.mu.RUnlock()
	if ok {
		e.hooks.Parse(ctx, &observability.ParseEvent{
			EventBase: observability.EventBase{Timestamp: time.Now(), Type: observability.EventParse, Template: name},
			Cached:    true,
		})
		return tmpl, nil
	}

	src, err := e.source.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %q: %w", name, err)
	}

	tmpl, err = e.parse(ctx, name, src)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.gen == gen {
		e.cache[name] = tmpl
	}
	e.mu.Unlock()
	return tmpl, nil
}

func (e *Engine) parse(ctx context.Context, name, src string) (*template.Template, error) {
	start := time.Now()
	tmpl, err := template.Parse(src, e.parseOpts...)

	e.hooks.Parse(ctx, &observability.ParseEvent{
		EventBase: observability.EventBase{
			Timestamp: start,
			Type:      observability.EventParse,
			Template:  name,
			Duration:  time.Since(start),
			Err:       err,
		},
	})

	if err != nil {
		e.logger.Debug("Template parse failed", "template", name, "err", err)
		if name == "" {
			return nil, fmt.Errorf("failed to parse template: %w", err)
		}
		return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
	}

	for typeName, format := range e.formats {
		tmpl.SetFormat(typeName, format)
	}
	return tmpl, nil
}

// Parse parses src with the engine's settings. The result is not cached.
func (e *Engine) Parse(ctx context.Context, src string) (*template.Template, error) {
	return e.parse(ctx, "", src)
}

// Render renders the named template with data. data may be a template.Value
// or decoded YAML/JSON (maps, slices, scalars).
func (e *Engine) Render(ctx context.Context, name string, data any, opts ...RenderOption) (string, error) {
	tmpl, err := e.Template(ctx, name)
	if err != nil {
		return "", err
	}
	return e.render(ctx, name, tmpl, data, opts)
}

// RenderString parses src and renders it with data. The parsed template is
// not cached.
func (e *Engine) RenderString(ctx context.Context, src string, data any, opts ...RenderOption) (string, error) {
	tmpl, err := e.parse(ctx, "", src)
	if err != nil {
		return "", err
	}
	return e.render(ctx, "", tmpl, data, opts)
}

func (e *Engine) render(ctx context.Context, name string, tmpl *template.Template, data any, opts []RenderOption) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var cfg renderConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.formats) > 0 {
		tmpl = tmpl.Clone()
		for typeName, format := range cfg.formats {
			tmpl.SetFormat(typeName, format)
		}
	}

	start := time.Now()
	out, err := e.renderValue(tmpl, data)

	e.hooks.Render(ctx, &observability.RenderEvent{
		EventBase: observability.EventBase{
			Timestamp: start,
			Type:      observability.EventRender,
			Template:  name,
			Duration:  time.Since(start),
			Err:       err,
		},
		Bytes: len(out),
	})

	if err != nil {
		e.logger.Debug("Template render failed", "template", name, "err", err)
		if name == "" {
			return "", fmt.Errorf("failed to render template: %w", err)
		}
		return "", fmt.Errorf("failed to render template %q: %w", name, err)
	}
	return out, nil
}

func (e *Engine) renderValue(tmpl *template.Template, data any) (string, error) {
	root, err := template.FromAny(data)
	if err != nil {
		return "", fmt.Errorf("invalid render data: %w", err)
	}
	return tmpl.Render(root)
}

// Check loads and parses the named template without rendering it.
func (e *Engine) Check(ctx context.Context, name string) error {
	_, err := e.Template(ctx, name)
	return err
}

// List returns the names of all templates the source provides.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	names, err := e.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return names, nil
}

// Invalidate drops the cached parse of name, forcing a reload on next use.
func (e *Engine) Invalidate(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cache, name)
	e.gen++
}

// Reset drops every cached template.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.cache)
	e.gen++
}

// Watch clears the template cache whenever the source reports a change and
// forwards the signal on the returned channel.
// Returns error if the source does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, ok := e.source.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("current source does not support watching")
	}

	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range changes {
			e.Reset()
			e.logger.Info("Template cache cleared")
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, nil
}

// Source returns the underlying TemplateSource used by the engine.
func (e *Engine) Source() ports.TemplateSource {
	return e.source
}
