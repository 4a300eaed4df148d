// Package apply renders every output of a project and writes the results.
package apply

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/aretw0/tinct"
	"github.com/aretw0/tinct/internal/config"
)

// Status is the outcome of a single output.
type Status string

const (
	StatusWritten   Status = "written"
	StatusUnchanged Status = "unchanged"
	StatusPlanned   Status = "planned" // dry run: would be written
	StatusFailed    Status = "failed"
)

// Result describes what happened to one output.
type Result struct {
	Template string
	Target   string
	Status   Status
	Bytes    int
	Err      error
}

// Summary collects the results of an Apply run in project order.
type Summary struct {
	Results []Result
}

// Count returns how many results have status s.
func (s Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Err joins the errors of every failed output, or returns nil.
func (s Summary) Err() error {
	var errs []error
	for _, r := range s.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Template, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Applier renders project outputs with an engine.
type Applier struct {
	engine *tinct.Engine
	logger *slog.Logger
	dryRun bool
}

type Option func(*Applier)

// WithLogger sets the logger for per-output progress and failures.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Applier) {
		a.logger = logger
	}
}

// WithDryRun renders everything but writes nothing.
func WithDryRun(dryRun bool) Option {
	return func(a *Applier) {
		a.dryRun = dryRun
	}
}

// New creates an Applier.
func New(engine *tinct.Engine, opts ...Option) *Applier {
	a := &Applier{engine: engine, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply renders each output of p with data and writes it to its target.
// A failing output is logged and skipped; the others still run. Targets whose
// content would not change are left untouched.
func (a *Applier) Apply(ctx context.Context, p *config.Project, data any) Summary {
	var summary Summary
	for _, out := range p.Outputs {
		if ctx.Err() != nil {
			summary.Results = append(summary.Results, Result{
				Template: out.Template,
				Target:   p.Resolve(out.Target),
				Status:   StatusFailed,
				Err:      ctx.Err(),
			})
			continue
		}

		res := a.applyOne(ctx, p, out, data)
		if res.Err != nil {
			a.logger.Error("Output failed", "template", res.Template, "target", res.Target, "err", res.Err)
		} else {
			a.logger.Info("Output done", "template", res.Template, "target", res.Target, "status", res.Status)
		}
		summary.Results = append(summary.Results, res)
	}
	return summary
}

func (a *Applier) applyOne(ctx context.Context, p *config.Project, out config.Output, data any) Result {
	res := Result{Template: out.Template, Target: p.Resolve(out.Target)}

	var opts []tinct.RenderOption
	for typeName, format := range out.Formats {
		opts = append(opts, tinct.Override(typeName, format))
	}

	rendered, err := a.engine.Render(ctx, out.Template, data, opts...)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}
	res.Bytes = len(rendered)

	existing, err := os.ReadFile(res.Target)
	switch {
	case err == nil && bytes.Equal(existing, []byte(rendered)):
		res.Status = StatusUnchanged
		return res
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		res.Status, res.Err = StatusFailed, fmt.Errorf("failed to read target: %w", err)
		return res
	}

	if a.dryRun {
		res.Status = StatusPlanned
		return res
	}

	if err := os.MkdirAll(filepath.Dir(res.Target), 0o755); err != nil {
		res.Status, res.Err = StatusFailed, fmt.Errorf("failed to ensure target directory: %w", err)
		return res
	}
	if err := atomic.WriteFile(res.Target, strings.NewReader(rendered)); err != nil {
		res.Status, res.Err = StatusFailed, fmt.Errorf("failed to write target: %w", err)
		return res
	}
	res.Status = StatusWritten
	return res
}
