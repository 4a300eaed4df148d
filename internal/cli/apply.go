package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/tinct"
	"github.com/aretw0/tinct/internal/apply"
	"github.com/aretw0/tinct/internal/config"
	"github.com/aretw0/tinct/internal/presentation/tui"
)

// ApplyOptions contains the configuration for the apply command.
type ApplyOptions struct {
	Project string
	Set     []string
	DryRun  bool
	Watch   bool
	Debug   bool
}

// RunApply renders every output of a project. It returns the joined errors
// of the failed outputs; the others are still written.
func RunApply(ctx context.Context, opts ApplyOptions, stdout io.Writer) error {
	logger := NewLogger(opts.Debug)

	project, data, err := loadProject(opts)
	if err != nil {
		return err
	}

	engine, closeEngine, err := createEngine(EngineOptions{
		Dir:      project.Resolve(project.Templates),
		Formats:  project.Formats,
		MaxDepth: project.MaxDepth,
		Debug:    opts.Debug,
	}, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	applier := apply.New(engine, apply.WithLogger(logger), apply.WithDryRun(opts.DryRun))
	render := tui.NewRenderer(stdout)

	summary := applier.Apply(ctx, project, data)
	printSummary(stdout, render, summary, logger)

	if opts.Watch {
		return watchProject(ctx, opts, engine, applier, stdout, render, logger)
	}
	return summary.Err()
}

// loadProject reads the project and builds its render data: theme data,
// then project data, then --set assignments.
func loadProject(opts ApplyOptions) (*config.Project, map[string]any, error) {
	path := opts.Project
	if path == "" {
		path = config.DefaultProjectFile
	}
	project, err := config.LoadProject(path)
	if err != nil {
		return nil, nil, err
	}

	data := map[string]any{}
	if project.Theme != "" {
		th, err := config.LoadTheme(project.Resolve(project.Theme))
		if err != nil {
			return nil, nil, err
		}
		data = th.Data(nil)
	}
	config.Merge(data, project.Data)

	assigned, err := config.ParseAssignments(opts.Set)
	if err != nil {
		return nil, nil, err
	}
	config.Merge(data, assigned)
	return project, data, nil
}

func printSummary(w io.Writer, render func(string) (string, error), summary apply.Summary, logger *slog.Logger) {
	out, err := render(SummaryMarkdown(summary))
	if err != nil {
		logger.Warn("Summary rendering failed", "err", err)
		out = SummaryMarkdown(summary)
	}
	fmt.Fprint(w, out)
}

// SummaryMarkdown renders an apply summary as a markdown table.
func SummaryMarkdown(summary apply.Summary) string {
	var b strings.Builder
	b.WriteString("| Template | Target | Status |\n")
	b.WriteString("|---|---|---|\n")
	for _, r := range summary.Results {
		status := string(r.Status)
		if r.Err != nil {
			status = fmt.Sprintf("%s: %s", r.Status, escapeCell(r.Err.Error()))
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(r.Template), escapeCell(r.Target), status)
	}
	fmt.Fprintf(&b, "\n%d written, %d unchanged, %d planned, %d failed\n",
		summary.Count(apply.StatusWritten),
		summary.Count(apply.StatusUnchanged),
		summary.Count(apply.StatusPlanned),
		summary.Count(apply.StatusFailed),
	)
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// watchProject re-applies the project whenever a template changes, until ctx
// is cancelled.
func watchProject(ctx context.Context, opts ApplyOptions, engine *tinct.Engine, applier *apply.Applier, w io.Writer, render func(string) (string, error), logger *slog.Logger) error {
	changes, err := engine.Watch(ctx)
	if err != nil {
		return err
	}
	printSystemMessage(w, "Waiting for changes...")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping watcher")
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			// Reload the project too, so edits to data and formats apply.
			project, data, err := loadProject(opts)
			if err != nil {
				logger.Error("Project reload failed", "err", err)
				printSystemMessage(w, "Project reload failed: %v", err)
				continue
			}
			printSummary(w, render, applier.Apply(ctx, project, data), logger)
			printSystemMessage(w, "Waiting for changes...")
		}
	}
}
