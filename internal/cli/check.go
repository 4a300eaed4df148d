package cli

import (
	"context"
	"fmt"
	"io"
)

// CheckOptions contains the configuration for the check command.
type CheckOptions struct {
	// Templates are file paths or names in Dir. Empty means every template in Dir.
	Templates []string
	Dir       string
	MaxDepth  int
	Debug     bool
}

// RunCheck parses each template and reports every syntax error found. It
// returns an error when at least one template is invalid.
func RunCheck(ctx context.Context, opts CheckOptions, stdout, stderr io.Writer) error {
	logger := NewLogger(opts.Debug)
	engine, closeEngine, err := createEngine(EngineOptions{Dir: opts.Dir, MaxDepth: opts.MaxDepth, Debug: opts.Debug}, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	targets := opts.Templates
	if len(targets) == 0 {
		if targets, err = engine.List(ctx); err != nil {
			return err
		}
	}

	failed := 0
	for _, target := range targets {
		name, src, isFile, err := readTemplateArg(target)
		if err != nil {
			return err
		}
		if isFile {
			_, err = engine.Parse(ctx, src)
		} else {
			err = engine.Check(ctx, name)
		}

		if err != nil {
			failed++
			reportError(ctx, stderr, engine, name, src, err)
			continue
		}
		fmt.Fprintf(stdout, "ok   %s\n", name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d templates failed to parse", failed, len(targets))
	}
	return nil
}
