package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/aretw0/tinct"
	"github.com/aretw0/tinct/internal/config"
	"github.com/aretw0/tinct/internal/presentation/tui"
	"github.com/aretw0/tinct/pkg/template"
)

// RenderOptions contains the configuration for the render command.
type RenderOptions struct {
	// Template is a file path, or a template name looked up in Dir.
	Template string
	Dir      string
	Theme    string
	DataFile string
	Set      []string
	Formats  []string
	// Output is the target file; empty or "-" writes to Stdout.
	Output string
	Debug  bool
}

// RunRender renders a single template. Parse errors are reported on stderr
// with a source excerpt.
func RunRender(ctx context.Context, opts RenderOptions, stdout, stderr io.Writer) error {
	logger := newLoggerTo(stderr, opts.Debug)

	data, err := collectData(opts.Theme, opts.DataFile, opts.Set)
	if err != nil {
		return err
	}
	if opts.Debug {
		if v, err := template.FromAny(data); err == nil {
			logger.Debug("Render data", "data", template.Describe(v))
		}
	}
	formats, err := ParseFormats(opts.Formats)
	if err != nil {
		return err
	}

	name, src, isFile, err := readTemplateArg(opts.Template)
	if err != nil {
		return err
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
		if isFile {
			dir = filepath.Dir(opts.Template)
		}
	}
	engine, closeEngine, err := createEngine(EngineOptions{Dir: dir, Formats: formats, Debug: opts.Debug}, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	var out string
	if isFile {
		out, err = engine.RenderString(ctx, src, data)
	} else {
		out, err = engine.Render(ctx, name, data)
	}
	if err != nil {
		reportError(ctx, stderr, engine, name, src, err)
		return err
	}

	if opts.Output == "" || opts.Output == "-" {
		_, err = io.WriteString(stdout, out)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return fmt.Errorf("failed to ensure output directory: %w", err)
	}
	if err := atomic.WriteFile(opts.Output, strings.NewReader(out)); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.Output, err)
	}
	logger.Info("Rendered", "template", name, "target", opts.Output, "bytes", len(out))
	return nil
}

// readTemplateArg reads arg as a file when it names one. Otherwise arg is a
// template name and src is empty.
func readTemplateArg(arg string) (name, src string, isFile bool, err error) {
	info, statErr := os.Stat(arg)
	if statErr != nil || info.IsDir() {
		return arg, "", false, nil
	}
	b, err := os.ReadFile(arg)
	if err != nil {
		return "", "", false, fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return arg, string(b), true, nil
}

// collectData merges theme data, a data file and --set assignments, later
// sources winning.
func collectData(themePath, dataFile string, set []string) (map[string]any, error) {
	data := map[string]any{}
	if themePath != "" {
		th, err := config.LoadTheme(themePath)
		if err != nil {
			return nil, err
		}
		data = th.Data(nil)
	}
	if dataFile != "" {
		fileData, err := config.LoadData(dataFile)
		if err != nil {
			return nil, err
		}
		config.Merge(data, fileData)
	}
	assigned, err := config.ParseAssignments(set)
	if err != nil {
		return nil, err
	}
	config.Merge(data, assigned)
	return data, nil
}

// reportError prints err, with an excerpt when it is a parse error and the
// source can be found.
func reportError(ctx context.Context, w io.Writer, engine *tinct.Engine, name, src string, err error) {
	var perr *template.ParseError
	if errors.As(err, &perr) && src == "" {
		if loaded, loadErr := engine.Source().Load(ctx, name); loadErr == nil {
			src = loaded
		}
	}
	tui.PrintParseError(w, name, src, err)
}
