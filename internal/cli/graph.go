package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/tinct/internal/presentation/graph"
	"github.com/aretw0/tinct/pkg/template"
)

// GraphOptions contains the configuration for the graph command.
type GraphOptions struct {
	Template string
	Dir      string
	// Theme, DataFile and Set, when any is given, enable the overlay that
	// marks names whose first segment the data lacks.
	Theme    string
	DataFile string
	Set      []string
	Debug    bool
}

// RunGraph prints a Mermaid outline of a template.
func RunGraph(ctx context.Context, opts GraphOptions, w io.Writer) error {
	logger := NewLogger(opts.Debug)

	name, src, isFile, err := readTemplateArg(opts.Template)
	if err != nil {
		return err
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	engine, closeEngine, err := createEngine(EngineOptions{Dir: dir, Debug: opts.Debug}, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	var tmpl *template.Template
	if isFile {
		tmpl, err = engine.Parse(ctx, src)
	} else {
		tmpl, err = engine.Template(ctx, name)
	}
	if err != nil {
		return err
	}

	var overlay *graph.Overlay
	if opts.Theme != "" || opts.DataFile != "" || len(opts.Set) > 0 {
		data, err := collectData(opts.Theme, opts.DataFile, opts.Set)
		if err != nil {
			return err
		}
		overlay = &graph.Overlay{Missing: missingRoots(tmpl, data)}
	}

	fmt.Fprint(w, graph.GenerateMermaid(name, tmpl.Tokens(), overlay))
	return nil
}

// missingRoots returns the referenced names whose first segment is not a key
// of data. Names inside sections may resolve against an inner frame, so this
// is a hint rather than a verdict.
func missingRoots(tmpl *template.Template, data map[string]any) []string {
	var missing []string
	for _, ref := range tmpl.References() {
		if ref.IsInherent() {
			continue
		}
		if _, ok := data[ref[0]]; !ok {
			missing = append(missing, ref.String())
		}
	}
	return missing
}
