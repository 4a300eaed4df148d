package apply_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tinct"
	"github.com/aretw0/tinct/internal/apply"
	"github.com/aretw0/tinct/internal/config"
	"github.com/aretw0/tinct/pkg/adapters/memory"
	"github.com/aretw0/tinct/pkg/color"
	"github.com/aretw0/tinct/pkg/template"
)

func setup(t *testing.T) (*tinct.Engine, *config.Project) {
	t.Helper()
	src := memory.NewStore(map[string]string{
		"kitty":  "background {{palette.bg}}\n",
		"css":    "--bg: {{palette.bg}};\n",
		"broken": "{{#palette}}",
	})
	eng, err := tinct.New("", tinct.WithSource(src), tinct.WithFormats(map[string]string{"color": "#{rx}{gx}{bx}"}))
	require.NoError(t, err)

	p := &config.Project{
		Dir: t.TempDir(),
		Outputs: []config.Output{
			{Template: "kitty", Target: "kitty/kitty.conf"},
			{Template: "broken", Target: "broken.conf"},
			{Template: "css", Target: "waybar.css", Formats: map[string]string{"color": "rgb({r}, {g}, {b})"}},
		},
	}
	return eng, p
}

var data = map[string]any{"palette": map[string]any{"bg": color.MustParse("#282828")}}

func TestApply_SkipsFailingOutputs(t *testing.T) {
	eng, p := setup(t)

	summary := apply.New(eng).Apply(context.Background(), p, data)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, apply.StatusWritten, summary.Results[0].Status)
	assert.Equal(t, apply.StatusFailed, summary.Results[1].Status)
	assert.ErrorIs(t, summary.Results[1].Err, template.MissingSectionEnd)
	assert.Equal(t, apply.StatusWritten, summary.Results[2].Status)
	assert.Equal(t, 2, summary.Count(apply.StatusWritten))
	assert.ErrorIs(t, summary.Err(), template.MissingSectionEnd)

	kitty, err := os.ReadFile(filepath.Join(p.Dir, "kitty", "kitty.conf"))
	require.NoError(t, err)
	assert.Equal(t, "background #282828\n", string(kitty))

	css, err := os.ReadFile(filepath.Join(p.Dir, "waybar.css"))
	require.NoError(t, err)
	assert.Equal(t, "--bg: rgb(40, 40, 40);\n", string(css))

	_, err = os.Stat(filepath.Join(p.Dir, "broken.conf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApply_Unchanged(t *testing.T) {
	eng, p := setup(t)
	p.Outputs = p.Outputs[:1]
	a := apply.New(eng)

	first := a.Apply(context.Background(), p, data)
	assert.Equal(t, apply.StatusWritten, first.Results[0].Status)

	second := a.Apply(context.Background(), p, data)
	assert.Equal(t, apply.StatusUnchanged, second.Results[0].Status)
	assert.NoError(t, second.Err())
}

func TestApply_DryRun(t *testing.T) {
	eng, p := setup(t)
	p.Outputs = p.Outputs[:1]

	summary := apply.New(eng, apply.WithDryRun(true)).Apply(context.Background(), p, data)
	assert.Equal(t, apply.StatusPlanned, summary.Results[0].Status)

	_, err := os.Stat(filepath.Join(p.Dir, "kitty", "kitty.conf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApply_Cancelled(t *testing.T) {
	eng, p := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := apply.New(eng).Apply(ctx, p, data)
	assert.Equal(t, 3, summary.Count(apply.StatusFailed))
	assert.ErrorIs(t, summary.Err(), context.Canceled)
}
