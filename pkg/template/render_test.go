package template

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tinct/pkg/strfmt"
)

// pair is a minimal formattable used across the render tests.
type pair struct{ x, y int }

func (pair) TypeName() string      { return "pair" }
func (pair) DefaultFormat() string { return "({x}, {y})" }

func (p pair) Placeholder(name string) (any, bool) {
	switch name {
	case "x":
		return p.x, true
	case "y":
		return p.y, true
	}
	return nil, false
}

func render(t *testing.T, src string, root Value) string {
	t.Helper()
	tmpl, err := Parse(src)
	require.NoError(t, err)
	out, err := tmpl.Render(root)
	require.NoError(t, err)
	return out
}

func renderErr(t *testing.T, src string, root Value) *RenderError {
	t.Helper()
	tmpl, err := Parse(src)
	require.NoError(t, err)
	_, err = tmpl.Render(root)
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	return rerr
}

func TestRender_PlainTextIsInvariant(t *testing.T) {
	for _, src := range []string{"", "abc", "line\nbreaks\n", "{ single } braces", "üñïçødé"} {
		assert.Equal(t, src, render(t, src, Nil{}))
	}
}

func TestRender_Inserts(t *testing.T) {
	root := Map{
		"name":  String("tinct"),
		"flag":  Bool(true),
		"off":   Bool(false),
		"empty": Nil{},
		"n":     Fmt(Int(42)),
		"f":     Fmt(Float(0.5)),
		"p":     Fmt(pair{1, 2}),
	}

	tests := []struct {
		src  string
		want string
	}{
		{"{{name}}", "tinct"},
		{"{{flag}}/{{off}}", "true/false"},
		{"[{{empty}}]", "[]"},
		{"{{n}}", "42"},
		{`{{n: "{int:04d}"}}`, "0042"},
		{"{{f}}", "0.5"},
		{`{{f: "{float:.2f}"}}`, "0.50"},
		{"{{p}}", "(1, 2)"},
		{`{{p: "{x}-{y}"}}`, "1-2"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.src, root))
		})
	}
}

func TestRender_Idempotent(t *testing.T) {
	tmpl := MustParse(`{{#items}}{{.}},{{/items}}{{%"pair": "{y}"%}}{{p}}`)
	root := Map{
		"items": List{String("a"), String("b")},
		"p":     Fmt(pair{1, 2}),
	}

	first, err := tmpl.Render(root)
	require.NoError(t, err)
	second, err := tmpl.Render(root)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "a,b,2", first)
	assert.Empty(t, tmpl.Formats(), "SetFormat tokens must not leak into the template")
}

func TestRender_BooleanTruthiness(t *testing.T) {
	src := "{{#b}}yes{{/b}}{{^b}}no{{/b}}"
	assert.Equal(t, "yes", render(t, src, Map{"b": Bool(true)}))
	assert.Equal(t, "no", render(t, src, Map{"b": Bool(false)}))
}

func TestRender_NilSections(t *testing.T) {
	src := "{{#v}}shown{{/v}}{{^v}}hidden{{/v}}"
	assert.Equal(t, "hidden", render(t, src, Map{"v": Nil{}}))
	assert.Equal(t, "hidden", render(t, src, Map{"v": nil}))
}

func TestRender_ListOrderAndReversal(t *testing.T) {
	root := Map{"items": List{String("1"), String("2"), String("3")}}

	assert.Equal(t, "123", render(t, "{{#items}}{{.}}{{/items}}", root))
	assert.Equal(t, "321", render(t, "{{^items}}{{.}}{{/items}}", root))
	assert.Equal(t, "", render(t, "{{#items}}{{.}}{{/items}}", Map{"items": List{}}))
}

func TestRender_ScalarSectionsPushValue(t *testing.T) {
	root := Map{
		"s": String("str"),
		"p": Fmt(pair{3, 4}),
		"m": Map{"inner": String("deep")},
	}
	assert.Equal(t, "str", render(t, "{{#s}}{{.}}{{/s}}", root))
	assert.Equal(t, "(3, 4)", render(t, "{{#p}}{{.}}{{/p}}", root))
	assert.Equal(t, "deep", render(t, "{{#m}}{{inner}}{{/m}}", root))
}

func TestRender_ListIndexing(t *testing.T) {
	root := Map{"items": List{String("a"), Map{"name": String("b")}}}
	assert.Equal(t, "a", render(t, "{{items.0}}", root))
	assert.Equal(t, "b", render(t, "{{items.1.name}}", root))
}

func TestRender_ScalarFramesFallThrough(t *testing.T) {
	root := Map{
		"title": String("outer"),
		"items": List{String("x"), String("y")},
	}
	// Inside the list the top frame is a string, so "title" is found below it.
	assert.Equal(t, "x:outer y:outer ", render(t, "{{#items}}{{.}}:{{title}} {{/items}}", root))
}

func TestRender_BoolFrameFallsThrough(t *testing.T) {
	root := Map{"title": String("outer"), "flag": Bool(true)}
	assert.Equal(t, "outer", render(t, "{{#flag}}{{title}}{{/flag}}", root))
	assert.Equal(t, "outer", render(t, "{{#flag}}{{#flag}}{{title}}{{/flag}}{{/flag}}", root))
}

func TestRender_MapFramesDoNotFallThrough(t *testing.T) {
	root := Map{
		"title": String("outer"),
		"inner": Map{"other": String("v")},
	}

	rerr := renderErr(t, "{{#inner}}{{title}}{{/inner}}", root)
	assert.Equal(t, UnknownKey, rerr.Kind)
	assert.Equal(t, "title", rerr.Key)
}

func TestRender_FormatPrecedence(t *testing.T) {
	root := Map{"p": Fmt(pair{1, 2})}

	tmpl := MustParse(`{{p}} {{p: "{x}"}}`)
	out, err := tmpl.Render(root)
	require.NoError(t, err)
	assert.Equal(t, "(1, 2) 1", out)

	tmpl.SetFormat("pair", "{y}")
	out, err = tmpl.Render(root)
	require.NoError(t, err)
	assert.Equal(t, "2 2", out, "override beats inline and default formats")
}

func TestRender_SetFormatIsForwardOnly(t *testing.T) {
	root := Map{
		"p":   Fmt(pair{1, 2}),
		"sec": Bool(true),
	}
	src := `{{p}}|{{#sec}}{{%"pair": "{x}"%}}{{p}}{{/sec}}|{{p}}|{{#sec}}{{p}}{{/sec}}`
	assert.Equal(t, "(1, 2)|1|1|1", render(t, src, root))
}

func TestRender_SetFormatInUnrenderedSectionHasNoEffect(t *testing.T) {
	root := Map{"p": Fmt(pair{1, 2}), "off": Bool(false)}
	src := `{{#off}}{{%"pair": "{x}"%}}{{/off}}{{p}}`
	assert.Equal(t, "(1, 2)", render(t, src, root))
}

func TestRender_Errors(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		rerr := renderErr(t, "{{missing}}", Map{})
		assert.Equal(t, UnknownKey, rerr.Kind)
		assert.Equal(t, "missing", rerr.Key)
	})

	t.Run("index out of bounds", func(t *testing.T) {
		root := Map{"l": List{String("a"), String("b"), String("c")}}
		rerr := renderErr(t, "{{l.5}}", root)
		assert.Equal(t, IndexOutOfBounds, rerr.Kind)
		assert.Equal(t, 5, rerr.Index)
		assert.Equal(t, 3, rerr.Len)
		assert.Equal(t, "index 5 is out of bounds for list of length 3", rerr.Error())
	})

	t.Run("invalid index", func(t *testing.T) {
		root := Map{"l": List{String("a")}}
		rerr := renderErr(t, "{{l.first}}", root)
		assert.Equal(t, InvalidIndex, rerr.Kind)
		assert.Equal(t, "first", rerr.Segment)
		require.Error(t, rerr.Err)

		rerr = renderErr(t, "{{l.-1}}", root)
		assert.Equal(t, InvalidIndex, rerr.Kind)
	})

	t.Run("cannot insert list or map", func(t *testing.T) {
		rerr := renderErr(t, "{{l}}", Map{"l": List{}})
		assert.Equal(t, CannotInsert, rerr.Kind)
		assert.Equal(t, "list", rerr.TypeName)

		rerr = renderErr(t, "{{m}}", Map{"m": Map{}})
		assert.Equal(t, CannotInsert, rerr.Kind)
		assert.Equal(t, "map", rerr.TypeName)
	})

	t.Run("inverted string, map and formattable", func(t *testing.T) {
		root := Map{"s": String("x"), "m": Map{}, "p": Fmt(pair{})}
		for src, typeName := range map[string]string{
			"{{^s}}{{/s}}": "string",
			"{{^m}}{{/m}}": "map",
			"{{^p}}{{/p}}": "pair",
		} {
			rerr := renderErr(t, src, root)
			assert.Equal(t, CannotCreateInvertedSection, rerr.Kind, src)
			assert.Equal(t, typeName, rerr.TypeName, src)
		}
	})

	t.Run("unknown placeholder", func(t *testing.T) {
		rerr := renderErr(t, `{{p: "{z}"}}`, Map{"p": Fmt(pair{})})
		assert.Equal(t, FormatFailed, rerr.Kind)

		var kerr *strfmt.KeyError
		require.True(t, errors.As(rerr, &kerr))
		assert.Equal(t, "z", kerr.Key)
		assert.True(t, errors.Is(rerr, FormatFailed))
	})

	t.Run("first error aborts", func(t *testing.T) {
		tmpl := MustParse("a{{x}}b{{y}}")
		out, err := tmpl.Render(Map{})
		assert.Empty(t, out)
		var rerr *RenderError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, "x", rerr.Key)
	})
}

func TestRender_EmptyStack(t *testing.T) {
	assert.Equal(t, "[]", render(t, "[{{.}}]", nil))
	assert.Equal(t, "[]", render(t, "[{{a.b}}]", String("scalar root")))
}

func TestTemplate_ConcurrentRender(t *testing.T) {
	tmpl := MustParse(`{{#items}}{{%"pair": "{x}"%}}{{.}}{{/items}}`)
	root := Map{"items": List{Fmt(pair{1, 2}), Fmt(pair{3, 4})}}

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%4 == 0 {
				tmpl.SetFormat("unrelated", fmt.Sprintf("{v%d}", i))
			}
			out, err := tmpl.Render(root)
			if err != nil {
				errs <- err
				return
			}
			if out != "13" {
				errs <- fmt.Errorf("unexpected output %q", out)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestTemplate_Clone(t *testing.T) {
	tmpl := MustParse("{{p}}")
	tmpl.SetFormat("pair", "{x}")

	clone := tmpl.Clone()
	clone.SetFormat("pair", "{y}")

	root := Map{"p": Fmt(pair{1, 2})}
	out, err := tmpl.Render(root)
	require.NoError(t, err)
	assert.Equal(t, "1", out)

	out, err = clone.Render(root)
	require.NoError(t, err)
	assert.Equal(t, "2", out)
}

func TestDescribe(t *testing.T) {
	v := Map{
		"name":  String("gruvbox"),
		"dark":  Bool(true),
		"sizes": List{Fmt(Int(11)), Fmt(Float(1.5))},
		"bg":    Fmt(pair{1, 2}),
		"none":  Nil{},
	}
	assert.Equal(t, `{bg: (1, 2), dark: true, name: "gruvbox", none: nil, sizes: [11, 1.5]}`, Describe(v))
	assert.Equal(t, "nil", Describe(nil))
	assert.Equal(t, []string{"a", "b"}, Map{"b": Nil{}, "a": Nil{}}.Keys())
}
