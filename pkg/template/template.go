package template

import (
	"maps"
	"sync"
)

// Template is a parsed template plus a table of per-type format overrides.
// The tokens never change after Parse. The override table may be changed with
// SetFormat at any time; each Render works on its own copy, so a Template is
// safe for concurrent use.
type Template struct {
	tokens []Token

	mu      sync.RWMutex
	formats map[string]string
}

// Parse parses source into a Template.
func Parse(source string, opts ...ParseOption) (*Template, error) {
	tokens, err := parseTokens(source, opts...)
	if err != nil {
		return nil, err
	}
	return &Template{tokens: tokens, formats: map[string]string{}}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(source string, opts ...ParseOption) *Template {
	t, err := Parse(source, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// SetFormat overrides the format used for every formattable of typeName. It
// takes precedence over inline formats and the type's default format.
func (t *Template) SetFormat(typeName, format string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.formats == nil {
		t.formats = map[string]string{}
	}
	t.formats[typeName] = format
}

// Formats returns a copy of the override table.
func (t *Template) Formats() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.formats)
}

// Clone returns a Template sharing the parsed tokens with its own copy of the
// override table.
func (t *Template) Clone() *Template {
	return &Template{tokens: t.tokens, formats: t.Formats()}
}

// Tokens returns the parsed token tree. Callers must not modify it.
func (t *Template) Tokens() []Token {
	return t.tokens
}

// Render renders the template with root as the only frame of the context stack.
// The first error aborts the render.
func (t *Template) Render(root Value) (string, error) {
	r := &renderer{formats: t.Formats()}
	if r.formats == nil {
		r.formats = map[string]string{}
	}
	if err := r.renderTokens(t.tokens, []Value{root}); err != nil {
		return "", err
	}
	return r.out.String(), nil
}

// References returns every distinct name the template looks up, in document
// order.
func (t *Template) References() []Name {
	seen := map[string]bool{}
	var names []Name
	add := func(n Name) {
		key := n.String()
		if !seen[key] {
			seen[key] = true
			names = append(names, n)
		}
	}
	Walk(t.tokens, func(tok Token) bool {
		switch tok := tok.(type) {
		case Insert:
			add(tok.Name)
		case Section:
			add(tok.Name)
		}
		return true
	})
	return names
}
