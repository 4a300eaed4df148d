package template

import "strings"

// Name is a dotted path. The empty Name is the inherent name "." and refers to
// the value currently on top of the context stack.
type Name []string

// IsInherent reports whether n refers to the current value.
func (n Name) IsInherent() bool { return len(n) == 0 }

func (n Name) String() string {
	if len(n) == 0 {
		return "."
	}
	return strings.Join(n, ".")
}

func (n Name) equal(other Name) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if n[i] != other[i] {
			return false
		}
	}
	return true
}

// Token is one node of a parsed template: Text, Insert, Section or SetFormat.
type Token interface {
	token()
}

// Text is literal output.
type Text string

// Insert writes the value named Name. Format, when set, is the inline format
// used for formattable values that have no override.
type Insert struct {
	Name      Name
	Format    string
	HasFormat bool
}

// Section renders Content conditionally or once per list item, with the named
// value pushed onto the context stack.
type Section struct {
	Name     Name
	Inverted bool
	Content  []Token
}

// SetFormat overrides the format of TypeName for the rest of the render.
type SetFormat struct {
	TypeName string
	Format   string
}

func (Text) token()      {}
func (Insert) token()    {}
func (Section) token()   {}
func (SetFormat) token() {}

// Walk calls fn for every token in tokens, depth first, in document order.
// Returning false from fn skips the children of a section.
func Walk(tokens []Token, fn func(Token) bool) {
	for _, tok := range tokens {
		if !fn(tok) {
			continue
		}
		if s, ok := tok.(Section); ok {
			Walk(s.Content, fn)
		}
	}
}
