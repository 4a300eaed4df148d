package template

import (
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/tinct/pkg/strfmt"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindString
	KindList
	KindMap
	KindFormattable
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindFormattable:
		return "formattable"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is anything the renderer can traverse. The set of variants is closed:
// Nil, Bool, String, List, Map and Leaf. A nil Value behaves like Nil.
type Value interface {
	Kind() Kind
	value()
}

// Nil is the empty value. It renders as nothing and only opens inverted sections.
type Nil struct{}

// Bool is a truthiness flag. It inserts as "true" or "false".
type Bool bool

// String inserts verbatim.
type String string

// List is an ordered sequence of values. Sections iterate it forward, inverted
// sections iterate it backwards.
type List []Value

// Map holds named children addressable with dotted names.
type Map map[string]Value

// Formattable is an externally supplied scalar, such as a colour, that renders
// through a format string with named placeholders. Hosts implement it to add new
// scalar types without touching the engine.
type Formattable interface {
	// TypeName identifies the type for per-type format overrides.
	TypeName() string
	// DefaultFormat is used when neither an override nor an inline format applies.
	DefaultFormat() string
	// Placeholder resolves a placeholder name used in a format string.
	Placeholder(name string) (any, bool)
}

// Leaf wraps a Formattable as a Value.
type Leaf struct {
	Formattable
}

// Fmt wraps f as a Value.
func Fmt(f Formattable) Leaf {
	return Leaf{Formattable: f}
}

func (Nil) Kind() Kind    { return KindNil }
func (Bool) Kind() Kind   { return KindBool }
func (String) Kind() Kind { return KindString }
func (List) Kind() Kind   { return KindList }
func (Map) Kind() Kind    { return KindMap }
func (Leaf) Kind() Kind   { return KindFormattable }

func (Nil) value()    {}
func (Bool) value()   {}
func (String) value() {}
func (List) value()   {}
func (Map) value()    {}
func (Leaf) value()   {}

// String renders the leaf with its default format, falling back to the type name.
func (l Leaf) String() string {
	out, err := strfmt.Format(l.DefaultFormat(), l.Placeholder)
	if err != nil {
		return l.TypeName()
	}
	return out
}

// Keys returns the map keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Int is the built-in formattable for integers. Its single placeholder is "int".
type Int int64

func (Int) TypeName() string      { return "int" }
func (Int) DefaultFormat() string { return "{int}" }

func (i Int) Placeholder(name string) (any, bool) {
	if name == "int" {
		return int64(i), true
	}
	return nil, false
}

// Float is the built-in formattable for floating point numbers. Its single
// placeholder is "float".
type Float float64

func (Float) TypeName() string      { return "float" }
func (Float) DefaultFormat() string { return "{float}" }

func (f Float) Placeholder(name string) (any, bool) {
	if name == "float" {
		return float64(f), true
	}
	return nil, false
}

// Describe renders a short, human-readable outline of v, mostly for debugging
// and CLI previews.
func Describe(v Value) string {
	var b strings.Builder
	describe(&b, v)
	return b.String()
}

func describe(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case nil, Nil:
		b.WriteString("nil")
	case Bool:
		b.WriteString(strconv.FormatBool(bool(v)))
	case String:
		b.WriteString(strconv.Quote(string(v)))
	case List:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			describe(b, item)
		}
		b.WriteByte(']')
	case Map:
		b.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			describe(b, v[k])
		}
		b.WriteByte('}')
	case Leaf:
		b.WriteString(v.String())
	}
}
