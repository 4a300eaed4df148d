package strfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Lookup resolves a placeholder name to a displayable scalar.
// It returns false when the name is unknown.
type Lookup func(name string) (any, bool)

// KeyError is returned when a placeholder name cannot be resolved.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("unknown placeholder %q", e.Key)
}

// SyntaxError reports a malformed format string.
type SyntaxError struct {
	Offset int    // Byte offset into the format string
	Reason string // Human-readable reason
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid format string at offset %d: %s", e.Offset, e.Reason)
}

// Map adapts a plain map to a Lookup.
func Map(values map[string]any) Lookup {
	return func(name string) (any, bool) {
		v, ok := values[name]
		return v, ok
	}
}

// Tags produced by escape for doubled braces. Neither can be a placeholder
// because placeholder names are never empty and never start with a brace.
const (
	openBraceTag  = "{"
	closeBraceTag = ""
)

// Format expands every placeholder in format using lookup.
func Format(format string, lookup Lookup) (string, error) {
	tmpl, offsets, err := escape(format)
	if err != nil {
		return "", err
	}

	next := 0
	return fasttemplate.ExecuteFuncStringWithErr(tmpl, "{", "}", func(w io.Writer, tag string) (int, error) {
		switch tag {
		case openBraceTag:
			return io.WriteString(w, "{")
		case closeBraceTag:
			return io.WriteString(w, "}")
		}

		offset := offsets[next]
		next++

		name, spec, _ := strings.Cut(tag, ":")
		name = strings.TrimSpace(name)
		value, ok := lookup(name)
		if !ok {
			return 0, &KeyError{Key: name}
		}
		out, err := formatValue(value, spec)
		if err != nil {
			return 0, &SyntaxError{Offset: offset, Reason: err.Error()}
		}
		return io.WriteString(w, out)
	})
}

// escape validates the brace structure of format and rewrites doubled braces
// into reserved tags. It returns the offsets of the real placeholders in order.
func escape(format string) (string, []int, error) {
	if !strings.ContainsAny(format, "{}") {
		return format, nil, nil
	}

	var b strings.Builder
	b.Grow(len(format) + 8)
	var offsets []int

	for i := 0; i < len(format); {
		switch format[i] {
		case '{':
			if strings.HasPrefix(format[i:], "{{") {
				b.WriteString("{" + openBraceTag + "}")
				i += 2
				continue
			}
			end := strings.IndexByte(format[i+1:], '}')
			if end < 0 {
				return "", nil, &SyntaxError{Offset: i, Reason: "unclosed placeholder"}
			}
			inner := format[i+1 : i+1+end]
			if name, _, _ := strings.Cut(inner, ":"); strings.TrimSpace(name) == "" {
				return "", nil, &SyntaxError{Offset: i, Reason: "empty placeholder name"}
			}
			offsets = append(offsets, i)
			b.WriteString(format[i : i+end+2])
			i += end + 2
		case '}':
			if strings.HasPrefix(format[i:], "}}") {
				b.WriteString("{" + closeBraceTag + "}")
				i += 2
				continue
			}
			return "", nil, &SyntaxError{Offset: i, Reason: "unmatched '}'"}
		default:
			next := strings.IndexAny(format[i:], "{}")
			if next < 0 {
				next = len(format) - i
			}
			b.WriteString(format[i : i+next])
			i += next
		}
	}
	return b.String(), offsets, nil
}
