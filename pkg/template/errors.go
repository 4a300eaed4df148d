package template

import "fmt"

// ParseErrorKind classifies a ParseError. Kinds are errors themselves so callers
// can match them with errors.Is(err, template.MissingSectionEnd).
type ParseErrorKind int

const (
	ExpectedIdent ParseErrorKind = iota + 1
	ExpectedClosingDelim
	ExpectedName
	MismatchedSectionEnd
	MissingSectionEnd
	MissingStartDelimiterDef
	MissingEndDelimiterDef
	UnterminatedStrLit
	ExpectedStrLit
	ForbiddenDelimiterChar
	ExpectedOp
	NestingTooDeep
)

var parseErrorNames = map[ParseErrorKind]string{
	ExpectedIdent:            "expected an identifier",
	ExpectedClosingDelim:     "expected closing delimiter",
	ExpectedName:             "expected a name",
	MismatchedSectionEnd:     "mismatched section end",
	MissingSectionEnd:        "section was never closed",
	MissingStartDelimiterDef: "missing a definition for the start delimiter",
	MissingEndDelimiterDef:   "missing a definition for the end delimiter",
	UnterminatedStrLit:       "unterminated string literal",
	ExpectedStrLit:           "expected string literal",
	ForbiddenDelimiterChar:   "forbidden character in delimiter",
	ExpectedOp:               "expected operator",
	NestingTooDeep:           "sections nested too deeply",
}

func (k ParseErrorKind) String() string {
	if name, ok := parseErrorNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ParseErrorKind(%d)", int(k))
}

func (k ParseErrorKind) Error() string { return k.String() }

// ParseError is returned by Parse. Line is 1-based, Column is the 0-based rune
// offset within the line.
type ParseError struct {
	Kind   ParseErrorKind
	Line   int
	Column int

	Delim    string // ExpectedClosingDelim: the delimiter that was expected
	Found    string // MismatchedSectionEnd: the closing name found
	Expected string // MismatchedSectionEnd: the name of the open section
	Section  string // MissingSectionEnd: the section still open at end of input
	Char     rune   // ForbiddenDelimiterChar, ExpectedOp
	Limit    int    // NestingTooDeep
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (%d:%d)", e.message(), e.Line, e.Column)
}

func (e *ParseError) message() string {
	switch e.Kind {
	case ExpectedClosingDelim:
		return fmt.Sprintf("expected closing delimiter %q", e.Delim)
	case MismatchedSectionEnd:
		return fmt.Sprintf("mismatched section end: expected \"/%s\", found \"/%s\"", e.Expected, e.Found)
	case MissingSectionEnd:
		return fmt.Sprintf("section %q was never closed", e.Section)
	case ForbiddenDelimiterChar:
		return fmt.Sprintf("%q cannot be used in a delimiter", e.Char)
	case ExpectedOp:
		return fmt.Sprintf("expected %q", e.Char)
	case NestingTooDeep:
		return fmt.Sprintf("sections nested deeper than %d levels", e.Limit)
	default:
		return e.Kind.String()
	}
}

func (e *ParseError) Unwrap() error { return e.Kind }

// RenderErrorKind classifies a RenderError.
type RenderErrorKind int

const (
	UnknownKey RenderErrorKind = iota + 1
	CannotInsert
	CannotCreateInvertedSection
	InvalidIndex
	IndexOutOfBounds
	FormatFailed
)

var renderErrorNames = map[RenderErrorKind]string{
	UnknownKey:                  "unknown key",
	CannotInsert:                "cannot insert value",
	CannotCreateInvertedSection: "cannot create inverted section",
	InvalidIndex:                "invalid list index",
	IndexOutOfBounds:            "index out of bounds",
	FormatFailed:                "formatting failed",
}

func (k RenderErrorKind) String() string {
	if name, ok := renderErrorNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RenderErrorKind(%d)", int(k))
}

func (k RenderErrorKind) Error() string { return k.String() }

// RenderError is returned by Template.Render.
type RenderError struct {
	Kind RenderErrorKind

	Key      string // UnknownKey
	TypeName string // CannotInsert, CannotCreateInvertedSection, FormatFailed
	Segment  string // InvalidIndex
	Index    int    // IndexOutOfBounds
	Len      int    // IndexOutOfBounds
	Err      error  // InvalidIndex, FormatFailed: the underlying cause
}

func (e *RenderError) Error() string {
	switch e.Kind {
	case UnknownKey:
		return fmt.Sprintf("key %q doesn't exist on this map", e.Key)
	case CannotInsert:
		return fmt.Sprintf("cannot directly insert a value of type %s", e.TypeName)
	case CannotCreateInvertedSection:
		return fmt.Sprintf("cannot create inverted sections from type %s", e.TypeName)
	case InvalidIndex:
		return fmt.Sprintf("%q is not a valid list index: %v", e.Segment, e.Err)
	case IndexOutOfBounds:
		return fmt.Sprintf("index %d is out of bounds for list of length %d", e.Index, e.Len)
	case FormatFailed:
		return fmt.Sprintf("failed to format %s: %v", e.TypeName, e.Err)
	default:
		return e.Kind.String()
	}
}

// Unwrap exposes both the kind and the underlying cause, so errors.Is matches
// the kind and errors.As reaches e.g. a *strfmt.KeyError.
func (e *RenderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
