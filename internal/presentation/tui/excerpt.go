package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/muesli/termenv"

	"github.com/aretw0/tinct/pkg/template"
)

// PrintParseError prints err and, if it is a *template.ParseError, the
// offending source line with a caret under the failing column.
func PrintParseError(w io.Writer, name, src string, err error) {
	p := Profile(w)
	label := p.String("error").Foreground(p.Color("#ef4444")).Bold()

	var perr *template.ParseError
	if !errors.As(err, &perr) {
		fmt.Fprintf(w, "%s: %v\n", label, err)
		return
	}

	fmt.Fprintf(w, "%s: %s\n", label, perr.Error())
	fmt.Fprint(w, Excerpt(p, name, src, perr.Line, perr.Column))
}

// Excerpt renders the line of src at line (1-based) with a caret under column
// (0-based, in runes).
func Excerpt(p termenv.Profile, name, src string, line, column int) string {
	lines := strings.Split(src, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	text := strings.TrimRight(lines[line-1], "\r")
	// Tabs would misalign the caret.
	text = strings.ReplaceAll(text, "\t", " ")
	if n := utf8.RuneCountInString(text); column > n {
		column = n
	}

	gutter := fmt.Sprintf("%d", line)
	pad := strings.Repeat(" ", len(gutter))
	dim := func(s string) termenv.Style { return p.String(s).Faint() }

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s %s:%d:%d\n", pad, dim(" -->"), name, line, column)
	fmt.Fprintf(&b, "%s %s\n", pad, dim("|"))
	fmt.Fprintf(&b, "%s %s %s\n", dim(gutter), dim("|"), text)
	caret := p.String("^").Foreground(p.Color("#ef4444")).Bold()
	fmt.Fprintf(&b, "%s %s %s%s\n", pad, dim("|"), strings.Repeat(" ", column), caret)
	return b.String()
}
