package template

import (
	"errors"
	"strconv"
	"strings"

	"github.com/aretw0/tinct/pkg/strfmt"
)

var errNegativeIndex = errors.New("index must not be negative")

// renderer carries the state of a single Render call. formats is the working
// copy of the override table; SetFormat tokens write to it and the changes are
// visible to everything rendered afterwards.
type renderer struct {
	formats map[string]string
	out     strings.Builder
}

func (r *renderer) renderTokens(tokens []Token, stack []Value) error {
	for _, tok := range tokens {
		var err error
		switch tok := tok.(type) {
		case Text:
			r.out.WriteString(string(tok))
		case SetFormat:
			r.formats[tok.TypeName] = tok.Format
		case Insert:
			err = r.renderInsert(tok, stack)
		case Section:
			err = r.renderSection(tok, stack)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) renderInsert(ins Insert, stack []Value) error {
	value, err := resolve(ins.Name, stack)
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case nil, Nil:
	case Bool:
		r.out.WriteString(strconv.FormatBool(bool(v)))
	case String:
		r.out.WriteString(string(v))
	case List, Map:
		return &RenderError{Kind: CannotInsert, TypeName: v.Kind().String()}
	case Leaf:
		if v.Formattable == nil {
			return nil
		}
		format, ok := r.formats[v.TypeName()]
		if !ok {
			if ins.HasFormat {
				format = ins.Format
			} else {
				format = v.DefaultFormat()
			}
		}
		s, err := strfmt.Format(format, v.Placeholder)
		if err != nil {
			return &RenderError{Kind: FormatFailed, TypeName: v.TypeName(), Err: err}
		}
		r.out.WriteString(s)
	}
	return nil
}

func (r *renderer) renderSection(s Section, stack []Value) error {
	value, err := resolve(s.Name, stack)
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case nil, Nil:
		if s.Inverted {
			return r.renderTokens(s.Content, push(stack, Nil{}))
		}
	case Bool:
		if bool(v) != s.Inverted {
			return r.renderTokens(s.Content, push(stack, v))
		}
	case List:
		if s.Inverted {
			for i := len(v) - 1; i >= 0; i-- {
				if err := r.renderTokens(s.Content, push(stack, v[i])); err != nil {
					return err
				}
			}
			return nil
		}
		for _, item := range v {
			if err := r.renderTokens(s.Content, push(stack, item)); err != nil {
				return err
			}
		}
	case String, Map:
		if s.Inverted {
			return &RenderError{Kind: CannotCreateInvertedSection, TypeName: v.Kind().String()}
		}
		return r.renderTokens(s.Content, push(stack, v))
	case Leaf:
		if s.Inverted {
			name := KindFormattable.String()
			if v.Formattable != nil {
				name = v.TypeName()
			}
			return &RenderError{Kind: CannotCreateInvertedSection, TypeName: name}
		}
		return r.renderTokens(s.Content, push(stack, v))
	}
	return nil
}

// push returns stack with v on top. Siblings reuse the slot above the parent's
// frames, which is safe because they render one after another.
func push(stack []Value, v Value) []Value {
	return append(stack, v)
}

// resolve looks name up against the context stack, innermost frame last.
//
// Frames that cannot hold children (nil, bool, string, formattable) are skipped
// and the lookup continues with the frame beneath. A list frame consumes an
// index segment. A map frame consumes a key segment; a missing key is an error
// and never falls back to outer frames.
func resolve(name Name, stack []Value) (Value, error) {
	if len(stack) == 0 {
		return Nil{}, nil
	}
	top, rest := stack[len(stack)-1], stack[:len(stack)-1]

	for len(name) > 0 {
		segment := name[0]
		switch v := top.(type) {
		case List:
			index, err := strconv.Atoi(segment)
			if err == nil && index < 0 {
				err = errNegativeIndex
			}
			if err != nil {
				return nil, &RenderError{Kind: InvalidIndex, Segment: segment, Err: err}
			}
			if index >= len(v) {
				return nil, &RenderError{Kind: IndexOutOfBounds, Index: index, Len: len(v)}
			}
			top, name = v[index], name[1:]
		case Map:
			child, ok := v[segment]
			if !ok {
				return nil, &RenderError{Kind: UnknownKey, Key: segment}
			}
			top, name = child, name[1:]
		default:
			if len(rest) == 0 {
				return Nil{}, nil
			}
			top, rest = rest[len(rest)-1], rest[:len(rest)-1]
		}
	}

	if top == nil {
		return Nil{}, nil
	}
	return top, nil
}
