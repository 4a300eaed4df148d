package template

import (
	"strings"
	"unicode"
)

// Grammar, with Start and End being the current delimiters ("{{" and "}}" unless
// redefined):
//
//	Tokens      := (Token | Instruction)*
//	Token       := Section | SetFormat | Insert | Text
//	Section     := Start ("#" | "^") Name End Tokens Start "/" Name End
//	Name        := Ident ("." Ident)* | "."
//	Insert      := Start Name [":" StrLit] End
//	SetFormat   := Start "%" StrLit ":" StrLit "%" End
//	Instruction := Start "=" Delim Delim "=" End
//
// Every production returns (value, ok, err): ok == false with a nil error means
// the production is not present and nothing was consumed.

const (
	DefaultStartDelim = "{{"
	DefaultEndDelim   = "}}"
	DefaultMaxDepth   = 64
)

type parseConfig struct {
	start    string
	end      string
	maxDepth int
}

// ParseOption configures Parse.
type ParseOption func(*parseConfig)

// WithMaxDepth limits how deeply sections may nest. Values below 1 are ignored.
func WithMaxDepth(depth int) ParseOption {
	return func(cfg *parseConfig) {
		if depth > 0 {
			cfg.maxDepth = depth
		}
	}
}

// WithDelimiters sets the initial delimiters. The template can still redefine
// them with a {{=START END=}} instruction.
func WithDelimiters(start, end string) ParseOption {
	return func(cfg *parseConfig) {
		if start != "" && end != "" {
			cfg.start = start
			cfg.end = end
		}
	}
}

type parser struct {
	cur      cursor
	start    string
	end      string
	depth    int
	maxDepth int
}

func parseTokens(src string, opts ...ParseOption) ([]Token, error) {
	cfg := parseConfig{
		start:    DefaultStartDelim,
		end:      DefaultEndDelim,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	p := &parser{
		cur:      newCursor(src),
		start:    cfg.start,
		end:      cfg.end,
		maxDepth: cfg.maxDepth,
	}

	var tokens []Token
	for {
		tok, ok, err := p.parseTokenOrInstruction()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if tok != nil {
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

func (p *parser) fail(kind ParseErrorKind, at position) *ParseError {
	return &ParseError{Kind: kind, Line: at.line, Column: at.column}
}

// parseTokenOrInstruction returns ok with a nil token when an instruction was
// consumed.
func (p *parser) parseTokenOrInstruction() (Token, bool, error) {
	ok, err := p.parseInstruction()
	if err != nil {
		return nil, false, err
	}
	if ok {
		return nil, true, nil
	}
	return p.parseToken()
}

func (p *parser) parseToken() (Token, bool, error) {
	productions := []func() (Token, bool, error){
		p.parseSection,
		p.parseSetFormat,
		p.parseInsert,
		p.parseText,
	}
	for _, production := range productions {
		tok, ok, err := production()
		if err != nil || ok {
			return tok, ok, err
		}
	}
	return nil, false, nil
}

func (p *parser) parseSection() (Token, bool, error) {
	at := p.cur.pos

	name, ok, err := p.parseTag('#')
	if err != nil {
		return nil, false, err
	}
	inverted := false
	if !ok {
		name, ok, err = p.parseTag('^')
		if err != nil || !ok {
			return nil, false, err
		}
		inverted = true
	}

	if p.depth >= p.maxDepth {
		e := p.fail(NestingTooDeep, at)
		e.Limit = p.maxDepth
		return nil, false, e
	}
	p.depth++
	defer func() { p.depth-- }()

	section := Section{Name: name, Inverted: inverted}
	for {
		closeAt := p.cur.pos
		end, ok, err := p.parseTag('/')
		if err != nil {
			return nil, false, err
		}
		if ok {
			if !end.equal(name) {
				e := p.fail(MismatchedSectionEnd, closeAt)
				e.Found = end.String()
				e.Expected = name.String()
				return nil, false, e
			}
			break
		}

		tok, ok, err := p.parseTokenOrInstruction()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			e := p.fail(MissingSectionEnd, p.cur.pos)
			e.Section = name.String()
			return nil, false, e
		}
		if tok != nil {
			section.Content = append(section.Content, tok)
		}
	}

	return section, true, nil
}

// parseTag parses Start op Name End. A missing start delimiter or a different
// operator is not an error: the cursor is restored and ok is false.
func (p *parser) parseTag(op rune) (Name, bool, error) {
	saved := p.cur
	if !p.cur.consume(p.start) {
		return nil, false, nil
	}
	p.cur.skipSpace()
	if !p.cur.peekIs(op) {
		p.cur = saved
		return nil, false, nil
	}
	p.cur.next()
	p.cur.skipSpace()

	name, ok, err := p.parseName()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, p.fail(ExpectedName, p.cur.pos)
	}

	p.cur.skipSpace()
	if err := p.expectClosing(p.end); err != nil {
		return nil, false, err
	}
	return name, true, nil
}

func (p *parser) expectClosing(delim string) error {
	if p.cur.consume(delim) {
		return nil
	}
	e := p.fail(ExpectedClosingDelim, p.cur.pos)
	e.Delim = delim
	return e
}

func (p *parser) parseName() (Name, bool, error) {
	if p.cur.peekIs('.') {
		p.cur.next()
		return nil, true, nil
	}

	ident, ok := p.parseIdent()
	if !ok {
		return nil, false, nil
	}
	name := Name{ident}
	for p.cur.peekIs('.') {
		p.cur.next()
		ident, ok := p.parseIdent()
		if !ok {
			return nil, false, p.fail(ExpectedIdent, p.cur.pos)
		}
		name = append(name, ident)
	}
	return name, true, nil
}

func (p *parser) parseIdent() (string, bool) {
	start := p.cur.off
	for {
		r, ok := p.cur.peek()
		if !ok || !isIdentRune(r) {
			break
		}
		p.cur.next()
	}
	if p.cur.off == start {
		return "", false
	}
	return p.cur.src[start:p.cur.off], true
}

func isIdentRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
}

func (p *parser) parseStrLit() (string, bool, error) {
	if !p.cur.peekIs('"') {
		return "", false, nil
	}
	p.cur.next()

	var b strings.Builder
	escaped := false
	for {
		r, ok := p.cur.next()
		if !ok {
			return "", false, p.fail(UnterminatedStrLit, p.cur.pos)
		}
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '"':
			return b.String(), true, nil
		default:
			b.WriteRune(r)
		}
	}
}

func (p *parser) expectStrLit() (string, error) {
	s, ok, err := p.parseStrLit()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", p.fail(ExpectedStrLit, p.cur.pos)
	}
	return s, nil
}

func (p *parser) parseInsert() (Token, bool, error) {
	if !p.cur.consume(p.start) {
		return nil, false, nil
	}
	p.cur.skipSpace()

	name, ok, err := p.parseName()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, p.fail(ExpectedName, p.cur.pos)
	}
	p.cur.skipSpace()

	insert := Insert{Name: name}
	if p.cur.peekIs(':') {
		p.cur.next()
		p.cur.skipSpace()
		format, err := p.expectStrLit()
		if err != nil {
			return nil, false, err
		}
		insert.Format = format
		insert.HasFormat = true
		p.cur.skipSpace()
	}

	if err := p.expectClosing(p.end); err != nil {
		return nil, false, err
	}
	return insert, true, nil
}

func (p *parser) parseSetFormat() (Token, bool, error) {
	if !p.cur.consume(p.start + "%") {
		return nil, false, nil
	}
	p.cur.skipSpace()

	typeName, err := p.expectStrLit()
	if err != nil {
		return nil, false, err
	}
	p.cur.skipSpace()

	if !p.cur.peekIs(':') {
		e := p.fail(ExpectedOp, p.cur.pos)
		e.Char = ':'
		return nil, false, e
	}
	p.cur.next()
	p.cur.skipSpace()

	format, err := p.expectStrLit()
	if err != nil {
		return nil, false, err
	}
	p.cur.skipSpace()

	if err := p.expectClosing("%" + p.end); err != nil {
		return nil, false, err
	}
	return SetFormat{TypeName: typeName, Format: format}, true, nil
}

// parseInstruction handles delimiter redefinition. The new delimiters apply to
// everything parsed afterwards, regardless of section nesting.
func (p *parser) parseInstruction() (bool, error) {
	if !p.cur.consume(p.start + "=") {
		return false, nil
	}
	p.cur.skipSpace()

	start, ok, err := p.parseDelimiterDef()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, p.fail(MissingStartDelimiterDef, p.cur.pos)
	}
	p.cur.skipSpace()

	end, ok, err := p.parseDelimiterDef()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, p.fail(MissingEndDelimiterDef, p.cur.pos)
	}
	p.cur.skipSpace()

	if err := p.expectClosing("=" + p.end); err != nil {
		return false, err
	}

	p.start, p.end = start, end
	return true, nil
}

func (p *parser) parseDelimiterDef() (string, bool, error) {
	saved := p.cur
	for {
		r, ok := p.cur.peek()
		if !ok || r == '=' || unicode.IsSpace(r) {
			break
		}
		p.cur.next()
	}

	def := p.cur.src[saved.off:p.cur.off]
	if def == "" {
		return "", false, nil
	}
	if strings.ContainsRune(def, ':') {
		p.cur = saved
		e := p.fail(ForbiddenDelimiterChar, saved.pos)
		e.Char = ':'
		return "", false, e
	}
	return def, true, nil
}

// parseText consumes everything up to the next start delimiter. Zero characters
// is "not present", never an empty Text.
func (p *parser) parseText() (Token, bool, error) {
	n := p.cur.indexOf(p.start)
	if n < 0 {
		n = p.cur.rest()
	}
	if n == 0 {
		return nil, false, nil
	}

	text := p.cur.src[p.cur.off : p.cur.off+n]
	p.cur.advance(n)
	return Text(text), true, nil
}
