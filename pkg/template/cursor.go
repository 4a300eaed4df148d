package template

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// position is a line/column pair. Lines start at 1, columns at 0.
type position struct {
	line   int
	column int
}

// cursor is an index into the source. It is a plain value: copying it takes a
// snapshot, assigning the copy back restores it.
type cursor struct {
	src string
	off int
	pos position
}

func newCursor(src string) cursor {
	return cursor{src: src, pos: position{line: 1}}
}

func (c *cursor) eof() bool { return c.off >= len(c.src) }

func (c *cursor) peek() (rune, bool) {
	if c.eof() {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(c.src[c.off:])
	return r, true
}

func (c *cursor) peekIs(r rune) bool {
	got, ok := c.peek()
	return ok && got == r
}

func (c *cursor) next() (rune, bool) {
	if c.eof() {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(c.src[c.off:])
	c.off += size
	if r == '\n' {
		c.pos.line++
		c.pos.column = 0
	} else {
		c.pos.column++
	}
	return r, true
}

// advance moves n bytes forward, keeping the position in sync.
func (c *cursor) advance(n int) {
	end := c.off + n
	for c.off < end {
		c.next()
	}
}

// consume advances past s if the remaining input starts with it.
func (c *cursor) consume(s string) bool {
	if s == "" || !strings.HasPrefix(c.src[c.off:], s) {
		return false
	}
	c.advance(len(s))
	return true
}

func (c *cursor) skipSpace() {
	for {
		r, ok := c.peek()
		if !ok || !unicode.IsSpace(r) {
			return
		}
		c.next()
	}
}

// indexOf returns the byte distance to the next occurrence of s, or -1.
func (c *cursor) indexOf(s string) int {
	return strings.Index(c.src[c.off:], s)
}

func (c *cursor) rest() int { return len(c.src) - c.off }
