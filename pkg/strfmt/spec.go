package strfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxWidth bounds width and precision so a format string cannot request an
// arbitrarily large allocation.
const maxWidth = 1 << 12

// spec is a parsed [[fill]align][sign][#][0][width][.precision][type].
type spec struct {
	fill      rune
	align     byte // '<', '>', '^' or 0 for the default of the value's kind
	plus      bool
	alternate bool
	zero      bool
	width     int
	precision int // -1 when absent
	verb      byte
}

func isAlign(c byte) bool {
	return c == '<' || c == '>' || c == '^'
}

func parseSpec(raw string) (spec, error) {
	sp := spec{fill: ' ', precision: -1}
	rest := raw

	if r, size := utf8.DecodeRuneInString(rest); size > 0 && len(rest) > size && isAlign(rest[size]) {
		sp.fill, sp.align = r, rest[size]
		rest = rest[size+1:]
	} else if len(rest) > 0 && isAlign(rest[0]) {
		sp.align = rest[0]
		rest = rest[1:]
	}

	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		sp.plus = rest[0] == '+'
		rest = rest[1:]
	}
	if len(rest) > 0 && rest[0] == '#' {
		sp.alternate = true
		rest = rest[1:]
	}
	if len(rest) > 0 && rest[0] == '0' {
		sp.zero = true
		rest = rest[1:]
	}

	var ok bool
	if sp.width, rest, ok = number(rest); !ok {
		return sp, fmt.Errorf("width too large in %q", raw)
	}
	if len(rest) > 0 && rest[0] == '.' {
		if len(rest) < 2 || rest[1] < '0' || rest[1] > '9' {
			return sp, fmt.Errorf("missing precision in %q", raw)
		}
		if sp.precision, rest, ok = number(rest[1:]); !ok {
			return sp, fmt.Errorf("precision too large in %q", raw)
		}
	}

	switch rest {
	case "":
	case "d", "x", "X", "o", "b", "e", "E", "f":
		sp.verb = rest[0]
	default:
		return sp, fmt.Errorf("invalid spec %q", raw)
	}
	return sp, nil
}

// number consumes leading decimal digits. ok is false when the value exceeds maxWidth.
func number(s string) (n int, rest string, ok bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		if n > maxWidth {
			return 0, s, false
		}
		i++
	}
	return n, s[i:], true
}

func formatValue(value any, raw string) (string, error) {
	sp, err := parseSpec(raw)
	if err != nil {
		return "", err
	}

	if neg, mag, ok := integer(value); ok {
		switch sp.verb {
		case 'e', 'E', 'f':
			f := float64(mag)
			if neg {
				f = -f
			}
			return sp.formatFloat(f, 64)
		}
		return sp.formatInt(neg, mag), nil
	}

	switch f := value.(type) {
	case float64:
		return sp.formatFloat(f, 64)
	case float32:
		return sp.formatFloat(float64(f), 32)
	}

	if sp.verb != 0 {
		return "", fmt.Errorf("format code '%c' is not valid for %T", sp.verb, value)
	}
	s := fmt.Sprint(value)
	if sp.precision >= 0 && utf8.RuneCountInString(s) > sp.precision {
		s = string([]rune(s)[:sp.precision])
	}
	return sp.pad("", "", s, false), nil
}

func integer(value any) (neg bool, mag uint64, ok bool) {
	switch n := value.(type) {
	case int:
		return signed(int64(n))
	case int8:
		return signed(int64(n))
	case int16:
		return signed(int64(n))
	case int32:
		return signed(int64(n))
	case int64:
		return signed(n)
	case uint:
		return false, uint64(n), true
	case uint8:
		return false, uint64(n), true
	case uint16:
		return false, uint64(n), true
	case uint32:
		return false, uint64(n), true
	case uint64:
		return false, n, true
	}
	return false, 0, false
}

func signed(n int64) (bool, uint64, bool) {
	if n < 0 {
		return true, uint64(-(n + 1)) + 1, true
	}
	return false, uint64(n), true
}

func (sp spec) sign(neg bool) string {
	switch {
	case neg:
		return "-"
	case sp.plus:
		return "+"
	}
	return ""
}

func (sp spec) formatInt(neg bool, mag uint64) string {
	var body, prefix string
	switch sp.verb {
	case 'x':
		body, prefix = strconv.FormatUint(mag, 16), "0x"
	case 'X':
		body, prefix = strings.ToUpper(strconv.FormatUint(mag, 16)), "0x"
	case 'o':
		body, prefix = strconv.FormatUint(mag, 8), "0o"
	case 'b':
		body, prefix = strconv.FormatUint(mag, 2), "0b"
	default:
		body = strconv.FormatUint(mag, 10)
	}
	if !sp.alternate {
		prefix = ""
	}
	return sp.pad(sp.sign(neg), prefix, body, true)
}

func (sp spec) formatFloat(f float64, bits int) (string, error) {
	switch sp.verb {
	case 0, 'e', 'E', 'f':
	default:
		return "", fmt.Errorf("format code '%c' is not valid for float", sp.verb)
	}

	if math.IsNaN(f) {
		return sp.pad("", "", "NaN", false), nil
	}
	neg := math.Signbit(f)
	abs := math.Abs(f)
	if math.IsInf(f, 0) {
		return sp.pad(sp.sign(neg), "", "inf", false), nil
	}

	var body string
	switch sp.verb {
	case 'e', 'E':
		body = exponent(strconv.FormatFloat(abs, 'e', sp.precision, bits))
		if sp.verb == 'E' {
			body = strings.ToUpper(body)
		}
	case 'f':
		prec := sp.precision
		if prec < 0 {
			prec = 6
		}
		body = strconv.FormatFloat(abs, 'f', prec, bits)
	default:
		body = strconv.FormatFloat(abs, 'f', sp.precision, bits)
	}
	return sp.pad(sp.sign(neg), "", body, true), nil
}

// exponent rewrites "1.5e+03" as "1.5e3".
func exponent(s string) string {
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	neg := strings.HasPrefix(exp, "-")
	exp = strings.TrimLeft(exp, "+-0")
	if exp == "" {
		exp = "0"
	}
	if neg {
		exp = "-" + exp
	}
	return mantissa + "e" + exp
}

// pad applies width, fill and alignment. Numbers align right by default and
// honour the zero flag by padding between the sign and the digits.
func (sp spec) pad(sign, prefix, body string, numeric bool) string {
	s := sign + prefix + body
	n := utf8.RuneCountInString(s)
	if sp.width <= n {
		return s
	}
	gap := sp.width - n

	if sp.zero && numeric {
		return sign + prefix + strings.Repeat("0", gap) + body
	}

	align := sp.align
	if align == 0 {
		align = '<'
		if numeric {
			align = '>'
		}
	}
	fill := string(sp.fill)
	switch align {
	case '>':
		return strings.Repeat(fill, gap) + s
	case '^':
		left := gap / 2
		return strings.Repeat(fill, left) + s + strings.Repeat(fill, gap-left)
	}
	return s + strings.Repeat(fill, gap)
}
