/*
Package strfmt expands format strings containing named placeholders.

A placeholder is written as {name} or {name:spec}. The spec follows the layout

	[[fill]align][sign][#][0][width][.precision][type]

where align is one of < (left, the default for text), > (right, the default
for numbers) or ^ (centre), sign is + to always print one, # adds a 0x, 0o or
0b prefix and 0 pads numbers with zeros after the sign. Precision is the number
of decimal places for floats and the maximum length for text. The type is one
of d, x, X, o, b for integers and f, e, E for floats. So {r:02x} renders an
integer as two lowercase hex digits and {rf:.3} renders 0.5 as 0.500. Literal
braces are written doubled: {{ and }}.

Placeholder names are resolved through a Lookup function supplied by the caller. An unknown name
aborts formatting with a *KeyError. A malformed format string or spec yields a *SyntaxError.
*/
package strfmt
