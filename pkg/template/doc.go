// Package template implements a small logic-less templating language.
//
// A template is plain text with tags between delimiters ("{{" and "}}" by
// default):
//
//	{{name}}                 insert a value
//	{{color: "{rx}{gx}{bx}"}} insert a formattable with an inline format
//	{{#name}}...{{/name}}    section: conditional, or repeated for each list item
//	{{^name}}...{{/name}}    inverted section
//	{{%"color": "{r},{g},{b}"%}} override the format of a type for the rest of the render
//	{{=<% %>=}}              switch delimiters for everything that follows
//
// Names are dotted paths ("palette.bg", "items.0") resolved against a stack of
// context frames, or "." for the current frame. Data is supplied as a Value
// tree; FromAny builds one from decoded YAML or JSON.
//
// Parsing is a single backtracking pass that reports the first error with its
// line and column. Rendering stops at the first error.
package template
