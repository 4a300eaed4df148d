/*
Package tinct renders configuration files from themes.

Templates use a small logic-less language (see package template): values are
inserted with {{name}}, repeated or guarded with {{#name}}...{{/name}} and
inverted with {{^name}}...{{/name}}. Colours and numbers are formattable, so a
single theme can feed files that expect "#rrggbb", "rgb(r, g, b)" or floats in
[0, 1]:

	{{%"color": "{rx}{gx}{bx}"%}}
	background = {{palette.bg}}
	cursor     = {{palette.fg: "rgba({r}, {g}, {b}, {af:.2f})"}}

# Architecture

The Engine is decoupled from where templates live (ports.TemplateSource): a
directory on disk, an in-memory set or Redis. Parsed templates are cached and
safe for concurrent renders. Lifecycle hooks (package observability) expose
parse and render events, e.g. as Prometheus metrics.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/tinct"
	)

	func main() {
		// Reads templates from ./templates
		eng, err := tinct.New("./templates")
		if err != nil {
			log.Fatal(err)
		}

		out, err := eng.Render(context.Background(), "kitty.conf", map[string]any{
			"name": "gruvbox",
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(out)
	}

The tinct command (cmd/tinct) wraps the same engine for the terminal, an HTTP
server and an MCP server.
*/
package tinct
