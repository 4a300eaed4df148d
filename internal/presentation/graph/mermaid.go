package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/tinct/pkg/template"
)

// Overlay marks names to highlight on the outline, e.g. keys the render data
// does not provide.
type Overlay struct {
	Missing []string
}

// GenerateMermaid produces a Mermaid flowchart of a template's structure.
// Text is omitted. Shapes:
// - Template root: ((Circle))
// - Section: [[Subroutine]]
// - Inverted section: [/Parallelogram/]
// - SetFormat: {{Hexagon}}
// - Insert: [Rectangle]
func GenerateMermaid(name string, tokens []template.Token, overlay *Overlay) string {
	g := &generator{}
	g.sb.WriteString("graph TD\n")
	fmt.Fprintf(&g.sb, "    root((\"%s\"))\n", escapeLabel(name))
	g.walk("root", tokens)

	if overlay != nil && len(overlay.Missing) > 0 {
		missing := make(map[string]bool, len(overlay.Missing))
		for _, m := range overlay.Missing {
			missing[m] = true
		}

		g.sb.WriteString("\n    %% Overlay Styles\n")
		g.sb.WriteString("    classDef missing fill:#fee2e2,stroke:#b91c1c,stroke-width:2px,color:#000;\n")
		for _, n := range g.names {
			if missing[n.name] {
				fmt.Fprintf(&g.sb, "    class %s missing;\n", n.id)
			}
		}
	}
	return g.sb.String()
}

type namedNode struct {
	id, name string
}

type generator struct {
	sb    strings.Builder
	next  int
	names []namedNode
}

func (g *generator) id() string {
	g.next++
	return fmt.Sprintf("n%d", g.next)
}

func (g *generator) walk(parent string, tokens []template.Token) {
	for _, tok := range tokens {
		switch tok := tok.(type) {
		case template.Insert:
			id := g.id()
			label := tok.Name.String()
			if tok.HasFormat {
				label += fmt.Sprintf(": %q", tok.Format)
			}
			fmt.Fprintf(&g.sb, "    %s[\"%s\"]\n", id, escapeLabel(label))
			fmt.Fprintf(&g.sb, "    %s --> %s\n", parent, id)
			g.names = append(g.names, namedNode{id, tok.Name.String()})

		case template.Section:
			id := g.id()
			opener, closer, prefix := "[[", "]]", "#"
			if tok.Inverted {
				opener, closer, prefix = "[/", "/]", "^"
			}
			fmt.Fprintf(&g.sb, "    %s%s\"%s\"%s\n", id, opener, escapeLabel(prefix+tok.Name.String()), closer)
			fmt.Fprintf(&g.sb, "    %s --> %s\n", parent, id)
			g.names = append(g.names, namedNode{id, tok.Name.String()})
			g.walk(id, tok.Content)

		case template.SetFormat:
			id := g.id()
			label := fmt.Sprintf("%s: %q", tok.TypeName, tok.Format)
			fmt.Fprintf(&g.sb, "    %s{{\"%s\"}}\n", id, escapeLabel(label))
			// Dotted: the override applies to the rest of the document, not a subtree.
			fmt.Fprintf(&g.sb, "    %s -.-> %s\n", parent, id)
		}
	}
}

// escapeLabel makes s safe inside a double-quoted Mermaid label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
