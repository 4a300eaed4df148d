package template_test

import (
	"fmt"

	"github.com/aretw0/tinct/pkg/template"
)

func Example() {
	tmpl, err := template.Parse("{{#langs}}{{name}} {{/langs}}")
	if err != nil {
		panic(err)
	}

	out, err := tmpl.Render(template.Map{
		"langs": template.List{
			template.Map{"name": template.String("go")},
			template.Map{"name": template.String("rust")},
		},
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output: go rust
}

func ExampleTemplate_SetFormat() {
	tmpl := template.MustParse(`size={{n}}`)
	tmpl.SetFormat("int", "{int:03d}px")

	out, _ := tmpl.Render(template.Map{"n": template.Fmt(template.Int(7))})
	fmt.Println(out)
	// Output: size=007px
}
