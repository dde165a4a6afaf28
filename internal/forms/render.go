package forms

import (
	"fmt"
	"html"
	"strings"

	"github.com/iliyamo/content-hub/internal/model"
)

// RenderHTML renders the public markup of form, fields in schema order.
// Fields of an unknown type are skipped.
func RenderHTML(form model.Form) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<form class="dynamic-form" data-slug="%s" method="post" action="%s/submit">`,
		attr(form.Slug), attr(form.Slug))
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(form.Title))
	if form.Description != "" {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(form.Description))
	}
	for _, f := range form.Schema {
		k, ok := KindOf(f.Type)
		if !ok {
			continue
		}
		b.WriteString(`<div class="field">`)
		fmt.Fprintf(&b, `<label for="%s">%s`, attr(f.ID), html.EscapeString(f.Label))
		if f.Required {
			b.WriteString(`<span class="required">*</span>`)
		}
		b.WriteString("</label>")
		k.Render(&b, f)
		b.WriteString("</div>")
	}
	b.WriteString(`<button type="submit">Submit Form</button></form>`)
	return b.String()
}
