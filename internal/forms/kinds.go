package forms

import (
	"fmt"
	"html"
	"strings"

	"github.com/iliyamo/content-hub/internal/model"
)

// Kind is the behaviour attached to one field type. Every FieldType maps to
// exactly one Kind; code that needs per-type behaviour dispatches through
// KindOf instead of switching on the tag.
type Kind interface {
	Type() model.FieldType
	// RequiresOptions reports whether the field must carry a non-empty option list.
	RequiresOptions() bool
	// Multi reports whether the submitted value is a list.
	Multi() bool
	// Render writes the HTML control for f.
	Render(b *strings.Builder, f model.Field)
}

var kinds = map[model.FieldType]Kind{
	model.FieldText:     inputKind{typ: model.FieldText},
	model.FieldEmail:    inputKind{typ: model.FieldEmail},
	model.FieldFile:     inputKind{typ: model.FieldFile},
	model.FieldTextarea: textareaKind{},
	model.FieldSelect:   selectKind{},
	model.FieldRadio:    choiceKind{typ: model.FieldRadio},
	model.FieldCheckbox: choiceKind{typ: model.FieldCheckbox},
}

// KindOf returns the Kind of t.
func KindOf(t model.FieldType) (Kind, bool) {
	k, ok := kinds[t]
	return k, ok
}

type inputKind struct{ typ model.FieldType }

func (k inputKind) Type() model.FieldType { return k.typ }
func (inputKind) RequiresOptions() bool   { return false }
func (inputKind) Multi() bool             { return false }

func (k inputKind) Render(b *strings.Builder, f model.Field) {
	fmt.Fprintf(b, `<input type="%s" id="%s" name="%s"`, k.typ, attr(f.ID), attr(f.ID))
	if f.Placeholder != "" && k.typ != model.FieldFile {
		fmt.Fprintf(b, ` placeholder="%s"`, attr(f.Placeholder))
	}
	writeRequired(b, f)
	b.WriteString(">")
}

type textareaKind struct{}

func (textareaKind) Type() model.FieldType { return model.FieldTextarea }
func (textareaKind) RequiresOptions() bool { return false }
func (textareaKind) Multi() bool           { return false }

func (textareaKind) Render(b *strings.Builder, f model.Field) {
	fmt.Fprintf(b, `<textarea id="%s" name="%s"`, attr(f.ID), attr(f.ID))
	if f.Placeholder != "" {
		fmt.Fprintf(b, ` placeholder="%s"`, attr(f.Placeholder))
	}
	writeRequired(b, f)
	b.WriteString("></textarea>")
}

type selectKind struct{}

func (selectKind) Type() model.FieldType { return model.FieldSelect }
func (selectKind) RequiresOptions() bool { return true }
func (selectKind) Multi() bool           { return false }

func (selectKind) Render(b *strings.Builder, f model.Field) {
	fmt.Fprintf(b, `<select id="%s" name="%s"`, attr(f.ID), attr(f.ID))
	writeRequired(b, f)
	b.WriteString(`><option value="">Select an option</option>`)
	for _, o := range f.Options {
		fmt.Fprintf(b, `<option value="%s">%s</option>`, attr(o), html.EscapeString(o))
	}
	b.WriteString("</select>")
}

// choiceKind renders radio groups and checkbox groups.
type choiceKind struct{ typ model.FieldType }

func (k choiceKind) Type() model.FieldType { return k.typ }
func (choiceKind) RequiresOptions() bool   { return true }
func (k choiceKind) Multi() bool           { return k.typ == model.FieldCheckbox }

func (k choiceKind) Render(b *strings.Builder, f model.Field) {
	name := f.ID
	if k.Multi() {
		name += "[]"
	}
	fmt.Fprintf(b, `<fieldset id="%s">`, attr(f.ID))
	for i, o := range f.Options {
		id := fmt.Sprintf("%s-%d", f.ID, i)
		fmt.Fprintf(b, `<label for="%s"><input type="%s" id="%s" name="%s" value="%s">%s</label>`,
			attr(id), k.typ, attr(id), attr(name), attr(o), html.EscapeString(o))
	}
	b.WriteString("</fieldset>")
}

func writeRequired(b *strings.Builder, f model.Field) {
	if f.Required {
		b.WriteString(" required")
	}
}

func attr(s string) string { return html.EscapeString(s) }
