package model

import "time"

// FieldType tags the variant of a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldFile     FieldType = "file"
)

// Form is a dynamic form. Slug is unique among forms and Schema order
// defines both render order and CSV column order.
type Form struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Schema      []Field   `json:"schema"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Field is one input of a form. ID is unique within its form.
type Field struct {
	ID          string    `json:"id" yaml:"-"`
	Type        FieldType `json:"type" yaml:"type"`
	Label       string    `json:"label" yaml:"label"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder"`
	Required    bool      `json:"required" yaml:"required"`
	Options     []string  `json:"options,omitempty" yaml:"options"`
}

// FormResponse is one immutable submission. Data is keyed by field label.
// It references its form weakly by slug: deleting the form keeps responses.
type FormResponse struct {
	ID          string         `json:"id"`
	FormID      string         `json:"form_id"`
	FormSlug    string         `json:"form_slug"`
	Data        map[string]any `json:"data"`
	SubmittedAt time.Time      `json:"submitted_at"`
}
