// Package forms is the form engine: slug derivation, schema rules,
// submission validation, built-in templates, HTML rendering and CSV export
// of responses.
package forms

import (
	"fmt"
	"strings"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/model"
)

// ValidateSchema checks the structural rules of a form definition: a title,
// a canonical slug, and fields with a known type, a unique id, a unique
// non-empty label and options where the type needs them.
func ValidateSchema(f model.Form) error {
	if strings.TrimSpace(f.Title) == "" {
		return apperr.Invalid("title", "is required")
	}
	if !ValidSlug(f.Slug) {
		return apperr.Invalid("slug", "must be lower-case letters, digits and single hyphens")
	}
	ids := make(map[string]bool, len(f.Schema))
	labels := make(map[string]bool, len(f.Schema))
	for i, field := range f.Schema {
		k, ok := KindOf(field.Type)
		if !ok {
			return apperr.Invalid(fieldPath(i, "type"), "unknown field type %q", field.Type)
		}
		if field.ID == "" {
			return apperr.Invalid(fieldPath(i, "id"), "is required")
		}
		if ids[field.ID] {
			return apperr.Invalid(fieldPath(i, "id"), "duplicate field id %q", field.ID)
		}
		ids[field.ID] = true
		label := strings.TrimSpace(field.Label)
		if label == "" {
			return apperr.Invalid(fieldPath(i, "label"), "is required")
		}
		// Responses are keyed by label, so labels must not collide.
		if labels[label] {
			return apperr.Invalid(fieldPath(i, "label"), "duplicate label %q", label)
		}
		labels[label] = true
		if k.RequiresOptions() && len(nonEmpty(field.Options)) == 0 {
			return apperr.Invalid(fieldPath(i, "options"), "%s fields need at least one option", field.Type)
		}
	}
	return nil
}

func fieldPath(i int, name string) string {
	return fmt.Sprintf("schema[%d].%s", i, name)
}

func nonEmpty(opts []string) []string {
	out := opts[:0:0]
	for _, o := range opts {
		if strings.TrimSpace(o) != "" {
			out = append(out, o)
		}
	}
	return out
}

// ValidationError is the error returned for a rejected schema or submission.
type ValidationError = apperr.FieldError
