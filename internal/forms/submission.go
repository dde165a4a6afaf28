package forms

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/model"
)

var emailCheck = validator.New()

// ValidateSubmission checks data against the form schema in schema order and
// fails fast on the first offending field. Values are looked up by field id
// first (client payloads) and by label second (persisted responses).
//
// Required fields must be present and non-empty (arrays: at least one
// element). Present values must fit their kind: emails must parse, select and
// radio values must be one of the options, checkbox values a subset of them.
func ValidateSubmission(form model.Form, data map[string]any) error {
	for _, f := range form.Schema {
		v, _ := lookup(f, data)
		if IsEmpty(v) {
			if f.Required {
				return apperr.Invalid(f.Label, "%s is required", f.Label)
			}
			continue
		}
		if err := checkValue(f, v); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeSubmission re-keys data by field label in schema order, dropping
// keys that match no field. Checkbox values become []string.
func NormalizeSubmission(form model.Form, data map[string]any) map[string]any {
	out := make(map[string]any, len(form.Schema))
	for _, f := range form.Schema {
		v, ok := lookup(f, data)
		if !ok || v == nil {
			continue
		}
		if k, ok := KindOf(f.Type); ok && k.Multi() {
			out[f.Label] = toStrings(v)
			continue
		}
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		out[f.Label] = v
	}
	return out
}

// IsEmpty reports whether v counts as "not filled in": nil, a blank string,
// false, or an empty list.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

func lookup(f model.Field, data map[string]any) (any, bool) {
	if v, ok := data[f.ID]; ok && f.ID != "" {
		return v, true
	}
	v, ok := data[f.Label]
	return v, ok
}

func checkValue(f model.Field, v any) error {
	switch f.Type {
	case model.FieldEmail:
		s, ok := v.(string)
		if !ok || emailCheck.Var(strings.TrimSpace(s), "email") != nil {
			return apperr.Invalid(f.Label, "%s must be a valid email address", f.Label)
		}
	case model.FieldSelect, model.FieldRadio:
		s, ok := v.(string)
		if !ok || !contains(f.Options, s) {
			return apperr.Invalid(f.Label, "%s must be one of the listed options", f.Label)
		}
	case model.FieldCheckbox:
		for _, s := range toStrings(v) {
			if !contains(f.Options, s) {
				return apperr.Invalid(f.Label, "%s contains an unknown option %q", f.Label, s)
			}
		}
	}
	return nil
}

func contains(opts []string, s string) bool {
	for _, o := range opts {
		if o == s {
			return true
		}
	}
	return false
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, fmt.Sprint(e))
		}
		return out
	case string:
		if strings.TrimSpace(t) == "" {
			return []string{}
		}
		return []string{t}
	}
	return []string{fmt.Sprint(v)}
}
