package forms

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/model"
)

//go:embed templates.yaml
var templatesYAML []byte

// Skeleton is a ready-made form definition.
type Skeleton struct {
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Schema      []model.Field `json:"schema" yaml:"schema"`
}

var catalogue = mustLoadCatalogue(templatesYAML)

func mustLoadCatalogue(raw []byte) map[string]Skeleton {
	var c map[string]Skeleton
	if err := yaml.Unmarshal(raw, &c); err != nil {
		panic(fmt.Sprintf("forms: decode templates: %v", err))
	}
	return c
}

// TemplateKeys lists the available template keys in sorted order.
func TemplateKeys() []string {
	keys := make([]string, 0, len(catalogue))
	for k := range catalogue {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Template returns a fresh copy of the named skeleton. Every field gets a
// new id, so two calls never share ids.
func Template(key string) (Skeleton, error) {
	sk, ok := catalogue[key]
	if !ok {
		return Skeleton{}, apperr.Invalid("template", "unknown template %q", key)
	}
	out := Skeleton{Title: sk.Title, Description: sk.Description, Schema: make([]model.Field, len(sk.Schema))}
	for i, f := range sk.Schema {
		f.ID = uuid.NewString()
		f.Options = append([]string(nil), f.Options...)
		out.Schema[i] = f
	}
	return out, nil
}

// ApplyTemplate replaces title, description and schema of f with the named
// skeleton and re-derives the slug from the new title.
func ApplyTemplate(f *model.Form, key string) error {
	sk, err := Template(key)
	if err != nil {
		return err
	}
	f.Title = sk.Title
	f.Description = sk.Description
	f.Schema = sk.Schema
	f.Slug = GenerateSlug(sk.Title)
	return nil
}
