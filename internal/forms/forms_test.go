package forms

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/model"
)

func contactForm(t *testing.T) model.Form {
	t.Helper()
	f := model.Form{ID: "f1"}
	require.NoError(t, ApplyTemplate(&f, "contact"))
	return f
}

func TestGenerateSlug(t *testing.T) {
	cases := map[string]string{
		"My Test Form!":           "my-test-form",
		"  Leading and trailing ": "leading-and-trailing",
		"Already-a-slug":          "already-a-slug",
		"a -- b":                  "a-b",
		"Café 2024":               "caf-2024",
		"!!!":                     "",
		"---x---":                 "x",
	}
	for in, want := range cases {
		assert.Equal(t, want, GenerateSlug(in), in)
	}
}

func TestGenerateSlugIdempotent(t *testing.T) {
	titles := []string{"My Test Form!", "Hello   World", "x-y z", " -a- ", "Événement Été", "100% Done"}
	for _, title := range titles {
		once := GenerateSlug(title)
		assert.Equal(t, once, GenerateSlug(once), title)
		for _, r := range once {
			assert.True(t, r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'), "rune %q in %q", r, once)
		}
		assert.False(t, strings.HasPrefix(once, "-") || strings.HasSuffix(once, "-"))
		assert.NotContains(t, once, "--")
	}
}

func TestGenerateSlugIdempotentRandom(t *testing.T) {
	wellFormed := func(s string) bool {
		once := GenerateSlug(s)
		if GenerateSlug(once) != once {
			return false
		}
		return !strings.HasPrefix(once, "-") && !strings.HasSuffix(once, "-") && !strings.Contains(once, "--")
	}
	require.NoError(t, quick.Check(wellFormed, &quick.Config{MaxCount: 5000}))

	// Mostly slug-alphabet input, so hyphen and space runs are exercised.
	alphabet := []rune("aZ09 -_-  !é")
	fromRunes := func(idx []uint8) bool {
		rs := make([]rune, len(idx))
		for i, n := range idx {
			rs[i] = alphabet[int(n)%len(alphabet)]
		}
		return wellFormed(string(rs))
	}
	require.NoError(t, quick.Check(fromRunes, &quick.Config{MaxCount: 5000}))
}

func TestTemplateFreshIDs(t *testing.T) {
	a, err := Template("contact")
	require.NoError(t, err)
	b, err := Template("contact")
	require.NoError(t, err)

	require.Len(t, a.Schema, 4)
	labels := []string{"Name", "Email", "Subject", "Message"}
	for i, f := range a.Schema {
		assert.Equal(t, labels[i], f.Label)
		assert.True(t, f.Required)
		assert.NotEmpty(t, f.ID)
		assert.NotEqual(t, f.ID, b.Schema[i].ID)
	}
	assert.Equal(t, []string{"General Inquiry", "Support", "Partnership", "Other"}, a.Schema[2].Options)
	assert.Equal(t, []string{"contact", "event", "feedback"}, TemplateKeys())

	_, err = Template("survey")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestApplyTemplate(t *testing.T) {
	f := contactForm(t)
	assert.Equal(t, "Contact Form", f.Title)
	assert.Equal(t, "contact-form", f.Slug)
	assert.NoError(t, ValidateSchema(f))

	for _, key := range TemplateKeys() {
		g := model.Form{}
		require.NoError(t, ApplyTemplate(&g, key))
		assert.NoError(t, ValidateSchema(g), key)
	}
}

func TestValidateSchema(t *testing.T) {
	base := func() model.Form { return contactForm(t) }

	f := base()
	f.Schema[2].Options = nil
	var fe *ValidationError
	require.True(t, errors.As(ValidateSchema(f), &fe))
	assert.Equal(t, "schema[2].options", fe.Field)

	f = base()
	f.Schema[1].ID = f.Schema[0].ID
	assert.ErrorIs(t, ValidateSchema(f), apperr.ErrValidation)

	f = base()
	f.Schema[1].Label = "Name"
	assert.ErrorIs(t, ValidateSchema(f), apperr.ErrValidation)

	f = base()
	f.Schema[0].Type = "date"
	assert.ErrorIs(t, ValidateSchema(f), apperr.ErrValidation)

	f = base()
	f.Slug = "Not A Slug"
	assert.ErrorIs(t, ValidateSchema(f), apperr.ErrValidation)
}

func TestValidateSubmission(t *testing.T) {
	f := contactForm(t)
	valid := map[string]any{
		"Name":    "Ada",
		"Email":   "ada@example.com",
		"Subject": "Support",
		"Message": "Hello",
	}
	assert.NoError(t, ValidateSubmission(f, valid))

	t.Run("first missing field wins", func(t *testing.T) {
		err := ValidateSubmission(f, map[string]any{"Message": "x"})
		var fe *ValidationError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "Name", fe.Field)
		assert.Equal(t, "Name is required", fe.Message)
	})

	t.Run("blank string is empty", func(t *testing.T) {
		data := copyMap(valid)
		data["Message"] = "   "
		var fe *ValidationError
		require.True(t, errors.As(ValidateSubmission(f, data), &fe))
		assert.Equal(t, "Message", fe.Field)
	})

	t.Run("keyed by field id", func(t *testing.T) {
		data := map[string]any{}
		for _, fld := range f.Schema {
			data[fld.ID] = valid[fld.Label]
		}
		assert.NoError(t, ValidateSubmission(f, data))
		norm := NormalizeSubmission(f, data)
		assert.Equal(t, valid, norm)
	})

	t.Run("bad email", func(t *testing.T) {
		data := copyMap(valid)
		data["Email"] = "not-an-email"
		var fe *ValidationError
		require.True(t, errors.As(ValidateSubmission(f, data), &fe))
		assert.Equal(t, "Email", fe.Field)
	})

	t.Run("unknown option", func(t *testing.T) {
		data := copyMap(valid)
		data["Subject"] = "Sales"
		assert.ErrorIs(t, ValidateSubmission(f, data), apperr.ErrValidation)
	})
}

func TestValidateSubmissionCheckbox(t *testing.T) {
	f := model.Form{}
	require.NoError(t, ApplyTemplate(&f, "feedback"))
	data := map[string]any{
		"Rating":                  "5 - Excellent",
		"What did you like?":      "Speakers",
		"What could be improved?": "Coffee",
		"Would you recommend us?": []any{},
	}
	var fe *ValidationError
	require.True(t, errors.As(ValidateSubmission(f, data), &fe))
	assert.Equal(t, "Would you recommend us?", fe.Field)

	data["Would you recommend us?"] = []any{"Yes", "Maybe"}
	assert.NoError(t, ValidateSubmission(f, data))

	data["Would you recommend us?"] = []any{"Yes", "Never"}
	assert.ErrorIs(t, ValidateSubmission(f, data), apperr.ErrValidation)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty(" \t"))
	assert.True(t, IsEmpty(false))
	assert.True(t, IsEmpty([]any{}))
	assert.False(t, IsEmpty("x"))
	assert.False(t, IsEmpty(true))
	assert.False(t, IsEmpty(0.0))
	assert.False(t, IsEmpty([]string{"a"}))
}

func TestExportResponsesCSV(t *testing.T) {
	f := contactForm(t)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	responses := []model.FormResponse{
		{ID: "r1", SubmittedAt: at, Data: map[string]any{
			"Name": "Doe, Jane", "Email": "jane@example.com", "Subject": "Other", "Message": `she said "hi"`,
		}},
		{ID: "r2", SubmittedAt: at.Add(time.Hour), Data: map[string]any{"Name": "Bob"}},
	}
	out, err := ExportResponsesCSV(responses, f.Schema)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Submission Date", "Name", "Email", "Subject", "Message"}, rows[0])
	assert.Equal(t, "Doe, Jane", rows[1][1])
	assert.Equal(t, `she said "hi"`, rows[1][4])
	assert.Equal(t, []string{"2025-03-01T11:00:00Z", "Bob", "", "", ""}, rows[2])
}

func TestExportJoinsLists(t *testing.T) {
	fields := []model.Field{{ID: "a", Type: model.FieldCheckbox, Label: "Extras", Options: []string{"A", "B"}}}
	out, err := ExportResponsesCSV([]model.FormResponse{{Data: map[string]any{"Extras": []any{"A", "B"}}}}, fields)
	require.NoError(t, err)
	assert.Contains(t, string(out), "A; B")
}

func TestRenderHTML(t *testing.T) {
	f := contactForm(t)
	f.Schema = append(f.Schema, model.Field{ID: "x", Type: model.FieldCheckbox, Label: "<b>Extras</b>", Options: []string{"One", "Two"}})
	out := RenderHTML(f)

	assert.Contains(t, out, `data-slug="contact-form"`)
	assert.Contains(t, out, `<textarea id="`+f.Schema[3].ID+`"`)
	assert.Contains(t, out, `<option value="Support">Support</option>`)
	assert.Contains(t, out, `name="x[]"`)
	assert.Contains(t, out, "&lt;b&gt;Extras&lt;/b&gt;")
	assert.NotContains(t, out, "<b>Extras</b>")
	assert.Less(t, strings.Index(out, "Name"), strings.Index(out, "Message"))
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
