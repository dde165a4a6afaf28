package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/content-hub/internal/model"
)

var fields = []model.Field{
	{ID: "1", Type: model.FieldText, Label: "Name", Required: true},
	{ID: "2", Type: model.FieldEmail, Label: "Email"},
	{ID: "3", Type: model.FieldCheckbox, Label: "Extras", Options: []string{"A"}},
	{ID: "4", Type: model.FieldTextarea, Label: "Notes"},
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, fields)
	assert.Zero(t, s.TotalResponses)
	assert.Zero(t, s.AverageFieldCompletion)
	assert.Zero(t, s.AverageMinutesBetweenResponses)
	assert.Nil(t, s.LastResponseAt)
	require.Len(t, s.FieldCompletionRates, 4)
	for label, rate := range s.FieldCompletionRates {
		assert.Zero(t, rate, label)
	}
}

func TestAggregateNoFields(t *testing.T) {
	s := Aggregate([]model.FormResponse{{Data: map[string]any{"x": "y"}}}, nil)
	assert.Equal(t, 1, s.TotalResponses)
	assert.Zero(t, s.AverageFieldCompletion)
	assert.Empty(t, s.FieldCompletionRates)
}

func TestAggregate(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	responses := []model.FormResponse{
		{SubmittedAt: t0.Add(90 * time.Minute), Data: map[string]any{
			"Name": "Ada", "Email": "ada@example.com", "Extras": []any{"A"}, "Notes": "hi",
		}},
		{SubmittedAt: t0.Add(30 * time.Minute), Data: map[string]any{"Name": "Bob", "Extras": []any{}}},
		{SubmittedAt: t0, Data: map[string]any{"Name": "Cy", "Notes": "  "}},
		{SubmittedAt: t0.Add(-time.Hour), Data: map[string]any{"Name": "Di", "Email": "di@example.com"}},
	}
	s := Aggregate(responses, fields)

	assert.Equal(t, 4, s.TotalResponses)
	// 4/4 + 1/4 + 1/4 + 2/4 over four responses.
	assert.InDelta(t, 0.5, s.AverageFieldCompletion, 1e-9)
	assert.InDelta(t, 100, s.FieldCompletionRates["Name"], 1e-9)
	assert.InDelta(t, 50, s.FieldCompletionRates["Email"], 1e-9)
	assert.InDelta(t, 25, s.FieldCompletionRates["Extras"], 1e-9)
	assert.InDelta(t, 25, s.FieldCompletionRates["Notes"], 1e-9)

	require.NotNil(t, s.LastResponseAt)
	assert.Equal(t, responses[0].SubmittedAt, *s.LastResponseAt)
	// 150 minutes between newest and oldest, divided by four responses.
	assert.InDelta(t, 37.5, s.AverageMinutesBetweenResponses, 1e-9)
}

func TestAggregateTrustsOrder(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	responses := []model.FormResponse{
		{SubmittedAt: t0, Data: map[string]any{"Name": "old"}},
		{SubmittedAt: t0.Add(time.Hour), Data: map[string]any{"Name": "new"}},
	}
	s := Aggregate(responses, fields)
	assert.Equal(t, t0, *s.LastResponseAt)
	assert.Equal(t, "old", responses[0].Data["Name"])
}
