// Package analytics aggregates form responses for the dashboard.
package analytics

import (
	"time"

	"github.com/iliyamo/content-hub/internal/forms"
	"github.com/iliyamo/content-hub/internal/model"
)

// Summary is the aggregate view of a form's responses.
// AverageFieldCompletion is a fraction in [0, 1]; FieldCompletionRates are
// percentages in [0, 100].
type Summary struct {
	TotalResponses                 int                `json:"totalResponses"`
	AverageFieldCompletion         float64            `json:"averageFieldCompletion"`
	FieldCompletionRates           map[string]float64 `json:"fieldCompletionRates"`
	LastResponseAt                 *time.Time         `json:"lastResponseAt,omitempty"`
	AverageMinutesBetweenResponses float64            `json:"averageMinutesBetweenResponses"`
}

// Aggregate computes completion statistics over responses, which the caller
// supplies sorted by submission time, newest first. The order is trusted and
// never changed.
func Aggregate(responses []model.FormResponse, fields []model.Field) Summary {
	s := Summary{
		TotalResponses:       len(responses),
		FieldCompletionRates: make(map[string]float64, len(fields)),
	}
	for _, f := range fields {
		s.FieldCompletionRates[f.Label] = 0
	}
	if len(responses) == 0 {
		return s
	}

	var completion float64
	for _, r := range responses {
		if len(fields) > 0 {
			completion += float64(filled(r.Data)) / float64(len(fields))
		}
		for _, f := range fields {
			if !forms.IsEmpty(r.Data[f.Label]) {
				s.FieldCompletionRates[f.Label]++
			}
		}
	}
	total := float64(len(responses))
	s.AverageFieldCompletion = completion / total
	for label, n := range s.FieldCompletionRates {
		s.FieldCompletionRates[label] = n / total * 100
	}

	last := responses[0].SubmittedAt
	s.LastResponseAt = &last
	if len(responses) > 1 {
		span := responses[0].SubmittedAt.Sub(responses[len(responses)-1].SubmittedAt)
		s.AverageMinutesBetweenResponses = span.Minutes() / total
	}
	return s
}

func filled(data map[string]any) int {
	n := 0
	for _, v := range data {
		if !forms.IsEmpty(v) {
			n++
		}
	}
	return n
}
