package forms

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/content-hub/internal/model"
)

// ExportResponsesCSV writes one row per response with the header
// "Submission Date" followed by the field labels in schema order. List values
// are joined with "; ". Missing values become empty cells.
func ExportResponsesCSV(responses []model.FormResponse, fields []model.Field) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, 0, len(fields)+1)
	header = append(header, "Submission Date")
	for _, f := range fields {
		header = append(header, f.Label)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range responses {
		row := make([]string, 0, len(header))
		row = append(row, r.SubmittedAt.UTC().Format(time.RFC3339))
		for _, f := range fields {
			row = append(row, cell(r.Data[f.Label]))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, "; ")
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, "; ")
	}
	return fmt.Sprint(v)
}
