package ticketing

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/content-hub/internal/model"
)

// ComputeStats derives the attendee counters of a roster.
func ComputeStats(attendees []model.Attendee) model.AttendeeStats {
	st := model.AttendeeStats{Total: len(attendees), ByTicketType: map[string]int{}}
	for _, a := range attendees {
		if a.CheckedIn {
			st.CheckedIn++
		}
		if a.OnWaitlist {
			st.Waitlist++
		} else {
			st.ConfirmedQuantity += a.Quantity
		}
		st.ByTicketType[a.TicketType] += a.Quantity
	}
	return st
}

// Search filters attendees whose name, email or ticket type name contains q,
// case-insensitively. An empty q returns the input.
func Search(attendees []model.Attendee, q string) []model.Attendee {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return attendees
	}
	out := []model.Attendee{}
	for _, a := range attendees {
		if strings.Contains(strings.ToLower(a.Name), q) ||
			strings.Contains(strings.ToLower(a.Email), q) ||
			strings.Contains(strings.ToLower(a.TicketTypeName), q) {
			out = append(out, a)
		}
	}
	return out
}

// Select keeps the attendees whose id is in ids, preserving roster order.
func Select(attendees []model.Attendee, ids []string) []model.Attendee {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []model.Attendee{}
	for _, a := range attendees {
		if want[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

// ExportAttendeesCSV writes attendees in the supplied order.
func ExportAttendeesCSV(attendees []model.Attendee) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Name", "Email", "Ticket Type", "Quantity", "Registered At", "Checked In"}); err != nil {
		return nil, err
	}
	for _, a := range attendees {
		row := []string{
			a.Name,
			a.Email,
			a.TicketTypeName,
			strconv.Itoa(a.Quantity),
			a.RegisteredAt.UTC().Format(time.RFC3339),
			yesNo(a.CheckedIn),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
