package ticketing

import (
	"fmt"
	"time"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/model"
)

// Window is the interval in which the desk expects check-ins. It is
// advisory: check-ins outside it are still recorded. A zero Close means the
// desk never closes.
type Window struct {
	Open  time.Time
	Close time.Time
}

// CheckInWindow derives the check-in window of ev from its settings.
func CheckInWindow(ev model.Event, s model.CheckInSettings) Window {
	w := Window{Open: ev.DateTime}
	if s.AllowEarlyCheckIn {
		w.Open = ev.DateTime.Add(-time.Duration(s.EarlyCheckInMinutes) * time.Minute)
	}
	if s.AutoCloseCheckIn {
		w.Close = ev.DateTime.Add(time.Duration(s.CheckInCloseMinutes) * time.Minute)
	}
	return w
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Open) {
		return false
	}
	return w.Close.IsZero() || !t.After(w.Close)
}

// ToggleCheckIn flips checkedIn of one attendee, in either direction and
// regardless of the waitlist or the clock. Toggling twice restores the
// original value.
func ToggleCheckIn(r *model.Roster, attendeeID string) (model.Attendee, error) {
	i := r.Find(attendeeID)
	if i < 0 {
		return model.Attendee{}, fmt.Errorf("attendee %s: %w", attendeeID, apperr.ErrNotFound)
	}
	a := &r.Attendees[i]
	a.CheckedIn = !a.CheckedIn
	r.Revision++
	return *a, nil
}

// BulkResult reports the outcome of a bulk check-in.
type BulkResult struct {
	CheckedIn []string          `json:"checkedIn"`
	Failed    map[string]string `json:"failed"`
}

// BulkCheckIn marks every listed attendee as checked in. Unlike
// ToggleCheckIn it sets rather than flips, so attendees already checked in
// stay checked in. Unknown ids are reported and do not stop the batch.
func BulkCheckIn(r *model.Roster, ids []string) BulkResult {
	res := BulkResult{CheckedIn: []string{}, Failed: map[string]string{}}
	changed := false
	for _, id := range ids {
		i := r.Find(id)
		if i < 0 {
			res.Failed[id] = "attendee not found"
			continue
		}
		if a := &r.Attendees[i]; !a.CheckedIn {
			a.CheckedIn = true
			changed = true
		}
		res.CheckedIn = append(res.CheckedIn, id)
	}
	if changed {
		r.Revision++
	}
	return res
}
