package ticketing

import (
	"fmt"
	"sort"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/model"
)

// Cancel removes an attendee from the roster and renumbers the waitlist.
func Cancel(r *model.Roster, attendeeID string) (model.Attendee, error) {
	i := r.Find(attendeeID)
	if i < 0 {
		return model.Attendee{}, fmt.Errorf("attendee %s: %w", attendeeID, apperr.ErrNotFound)
	}
	a := r.Attendees[i]
	r.Attendees = append(r.Attendees[:i:i], r.Attendees[i+1:]...)
	renumber(r)
	r.Revision++
	return a, nil
}

// Promote moves waitlisted attendees into the confirmed set in waitlist
// order while both event and ticket-type capacity allow. An attendee that
// does not fit is skipped, so a smaller request further down the list may
// still be promoted. It returns the promoted attendees.
func Promote(ev model.Event, r *model.Roster) []model.Attendee {
	var promoted []model.Attendee
	for _, i := range waitlistOrder(r) {
		a := &r.Attendees[i]
		if !fits(ev, r, *a) {
			continue
		}
		a.OnWaitlist = false
		a.WaitlistPosition = nil
		promoted = append(promoted, *a)
	}
	if len(promoted) > 0 {
		renumber(r)
		r.Revision++
	}
	return promoted
}

func fits(ev model.Event, r *model.Roster, a model.Attendee) bool {
	if ev.Capacity != nil && ConfirmedQuantity(r)+a.Quantity > *ev.Capacity {
		return false
	}
	tt, ok := ev.FindTicketType(a.TicketType)
	if !ok || !tt.Available {
		return false
	}
	return tt.Capacity == nil || SoldQuantity(r, tt.ID)+a.Quantity <= *tt.Capacity
}

// waitlistOrder returns roster indexes of waitlisted attendees sorted by
// position, falling back to registration order.
func waitlistOrder(r *model.Roster) []int {
	var idx []int
	for i, a := range r.Attendees {
		if a.OnWaitlist {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(x, y int) bool {
		return position(r.Attendees[idx[x]]) < position(r.Attendees[idx[y]])
	})
	return idx
}

func position(a model.Attendee) int {
	if a.WaitlistPosition == nil {
		return int(^uint(0) >> 1)
	}
	return *a.WaitlistPosition
}

func renumber(r *model.Roster) {
	for n, i := range waitlistOrder(r) {
		pos := n + 1
		r.Attendees[i].WaitlistPosition = &pos
	}
}
