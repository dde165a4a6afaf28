package ticketing

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/model"
)

var emailCheck = validator.New()

// RegisterRequest is a registration attempt for one ticket type.
type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	TicketTypeID string `json:"ticketType"`
	Quantity     int    `json:"quantity"`
}

// Register applies the registration rules in order and, on success, appends
// the new attendee to r:
//
//  1. registration must be open
//  2. the ticket type must exist and be available, quantity must be >= 1
//  3. ticket-type capacity, then event capacity: overflow goes to the
//     waitlist when the event enables it and is rejected otherwise
//
// Only confirmed (non-waitlisted) quantity counts against capacity.
func Register(ev model.Event, r *model.Roster, req RegisterRequest, now time.Time) (model.Attendee, error) {
	if !ev.RegistrationOpen {
		return model.Attendee{}, rejected(ReasonRegistrationClosed, "registration is closed for this event")
	}
	tt, ok := ev.FindTicketType(req.TicketTypeID)
	if !ok {
		return model.Attendee{}, apperr.Invalid("ticketType", "ticket type %q not found", req.TicketTypeID)
	}
	if req.Quantity < 1 {
		return model.Attendee{}, apperr.Invalid("quantity", "quantity must be at least 1")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Attendee{}, apperr.Invalid("name", "name is required")
	}
	email := strings.TrimSpace(req.Email)
	if emailCheck.Var(email, "email") != nil {
		return model.Attendee{}, apperr.Invalid("email", "email must be a valid address")
	}
	if !tt.Available {
		return model.Attendee{}, rejected(ReasonTicketUnavailable, "ticket type "+tt.Name+" is not available")
	}

	waitlist := false
	if tt.Capacity != nil && SoldQuantity(r, tt.ID)+req.Quantity > *tt.Capacity {
		if !ev.EnableWaitlist {
			return model.Attendee{}, rejected(ReasonTicketCapacityExceeded, "ticket type "+tt.Name+" is sold out")
		}
		waitlist = true
	}
	if !waitlist && ev.Capacity != nil && ConfirmedQuantity(r)+req.Quantity > *ev.Capacity {
		if !ev.EnableWaitlist {
			return model.Attendee{}, rejected(ReasonEventCapacityExceeded, "event is at capacity")
		}
		waitlist = true
	}

	a := model.Attendee{
		ID:             uuid.NewString(),
		EventID:        ev.ID,
		Name:           name,
		Email:          email,
		TicketType:     tt.ID,
		TicketTypeName: tt.Name,
		Quantity:       req.Quantity,
		RegisteredAt:   now.UTC(),
		OnWaitlist:     waitlist,
	}
	if waitlist {
		pos := waitlistLen(r) + 1
		a.WaitlistPosition = &pos
	}
	r.EventID = ev.ID
	r.Attendees = append(r.Attendees, a)
	r.Revision++
	return a, nil
}

// SoldQuantity is the confirmed quantity of one ticket type.
func SoldQuantity(r *model.Roster, ticketTypeID string) int {
	n := 0
	for _, a := range r.Attendees {
		if !a.OnWaitlist && a.TicketType == ticketTypeID {
			n += a.Quantity
		}
	}
	return n
}

// ConfirmedQuantity is the confirmed quantity across all ticket types.
func ConfirmedQuantity(r *model.Roster) int {
	n := 0
	for _, a := range r.Attendees {
		if !a.OnWaitlist {
			n += a.Quantity
		}
	}
	return n
}

// Remaining returns the seats left at event level, or nil when the event is
// unlimited.
func Remaining(ev model.Event, r *model.Roster) *int {
	if ev.Capacity == nil {
		return nil
	}
	left := *ev.Capacity - ConfirmedQuantity(r)
	if left < 0 {
		left = 0
	}
	return &left
}

// ToggleRegistration flips registrationOpen. Existing attendees are untouched.
func ToggleRegistration(ev model.Event, now time.Time) model.Event {
	ev.RegistrationOpen = !ev.RegistrationOpen
	ev.UpdatedAt = now.UTC()
	return ev
}

func waitlistLen(r *model.Roster) int {
	n := 0
	for _, a := range r.Attendees {
		if a.OnWaitlist {
			n++
		}
	}
	return n
}
