package model

import "time"

// Attendee is one registration of an event. An attendee never exists
// without its event; all attendees of an event live in the event's Roster.
type Attendee struct {
	ID               string    `json:"id"`
	EventID          string    `json:"eventId"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	TicketType       string    `json:"ticketType"`
	TicketTypeName   string    `json:"ticketTypeName"`
	Quantity         int       `json:"quantity"`
	RegisteredAt     time.Time `json:"registeredAt"`
	CheckedIn        bool      `json:"checkedIn"`
	OnWaitlist       bool      `json:"onWaitlist"`
	WaitlistPosition *int      `json:"waitlistPosition,omitempty"`
}

// Roster is the per-event attendee document, kept in registration order.
// Revision increases on every mutation.
type Roster struct {
	EventID   string     `json:"eventId"`
	Revision  int64      `json:"revision"`
	Attendees []Attendee `json:"attendees"`
}

// Find returns the index of the attendee with the given id, or -1.
func (r *Roster) Find(id string) int {
	for i := range r.Attendees {
		if r.Attendees[i].ID == id {
			return i
		}
	}
	return -1
}

// AttendeeStats are derived on demand and never persisted.
type AttendeeStats struct {
	Total             int            `json:"total"`
	CheckedIn         int            `json:"checkedIn"`
	Waitlist          int            `json:"waitlist"`
	ConfirmedQuantity int            `json:"confirmedQuantity"`
	ByTicketType      map[string]int `json:"byTicketType"`
}
