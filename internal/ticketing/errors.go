// Package ticketing holds the registration, waitlist and check-in rules of
// an event. Functions operate on an in-memory Roster; callers persist the
// result inside a single atomic store update.
package ticketing

import "github.com/iliyamo/content-hub/internal/apperr"

// Rejection reason codes carried by apperr.CapacityError.
const (
	ReasonRegistrationClosed     = "registration_closed"
	ReasonTicketUnavailable      = "ticket_unavailable"
	ReasonTicketCapacityExceeded = "ticket_capacity_exceeded"
	ReasonEventCapacityExceeded  = "event_capacity_exceeded"
)

func rejected(reason, msg string) error {
	return &apperr.CapacityError{Reason: reason, Message: msg}
}
