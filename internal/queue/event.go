// Package queue defines the activity messages exchanged over the broker and
// the consumer that processes them.
package queue

import (
	"time"

	"github.com/iliyamo/content-hub/internal/mail"
)

// Activity types.
const (
	AttendeeRegistered = "attendee.registered"
	AttendeePromoted   = "attendee.promoted"
	FormSubmitted      = "form.submitted"
	EventReminder      = "event.reminder"
	PasswordReset      = "auth.password_reset"
)

// Activity is published whenever something worth recording happens. Mail,
// when set, is delivered by the consumer so request handlers never wait on
// SMTP.
type Activity struct {
	Type       string        `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	EventID    string        `json:"event_id,omitempty"`
	AttendeeID string        `json:"attendee_id,omitempty"`
	FormSlug   string        `json:"form_slug,omitempty"`
	UserID     string        `json:"user_id,omitempty"`
	Email      string        `json:"email,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Mail       *mail.Message `json:"mail,omitempty"`
}
