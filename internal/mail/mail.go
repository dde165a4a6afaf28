// Package mail sends transactional mail: registration confirmations, event
// reminders and password reset links.
package mail

import (
	"fmt"
	"html"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/iliyamo/content-hub/internal/config"
)

// Message is one outgoing mail. HTML is the body; plain-text clients get the
// same content as an alternative part.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Sender delivers a message.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers over SMTP with gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(c config.SMTPConfig) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(c.Host, c.Port, c.User, c.Password), from: c.From}
}

func (s *SMTPSender) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. It is used
// when SMTP is disabled.
type LogSender struct{ Log *zap.Logger }

func (s LogSender) Send(msg Message) error {
	s.Log.Info("mail not sent, smtp disabled",
		zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// New returns the SMTP sender when enabled and a LogSender otherwise.
func New(c config.SMTPConfig, log *zap.Logger) Sender {
	if c.Enabled {
		return NewSMTPSender(c)
	}
	return LogSender{Log: log}
}

func layout(title, body string) string {
	return `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">` +
		`<h2 style="color: #333; text-align: center;">` + html.EscapeString(title) + `</h2>` + body + `</div>`
}

func button(link, label string) string {
	return `<p style="text-align: center;"><a href="` + html.EscapeString(link) +
		`" style="display: inline-block; padding: 10px 20px; background-color: #007bff; color: #fff; text-decoration: none; border-radius: 5px;">` +
		html.EscapeString(label) + `</a></p>`
}

// RegistrationConfirmation is sent after a successful registration.
func RegistrationConfirmation(to, name, eventTitle string, waitlisted bool) Message {
	status := "You're registered."
	if waitlisted {
		status = "The event is full, so you're on the waitlist. We'll let you know if a spot opens up."
	}
	body := "<p>Hello " + html.EscapeString(name) + ",</p><p>" + html.EscapeString(status) + "</p>"
	return Message{To: to, Subject: "Registration: " + eventTitle, HTML: layout(eventTitle, body)}
}

// Promoted is sent when a waitlisted attendee gets a confirmed spot.
func Promoted(to, name, eventTitle string) Message {
	body := "<p>Hello " + html.EscapeString(name) + ",</p><p>A spot opened up and your registration is now confirmed.</p>"
	return Message{To: to, Subject: "You're off the waitlist: " + eventTitle, HTML: layout(eventTitle, body)}
}

// Reminder is sent to confirmed attendees before an event.
func Reminder(to, name, eventTitle, when, location string) Message {
	body := "<p>Hello " + html.EscapeString(name) + ",</p><p>This is a reminder that " +
		html.EscapeString(eventTitle) + " starts " + html.EscapeString(when)
	if location != "" {
		body += " at " + html.EscapeString(location)
	}
	body += ".</p>"
	return Message{To: to, Subject: "Reminder: " + eventTitle, HTML: layout(eventTitle, body)}
}

// PasswordReset carries the reset link.
func PasswordReset(to, link string) Message {
	body := "<p>Hello,</p><p>Follow the link below to choose a new password. If you did not ask for this, ignore this mail.</p>" +
		button(link, "Reset password")
	return Message{To: to, Subject: "Reset your password", HTML: layout("Password reset", body)}
}
