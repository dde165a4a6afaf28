package model

import "time"

// Event is a scheduled happening with optional overall capacity and a list of
// ticket types, each with its own optional capacity.
type Event struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Location         string       `json:"location"`
	DateTime         time.Time    `json:"date_time"`
	ImageURL         string       `json:"image_url"`
	Capacity         *int         `json:"capacity,omitempty"`
	RegistrationOpen bool         `json:"registrationOpen"`
	EnableWaitlist   bool         `json:"enableWaitlist"`
	TicketTypes      []TicketType `json:"ticketTypes"`
	CreatedBy        string       `json:"created_by,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// TicketType is a named registration category of an event.
type TicketType struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Capacity    *int    `json:"capacity,omitempty"`
	Available   bool    `json:"available"`
	Description string  `json:"description,omitempty"`
}

// FindTicketType returns the ticket type with the given id.
func (e Event) FindTicketType(id string) (TicketType, bool) {
	for _, tt := range e.TicketTypes {
		if tt.ID == id {
			return tt, true
		}
	}
	return TicketType{}, false
}

// CheckInSettings configure the check-in desk of one event.
type CheckInSettings struct {
	AllowEarlyCheckIn     bool `json:"allowEarlyCheckIn"`
	EarlyCheckInMinutes   int  `json:"earlyCheckInMinutes"`
	EnableQRCode          bool `json:"enableQrCode"`
	SendConfirmationEmail bool `json:"sendConfirmationEmail"`
	AutoCloseCheckIn      bool `json:"autoCloseCheckIn"`
	CheckInCloseMinutes   int  `json:"checkInCloseMinutes"`
}

// DefaultCheckInSettings opens the desk 30 minutes early and never closes it.
func DefaultCheckInSettings() CheckInSettings {
	return CheckInSettings{
		AllowEarlyCheckIn:   true,
		EarlyCheckInMinutes: 30,
		CheckInCloseMinutes: 120,
	}
}
