package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/mail"
	"github.com/iliyamo/content-hub/internal/middleware"
	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/queue"
	"github.com/iliyamo/content-hub/internal/repository"
	"github.com/iliyamo/content-hub/internal/service"
	"github.com/iliyamo/content-hub/internal/ticketing"
)

// EventHandler serves events, their attendees and check-in desk.
type EventHandler struct {
	Events *repository.EventRepo
	Pub    service.Publisher
	Log    *zap.Logger
	Now    func() time.Time
}

func NewEventHandler(r *repository.EventRepo, pub service.Publisher, log *zap.Logger) *EventHandler {
	return &EventHandler{Events: r, Pub: pub, Log: log, Now: func() time.Time { return time.Now().UTC() }}
}

type ticketTypeReq struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Capacity    *int    `json:"capacity"`
	Available   *bool   `json:"available"`
	Description string  `json:"description"`
}

type eventReq struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Location         string          `json:"location"`
	DateTime         time.Time       `json:"date_time"`
	ImageURL         string          `json:"image_url"`
	Capacity         *int            `json:"capacity"`
	RegistrationOpen *bool           `json:"registrationOpen"`
	EnableWaitlist   bool            `json:"enableWaitlist"`
	TicketTypes      []ticketTypeReq `json:"ticketTypes"`
}

// apply validates the request and copies it onto ev. Ticket types without
// an id get a fresh one; availability and open registration default to true.
func (r eventReq) apply(ev *model.Event) error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return apperr.Invalid("title", "title is required")
	}
	if r.DateTime.IsZero() {
		return apperr.Invalid("date_time", "date_time is required")
	}
	if r.Capacity != nil && *r.Capacity < 1 {
		return apperr.Invalid("capacity", "capacity must be at least 1")
	}
	types := make([]model.TicketType, 0, len(r.TicketTypes))
	seen := map[string]bool{}
	for i, t := range r.TicketTypes {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return apperr.Invalid("ticketTypes", "ticket type %d needs a name", i+1)
		}
		if t.Price < 0 {
			return apperr.Invalid("ticketTypes", "ticket type %s has a negative price", name)
		}
		if t.Capacity != nil && *t.Capacity < 1 {
			return apperr.Invalid("ticketTypes", "ticket type %s capacity must be at least 1", name)
		}
		id := strings.TrimSpace(t.ID)
		if id == "" {
			id = uuid.NewString()
		}
		if seen[id] {
			return apperr.Invalid("ticketTypes", "duplicate ticket type id %s", id)
		}
		seen[id] = true
		types = append(types, model.TicketType{
			ID:          id,
			Name:        name,
			Price:       t.Price,
			Capacity:    t.Capacity,
			Available:   t.Available == nil || *t.Available,
			Description: strings.TrimSpace(t.Description),
		})
	}
	ev.Title = title
	ev.Description = r.Description
	ev.Location = strings.TrimSpace(r.Location)
	ev.DateTime = r.DateTime.UTC()
	ev.ImageURL = strings.TrimSpace(r.ImageURL)
	ev.Capacity = r.Capacity
	ev.RegistrationOpen = r.RegistrationOpen == nil || *r.RegistrationOpen
	ev.EnableWaitlist = r.EnableWaitlist
	ev.TicketTypes = types
	return nil
}

type eventView struct {
	model.Event
	Remaining *int `json:"remaining"`
}

// List handles GET /events.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	events, err := h.Events.List(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, events)
}

// Get handles GET /events/:id and adds the remaining capacity, null when
// the event is unlimited.
func (h *EventHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	id := c.Param("id")
	ev, err := h.Events.Get(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ro, err := h.Events.Roster(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, eventView{Event: ev, Remaining: ticketing.Remaining(ev, &ro)})
}

// Create handles POST /events.
func (h *EventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.Log, errBadBody)
	}
	now := h.Now()
	ev := model.Event{ID: uuid.NewString(), CreatedBy: middleware.UserID(c), CreatedAt: now, UpdatedAt: now}
	if err := req.apply(&ev); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Events.Create(ctx, ev); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, ev)
}

// Update handles PUT /events/:id. Raised capacity may free room for
// waitlisted attendees, so the waitlist is promoted afterwards.
func (h *EventHandler) Update(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.Log, errBadBody)
	}
	id := c.Param("id")
	ctx, cancel := reqCtx(c)
	defer cancel()
	ev, err := h.Events.Update(ctx, id, func(ev *model.Event) error {
		if err := req.apply(ev); err != nil {
			return err
		}
		ev.UpdatedAt = h.Now()
		return nil
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if err := h.promote(c, id); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// Delete handles DELETE /events/:id.
func (h *EventHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Events.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleRegistration handles POST /events/:id/registration/toggle.
func (h *EventHandler) ToggleRegistration(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	ev, err := h.Events.Update(ctx, c.Param("id"), func(ev *model.Event) error {
		*ev = ticketing.ToggleRegistration(*ev, h.Now())
		return nil
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// GetCheckInSettings handles GET /events/:id/check-in-settings.
func (h *EventHandler) GetCheckInSettings(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	id := c.Param("id")
	if _, err := h.Events.Get(ctx, id); err != nil {
		return respondError(c, h.Log, err)
	}
	s, err := h.Events.CheckInSettings(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}

// PutCheckInSettings handles PUT /events/:id/check-in-settings.
func (h *EventHandler) PutCheckInSettings(c echo.Context) error {
	var s model.CheckInSettings
	if err := c.Bind(&s); err != nil {
		return respondError(c, h.Log, errBadBody)
	}
	if s.EarlyCheckInMinutes < 0 {
		return respondError(c, h.Log, apperr.Invalid("earlyCheckInMinutes", "must not be negative"))
	}
	if s.CheckInCloseMinutes < 0 {
		return respondError(c, h.Log, apperr.Invalid("checkInCloseMinutes", "must not be negative"))
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	id := c.Param("id")
	if _, err := h.Events.Get(ctx, id); err != nil {
		return respondError(c, h.Log, err)
	}
	if err := h.Events.PutCheckInSettings(ctx, id, s); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}

// SendReminders handles POST /events/:id/reminders: one reminder mail per
// confirmed attendee is queued.
func (h *EventHandler) SendReminders(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	id := c.Param("id")
	ev, err := h.Events.Get(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ro, err := h.Events.Roster(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	when := ev.DateTime.UTC().Format("Mon, 02 Jan 2006 15:04 MST")
	queued := 0
	for _, a := range ro.Attendees {
		if a.OnWaitlist {
			continue
		}
		msg := mail.Reminder(a.Email, a.Name, ev.Title, when, ev.Location)
		h.publish(c, queue.Activity{Type: queue.EventReminder, EventID: id, AttendeeID: a.ID, Email: a.Email, Mail: &msg})
		queued++
	}
	return c.JSON(http.StatusAccepted, echo.Map{"queued": queued})
}

// promote runs waitlist promotion for an event and announces the promoted
// attendees.
func (h *EventHandler) promote(c echo.Context, eventID string) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	var promoted []model.Attendee
	var title string
	if _, err := h.Events.UpdateRoster(ctx, eventID, func(ev model.Event, ro *model.Roster) error {
		title = ev.Title
		promoted = ticketing.Promote(ev, ro)
		return nil
	}); err != nil {
		return err
	}
	h.announcePromotions(c, eventID, title, promoted)
	return nil
}

func (h *EventHandler) announcePromotions(c echo.Context, eventID, title string, promoted []model.Attendee) {
	for _, a := range promoted {
		msg := mail.Promoted(a.Email, a.Name, title)
		h.publish(c, queue.Activity{Type: queue.AttendeePromoted, EventID: eventID, AttendeeID: a.ID, Email: a.Email, Mail: &msg})
	}
}

// publish never fails the request; a lost activity is only logged.
func (h *EventHandler) publish(c echo.Context, a queue.Activity) {
	if h.Pub == nil {
		return
	}
	a.OccurredAt = h.Now()
	if err := h.Pub.Publish(c.Request().Context(), a); err != nil {
		logger(h.Log).Warn("publish activity failed", zap.String("type", a.Type), zap.Error(err))
	}
}
