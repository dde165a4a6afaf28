package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/content-hub/internal/mail"
	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/queue"
	"github.com/iliyamo/content-hub/internal/ticketing"
)

// Register handles POST /events/:id/register. The whole capacity decision
// runs inside one atomic roster update.
func (h *EventHandler) Register(c echo.Context) error {
	var req ticketing.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.Log, errBadBody)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	id := c.Param("id")
	settings, err := h.Events.CheckInSettings(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}

	var a model.Attendee
	var title string
	if _, err := h.Events.UpdateRoster(ctx, id, func(ev model.Event, ro *model.Roster) error {
		title = ev.Title
		var err error
		a, err = ticketing.Register(ev, ro, req, h.Now())
		return err
	}); err != nil {
		return respondError(c, h.Log, err)
	}

	act := queue.Activity{Type: queue.AttendeeRegistered, EventID: id, AttendeeID: a.ID, Email: a.Email}
	if a.OnWaitlist {
		act.Detail = "waitlisted"
	}
	if settings.SendConfirmationEmail {
		msg := mail.RegistrationConfirmation(a.Email, a.Name, title, a.OnWaitlist)
		act.Mail = &msg
	}
	h.publish(c, act)
	return c.JSON(http.StatusCreated, a)
}

// Attendees handles GET /events/:id/attendees with optional ?q= search.
func (h *EventHandler) Attendees(c echo.Context) error {
	ro, err := h.roster(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	list := ro.Attendees
	if q := c.QueryParam("q"); q != "" {
		list = ticketing.Search(list, q)
	}
	return c.JSON(http.StatusOK, list)
}

// Stats handles GET /events/:id/attendees/stats.
func (h *EventHandler) Stats(c echo.Context) error {
	ro, err := h.roster(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, ticketing.ComputeStats(ro.Attendees))
}

// Export handles GET /events/:id/attendees/export. ?ids=a,b restricts the
// export to the selected attendees.
func (h *EventHandler) Export(c echo.Context) error {
	ro, err := h.roster(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	list := ro.Attendees
	if ids := splitIDs(c.QueryParam("ids")); len(ids) > 0 {
		list = ticketing.Select(list, ids)
	}
	data, err := ticketing.ExportAttendeesCSV(list)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="attendees-%s-%s.csv"`, c.Param("id"), h.Now().Format("2006-01-02")))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// checkInView is a toggled attendee plus whether the toggle happened inside
// the event's check-in window.
type checkInView struct {
	model.Attendee
	WithinWindow bool `json:"withinWindow"`
}

// CheckIn handles POST /events/:id/attendees/:attendeeId/check-in and
// toggles the attendee's check-in. The window from the check-in settings is
// only reported, never enforced.
func (h *EventHandler) CheckIn(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	id := c.Param("id")
	settings, err := h.Events.CheckInSettings(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	now := h.Now()
	var out checkInView
	if _, err := h.Events.UpdateRoster(ctx, id, func(ev model.Event, ro *model.Roster) error {
		a, err := ticketing.ToggleCheckIn(ro, c.Param("attendeeId"))
		if err != nil {
			return err
		}
		out = checkInView{Attendee: a, WithinWindow: ticketing.CheckInWindow(ev, settings).Contains(now)}
		return nil
	}); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// BulkCheckIn handles POST /events/:id/attendees/check-in with {"ids": [...]}.
func (h *EventHandler) BulkCheckIn(c echo.Context) error {
	var req struct {
		IDs []string `json:"ids" validate:"required,min=1"`
	}
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	var res ticketing.BulkResult
	if _, err := h.Events.UpdateRoster(ctx, c.Param("id"), func(_ model.Event, ro *model.Roster) error {
		res = ticketing.BulkCheckIn(ro, req.IDs)
		return nil
	}); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel handles DELETE /events/:id/attendees/:attendeeId. Freed capacity
// is handed to the waitlist in the same update.
func (h *EventHandler) Cancel(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	id := c.Param("id")
	var removed model.Attendee
	var promoted []model.Attendee
	var title string
	if _, err := h.Events.UpdateRoster(ctx, id, func(ev model.Event, ro *model.Roster) error {
		var err error
		if removed, err = ticketing.Cancel(ro, c.Param("attendeeId")); err != nil {
			return err
		}
		title = ev.Title
		promoted = ticketing.Promote(ev, ro)
		return nil
	}); err != nil {
		return respondError(c, h.Log, err)
	}
	h.announcePromotions(c, id, title, promoted)
	if promoted == nil {
		promoted = []model.Attendee{}
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": removed, "promoted": promoted})
}

func (h *EventHandler) roster(c echo.Context) (model.Roster, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	id := c.Param("id")
	if _, err := h.Events.Get(ctx, id); err != nil {
		return model.Roster{}, err
	}
	return h.Events.Roster(ctx, id)
}

func splitIDs(raw string) []string {
	var ids []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}
