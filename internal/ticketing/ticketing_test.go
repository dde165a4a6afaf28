package ticketing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/model"
)

var now = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

func intp(n int) *int { return &n }

func newEvent(capacity *int, waitlist bool) model.Event {
	return model.Event{
		ID:               "ev1",
		Title:            "Launch",
		DateTime:         now,
		Capacity:         capacity,
		RegistrationOpen: true,
		EnableWaitlist:   waitlist,
		TicketTypes: []model.TicketType{
			{ID: "std", Name: "Standard", Available: true},
			{ID: "vip", Name: "VIP", Available: true, Capacity: intp(1)},
			{ID: "old", Name: "Early Bird", Available: false},
		},
	}
}

func req(name string) RegisterRequest {
	return RegisterRequest{Name: name, Email: name + "@example.com", TicketTypeID: "std", Quantity: 1}
}

func reason(t *testing.T, err error) string {
	t.Helper()
	var ce *apperr.CapacityError
	require.True(t, errors.As(err, &ce), "expected capacity error, got %v", err)
	return ce.Reason
}

func TestRegisterEventCapacityWithoutWaitlist(t *testing.T) {
	ev := newEvent(intp(2), false)
	r := &model.Roster{}

	_, err := Register(ev, r, req("a"), now)
	require.NoError(t, err)
	_, err = Register(ev, r, req("b"), now)
	require.NoError(t, err)
	_, err = Register(ev, r, req("c"), now)
	assert.Equal(t, ReasonEventCapacityExceeded, reason(t, err))

	assert.Len(t, r.Attendees, 2)
	assert.Equal(t, 2, ComputeStats(r.Attendees).ByTicketType["std"])
}

func TestRegisterOverflowToWaitlist(t *testing.T) {
	ev := newEvent(intp(1), true)
	r := &model.Roster{}

	first, err := Register(ev, r, req("a"), now)
	require.NoError(t, err)
	assert.False(t, first.OnWaitlist)
	assert.Nil(t, first.WaitlistPosition)

	second, err := Register(ev, r, req("b"), now)
	require.NoError(t, err)
	assert.True(t, second.OnWaitlist)
	require.NotNil(t, second.WaitlistPosition)
	assert.Equal(t, 1, *second.WaitlistPosition)

	third, err := Register(ev, r, req("c"), now)
	require.NoError(t, err)
	assert.Equal(t, 2, *third.WaitlistPosition)
	assert.Equal(t, 1, ConfirmedQuantity(r))
}

func TestRegisterTicketTypeRules(t *testing.T) {
	ev := newEvent(nil, false)
	r := &model.Roster{}

	vip := req("a")
	vip.TicketTypeID = "vip"
	_, err := Register(ev, r, vip, now)
	require.NoError(t, err)
	_, err = Register(ev, r, vip, now)
	assert.Equal(t, ReasonTicketCapacityExceeded, reason(t, err))

	old := req("b")
	old.TicketTypeID = "old"
	_, err = Register(ev, r, old, now)
	assert.Equal(t, ReasonTicketUnavailable, reason(t, err))

	missing := req("c")
	missing.TicketTypeID = "nope"
	_, err = Register(ev, r, missing, now)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	zero := req("d")
	zero.Quantity = 0
	_, err = Register(ev, r, zero, now)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	ev.EnableWaitlist = true
	a, err := Register(ev, r, vip, now)
	require.NoError(t, err)
	assert.True(t, a.OnWaitlist)
}

func TestRegisterClosed(t *testing.T) {
	ev := ToggleRegistration(newEvent(nil, false), now)
	assert.False(t, ev.RegistrationOpen)
	_, err := Register(ev, &model.Roster{}, req("a"), now)
	assert.Equal(t, ReasonRegistrationClosed, reason(t, err))
	assert.True(t, ToggleRegistration(ev, now).RegistrationOpen)
}

func TestRegisterNeverOversells(t *testing.T) {
	ev := newEvent(intp(5), true)
	r := &model.Roster{}
	for i := 0; i < 20; i++ {
		q := req("x")
		q.Quantity = 1 + i%3
		_, err := Register(ev, r, q, now)
		require.NoError(t, err)
		assert.LessOrEqual(t, ConfirmedQuantity(r), 5)
	}
}

func TestToggleCheckInTwiceRestores(t *testing.T) {
	ev := newEvent(nil, false)
	ev.DateTime = now.Add(7 * 24 * time.Hour)
	r := &model.Roster{}
	a, err := Register(ev, r, req("a"), now)
	require.NoError(t, err)

	got, err := ToggleCheckIn(r, a.ID)
	require.NoError(t, err)
	assert.True(t, got.CheckedIn)
	got, err = ToggleCheckIn(r, a.ID)
	require.NoError(t, err)
	assert.False(t, got.CheckedIn)

	_, err = ToggleCheckIn(r, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCheckInWindow(t *testing.T) {
	ev := newEvent(nil, false)
	s := model.DefaultCheckInSettings()

	w := CheckInWindow(ev, s)
	assert.False(t, w.Contains(now.Add(-31*time.Minute)))
	assert.True(t, w.Contains(now.Add(-29*time.Minute)))
	assert.True(t, w.Contains(now.Add(24*time.Hour)))

	s.AllowEarlyCheckIn = false
	assert.False(t, CheckInWindow(ev, s).Contains(now.Add(-time.Minute)))

	s.AutoCloseCheckIn = true
	w = CheckInWindow(ev, s)
	assert.False(t, w.Contains(now.Add(121*time.Minute)))
	assert.True(t, w.Contains(now.Add(120*time.Minute)))
}

func TestCheckInWaitlisted(t *testing.T) {
	ev := newEvent(intp(1), true)
	r := &model.Roster{}
	_, err := Register(ev, r, req("a"), now)
	require.NoError(t, err)
	b, err := Register(ev, r, req("b"), now)
	require.NoError(t, err)
	require.True(t, b.OnWaitlist)

	got, err := ToggleCheckIn(r, b.ID)
	require.NoError(t, err)
	assert.True(t, got.CheckedIn)
	assert.True(t, got.OnWaitlist)
	require.NotNil(t, got.WaitlistPosition)
	assert.Equal(t, 1, *got.WaitlistPosition)
}

func TestBulkCheckInSets(t *testing.T) {
	ev := newEvent(intp(1), true)
	r := &model.Roster{}
	a, _ := Register(ev, r, req("a"), now)
	b, _ := Register(ev, r, req("b"), now)
	require.True(t, b.OnWaitlist)
	_, err := ToggleCheckIn(r, a.ID)
	require.NoError(t, err)

	res := BulkCheckIn(r, []string{a.ID, b.ID, "ghost"})
	assert.ElementsMatch(t, []string{a.ID, b.ID}, res.CheckedIn)
	assert.Equal(t, map[string]string{"ghost": "attendee not found"}, res.Failed)
	assert.Equal(t, 2, ComputeStats(r.Attendees).CheckedIn)
}

func TestCancelPromotesFIFO(t *testing.T) {
	ev := newEvent(intp(2), true)
	r := &model.Roster{}
	a, _ := Register(ev, r, req("a"), now)
	_, _ = Register(ev, r, req("b"), now)

	big := req("c")
	big.Quantity = 2
	c, _ := Register(ev, r, big, now)
	d, _ := Register(ev, r, req("d"), now)
	e, _ := Register(ev, r, req("e"), now)
	require.Equal(t, 3, ComputeStats(r.Attendees).Waitlist)

	_, err := Cancel(r, a.ID)
	require.NoError(t, err)
	promoted := Promote(ev, r)

	// c needs two seats and only one is free, so d is the first that fits.
	require.Len(t, promoted, 1)
	assert.Equal(t, d.ID, promoted[0].ID)
	assert.Nil(t, promoted[0].WaitlistPosition)

	ci, ei := r.Find(c.ID), r.Find(e.ID)
	assert.Equal(t, 1, *r.Attendees[ci].WaitlistPosition)
	assert.Equal(t, 2, *r.Attendees[ei].WaitlistPosition)
	assert.Equal(t, 2, ConfirmedQuantity(r))

	_, err = Cancel(r, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestComputeStats(t *testing.T) {
	st := ComputeStats([]model.Attendee{
		{TicketType: "std", Quantity: 2, CheckedIn: true},
		{TicketType: "std", Quantity: 1},
		{TicketType: "vip", Quantity: 3, OnWaitlist: true},
	})
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.CheckedIn)
	assert.Equal(t, 1, st.Waitlist)
	assert.Equal(t, 3, st.ConfirmedQuantity)
	assert.Equal(t, map[string]int{"std": 3, "vip": 3}, st.ByTicketType)

	empty := ComputeStats(nil)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.ByTicketType)
}

func TestExportAttendeesCSVQuotes(t *testing.T) {
	out, err := ExportAttendeesCSV([]model.Attendee{
		{Name: "Doe, Jane", Email: "jane@example.com", TicketTypeName: "VIP", Quantity: 2, RegisteredAt: now, CheckedIn: true},
		{Name: "Bob", Email: "bob@example.com", TicketTypeName: "Standard", Quantity: 1, RegisteredAt: now},
	})
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Email", "Ticket Type", "Quantity", "Registered At", "Checked In"}, rows[0])
	assert.Equal(t, []string{"Doe, Jane", "jane@example.com", "VIP", "2", "2025-06-01T18:00:00Z", "Yes"}, rows[1])
	assert.Equal(t, "No", rows[2][5])
}

func TestSearchAndSelect(t *testing.T) {
	list := []model.Attendee{
		{ID: "1", Name: "Ada Lovelace", Email: "ada@example.com", TicketTypeName: "VIP"},
		{ID: "2", Name: "Bob", Email: "bob@corp.io", TicketTypeName: "Standard"},
	}
	assert.Len(t, Search(list, ""), 2)
	assert.Equal(t, "1", Search(list, "LOVE")[0].ID)
	assert.Equal(t, "2", Search(list, "corp")[0].ID)
	assert.Equal(t, "1", Search(list, "vip")[0].ID)
	assert.Empty(t, Search(list, "zzz"))

	sel := Select(list, []string{"2", "9"})
	require.Len(t, sel, 1)
	assert.Equal(t, "2", sel[0].ID)
}
