package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/store"
)

// EventRepo stores events together with the documents they own: the
// attendee roster and the check-in settings.
type EventRepo struct{ S store.Store }

func NewEventRepo(s store.Store) *EventRepo { return &EventRepo{S: s} }

// List returns all events by date, soonest first.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	events, err := store.ScanJSON[model.Event](ctx, r.S, prefixEvent)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].DateTime.Before(events[j].DateTime) })
	return events, nil
}

func (r *EventRepo) Get(ctx context.Context, id string) (model.Event, error) {
	var e model.Event
	err := store.GetJSON(ctx, r.S, prefixEvent+id, &e)
	return e, err
}

func (r *EventRepo) Create(ctx context.Context, e model.Event) error {
	return store.SetJSON(ctx, r.S, prefixEvent+e.ID, e)
}

// Update applies fn to the stored event atomically.
func (r *EventRepo) Update(ctx context.Context, id string, fn func(*model.Event) error) (model.Event, error) {
	var out model.Event
	err := store.UpdateJSON(ctx, r.S, prefixEvent+id, func(cur *model.Event) (*model.Event, error) {
		if cur == nil {
			return nil, ErrNotFound
		}
		if err := fn(cur); err != nil {
			return nil, err
		}
		cur.ID = id
		out = *cur
		return cur, nil
	})
	return out, err
}

// Delete removes the event, its roster and its check-in settings. The event
// goes first so that a roster update racing the delete sees it missing.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	for _, k := range []string{prefixEvent + id, prefixRoster + id, prefixCheckIn + id} {
		if err := r.S.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Roster returns the attendee roster of an event; an event without
// registrations has an empty roster.
func (r *EventRepo) Roster(ctx context.Context, eventID string) (model.Roster, error) {
	var ro model.Roster
	err := store.GetJSON(ctx, r.S, prefixRoster+eventID, &ro)
	if errors.Is(err, store.ErrNotFound) {
		return model.Roster{EventID: eventID, Attendees: []model.Attendee{}}, nil
	}
	if ro.Attendees == nil {
		ro.Attendees = []model.Attendee{}
	}
	return ro, err
}

// UpdateRoster runs fn against the event and its roster inside one atomic
// update of the roster document. Concurrent registrations therefore
// serialise on the roster and cannot oversell.
//
// The event is read before the update and checked again after it. A roster
// written while the event was being deleted is removed and the update
// reports ErrNotFound, so no roster outlives its event.
func (r *EventRepo) UpdateRoster(ctx context.Context, eventID string, fn func(model.Event, *model.Roster) error) (model.Roster, error) {
	ev, err := r.Get(ctx, eventID)
	if err != nil {
		return model.Roster{}, err
	}
	var out model.Roster
	err = store.UpdateJSON(ctx, r.S, prefixRoster+eventID, func(cur *model.Roster) (*model.Roster, error) {
		if cur == nil {
			cur = &model.Roster{EventID: eventID}
		}
		if err := fn(ev, cur); err != nil {
			return nil, err
		}
		if cur.Attendees == nil {
			cur.Attendees = []model.Attendee{}
		}
		out = *cur
		return cur, nil
	})
	if err != nil {
		return model.Roster{}, err
	}
	if _, err := r.Get(ctx, eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if derr := r.S.Delete(ctx, prefixRoster+eventID); derr != nil {
				return model.Roster{}, derr
			}
		}
		return model.Roster{}, err
	}
	return out, nil
}

// CheckInSettings returns the event's settings, or the defaults.
func (r *EventRepo) CheckInSettings(ctx context.Context, eventID string) (model.CheckInSettings, error) {
	var s model.CheckInSettings
	err := store.GetJSON(ctx, r.S, prefixCheckIn+eventID, &s)
	if errors.Is(err, store.ErrNotFound) {
		return model.DefaultCheckInSettings(), nil
	}
	return s, err
}

func (r *EventRepo) PutCheckInSettings(ctx context.Context, eventID string, s model.CheckInSettings) error {
	return store.SetJSON(ctx, r.S, prefixCheckIn+eventID, s)
}
