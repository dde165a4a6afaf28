package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/store"
	"github.com/iliyamo/content-hub/internal/ticketing"
)

func TestHeroDefaultPersisted(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	r := NewHeroRepo(s)

	h, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultHero(), h)
	_, err = s.Get(ctx, "hero_section")
	require.NoError(t, err)

	h.Title = "Hello"
	require.NoError(t, r.Put(ctx, h))
	got, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
}

func TestPostVersioning(t *testing.T) {
	ctx := context.Background()
	r := NewPostRepo(store.NewMemory())
	now := time.Now().UTC()

	p, err := r.Create(ctx, model.Post{ID: "p1", Title: "One", Slug: "one", AuthorID: "u1", CreatedAt: now})
	require.NoError(t, err)
	assert.EqualValues(t, 1, p.Version)

	_, err = r.Create(ctx, model.Post{ID: "p2", Title: "Dup", Slug: "one"})
	assert.ErrorIs(t, err, ErrSlugTaken)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	upd, err := r.Update(ctx, "p1", 1, model.Post{Title: "One!", Slug: "one"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, upd.Version)
	assert.Equal(t, "u1", upd.AuthorID)
	assert.True(t, upd.CreatedAt.Equal(now))

	_, err = r.Update(ctx, "p1", 1, model.Post{Title: "stale", Slug: "one"})
	assert.ErrorIs(t, err, ErrStaleVersion)

	_, err = r.Create(ctx, model.Post{ID: "p3", Title: "Three", Slug: "three", CreatedAt: now.Add(time.Hour)})
	require.NoError(t, err)
	_, err = r.Update(ctx, "p1", 0, model.Post{Title: "x", Slug: "three"})
	assert.ErrorIs(t, err, ErrSlugTaken)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p3", list[0].ID)

	got, err := r.GetBySlug(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)

	require.NoError(t, r.Delete(ctx, "p1"))
	assert.ErrorIs(t, r.Delete(ctx, "p1"), apperr.ErrNotFound)
	_, err = r.Update(ctx, "missing", 0, model.Post{Slug: "zzz"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFormsAndSubmissions(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	forms := NewFormRepo(s)
	subs := NewSubmissionRepo(s)
	now := time.Now().UTC()

	require.NoError(t, forms.Create(ctx, model.Form{ID: "f1", Slug: "contact", CreatedAt: now}))
	assert.ErrorIs(t, forms.Create(ctx, model.Form{ID: "f2", Slug: "contact"}), ErrSlugTaken)

	require.NoError(t, subs.Create(ctx, model.FormResponse{ID: "a", FormSlug: "contact", SubmittedAt: now}))
	require.NoError(t, subs.Create(ctx, model.FormResponse{ID: "b", FormSlug: "contact", SubmittedAt: now.Add(time.Minute)}))
	require.NoError(t, subs.Create(ctx, model.FormResponse{ID: "c", FormSlug: "other", SubmittedAt: now}))

	list, err := subs.ListByForm(ctx, "contact")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	// Deleting a form keeps its responses.
	require.NoError(t, forms.Delete(ctx, "contact"))
	list, err = subs.ListByForm(ctx, "contact")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	n, err := subs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEventDeleteRemovesOwnedDocuments(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	r := NewEventRepo(s)

	require.NoError(t, r.Create(ctx, model.Event{ID: "e1", RegistrationOpen: true,
		TicketTypes: []model.TicketType{{ID: "t", Name: "T", Available: true}}}))
	_, err := r.UpdateRoster(ctx, "e1", func(ev model.Event, ro *model.Roster) error {
		_, err := ticketing.Register(ev, ro, ticketing.RegisterRequest{Name: "A", Email: "a@example.com", TicketTypeID: "t", Quantity: 1}, time.Now())
		return err
	})
	require.NoError(t, err)
	require.NoError(t, r.PutCheckInSettings(ctx, "e1", model.CheckInSettings{}))

	require.NoError(t, r.Delete(ctx, "e1"))
	for _, k := range []string{"event_e1", "roster_e1", "checkin_settings_e1"} {
		_, err := s.Get(ctx, k)
		assert.ErrorIs(t, err, store.ErrNotFound, k)
	}
	settings, err := r.CheckInSettings(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCheckInSettings(), settings)

	_, err = r.UpdateRoster(ctx, "e1", func(model.Event, *model.Roster) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

// deletingStore removes the event document right before the roster update
// runs, as a concurrent DELETE /events/:id would.
type deletingStore struct {
	store.Store
	eventID string
}

func (d deletingStore) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	if key == prefixRoster+d.eventID {
		if err := d.Store.Delete(ctx, prefixEvent+d.eventID); err != nil {
			return err
		}
	}
	return d.Store.Update(ctx, key, fn)
}

func TestUpdateRosterLeavesNoOrphanWhenEventDeleted(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, NewEventRepo(mem).Create(ctx, model.Event{ID: "e2", RegistrationOpen: true,
		TicketTypes: []model.TicketType{{ID: "t", Name: "T", Available: true}}}))

	r := NewEventRepo(deletingStore{Store: mem, eventID: "e2"})
	_, err := r.UpdateRoster(ctx, "e2", func(ev model.Event, ro *model.Roster) error {
		_, err := ticketing.Register(ev, ro, ticketing.RegisterRequest{Name: "A", Email: "a@example.com", TicketTypeID: "t", Quantity: 1}, time.Now())
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = mem.Get(ctx, prefixRoster+"e2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// Concurrent registrations against the Redis store must never oversell.
func TestConcurrentRegistrationRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	r := NewEventRepo(store.NewRedis(rdb, "test:"))

	capacity := 3
	require.NoError(t, r.Create(ctx, model.Event{ID: "e1", RegistrationOpen: true, Capacity: &capacity,
		TicketTypes: []model.TicketType{{ID: "t", Name: "T", Available: true}}}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.UpdateRoster(ctx, "e1", func(ev model.Event, ro *model.Roster) error {
				_, err := ticketing.Register(ev, ro, ticketing.RegisterRequest{Name: "A", Email: "a@example.com", TicketTypeID: "t", Quantity: 1}, time.Now())
				return err
			})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	ro, err := r.Roster(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 3, ticketing.ConfirmedQuantity(&ro))
	assert.Equal(t, len(ro.Attendees), accepted)
}

func TestUsersAndTokens(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	users := NewUserRepo(s)
	tokens := NewTokenRepo(s)

	require.NoError(t, users.Create(ctx, model.User{ID: "u1", Email: " Ada@Example.com "}))
	assert.ErrorIs(t, users.Create(ctx, model.User{ID: "u2", Email: "ada@example.com"}), ErrEmailExists)
	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	ok, err := users.Exists(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	exp := time.Now().UTC().Add(time.Hour)
	require.NoError(t, tokens.Store(ctx, RefreshToken, model.TokenRecord{TokenHash: "h1", UserID: "u1", ExpiresAt: exp}))
	require.NoError(t, tokens.Store(ctx, RefreshToken, model.TokenRecord{TokenHash: "h2", UserID: "u1", ExpiresAt: exp}))
	_, err = tokens.Validate(ctx, RefreshToken, "h1")
	require.NoError(t, err)

	require.NoError(t, tokens.RevokeAllForUser(ctx, RefreshToken, "u1"))
	_, err = tokens.Validate(ctx, RefreshToken, "h2")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, tokens.Store(ctx, ResetToken, model.TokenRecord{TokenHash: "r1", UserID: "u1", ExpiresAt: exp}))
	_, err = tokens.Consume(ctx, ResetToken, "r1")
	require.NoError(t, err)
	_, err = tokens.Consume(ctx, ResetToken, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}
