// Package repository gives typed access to the documents of the store. Each
// repo owns one key family; errors are sentinel values wrapping the apperr
// kinds so handlers can map them with errors.Is.
package repository

import (
	"fmt"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/store"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = store.ErrNotFound
	// ErrSlugTaken is returned when a post or form slug is already in use.
	ErrSlugTaken = fmt.Errorf("slug already in use: %w", apperr.ErrConflict)
	// ErrEmailExists is returned on signup with a registered email.
	ErrEmailExists = fmt.Errorf("email already exists: %w", apperr.ErrConflict)
	// ErrStaleVersion is returned when an update carries an outdated version.
	ErrStaleVersion = fmt.Errorf("document was modified by someone else: %w", apperr.ErrConflict)
)

// Key layout of the document store.
const (
	keyHero            = "hero_section"
	prefixPost         = "blog_post_"
	prefixEvent        = "event_"
	prefixRoster       = "roster_"
	prefixCheckIn      = "checkin_settings_"
	prefixForm         = "form_"
	prefixSubmission   = "submission_"
	prefixUser         = "user_"
	prefixRefreshToken = "refresh_"
	prefixResetToken   = "reset_"
)
