// Package seed creates the demo account and content of a fresh install.
// Every step is skipped when its data already exists, so seeding is safe to
// run on every start.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/auth"
	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/repository"
)

const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin123"
)

const welcomeContent = `Welcome to your new content hub! This is your first blog post to demonstrate the blogging functionality.

This platform includes:

- **Blog Management** - Create, edit, and publish blog posts
- **Event Management** - Schedule events, sell tickets and check attendees in
- **Custom Forms** - Build dynamic forms to collect user data
- **Media Upload** - Upload and manage images
- **Dashboard Analytics** - Track your content performance

## Getting Started

1. **Customize Your Hero Section** - Update the homepage banner with your branding
2. **Create Blog Posts** - Share your thoughts and expertise
3. **Schedule Events** - Keep your audience informed about upcoming events
4. **Build Forms** - Collect feedback and user information

Start exploring the admin dashboard to customize your site and create amazing content!`

// Deps are the collaborators seeding writes through.
type Deps struct {
	Auth   auth.Provider
	Users  *repository.UserRepo
	Posts  *repository.PostRepo
	Events *repository.EventRepo
	Log    *zap.Logger
}

// Run seeds the demo admin, then the welcome post and launch webinar when no
// post exists yet.
func Run(ctx context.Context, d Deps, now time.Time) error {
	adminID, err := ensureAdmin(ctx, d)
	if err != nil {
		return err
	}
	posts, err := d.Posts.List(ctx)
	if err != nil {
		return err
	}
	if len(posts) > 0 {
		d.Log.Debug("seed: content exists, skipping")
		return nil
	}

	now = now.UTC()
	if _, err := d.Posts.Create(ctx, model.Post{
		ID:        uuid.NewString(),
		Title:     "Welcome to Your New Blog!",
		Slug:      "welcome-to-your-new-blog",
		Content:   welcomeContent,
		Tags:      []string{"welcome", "tutorial", "getting-started"},
		Status:    model.PostPublished,
		AuthorID:  adminID,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return err
	}

	capacity := 100
	ev := model.Event{
		ID:               uuid.NewString(),
		Title:            "Platform Launch Webinar",
		Description:      "Join us for a webinar where we walk you through every feature: customizing your site, creating content and building forms.",
		Location:         "Online via Zoom",
		DateTime:         now.Add(7 * 24 * time.Hour),
		Capacity:         &capacity,
		RegistrationOpen: true,
		EnableWaitlist:   true,
		TicketTypes: []model.TicketType{
			{ID: uuid.NewString(), Name: "General Admission", Price: 0, Available: true},
		},
		CreatedBy: adminID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.Events.Create(ctx, ev); err != nil {
		return err
	}
	d.Log.Info("seed: demo content created")
	return nil
}

func ensureAdmin(ctx context.Context, d Deps) (string, error) {
	u, err := d.Users.GetByEmail(ctx, AdminEmail)
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	created, err := d.Auth.SignUp(ctx, AdminEmail, AdminPassword, map[string]any{"name": "Demo Admin", "role": model.RoleAdmin})
	if err != nil {
		return "", err
	}
	d.Log.Info("seed: demo admin created", zap.String("email", AdminEmail))
	return created.ID, nil
}
