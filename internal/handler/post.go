package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/autosave"
	"github.com/iliyamo/content-hub/internal/forms"
	"github.com/iliyamo/content-hub/internal/markdown"
	"github.com/iliyamo/content-hub/internal/middleware"
	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/repository"
)

// PostHandler serves the blog. Drafts are saved through a debouncer so that
// only the last edit of a burst reaches the store.
type PostHandler struct {
	Posts  *repository.PostRepo
	Drafts *autosave.Debouncer
	Log    *zap.Logger
	Now    func() time.Time
}

func NewPostHandler(r *repository.PostRepo, drafts *autosave.Debouncer, log *zap.Logger) *PostHandler {
	return &PostHandler{Posts: r, Drafts: drafts, Log: log, Now: func() time.Time { return time.Now().UTC() }}
}

type postReq struct {
	Title      string           `json:"title"`
	Slug       string           `json:"slug"`
	Content    string           `json:"content"`
	CoverImage string           `json:"cover_image"`
	Tags       []string         `json:"tags"`
	Status     model.PostStatus `json:"status"`
	Version    int64            `json:"version"`
}

// toPost validates the request and fills a post with its editable fields.
func (r postReq) toPost() (model.Post, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return model.Post{}, apperr.Invalid("title", "title is required")
	}
	slug := forms.GenerateSlug(r.Slug)
	if slug == "" {
		slug = forms.GenerateSlug(title)
	}
	if slug == "" {
		return model.Post{}, apperr.Invalid("slug", "slug must contain letters or digits")
	}
	status := r.Status
	switch status {
	case "":
		status = model.PostDraft
	case model.PostDraft, model.PostPublished:
	default:
		return model.Post{}, apperr.Invalid("status", "status must be draft or published")
	}
	tags := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return model.Post{
		Title:      title,
		Slug:       slug,
		Content:    r.Content,
		CoverImage: strings.TrimSpace(r.CoverImage),
		Tags:       tags,
		Status:     status,
	}, nil
}

// List handles GET /posts. Anonymous callers only see published posts.
func (h *PostHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	posts, err := h.Posts.List(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if middleware.UserID(c) == "" {
		out := posts[:0]
		for _, p := range posts {
			if p.Status == model.PostPublished {
				out = append(out, p)
			}
		}
		posts = out
	}
	return c.JSON(http.StatusOK, posts)
}

// Get handles GET /posts/:slug. ?render=html adds the rendered content.
func (h *PostHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Posts.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if p.Status != model.PostPublished && middleware.UserID(c) == "" {
		return respondError(c, h.Log, repository.ErrNotFound)
	}
	if c.QueryParam("render") == "html" {
		html, err := markdown.ToHTML(p.Content)
		if err != nil {
			return respondError(c, h.Log, err)
		}
		p.ContentHTML = html
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /posts.
func (h *PostHandler) Create(c echo.Context) error {
	var req postReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.Log, errBadBody)
	}
	p, err := req.toPost()
	if err != nil {
		return respondError(c, h.Log, err)
	}
	now := h.Now()
	p.ID = uuid.NewString()
	p.AuthorID = middleware.UserID(c)
	p.CreatedAt = now
	p.UpdatedAt = now

	ctx, cancel := reqCtx(c)
	defer cancel()
	created, err := h.Posts.Create(ctx, p)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /posts/:id. A body version that does not match the
// stored one fails with 409; version 0 overwrites unconditionally.
func (h *PostHandler) Update(c echo.Context) error {
	var req postReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.Log, errBadBody)
	}
	p, err := req.toPost()
	if err != nil {
		return respondError(c, h.Log, err)
	}
	p.UpdatedAt = h.Now()
	id := c.Param("id")
	// An explicit save supersedes any draft still waiting.
	h.Drafts.Cancel(id)

	ctx, cancel := reqCtx(c)
	defer cancel()
	updated, err := h.Posts.Update(ctx, id, req.Version, p)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /posts/:id.
func (h *PostHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	h.Drafts.Cancel(id)
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Posts.Delete(ctx, id); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SaveDraft handles PUT /posts/:id/draft. The draft is validated now and
// written once the post has seen no further draft for the debounce delay.
// Without a body version it applies to the version stored when it was
// scheduled; a write in between makes the save fail as stale.
func (h *PostHandler) SaveDraft(c echo.Context) error {
	var req postReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.Log, errBadBody)
	}
	p, err := req.toPost()
	if err != nil {
		return respondError(c, h.Log, err)
	}
	id := c.Param("id")
	ctx, cancel := reqCtx(c)
	defer cancel()
	cur, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	// A draft never changes the publication state unless it says so, and it
	// only lands on the version it was written against.
	if req.Status == "" {
		p.Status = cur.Status
	}
	version := req.Version
	if version == 0 {
		version = cur.Version
	}

	log := logger(h.Log).With(zap.String("post_id", id), zap.Int64("version", version))
	scheduled := h.Drafts.Schedule(id, func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p.UpdatedAt = h.Now()
		if _, err := h.Posts.Update(ctx, id, version, p); err != nil {
			log.Warn("autosave failed", zap.Error(err))
			return
		}
		log.Debug("draft saved")
	})
	if !scheduled {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "autosave is shutting down"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"scheduled": true})
}

// DiscardDraft handles DELETE /posts/:id/draft, dropping a pending save.
func (h *PostHandler) DiscardDraft(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"cancelled": h.Drafts.Cancel(c.Param("id"))})
}
