package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/repository"
)

// StatsHandler feeds the dashboard overview.
type StatsHandler struct {
	Posts       *repository.PostRepo
	Events      *repository.EventRepo
	Forms       *repository.FormRepo
	Submissions *repository.SubmissionRepo
	Log         *zap.Logger
	Now         func() time.Time
}

func NewStatsHandler(p *repository.PostRepo, e *repository.EventRepo, f *repository.FormRepo, s *repository.SubmissionRepo, log *zap.Logger) *StatsHandler {
	return &StatsHandler{Posts: p, Events: e, Forms: f, Submissions: s, Log: log, Now: time.Now}
}

type dashboardStats struct {
	TotalPosts     int `json:"totalPosts"`
	PublishedPosts int `json:"publishedPosts"`
	TotalEvents    int `json:"totalEvents"`
	UpcomingEvents int `json:"upcomingEvents"`
	TotalForms     int `json:"totalForms"`
	TotalResponses int `json:"totalResponses"`
}

// Get handles GET /stats.
func (h *StatsHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	var out dashboardStats

	posts, err := h.Posts.List(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	out.TotalPosts = len(posts)
	for _, p := range posts {
		if p.Status == model.PostPublished {
			out.PublishedPosts++
		}
	}

	events, err := h.Events.List(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	now := h.Now()
	out.TotalEvents = len(events)
	for _, e := range events {
		if e.DateTime.After(now) {
			out.UpcomingEvents++
		}
	}

	list, err := h.Forms.List(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	out.TotalForms = len(list)

	if out.TotalResponses, err = h.Submissions.Count(ctx); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}
