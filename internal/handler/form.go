package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/analytics"
	"github.com/iliyamo/content-hub/internal/forms"
	"github.com/iliyamo/content-hub/internal/middleware"
	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/queue"
	"github.com/iliyamo/content-hub/internal/repository"
	"github.com/iliyamo/content-hub/internal/service"
)

// FormHandler serves form definitions, public submissions and the
// response dashboard.
type FormHandler struct {
	Forms       *repository.FormRepo
	Submissions *repository.SubmissionRepo
	Pub         service.Publisher
	Log         *zap.Logger
	Now         func() time.Time
}

func NewFormHandler(f *repository.FormRepo, s *repository.SubmissionRepo, pub service.Publisher, log *zap.Logger) *FormHandler {
	return &FormHandler{Forms: f, Submissions: s, Pub: pub, Log: log, Now: func() time.Time { return time.Now().UTC() }}
}

type formReq struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Slug        string        `json:"slug"`
	Schema      []model.Field `json:"schema"`
	Template    string        `json:"template"`
}

// List handles GET /forms.
func (h *FormHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Forms.List(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Template handles GET /forms/templates/:key.
func (h *FormHandler) Template(c echo.Context) error {
	sk, err := forms.Template(c.Param("key"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, sk)
}

// Get handles GET /forms/:slug.
func (h *FormHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	f, err := h.Forms.Get(ctx, c.Param("slug"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, f)
}

// Render handles GET /forms/:slug/render.
func (h *FormHandler) Render(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	f, err := h.Forms.Get(ctx, c.Param("slug"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.HTML(http.StatusOK, forms.RenderHTML(f))
}

// Create handles POST /forms. A template, when named, replaces title,
// description and schema. The slug is derived from the title unless given.
func (h *FormHandler) Create(c echo.Context) error {
	var req formReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.Log, errBadBody)
	}
	f := model.Form{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Schema:      req.Schema,
		CreatedBy:   middleware.UserID(c),
		CreatedAt:   h.Now(),
	}
	if req.Template != "" {
		if err := forms.ApplyTemplate(&f, req.Template); err != nil {
			return respondError(c, h.Log, err)
		}
	}
	if s := forms.GenerateSlug(req.Slug); s != "" {
		f.Slug = s
	} else if f.Slug == "" {
		f.Slug = forms.GenerateSlug(f.Title)
	}
	if f.Schema == nil {
		f.Schema = []model.Field{}
	}
	for i := range f.Schema {
		if f.Schema[i].ID == "" {
			f.Schema[i].ID = uuid.NewString()
		}
		f.Schema[i].Label = strings.TrimSpace(f.Schema[i].Label)
	}
	if err := forms.ValidateSchema(f); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Forms.Create(ctx, f); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, f)
}

// Delete handles DELETE /forms/:slug. Responses are kept.
func (h *FormHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Forms.Delete(ctx, c.Param("slug")); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Submit handles POST /forms/:slug/submit with {"data": {...}} keyed by field
// id or label.
func (h *FormHandler) Submit(c echo.Context) error {
	var req struct {
		Data map[string]any `json:"data"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.Log, errBadBody)
	}
	if req.Data == nil {
		req.Data = map[string]any{}
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	f, err := h.Forms.Get(ctx, c.Param("slug"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if err := forms.ValidateSubmission(f, req.Data); err != nil {
		return respondError(c, h.Log, err)
	}
	resp := model.FormResponse{
		ID:          uuid.NewString(),
		FormID:      f.ID,
		FormSlug:    f.Slug,
		Data:        forms.NormalizeSubmission(f, req.Data),
		SubmittedAt: h.Now(),
	}
	if err := h.Submissions.Create(ctx, resp); err != nil {
		return respondError(c, h.Log, err)
	}
	if h.Pub != nil {
		act := queue.Activity{Type: queue.FormSubmitted, OccurredAt: resp.SubmittedAt, FormSlug: f.Slug, Detail: resp.ID}
		if err := h.Pub.Publish(c.Request().Context(), act); err != nil {
			logger(h.Log).Warn("publish activity failed", zap.String("type", act.Type), zap.Error(err))
		}
	}
	return c.JSON(http.StatusCreated, resp)
}

// Responses handles GET /forms/:slug/responses (and /submissions), newest
// first. Responses of a deleted form stay listable.
func (h *FormHandler) Responses(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Submissions.ListByForm(ctx, c.Param("slug"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Export handles GET /forms/:slug/responses/export.
func (h *FormHandler) Export(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	slug := c.Param("slug")
	f, err := h.Forms.Get(ctx, slug)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	list, err := h.Submissions.ListByForm(ctx, slug)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	data, err := forms.ExportResponsesCSV(list, f.Schema)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s-responses-%s.csv"`, slug, h.Now().Format("2006-01-02")))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Analytics handles GET /forms/:slug/analytics.
func (h *FormHandler) Analytics(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	slug := c.Param("slug")
	f, err := h.Forms.Get(ctx, slug)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	list, err := h.Submissions.ListByForm(ctx, slug)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, analytics.Aggregate(list, f.Schema))
}
