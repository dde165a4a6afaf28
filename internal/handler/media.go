package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/blob"
)

// MediaHandler accepts uploads and serves them back under signed links.
type MediaHandler struct {
	Blobs    blob.Store
	Signer   *blob.Signer
	MaxBytes int64
	Log      *zap.Logger
	Now      func() time.Time
}

func NewMediaHandler(bs blob.Store, s *blob.Signer, maxBytes int64, log *zap.Logger) *MediaHandler {
	return &MediaHandler{Blobs: bs, Signer: s, MaxBytes: maxBytes, Log: log, Now: time.Now}
}

// Upload handles POST /upload with a multipart "file" part.
func (h *MediaHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, h.Log, apperr.Invalid("file", "a file is required"))
	}
	ct := fh.Header.Get(echo.HeaderContentType)
	if err := blob.CheckUpload(ct, fh.Size, h.MaxBytes); err != nil {
		return respondError(c, h.Log, err)
	}
	src, err := fh.Open()
	if err != nil {
		return respondError(c, h.Log, err)
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, h.MaxBytes+1))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if err := blob.CheckUpload(ct, int64(len(data)), h.MaxBytes); err != nil {
		return respondError(c, h.Log, err)
	}

	now := h.Now()
	ctx, cancel := reqCtx(c)
	defer cancel()
	obj, err := h.Blobs.Put(ctx, blob.NewName(fh.Filename, now), ct, data)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"url":    h.Signer.URL(obj.Name, now),
		"path":   obj.Name,
		"digest": obj.Digest,
	})
}

// Serve handles GET /media/:name?expires=&sig=.
func (h *MediaHandler) Serve(c echo.Context) error {
	name := c.Param("name")
	if !blob.ValidName(name) {
		return respondError(c, h.Log, blob.ErrNotFound)
	}
	if err := h.Signer.Verify(name, c.QueryParam("expires"), c.QueryParam("sig"), h.Now()); err != nil {
		return respondError(c, h.Log, err)
	}
	rc, obj, err := h.Blobs.Open(c.Request().Context(), name)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	defer rc.Close()
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	c.Response().Header().Set("ETag", `"`+obj.Digest+`"`)
	return c.Stream(http.StatusOK, obj.ContentType, rc)
}
