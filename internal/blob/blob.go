// Package blob stores uploaded media and signs the links under which it is
// served.
package blob

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/iliyamo/content-hub/internal/apperr"
)

// ErrNotFound is returned by Open for an unknown name.
var ErrNotFound = fmt.Errorf("media %w", apperr.ErrNotFound)

// Object describes a stored blob.
type Object struct {
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Digest      string    `json:"digest"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Store is an opaque blob store.
type Store interface {
	Put(ctx context.Context, name, contentType string, data []byte) (Object, error)
	Open(ctx context.Context, name string) (io.ReadCloser, Object, error)
}

// Digest returns the hex BLAKE3-256 of data.
func Digest(data []byte) string {
	h := blake3.New()
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Allowed reports whether contentType may be uploaded: any image type or PDF.
func Allowed(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "image/") || mt == "application/pdf"
}

// CheckUpload validates type and size of an upload.
func CheckUpload(contentType string, size, maxBytes int64) error {
	if !Allowed(contentType) {
		return apperr.Invalid("file", "file type %q is not allowed", contentType)
	}
	if size > maxBytes {
		return apperr.Invalid("file", "file is larger than %d MB", maxBytes>>20)
	}
	if size == 0 {
		return apperr.Invalid("file", "file is empty")
	}
	return nil
}

// NewName builds a unique object name that keeps the original extension.
func NewName(original string, now time.Time) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(original, "\\", "/"))))
	if len(ext) > 10 || strings.ContainsAny(ext, "/?#&") {
		ext = ""
	}
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), uuid.NewString()[:8], ext)
}

// ValidName rejects names that could escape the bucket namespace.
func ValidName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "/\\") && !strings.HasPrefix(name, ".")
}

func notFound(name string) error { return fmt.Errorf("%s: %w", name, ErrNotFound) }
