package model

import "time"

// PostStatus is the publication state of a blog post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

// Post is a blog post. ID is the canonical key; Slug is a unique,
// URL-safe alias resolved by scanning. Version increases on every write and
// is used for optimistic concurrency on updates.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	ContentHTML string     `json:"content_html,omitempty"`
	CoverImage  string     `json:"cover_image"`
	Tags        []string   `json:"tags"`
	Status      PostStatus `json:"status"`
	AuthorID    string     `json:"author_id"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
