package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/store"
)

// PostRepo stores posts under blog_post_<id>. Slug lookups scan.
type PostRepo struct{ S store.Store }

func NewPostRepo(s store.Store) *PostRepo { return &PostRepo{S: s} }

// List returns all posts, newest first.
func (r *PostRepo) List(ctx context.Context) ([]model.Post, error) {
	posts, err := store.ScanJSON[model.Post](ctx, r.S, prefixPost)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (r *PostRepo) GetByID(ctx context.Context, id string) (model.Post, error) {
	var p model.Post
	err := store.GetJSON(ctx, r.S, prefixPost+id, &p)
	return p, err
}

func (r *PostRepo) GetBySlug(ctx context.Context, slug string) (model.Post, error) {
	posts, err := store.ScanJSON[model.Post](ctx, r.S, prefixPost)
	if err != nil {
		return model.Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return model.Post{}, ErrNotFound
}

// Create stores a new post with version 1.
func (r *PostRepo) Create(ctx context.Context, p model.Post) (model.Post, error) {
	if err := r.slugFree(ctx, p.Slug, p.ID); err != nil {
		return model.Post{}, err
	}
	p.Version = 1
	err := store.UpdateJSON(ctx, r.S, prefixPost+p.ID, func(cur *model.Post) (*model.Post, error) {
		if cur != nil {
			return nil, ErrSlugTaken
		}
		return &p, nil
	})
	return p, err
}

// Update replaces the editable fields of post id with those of next when the
// stored version equals version. A version of 0 skips the check (last write
// wins). ID, author and creation time are kept from the stored post.
func (r *PostRepo) Update(ctx context.Context, id string, version int64, next model.Post) (model.Post, error) {
	if err := r.slugFree(ctx, next.Slug, id); err != nil {
		return model.Post{}, err
	}
	var out model.Post
	err := store.UpdateJSON(ctx, r.S, prefixPost+id, func(cur *model.Post) (*model.Post, error) {
		if cur == nil {
			return nil, ErrNotFound
		}
		if version != 0 && cur.Version != version {
			return nil, ErrStaleVersion
		}
		next.ID = id
		next.AuthorID = cur.AuthorID
		next.CreatedAt = cur.CreatedAt
		next.Version = cur.Version + 1
		out = next
		return &next, nil
	})
	if err != nil {
		return model.Post{}, err
	}
	return out, nil
}

func (r *PostRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.S.Delete(ctx, prefixPost+id)
}

func (r *PostRepo) slugFree(ctx context.Context, slug, id string) error {
	p, err := r.GetBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.ID != id {
		return ErrSlugTaken
	}
	return nil
}
