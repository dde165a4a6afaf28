package repository

import (
	"context"
	"sort"

	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/store"
)

// FormRepo stores forms under form_<slug>, so slug uniqueness is enforced
// by the key itself.
type FormRepo struct{ S store.Store }

func NewFormRepo(s store.Store) *FormRepo { return &FormRepo{S: s} }

// List returns all forms, newest first.
func (r *FormRepo) List(ctx context.Context) ([]model.Form, error) {
	forms, err := store.ScanJSON[model.Form](ctx, r.S, prefixForm)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(forms, func(i, j int) bool { return forms[i].CreatedAt.After(forms[j].CreatedAt) })
	return forms, nil
}

func (r *FormRepo) Get(ctx context.Context, slug string) (model.Form, error) {
	var f model.Form
	err := store.GetJSON(ctx, r.S, prefixForm+slug, &f)
	return f, err
}

// Create stores f, failing with ErrSlugTaken when its slug is in use.
func (r *FormRepo) Create(ctx context.Context, f model.Form) error {
	return store.UpdateJSON(ctx, r.S, prefixForm+f.Slug, func(cur *model.Form) (*model.Form, error) {
		if cur != nil {
			return nil, ErrSlugTaken
		}
		return &f, nil
	})
}

// Delete removes the form only. Its responses are retained.
func (r *FormRepo) Delete(ctx context.Context, slug string) error {
	if _, err := r.Get(ctx, slug); err != nil {
		return err
	}
	return r.S.Delete(ctx, prefixForm+slug)
}

// SubmissionRepo stores form responses under submission_<id>.
type SubmissionRepo struct{ S store.Store }

func NewSubmissionRepo(s store.Store) *SubmissionRepo { return &SubmissionRepo{S: s} }

func (r *SubmissionRepo) Create(ctx context.Context, resp model.FormResponse) error {
	return store.SetJSON(ctx, r.S, prefixSubmission+resp.ID, resp)
}

// ListByForm returns the responses of one form, newest first.
func (r *SubmissionRepo) ListByForm(ctx context.Context, slug string) ([]model.FormResponse, error) {
	all, err := store.ScanJSON[model.FormResponse](ctx, r.S, prefixSubmission)
	if err != nil {
		return nil, err
	}
	out := make([]model.FormResponse, 0, len(all))
	for _, resp := range all {
		if resp.FormSlug == slug {
			out = append(out, resp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

// Count returns the number of stored responses across all forms.
func (r *SubmissionRepo) Count(ctx context.Context) (int, error) {
	all, err := r.S.ScanPrefix(ctx, prefixSubmission)
	return len(all), err
}
