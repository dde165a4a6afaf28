package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/store"
)

// UserRepo stores users under user_<email>.
type UserRepo struct{ S store.Store }

func NewUserRepo(s store.Store) *UserRepo { return &UserRepo{S: s} }

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts u, failing with ErrEmailExists for a registered email.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	u.Email = NormalizeEmail(u.Email)
	return store.UpdateJSON(ctx, r.S, prefixUser+u.Email, func(cur *model.User) (*model.User, error) {
		if cur != nil {
			return nil, ErrEmailExists
		}
		return &u, nil
	})
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := store.GetJSON(ctx, r.S, prefixUser+NormalizeEmail(email), &u)
	return u, err
}

// GetByID scans for a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	users, err := store.ScanJSON[model.User](ctx, r.S, prefixUser)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

// Update applies fn to the user stored under email.
func (r *UserRepo) Update(ctx context.Context, email string, fn func(*model.User) error) (model.User, error) {
	var out model.User
	err := store.UpdateJSON(ctx, r.S, prefixUser+NormalizeEmail(email), func(cur *model.User) (*model.User, error) {
		if cur == nil {
			return nil, ErrNotFound
		}
		if err := fn(cur); err != nil {
			return nil, err
		}
		out = *cur
		return cur, nil
	})
	return out, err
}

// Exists reports whether an account with email is registered.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
