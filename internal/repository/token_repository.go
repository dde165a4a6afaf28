package repository

import (
	"context"
	"time"

	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/store"
)

// TokenKind selects the key family of a hashed token.
type TokenKind string

const (
	RefreshToken TokenKind = prefixRefreshToken
	ResetToken   TokenKind = prefixResetToken
)

// TokenRepo persists and validates hashed refresh and reset tokens.
type TokenRepo struct{ S store.Store }

func NewTokenRepo(s store.Store) *TokenRepo { return &TokenRepo{S: s} }

// Store saves a token record under its hash.
func (r *TokenRepo) Store(ctx context.Context, kind TokenKind, rec model.TokenRecord) error {
	return store.SetJSON(ctx, r.S, string(kind)+rec.TokenHash, rec)
}

// Validate returns the record of an active token.
func (r *TokenRepo) Validate(ctx context.Context, kind TokenKind, tokenHash string) (model.TokenRecord, error) {
	var rec model.TokenRecord
	if err := store.GetJSON(ctx, r.S, string(kind)+tokenHash, &rec); err != nil {
		return model.TokenRecord{}, err
	}
	if !rec.Active(time.Now().UTC()) {
		return model.TokenRecord{}, ErrNotFound
	}
	return rec, nil
}

// Consume validates a token and revokes it in the same atomic update, so a
// token can be used at most once.
func (r *TokenRepo) Consume(ctx context.Context, kind TokenKind, tokenHash string) (model.TokenRecord, error) {
	var out model.TokenRecord
	now := time.Now().UTC()
	err := store.UpdateJSON(ctx, r.S, string(kind)+tokenHash, func(cur *model.TokenRecord) (*model.TokenRecord, error) {
		if cur == nil || !cur.Active(now) {
			return nil, ErrNotFound
		}
		cur.RevokedAt = &now
		out = *cur
		return cur, nil
	})
	return out, err
}

// Revoke marks a token as revoked. Unknown tokens are ignored.
func (r *TokenRepo) Revoke(ctx context.Context, kind TokenKind, tokenHash string) error {
	now := time.Now().UTC()
	return store.UpdateJSON(ctx, r.S, string(kind)+tokenHash, func(cur *model.TokenRecord) (*model.TokenRecord, error) {
		if cur == nil {
			return nil, nil
		}
		if cur.RevokedAt == nil {
			cur.RevokedAt = &now
		}
		return cur, nil
	})
}

// RevokeAllForUser revokes every active token of the given kind for a user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, kind TokenKind, userID string) error {
	recs, err := store.ScanJSON[model.TokenRecord](ctx, r.S, string(kind))
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.UserID == userID && rec.RevokedAt == nil {
			if err := r.Revoke(ctx, kind, rec.TokenHash); err != nil {
				return err
			}
		}
	}
	return nil
}
