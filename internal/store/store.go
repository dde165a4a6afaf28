// Package store is the document store adapter: an opaque key-value store with
// prefix scans. Values are JSON documents; typed access lives in the
// repository package.
//
// Scan order is unspecified, callers sort after retrieval. Update is the only
// multi-step primitive: it runs a read-modify-write on one key under the
// backend's own concurrency control (WATCH/MULTI on Redis, SELECT ... FOR
// UPDATE on MySQL, a mutex in memory).
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/content-hub/internal/apperr"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = fmt.Errorf("document %w", apperr.ErrNotFound)

// UpdateFunc receives the current value (nil when absent) and returns the
// next value. Returning nil bytes deletes the key; returning an error aborts
// the update and is passed through to the caller unchanged.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is implemented by every backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	ScanPrefix(ctx context.Context, prefix string) ([][]byte, error)
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// GetJSON loads key and decodes it into v.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperr.Storage("decode "+key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return apperr.Storage("encode "+key, err)
	}
	return s.Set(ctx, key, raw)
}

// ScanJSON decodes every document under prefix into a T.
func ScanJSON[T any](ctx context.Context, s Store, prefix string) ([]T, error) {
	raws, err := s.ScanPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, apperr.Storage("decode "+prefix+"*", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// UpdateJSON is Update over decoded documents. fn receives nil when the key
// is absent; returning a nil pointer deletes the key.
func UpdateJSON[T any](ctx context.Context, s Store, key string, fn func(current *T) (*T, error)) error {
	return s.Update(ctx, key, func(raw []byte) ([]byte, error) {
		var cur *T
		if raw != nil {
			cur = new(T)
			if err := json.Unmarshal(raw, cur); err != nil {
				return nil, apperr.Storage("decode "+key, err)
			}
		}
		next, err := fn(cur)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		out, err := json.Marshal(next)
		if err != nil {
			return nil, apperr.Storage("encode "+key, err)
		}
		return out, nil
	})
}
