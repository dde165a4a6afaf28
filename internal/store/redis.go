package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/content-hub/internal/apperr"
)

const (
	scanBatch        = 200
	maxUpdateRetries = 8
)

// Redis stores documents as plain string values under a namespace prefix.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis { return &Redis{rdb: rdb, prefix: prefix} }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("redis get", err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return apperr.Storage("redis set", r.rdb.Set(ctx, r.prefix+key, value, 0).Err())
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return apperr.Storage("redis del", r.rdb.Del(ctx, r.prefix+key).Err())
}

// ScanPrefix walks the keyspace with SCAN MATCH and fetches values in MGET
// batches. Keys deleted between the two steps are skipped.
func (r *Redis) ScanPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, escapeGlob(r.prefix+prefix)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, apperr.Storage("redis scan", err)
	}

	out := make([][]byte, 0, len(keys))
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		vals, err := r.rdb.MGet(ctx, keys[start:end]...).Result()
		if err != nil {
			return nil, apperr.Storage("redis mget", err)
		}
		for _, v := range vals {
			if s, ok := v.(string); ok {
				out = append(out, []byte(s))
			}
		}
	}
	return out, nil
}

// Update runs fn inside WATCH/MULTI. A concurrent write to the key aborts
// the transaction; it is retried a bounded number of times before the
// update fails with a conflict.
func (r *Redis) Update(ctx context.Context, key string, fn UpdateFunc) error {
	full := r.prefix + key
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, full).Bytes()
		if errors.Is(err, redis.Nil) {
			cur = nil
		} else if err != nil {
			return apperr.Storage("redis get", err)
		}
		next, err := fn(cur)
		if err != nil {
			return callerError{err}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, full)
			} else {
				pipe.Set(ctx, full, next, 0)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.rdb.Watch(ctx, txf, full)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		var ce callerError
		if errors.As(err, &ce) {
			return ce.err
		}
		if errors.Is(err, apperr.ErrStorage) {
			return err
		}
		return apperr.Storage("redis update", err)
	}
	return fmt.Errorf("update %s: too much contention: %w", key, apperr.ErrConflict)
}

// callerError carries an error returned by the UpdateFunc through Watch so
// it is not mistaken for a client failure.
type callerError struct{ err error }

func (e callerError) Error() string { return e.err.Error() }

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
