package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/content-hub/internal/apperr"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newRedisStore(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedis(rdb, "test:")
}

func backends(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemory(),
		"redis":  newRedisStore(t),
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, err, apperr.ErrNotFound)

			require.NoError(t, s.Set(ctx, "event_1", []byte(`{"name":"a"}`)))
			require.NoError(t, s.Set(ctx, "event_2", []byte(`{"name":"b"}`)))
			require.NoError(t, s.Set(ctx, "form_x", []byte(`{"name":"c"}`)))

			got, err := s.Get(ctx, "event_1")
			require.NoError(t, err)
			assert.JSONEq(t, `{"name":"a"}`, string(got))

			vals, err := s.ScanPrefix(ctx, "event_")
			require.NoError(t, err)
			names := make([]string, 0, len(vals))
			for _, v := range vals {
				names = append(names, string(v))
			}
			sort.Strings(names)
			assert.Equal(t, []string{`{"name":"a"}`, `{"name":"b"}`}, names)

			require.NoError(t, s.Delete(ctx, "event_1"))
			require.NoError(t, s.Delete(ctx, "event_1"), "deleting an absent key is not an error")
			_, err = s.Get(ctx, "event_1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestUpdateJSON(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			bump := func(cur *doc) (*doc, error) {
				if cur == nil {
					return &doc{Name: "counter", Count: 1}, nil
				}
				cur.Count++
				return cur, nil
			}
			require.NoError(t, UpdateJSON(ctx, s, "counter", bump))
			require.NoError(t, UpdateJSON(ctx, s, "counter", bump))

			var d doc
			require.NoError(t, GetJSON(ctx, s, "counter", &d))
			assert.Equal(t, 2, d.Count)

			boom := errors.New("boom")
			err := UpdateJSON(ctx, s, "counter", func(*doc) (*doc, error) { return nil, boom })
			assert.ErrorIs(t, err, boom)
			require.NoError(t, GetJSON(ctx, s, "counter", &d))
			assert.Equal(t, 2, d.Count, "failed update leaves the value untouched")

			require.NoError(t, UpdateJSON(ctx, s, "counter", func(*doc) (*doc, error) { return nil, nil }))
			_, err = s.Get(ctx, "counter")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestScanJSON(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	require.NoError(t, SetJSON(ctx, s, "doc_1", doc{Name: "one"}))
	require.NoError(t, SetJSON(ctx, s, "doc_2", doc{Name: "two"}))
	require.NoError(t, s.Set(ctx, "other", []byte("not json")))

	docs, err := ScanJSON[doc](ctx, s, "doc_")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	_, err = ScanJSON[doc](ctx, s, "other")
	assert.ErrorIs(t, err, apperr.ErrStorage)
}

func TestMemoryUpdateSerializes(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = UpdateJSON(ctx, s, "n", func(cur *doc) (*doc, error) {
				if cur == nil {
					cur = &doc{}
				}
				cur.Count++
				return cur, nil
			})
		}()
	}
	wg.Wait()
	var d doc
	require.NoError(t, GetJSON(ctx, s, "n", &d))
	assert.Equal(t, 50, d.Count)
}

func TestRedisPrefixIsNamespaced(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	s := NewRedis(rdb, "cms:")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "hero_section", []byte("{}")))
	assert.True(t, mr.Exists("cms:hero_section"))
	require.NoError(t, mr.Set("hero_other", "{}"))

	vals, err := s.ScanPrefix(ctx, "hero_")
	require.NoError(t, err)
	assert.Len(t, vals, 1, "keys outside the namespace are not visible")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `blog\_post\_`, escapeLike("blog_post_"))
	assert.Equal(t, `50\%`, escapeLike("50%"))
}
