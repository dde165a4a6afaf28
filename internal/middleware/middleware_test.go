package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/auth"
	"github.com/iliyamo/content-hub/internal/config"
)

type fakeProvider struct {
	auth.Provider
	claims map[string]auth.Claims
}

func (f fakeProvider) Verify(_ context.Context, token string) (auth.Claims, error) {
	c, ok := f.claims[token]
	if !ok {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return c, nil
}

func newRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func do(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	p := fakeProvider{claims: map[string]auth.Claims{
		"good": {UserID: "u1", Email: "a@b.co", Role: "editor"},
	}}
	e := echo.New()
	g := e.Group("", Authenticate("anon", p))
	g.GET("/public", func(c echo.Context) error { return c.String(http.StatusOK, UserID(c)) })
	g.GET("/private", func(c echo.Context) error { return c.String(http.StatusOK, Role(c)) }, RequireUser())
	g.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireUser(), RequireRole("admin"))

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/public", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/public", "bogus").Code)

	rec := do(e, http.MethodGet, "/public", "anon")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(e, http.MethodGet, "/public", "good")
	assert.Equal(t, "u1", rec.Body.String())

	rec = do(e, http.MethodGet, "/private", "anon")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/private", "good")
	assert.Equal(t, "editor", rec.Body.String())

	assert.Equal(t, http.StatusForbidden, do(e, http.MethodGet, "/admin", "good").Code)
}

func TestTokenBucket(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1,
		RefillInterval: time.Hour, TTL: time.Hour, KeyStrategy: "ip_route", Prefix: "rl",
	}
	e := echo.New()
	e.POST("/submit", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, NewTokenBucket(cfg, rdb, nil))

	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/submit", "").Code)
	rec := do(e, http.MethodPost, "/submit", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(e, http.MethodPost, "/submit", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestTokenBucketDisabled(t *testing.T) {
	e := echo.New()
	e.POST("/submit", func(c echo.Context) error { return c.NoContent(http.StatusCreated) },
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/submit", "").Code)
	}
}

func TestResponseCache(t *testing.T) {
	rdb := newRedis(t)
	rc := NewRedisCache(config.CacheConfig{
		Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute,
		KeyStrategy: "route_query", Prefix: "cache", MaxBodyBytes: 1 << 20,
	}, rdb, nil)

	var hits atomic.Int32
	e := echo.New()
	e.Use(rc.Bust())
	e.GET("/posts/:slug", func(c echo.Context) error {
		hits.Add(1)
		return c.JSON(http.StatusOK, echo.Map{"slug": c.Param("slug")})
	}, rc.Cache())
	e.POST("/posts", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })

	rec := do(e, http.MethodGet, "/posts/a", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	rec = do(e, http.MethodGet, "/posts/a", "")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"slug":"a"}`, rec.Body.String())
	assert.EqualValues(t, 1, hits.Load())

	rec = do(e, http.MethodGet, "/posts/b", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"slug":"b"}`, rec.Body.String())

	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/posts", "").Code)
	rec = do(e, http.MethodGet, "/posts/a", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.EqualValues(t, 3, hits.Load())
}

func TestPayloadRoundTrip(t *testing.T) {
	h := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(201, h, []byte(`{}`))
	require.NoError(t, err)
	status, hdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, 201, status)
	assert.Equal(t, "application/json", hdr.Get("Content-Type"))
	assert.Equal(t, `{}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidator(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Validate(signup{Email: "a@b.co", Password: "secret"}))

	err := v.Validate(signup{Email: "nope", Password: "secret"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	var fe *apperr.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "email", fe.Field)

	err = v.Validate(signup{Email: "a@b.co", Password: "x"})
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "password", fe.Field)
	assert.Equal(t, "password must be at least 6", fe.Message)
}
