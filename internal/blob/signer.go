package blob

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/iliyamo/content-hub/internal/apperr"
)

// Signer produces and checks time-limited media links of the form
// <base>/media/<name>?expires=<unix>&sig=<hex hmac-sha256>.
type Signer struct {
	key  []byte
	base string
	ttl  time.Duration
}

func NewSigner(key, base string, ttl time.Duration) *Signer {
	return &Signer{key: []byte(key), base: base, ttl: ttl}
}

// URL returns the signed link of name, valid for the signer's TTL from now.
func (s *Signer) URL(name string, now time.Time) string {
	exp := now.Add(s.ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(exp, 10))
	q.Set("sig", s.sign(name, exp))
	return s.base + "/media/" + url.PathEscape(name) + "?" + q.Encode()
}

// Verify checks the expires and sig query values of a media request.
func (s *Signer) Verify(name, expires, sig string, now time.Time) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return fmt.Errorf("bad expires: %w", apperr.ErrForbidden)
	}
	if now.Unix() > exp {
		return fmt.Errorf("link expired: %w", apperr.ErrForbidden)
	}
	want := s.sign(name, exp)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return fmt.Errorf("bad signature: %w", apperr.ErrForbidden)
	}
	return nil
}

func (s *Signer) sign(name string, exp int64) string {
	m := hmac.New(sha256.New, s.key)
	fmt.Fprintf(m, "%s\n%d", name, exp)
	return hex.EncodeToString(m.Sum(nil))
}
