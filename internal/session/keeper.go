package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RefreshLead is how long before expiry the keeper refreshes.
const RefreshLead = 5 * time.Minute

// retryAfter spaces refresh attempts after a failure.
const retryAfter = 30 * time.Second

// ErrNoSession is returned when the keeper holds no session.
var ErrNoSession = errors.New("no active session")

// Session is the wire form of a signed-in session.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

// Keeper owns one session. Start signs in (or Adopt takes a session), a
// timer refreshes it RefreshLead before expiry, and Stop signs out and
// cancels the timer.
type Keeper struct {
	c   *Client
	log *zap.Logger
	now func() time.Time

	mu    sync.Mutex
	sess  *Session
	timer *time.Timer
}

func NewKeeper(c *Client, log *zap.Logger) *Keeper {
	return &Keeper{c: c, log: log, now: time.Now}
}

// Start signs in with a password and schedules the first refresh.
func (k *Keeper) Start(ctx context.Context, email, password string) error {
	var s Session
	if err := k.c.Do(ctx, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password}, &s); err != nil {
		return err
	}
	k.Adopt(s)
	return nil
}

// Adopt takes over an existing session.
func (k *Keeper) Adopt(s Session) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.sess = &s
	k.scheduleLocked(k.refreshDelay(s))
}

// Token returns the current access token.
func (k *Keeper) Token() (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.sess == nil {
		return "", ErrNoSession
	}
	return k.sess.AccessToken, nil
}

// Current returns a copy of the held session.
func (k *Keeper) Current() (Session, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.sess == nil {
		return Session{}, false
	}
	return *k.sess, true
}

// Refresh rotates the session now.
func (k *Keeper) Refresh(ctx context.Context) error {
	k.mu.Lock()
	if k.sess == nil {
		k.mu.Unlock()
		return ErrNoSession
	}
	rt := k.sess.RefreshToken
	k.mu.Unlock()

	var next Session
	if err := k.c.Do(ctx, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": rt}, &next); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.sess == nil {
		// Stopped while refreshing.
		return ErrNoSession
	}
	k.sess = &next
	k.scheduleLocked(k.refreshDelay(next))
	return nil
}

// Stop signs out and cancels the refresh timer. It is safe to call twice.
func (k *Keeper) Stop(ctx context.Context) error {
	k.mu.Lock()
	if k.timer != nil {
		k.timer.Stop()
		k.timer = nil
	}
	s := k.sess
	k.sess = nil
	k.mu.Unlock()
	if s == nil {
		return nil
	}
	return k.c.Do(ctx, http.MethodPost, "/auth/logout", s.AccessToken, map[string]string{"refresh_token": s.RefreshToken}, nil)
}

func (k *Keeper) refreshDelay(s Session) time.Duration {
	d := time.Unix(s.ExpiresAt, 0).Sub(k.now()) - RefreshLead
	if d < 0 {
		return 0
	}
	return d
}

func (k *Keeper) scheduleLocked(d time.Duration) {
	if k.timer != nil {
		k.timer.Stop()
	}
	k.timer = time.AfterFunc(d, k.background)
}

func (k *Keeper) background() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := k.Refresh(ctx)
	if err == nil || errors.Is(err, ErrNoSession) {
		return
	}
	k.log.Warn("session refresh failed", zap.Error(err), zap.Duration("retry_in", retryAfter))
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.sess != nil {
		k.scheduleLocked(retryAfter)
	}
}
