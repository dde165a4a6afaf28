// Package auth is the in-process authentication provider: password
// sign-up and sign-in, rotating refresh tokens, access token verification
// and password reset. The rest of the code only sees the Provider interface.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/config"
	"github.com/iliyamo/content-hub/internal/mail"
	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/queue"
	"github.com/iliyamo/content-hub/internal/repository"
	"github.com/iliyamo/content-hub/internal/service"
	"github.com/iliyamo/content-hub/internal/utils"
)

// ErrInvalidCredentials is returned for a wrong email or password.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)

// ErrInvalidToken is returned for unknown, expired or revoked tokens.
var ErrInvalidToken = fmt.Errorf("invalid or expired token: %w", apperr.ErrUnauthorized)

var emailCheck = validator.New()

// User is the public view of an account.
type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      string         `json:"role"`
	Metadata  map[string]any `json:"user_metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// Session is what sign-in and refresh return.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

// Claims identify the caller of a verified access token.
type Claims struct {
	UserID    string    `json:"sub"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserUpdate changes metadata and/or the password of an account.
type UserUpdate struct {
	Data     map[string]any `json:"data,omitempty"`
	Password *string        `json:"password,omitempty"`
}

// Provider is the authentication capability used by handlers and middleware.
type Provider interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (User, error)
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	Verify(ctx context.Context, accessToken string) (Claims, error)
	SignOut(ctx context.Context, refreshToken, userID string) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	CompletePasswordReset(ctx context.Context, token, password string) error
	UpdateUser(ctx context.Context, userID string, upd UserUpdate) (User, error)
}

// Service implements Provider on top of the user and token repositories.
type Service struct {
	cfg       config.AuthConfig
	publicURL string
	users     *repository.UserRepo
	tokens    *repository.TokenRepo
	pub       service.Publisher
	log       *zap.Logger
}

var _ Provider = (*Service)(nil)

func NewService(cfg config.AuthConfig, publicURL string, users *repository.UserRepo, tokens *repository.TokenRepo, pub service.Publisher, log *zap.Logger) *Service {
	return &Service{cfg: cfg, publicURL: publicURL, users: users, tokens: tokens, pub: pub, log: log}
}

// SignUp creates an account. metadata may carry "name" and "role"; the role
// defaults to editor and must be admin or editor.
func (s *Service) SignUp(ctx context.Context, email, password string, metadata map[string]any) (User, error) {
	email = repository.NormalizeEmail(email)
	if emailCheck.Var(email, "required,email") != nil {
		return User{}, apperr.Invalid("email", "a valid email is required")
	}
	role := model.RoleEditor
	if r, _ := metadata["role"].(string); r != "" {
		role = strings.ToLower(strings.TrimSpace(r))
	}
	if role != model.RoleAdmin && role != model.RoleEditor {
		return User{}, apperr.Invalid("role", "role must be admin or editor")
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if errors.Is(err, utils.ErrWeakPassword) {
		return User{}, apperr.Invalid("password", "%s", err.Error())
	}
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	name, _ := metadata["name"].(string)
	meta := map[string]any{}
	for k, v := range metadata {
		meta[k] = v
	}
	meta["role"] = role

	now := time.Now().UTC()
	u := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         role,
		Metadata:     meta,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return User{}, err
	}
	return publicUser(u), nil
}

func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// Refresh rotates a refresh token: the old one is consumed and a new pair is
// issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	raw := strings.TrimSpace(refreshToken)
	if raw == "" {
		return Session{}, ErrInvalidToken
	}
	rec, err := s.tokens.Consume(ctx, repository.RefreshToken, utils.HashToken(raw))
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidToken
	}
	if err != nil {
		return Session{}, err
	}
	u, err := s.users.GetByEmail(ctx, rec.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidToken
	}
	if err != nil {
		return Session{}, err
	}
	return s.issue(ctx, u)
}

func (s *Service) Verify(_ context.Context, accessToken string) (Claims, error) {
	c, err := utils.ParseAccessToken(s.cfg.JWTSecret, accessToken)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	out := Claims{UserID: c.Subject, Email: c.Email, Role: c.Role}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}

// SignOut revokes one refresh token when given, otherwise every refresh
// token of userID.
func (s *Service) SignOut(ctx context.Context, refreshToken, userID string) error {
	if raw := strings.TrimSpace(refreshToken); raw != "" {
		if _, err := s.tokens.Validate(ctx, repository.RefreshToken, utils.HashToken(raw)); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		return s.tokens.Revoke(ctx, repository.RefreshToken, utils.HashToken(raw))
	}
	if userID == "" {
		return apperr.Invalid("refresh_token", "provide a bearer token or refresh_token")
	}
	return s.tokens.RevokeAllForUser(ctx, repository.RefreshToken, userID)
}

// ResetPasswordForEmail mails a single-use reset link. Unknown addresses are
// silently accepted so the endpoint does not reveal which emails exist.
func (s *Service) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Debug("password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	tok, err := utils.NewOpaqueToken(time.Duration(s.cfg.ResetTTLMin) * time.Minute)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	rec := model.TokenRecord{
		TokenHash: utils.HashToken(tok.Raw),
		UserID:    u.ID,
		Email:     u.Email,
		ExpiresAt: tok.Exp,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tokens.Store(ctx, repository.ResetToken, rec); err != nil {
		return err
	}
	msg := mail.PasswordReset(u.Email, resetLink(redirectTo, s.publicURL, tok.Raw))
	if err := s.pub.Publish(ctx, queue.Activity{Type: queue.PasswordReset, UserID: u.ID, Mail: &msg}); err != nil {
		s.log.Warn("publish password reset failed", zap.Error(err), zap.String("user_id", u.ID))
	}
	return nil
}

// CompletePasswordReset sets a new password with a reset token and revokes
// every refresh token of the account.
func (s *Service) CompletePasswordReset(ctx context.Context, token, password string) error {
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if errors.Is(err, utils.ErrWeakPassword) {
		return apperr.Invalid("password", "%s", err.Error())
	}
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	rec, err := s.tokens.Consume(ctx, repository.ResetToken, utils.HashToken(strings.TrimSpace(token)))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if _, err := s.users.Update(ctx, rec.Email, func(u *model.User) error {
		u.PasswordHash = hash
		u.UpdatedAt = time.Now().UTC()
		return nil
	}); err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(ctx, repository.RefreshToken, rec.UserID)
}

// UpdateUser merges Data into the metadata and optionally changes the
// password. "name" in Data also updates the display name; the role cannot be
// changed this way.
func (s *Service) UpdateUser(ctx context.Context, userID string, upd UserUpdate) (User, error) {
	cur, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	var hash string
	if upd.Password != nil {
		hash, err = utils.HashPassword(*upd.Password, s.cfg.BcryptCost)
		if errors.Is(err, utils.ErrWeakPassword) {
			return User{}, apperr.Invalid("password", "%s", err.Error())
		}
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
	}
	u, err := s.users.Update(ctx, cur.Email, func(u *model.User) error {
		if u.Metadata == nil {
			u.Metadata = map[string]any{}
		}
		for k, v := range upd.Data {
			if k == "role" {
				continue
			}
			u.Metadata[k] = v
		}
		if name, ok := upd.Data["name"].(string); ok {
			u.Name = strings.TrimSpace(name)
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		u.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return publicUser(u), nil
}

func (s *Service) issue(ctx context.Context, u model.User) (Session, error) {
	ttl := time.Duration(s.cfg.AccessTTLMin) * time.Minute
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Email, u.Role, ttl)
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := utils.NewOpaqueToken(time.Duration(s.cfg.RefreshTTLDays) * 24 * time.Hour)
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh token: %w", err)
	}
	rec := model.TokenRecord{
		TokenHash: utils.HashToken(refresh.Raw),
		UserID:    u.ID,
		Email:     u.Email,
		ExpiresAt: refresh.Exp,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tokens.Store(ctx, repository.RefreshToken, rec); err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		TokenType:    "bearer",
		ExpiresIn:    int64(ttl.Seconds()),
		ExpiresAt:    access.Exp.Unix(),
		User:         publicUser(u),
	}, nil
}

func publicUser(u model.User) User {
	meta := u.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return User{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Metadata: meta, CreatedAt: u.CreatedAt}
}

func resetLink(redirectTo, publicURL, token string) string {
	base := strings.TrimSpace(redirectTo)
	if base == "" {
		base = publicURL + "/#reset-password"
	}
	u, err := url.Parse(base)
	if err != nil {
		return publicURL + "/#reset-password?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
