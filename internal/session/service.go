// Package session wraps sign-up, sign-in and sign-out against the identity
// store and exposes the active identity plus a stream of identity-change
// events the presentation layer re-renders on.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/emarket/emarket/internal/domain/entity"
	"github.com/emarket/emarket/internal/domain/repository"
	"github.com/emarket/emarket/pkg/helpers"
	"github.com/emarket/emarket/pkg/mailer"
)

const minPasswordLen = 6

// ProfileCreator is the slice of the store adapter sign-up needs.
type ProfileCreator interface {
	CreateProfile(ctx context.Context, userID, email string) (*entity.Profile, error)
}

type Service struct {
	Identities repository.IdentityRepository
	Store      ProfileCreator
	JWT        *helpers.JWTManager
	Redis      *redis.Client
	Pub        *helpers.RabbitPublisher
	Logger     *logrus.Logger
	AppName    string

	// InitialAuthToken is an optional pre-issued token EnsureSession adopts
	// before falling back to an anonymous identity.
	InitialAuthToken string

	mu      sync.Mutex
	current *entity.Identity
	hub     eventHub
}

func NewService(identities repository.IdentityRepository, store ProfileCreator, jwt *helpers.JWTManager, rdb *redis.Client, pub *helpers.RabbitPublisher, logger *logrus.Logger, appName, initialAuthToken string) *Service {
	return &Service{
		Identities:       identities,
		Store:            store,
		JWT:              jwt,
		Redis:            rdb,
		Pub:              pub,
		Logger:           logger,
		AppName:          appName,
		InitialAuthToken: initialAuthToken,
	}
}

// CurrentIdentity returns the active identity, or nil when signed out.
func (s *Service) CurrentIdentity() *entity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Events returns a lazy, unbounded stream of identity-change events plus a
// cancel function. Multiple concurrent subscribers are fine; the stream is
// restartable by subscribing again.
func (s *Service) Events() (<-chan Event, func()) {
	return s.hub.subscribe()
}

// TokenPair is the access/refresh token set issued when a session opens.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// SignUp creates a new identity and its profile document, then switches the
// session to it and issues its token pair.
func (s *Service) SignUp(ctx context.Context, email, password string) (*entity.Identity, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, &CredentialError{Reason: "a valid email address is required"}
	}
	if len(password) < minPasswordLen {
		return nil, nil, &CredentialError{Reason: fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
	}
	if existing, err := s.Identities.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, nil, &CredentialError{Reason: "email is already registered"}
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}
	ident := &entity.Identity{Email: email, PasswordHash: hash}
	if err := s.Identities.Create(ctx, ident); err != nil {
		return nil, nil, fmt.Errorf("create identity: %w", err)
	}
	if _, err := s.Store.CreateProfile(ctx, ident.ID, ident.Email); err != nil {
		return nil, nil, fmt.Errorf("create profile: %w", err)
	}

	pair, err := s.issueTokens(ident)
	if err != nil {
		return nil, nil, err
	}
	s.recordSession(ctx, ident, pair)
	s.enqueueWelcomeEmail(ctx, ident)
	s.setCurrent(ident)
	return ident, pair, nil
}

// SignIn authenticates an existing identity, switches the session to it and
// issues its token pair.
func (s *Service) SignIn(ctx context.Context, email, password string) (*entity.Identity, *TokenPair, error) {
	ident, err := s.Identities.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || ident == nil {
		return nil, nil, &CredentialError{Reason: "invalid email or password"}
	}
	if !helpers.CompareHashAndPassword(ident.PasswordHash, password) {
		return nil, nil, &CredentialError{Reason: "invalid email or password"}
	}

	pair, err := s.issueTokens(ident)
	if err != nil {
		return nil, nil, err
	}
	s.recordSession(ctx, ident, pair)
	s.setCurrent(ident)
	return ident, pair, nil
}

// RefreshSession validates a refresh token and rotates the token pair for
// the identity it names. The reason stays generic so the token cannot be
// probed.
func (s *Service) RefreshSession(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, &CredentialError{Reason: "invalid refresh token"}
	}
	ident, err := s.Identities.GetByID(ctx, claims.UserID)
	if err != nil || ident == nil {
		return nil, &CredentialError{Reason: "invalid refresh token"}
	}
	pair, err := s.issueTokens(ident)
	if err != nil {
		return nil, err
	}
	s.recordSession(ctx, ident, pair)
	return pair, nil
}

func (s *Service) issueTokens(ident *entity.Identity) (*TokenPair, error) {
	if s.JWT == nil {
		return nil, nil
	}
	access, accessExp, err := s.JWT.GenerateAccessToken(ident.ID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := s.JWT.GenerateRefreshToken(ident.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// SignOut invalidates the local session and emits a nil-identity event.
func (s *Service) SignOut(ctx context.Context) {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()

	if cur != nil && s.Redis != nil {
		if err := s.Redis.Del(ctx, sessionKey(cur.ID)).Err(); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", cur.ID).Warn("session delete failed")
		}
	}
	s.setCurrent(nil)
}

// EnsureSession guarantees some identity context before the dashboard is
// shown. An already-active identity is kept; otherwise the pre-issued token
// is honored when configured, falling back to a fresh anonymous identity.
// Any failure is a SessionInitError and the caller shows the auth screen.
func (s *Service) EnsureSession(ctx context.Context) (*entity.Identity, error) {
	if cur := s.CurrentIdentity(); cur != nil {
		return cur, nil
	}

	if s.InitialAuthToken != "" {
		claims, err := s.JWT.ParseAccessToken(s.InitialAuthToken)
		if err != nil {
			return nil, &SessionInitError{Err: fmt.Errorf("initial auth token: %w", err)}
		}
		ident, err := s.Identities.GetByID(ctx, claims.UserID)
		if err != nil || ident == nil {
			return nil, &SessionInitError{Err: errors.New("initial auth token references an unknown identity")}
		}
		pair, err := s.issueTokens(ident)
		if err != nil {
			return nil, &SessionInitError{Err: err}
		}
		s.recordSession(ctx, ident, pair)
		s.setCurrent(ident)
		return ident, nil
	}

	ident := &entity.Identity{Anonymous: true}
	if err := s.Identities.Create(ctx, ident); err != nil {
		return nil, &SessionInitError{Err: fmt.Errorf("anonymous sign-in: %w", err)}
	}
	pair, err := s.issueTokens(ident)
	if err != nil {
		return nil, &SessionInitError{Err: err}
	}
	s.recordSession(ctx, ident, pair)
	s.setCurrent(ident)
	return ident, nil
}

func (s *Service) setCurrent(ident *entity.Identity) {
	s.mu.Lock()
	s.current = ident
	s.mu.Unlock()
	s.hub.publish(Event{Identity: ident})
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// recordSession mirrors the active identity and its current token pair into
// a Redis hash so other processes can observe who is signed in. Best effort.
func (s *Service) recordSession(ctx context.Context, ident *entity.Identity, pair *TokenPair) {
	if s.Redis == nil {
		return
	}
	fields := map[string]any{
		"user_id":    ident.ID,
		"email":      ident.Email,
		"anonymous":  ident.Anonymous,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if pair != nil {
		fields["access_token"] = pair.AccessToken
		fields["refresh_token"] = pair.RefreshToken
		fields["access_expires_at"] = pair.AccessExpiresAt.UTC().Format(time.RFC3339Nano)
	}
	key := sessionKey(ident.ID)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("redis pipeline failed")
	}
}

func (s *Service) enqueueWelcomeEmail(ctx context.Context, ident *entity.Identity) {
	if s.Pub == nil || ident.Email == "" {
		return
	}
	job := mailer.EmailJob{
		To:       ident.Email,
		Template: "welcome",
		Data: map[string]any{
			"Email":   ident.Email,
			"AppName": s.AppName,
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", ident.ID).Warn("welcome email enqueue failed")
	}
}
