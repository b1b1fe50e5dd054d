package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidRefresh is returned for unknown, expired or already rotated refresh tokens.
var ErrInvalidRefresh = errors.New("invalid refresh token")

// Service issues, rotates and revokes refresh sessions.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: func() time.Time { return time.Now().UTC() }}
}

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreateSession stores a new refresh session for userID and returns the raw refresh token.
func (s *Service) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	raw, err := newRefreshToken()
	if err != nil {
		return "", err
	}
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		TokenHash: hashToken(raw),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", err
	}
	return raw, nil
}

// ValidateRefresh returns the session for a live refresh token, or ErrInvalidRefresh.
func (s *Service) ValidateRefresh(ctx context.Context, refresh string) (*Session, error) {
	if refresh == "" {
		return nil, ErrInvalidRefresh
	}
	hash := hashToken(refresh)
	sess, err := s.repo.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrInvalidRefresh
	}
	if sess.Expired(s.now()) {
		_ = s.repo.DeleteByHash(ctx, hash)
		return nil, ErrInvalidRefresh
	}
	return sess, nil
}

// Rotate consumes refresh and issues a replacement for the same user.
// A rotated token cannot be used again.
func (s *Service) Rotate(ctx context.Context, refresh string, ttl time.Duration) (*Session, string, error) {
	sess, err := s.ValidateRefresh(ctx, refresh)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.DeleteByHash(ctx, sess.TokenHash); err != nil {
		return nil, "", err
	}
	next, err := s.CreateSession(ctx, sess.UserID, ttl)
	if err != nil {
		return nil, "", err
	}
	return sess, next, nil
}

// DeleteRefresh revokes a single refresh token.
func (s *Service) DeleteRefresh(ctx context.Context, refresh string) error {
	return s.repo.DeleteByHash(ctx, hashToken(refresh))
}

// RevokeUser drops every refresh session belonging to userID.
func (s *Service) RevokeUser(ctx context.Context, userID string) error {
	return s.repo.DeleteByUser(ctx, userID)
}
