package auth

import (
	"context"

	"github.com/frahmantamala/ad-management/internal"
)

// SessionRepository persists login sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, userID int64, userAgent string) (*Session, error)
	GetSession(ctx context.Context, sessionID int64) (*Session, error)
	SessionsForUser(ctx context.Context, userID int64, validOnly bool) ([]Session, error)
	InvalidateSession(ctx context.Context, sessionID int64) error
}

// SessionService manages the session lifecycle: Active on login, Revoked on
// logout, no resurrection path.
type SessionService struct {
	repo SessionRepository
}

func NewSessionService(repo SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

// Create opens a new Active session. Concurrent sessions per user are not
// limited.
func (s *SessionService) Create(ctx context.Context, userID int64, userAgent string) (*Session, error) {
	sess, err := s.repo.CreateSession(ctx, userID, userAgent)
	if err != nil {
		return nil, internal.NewInternalError("failed to create session", err)
	}
	return sess, nil
}

// ActiveForUser lists the user's valid sessions.
func (s *SessionService) ActiveForUser(ctx context.Context, userID int64) ([]Session, error) {
	sessions, err := s.repo.SessionsForUser(ctx, userID, true)
	if err != nil {
		return nil, internal.NewInternalError("failed to list sessions", err)
	}
	return sessions, nil
}

// Revoke flips the session to invalid. Revoking an already-revoked or
// unknown session is a no-op success.
func (s *SessionService) Revoke(ctx context.Context, sessionID int64) error {
	if err := s.repo.InvalidateSession(ctx, sessionID); err != nil {
		return internal.NewInternalError("failed to revoke session", err)
	}
	return nil
}

// IsValid reports whether the session exists and is still Active. A missing
// session counts as invalid, not as an error.
func (s *SessionService) IsValid(ctx context.Context, sessionID int64) (bool, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeNotFound {
			return false, nil
		}
		return false, internal.NewInternalError("failed to load session", err)
	}
	if sess == nil {
		return false, nil
	}
	return sess.Valid, nil
}
