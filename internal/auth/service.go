package auth

import (
	"context"

	"github.com/frahmantamala/ad-management/internal"
)

// CredentialStore reads user credentials and identity. Registration writes
// live in the user package; this side only authenticates.
type CredentialStore interface {
	GetCredentials(ctx context.Context, email string) (userID int64, passwordHash string, err error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)
}

// ServiceAPI is what the HTTP layer needs from the auth service.
type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO, userAgent string) (AuthTokens, error)
	Logout(ctx context.Context, sessionID int64) error
	Sessions(ctx context.Context, userID int64) ([]Session, error)
	Authenticate(ctx context.Context, accessToken string) (*User, int64, error)
}

// Service wires credentials, sessions and tokens into the login flow.
type Service struct {
	store    CredentialStore
	sessions *SessionService
	tokens   *TokenService
}

func NewService(store CredentialStore, sessions *SessionService, tokens *TokenService) *Service {
	return &Service{
		store:    store,
		sessions: sessions,
		tokens:   tokens,
	}
}

// Login verifies credentials, opens a session and issues both tokens. An
// unknown email and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, dto LoginDTO, userAgent string) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	userID, storedHash, err := s.store.GetCredentials(ctx, dto.Email)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !VerifyPassword(storedHash, dto.Password) {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, user.ID, userAgent)
	if err != nil {
		return AuthTokens{}, err
	}

	accessToken, err := s.tokens.Sign(user, sess.ID, TokenAccess)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign access token", err)
	}

	refreshToken, err := s.tokens.Sign(user, sess.ID, TokenRefresh)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes the session. Idempotent.
func (s *Service) Logout(ctx context.Context, sessionID int64) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// Sessions lists the caller's valid sessions.
func (s *Service) Sessions(ctx context.Context, userID int64) ([]Session, error) {
	return s.sessions.ActiveForUser(ctx, userID)
}

// Authenticate verifies an access token and checks that its session is still
// valid. A revoked session invalidates every token minted under it.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*User, int64, error) {
	claims, err := s.tokens.Verify(accessToken, TokenAccess)
	if err != nil {
		return nil, 0, err
	}

	valid, err := s.sessions.IsValid(ctx, claims.SessionID)
	if err != nil {
		return nil, 0, err
	}
	if !valid {
		return nil, 0, internal.ErrInvalidToken
	}

	return &User{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, claims.SessionID, nil
}
