package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

// KeyPair holds one RSA signing key pair.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// TokenService signs and verifies RS256 tokens. Access and refresh tokens
// each use their own key pair and TTL, so verifying a token with the wrong
// kind always fails on the signature.
type TokenService struct {
	keys map[TokenKind]KeyPair
	ttls map[TokenKind]time.Duration
}

func NewTokenService(access, refresh KeyPair, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		keys: map[TokenKind]KeyPair{
			TokenAccess:  access,
			TokenRefresh: refresh,
		},
		ttls: map[TokenKind]time.Duration{
			TokenAccess:  accessTTL,
			TokenRefresh: refreshTTL,
		},
	}
}

// NewTokenServiceFromConfig parses the configured base64 PEM keys and TTL
// strings. Errors here are fatal configuration errors, not request errors.
func NewTokenServiceFromConfig(cfg internal.SecurityConfig) (*TokenService, error) {
	accessPriv, err := internal.ParsePrivateKey(cfg.AccessTokenPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("access private key: %w", err)
	}
	accessPub, err := internal.ParsePublicKey(cfg.AccessTokenPublicKey)
	if err != nil {
		return nil, fmt.Errorf("access public key: %w", err)
	}
	refreshPriv, err := internal.ParsePrivateKey(cfg.RefreshTokenPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("refresh private key: %w", err)
	}
	refreshPub, err := internal.ParsePublicKey(cfg.RefreshTokenPublicKey)
	if err != nil {
		return nil, fmt.Errorf("refresh public key: %w", err)
	}
	accessTTL, err := internal.ParseTTL(cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("access token ttl: %w", err)
	}
	refreshTTL, err := internal.ParseTTL(cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("refresh token ttl: %w", err)
	}

	return NewTokenService(
		KeyPair{Private: accessPriv, Public: accessPub},
		KeyPair{Private: refreshPriv, Public: refreshPub},
		accessTTL,
		refreshTTL,
	), nil
}

// Sign issues a token of the given kind for the user and session.
func (t *TokenService) Sign(user *User, sessionID int64, kind TokenKind) (string, error) {
	pair, ok := t.keys[kind]
	if !ok || pair.Private == nil {
		return "", fmt.Errorf("no private key configured for %s tokens", kind)
	}

	now := time.Now()
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttls[kind])),
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(pair.Private)
}

// Verify validates signature and expiry against the key pair for kind.
// Session validity is the caller's concern; a verified token may still
// reference a revoked session.
func (t *TokenService) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	pair, ok := t.keys[kind]
	if !ok || pair.Public == nil {
		return nil, fmt.Errorf("no public key configured for %s tokens", kind)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return pair.Public, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, internal.ErrInvalidToken
	}

	return claims, nil
}
