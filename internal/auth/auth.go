package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Role is the fixed set of coarse-grained access categories.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAdvertiser Role = "advertiser"
	RoleModerator  Role = "moderator"
	RoleAnalytics  Role = "analytics"
	RoleSupport    Role = "support"
)

// AllRoles lists every valid role, in no significant order.
var AllRoles = []Role{RoleAdmin, RoleAdvertiser, RoleModerator, RoleAnalytics, RoleSupport}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAdvertiser, RoleModerator, RoleAnalytics, RoleSupport:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// User is the authenticated caller identity carried through request context
// and token claims. It never holds the password hash.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Session is one authenticated login instance.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	UserAgent string    `json:"user_agent"`
	Valid     bool      `json:"valid"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenKind selects which key pair and TTL a token is bound to.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims is the signed token payload: the user's public fields plus the
// session the token was minted under.
type Claims struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	SessionID int64  `json:"session_id"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// HashPassword creates a bcrypt hash of the password with the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type contextKey string

const (
	contextUserKey    contextKey = "auth.user"
	contextSessionKey contextKey = "auth.session_id"
)

// ContextWithUser stores the authenticated caller and their session id.
func ContextWithUser(ctx context.Context, u *User, sessionID int64) context.Context {
	ctx = context.WithValue(ctx, contextUserKey, u)
	return context.WithValue(ctx, contextSessionKey, sessionID)
}

// UserFromContext returns the authenticated caller, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(contextUserKey).(*User)
	if !ok || u == nil {
		return nil, false
	}
	return u, true
}

// SessionIDFromContext returns the session id of the caller's current token.
func SessionIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextSessionKey).(int64)
	return id, ok
}
