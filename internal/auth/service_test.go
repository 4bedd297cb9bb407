package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

var (
	testAccessKeys  KeyPair
	testRefreshKeys KeyPair
)

var _ = ginkgo.BeforeSuite(func() {
	accessPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	refreshPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	testAccessKeys = KeyPair{Private: accessPriv, Public: &accessPriv.PublicKey}
	testRefreshKeys = KeyPair{Private: refreshPriv, Public: &refreshPriv.PublicKey}
})

// Mock CredentialStore for testing
type mockCredentialStore struct {
	hashes        map[string]string // email -> password hash
	userIDs       map[string]int64  // email -> user id
	usersByID     map[int64]*User
	returnError   bool
	errorToReturn error
}

func newMockCredentialStore() *mockCredentialStore {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockCredentialStore{
		hashes: map[string]string{
			"advertiser@example.com": string(hashedPassword),
			"admin@example.com":      string(hashedPassword),
		},
		userIDs: map[string]int64{
			"advertiser@example.com": 1,
			"admin@example.com":      2,
		},
		usersByID: map[int64]*User{
			1: {ID: 1, Email: "advertiser@example.com", Name: "Advertiser", Role: RoleAdvertiser},
			2: {ID: 2, Email: "admin@example.com", Name: "Admin", Role: RoleAdmin},
		},
	}
}

func (m *mockCredentialStore) GetCredentials(ctx context.Context, email string) (int64, string, error) {
	if m.returnError {
		return 0, "", m.errorToReturn
	}

	if hash, exists := m.hashes[email]; exists {
		return m.userIDs[email], hash, nil
	}
	return 0, "", internal.ErrUserNotFound
}

func (m *mockCredentialStore) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}

	if u, exists := m.usersByID[userID]; exists {
		return u, nil
	}
	return nil, internal.ErrUserNotFound
}

func (m *mockCredentialStore) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

func (m *mockCredentialStore) clearError() {
	m.returnError = false
	m.errorToReturn = nil
}

// Mock SessionRepository for testing
type mockSessionRepository struct {
	sessions      map[int64]*Session
	nextID        int64
	returnError   bool
	errorToReturn error
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{
		sessions: make(map[int64]*Session),
		nextID:   1,
	}
}

func (m *mockSessionRepository) CreateSession(ctx context.Context, userID int64, userAgent string) (*Session, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}

	sess := &Session{
		ID:        m.nextID,
		UserID:    userID,
		UserAgent: userAgent,
		Valid:     true,
		CreatedAt: time.Now(),
	}
	m.sessions[sess.ID] = sess
	m.nextID++
	return sess, nil
}

func (m *mockSessionRepository) GetSession(ctx context.Context, sessionID int64) (*Session, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}

	if sess, exists := m.sessions[sessionID]; exists {
		copied := *sess
		return &copied, nil
	}
	return nil, internal.NewNotFoundError("Session not found", internal.ErrCodeSessionNotFound)
}

func (m *mockSessionRepository) SessionsForUser(ctx context.Context, userID int64, validOnly bool) ([]Session, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}

	var sessions []Session
	for _, sess := range m.sessions {
		if sess.UserID != userID {
			continue
		}
		if validOnly && !sess.Valid {
			continue
		}
		sessions = append(sessions, *sess)
	}
	return sessions, nil
}

func (m *mockSessionRepository) InvalidateSession(ctx context.Context, sessionID int64) error {
	if m.returnError {
		return m.errorToReturn
	}

	// matching no rows is still success, revocation stays idempotent
	if sess, exists := m.sessions[sessionID]; exists {
		sess.Valid = false
	}
	return nil
}

func (m *mockSessionRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

func (m *mockSessionRepository) clearError() {
	m.returnError = false
	m.errorToReturn = nil
}

var _ = ginkgo.Describe("TokenService", func() {
	var tokens *TokenService
	var user *User

	ginkgo.BeforeEach(func() {
		tokens = NewTokenService(testAccessKeys, testRefreshKeys, 10*time.Minute, time.Hour)
		user = &User{ID: 42, Email: "advertiser@example.com", Name: "Advertiser", Role: RoleAdvertiser}
	})

	ginkgo.Context("signing and verifying", func() {
		ginkgo.It("should round-trip all claims through an access token", func() {
			// When
			signed, err := tokens.Sign(user, 7, TokenAccess)

			// Then
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(signed).NotTo(gomega.BeEmpty())

			claims, err := tokens.Verify(signed, TokenAccess)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(42)))
			gomega.Expect(claims.Email).To(gomega.Equal("advertiser@example.com"))
			gomega.Expect(claims.Name).To(gomega.Equal("Advertiser"))
			gomega.Expect(claims.Role).To(gomega.Equal(RoleAdvertiser))
			gomega.Expect(claims.SessionID).To(gomega.Equal(int64(7)))
		})

		ginkgo.It("should round-trip claims through a refresh token", func() {
			signed, err := tokens.Sign(user, 7, TokenRefresh)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := tokens.Verify(signed, TokenRefresh)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(42)))
			gomega.Expect(claims.SessionID).To(gomega.Equal(int64(7)))
		})

		ginkgo.It("should reject an access token verified as a refresh token", func() {
			// Given an access token
			signed, err := tokens.Sign(user, 7, TokenAccess)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			// When verified against the refresh key pair
			_, err = tokens.Verify(signed, TokenRefresh)

			// Then the signature check fails
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject a refresh token verified as an access token", func() {
			signed, err := tokens.Sign(user, 7, TokenRefresh)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = tokens.Verify(signed, TokenAccess)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject a tampered token", func() {
			signed, err := tokens.Sign(user, 7, TokenAccess)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			tampered := signed[:len(signed)-4] + "AAAA"
			_, err = tokens.Verify(tampered, TokenAccess)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject garbage input", func() {
			_, err := tokens.Verify("not-a-token", TokenAccess)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))

			_, err = tokens.Verify("", TokenAccess)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})
	})

	ginkgo.Context("expiry", func() {
		ginkgo.It("should reject a zero-TTL token immediately", func() {
			expiring := NewTokenService(testAccessKeys, testRefreshKeys, 0, time.Hour)

			signed, err := expiring.Sign(user, 7, TokenAccess)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = expiring.Verify(signed, TokenAccess)
			gomega.Expect(err).To(gomega.Equal(internal.ErrTokenExpired))
		})

		ginkgo.It("should reject a token that expired in the past", func() {
			expired := NewTokenService(testAccessKeys, testRefreshKeys, -time.Minute, time.Hour)

			signed, err := expired.Sign(user, 7, TokenAccess)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = expired.Verify(signed, TokenAccess)
			gomega.Expect(err).To(gomega.Equal(internal.ErrTokenExpired))
		})
	})
})

var _ = ginkgo.Describe("Password hashing", func() {
	ginkgo.It("should verify the password it hashed", func() {
		hash, err := HashPassword("secret123", bcrypt.MinCost)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(hash).NotTo(gomega.Equal("secret123"))

		gomega.Expect(VerifyPassword(hash, "secret123")).To(gomega.BeTrue())
		gomega.Expect(VerifyPassword(hash, "wrong")).To(gomega.BeFalse())
	})

	ginkgo.It("should salt hashes so identical passwords differ", func() {
		first, err := HashPassword("secret123", bcrypt.MinCost)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		second, err := HashPassword("secret123", bcrypt.MinCost)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(first).NotTo(gomega.Equal(second))
	})
})

var _ = ginkgo.Describe("SessionService", func() {
	var repo *mockSessionRepository
	var service *SessionService
	var ctx context.Context

	ginkgo.BeforeEach(func() {
		repo = newMockSessionRepository()
		service = NewSessionService(repo)
		ctx = context.Background()
	})

	ginkgo.Context("Revoke", func() {
		ginkgo.It("should invalidate an active session", func() {
			sess, err := service.Create(ctx, 1, "test-agent")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(sess.Valid).To(gomega.BeTrue())

			err = service.Revoke(ctx, sess.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			valid, err := service.IsValid(ctx, sess.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(valid).To(gomega.BeFalse())
		})

		ginkgo.It("should be idempotent", func() {
			sess, err := service.Create(ctx, 1, "test-agent")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(service.Revoke(ctx, sess.ID)).To(gomega.Succeed())
			gomega.Expect(service.Revoke(ctx, sess.ID)).To(gomega.Succeed())
		})

		ginkgo.It("should succeed for an unknown session", func() {
			gomega.Expect(service.Revoke(ctx, 999)).To(gomega.Succeed())
		})
	})

	ginkgo.Context("IsValid", func() {
		ginkgo.It("should treat a missing session as invalid, not as an error", func() {
			valid, err := service.IsValid(ctx, 999)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(valid).To(gomega.BeFalse())
		})

		ginkgo.It("should surface storage errors", func() {
			repo.setError(errors.New("database connection failed"))
			defer repo.clearError()

			_, err := service.IsValid(ctx, 1)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Context("ActiveForUser", func() {
		ginkgo.It("should list only valid sessions of the user", func() {
			first, _ := service.Create(ctx, 1, "agent-a")
			_, err := service.Create(ctx, 1, "agent-b")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			_, err = service.Create(ctx, 2, "agent-c")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(service.Revoke(ctx, first.ID)).To(gomega.Succeed())

			sessions, err := service.ActiveForUser(ctx, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(sessions).To(gomega.HaveLen(1))
			gomega.Expect(sessions[0].UserAgent).To(gomega.Equal("agent-b"))
		})
	})
})

var _ = ginkgo.Describe("AuthService", func() {
	var store *mockCredentialStore
	var sessionRepo *mockSessionRepository
	var service *Service
	var ctx context.Context

	ginkgo.BeforeEach(func() {
		store = newMockCredentialStore()
		sessionRepo = newMockSessionRepository()
		tokens := NewTokenService(testAccessKeys, testRefreshKeys, 10*time.Minute, time.Hour)
		service = NewService(store, NewSessionService(sessionRepo), tokens)
		ctx = context.Background()
	})

	ginkgo.Context("Login", func() {
		ginkgo.It("should issue both tokens for valid credentials", func() {
			// When
			issued, err := service.Login(ctx, LoginDTO{
				Email:    "advertiser@example.com",
				Password: "correct_password",
			}, "test-agent")

			// Then
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(issued.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(issued.RefreshToken).NotTo(gomega.BeEmpty())
			gomega.Expect(issued.AccessToken).NotTo(gomega.Equal(issued.RefreshToken))
		})

		ginkgo.It("should open a session on login", func() {
			_, err := service.Login(ctx, LoginDTO{
				Email:    "advertiser@example.com",
				Password: "correct_password",
			}, "test-agent")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			sessions, err := service.Sessions(ctx, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(sessions).To(gomega.HaveLen(1))
			gomega.Expect(sessions[0].UserAgent).To(gomega.Equal("test-agent"))
			gomega.Expect(sessions[0].Valid).To(gomega.BeTrue())
		})

		ginkgo.It("should reject an unknown email with the credentials error", func() {
			_, err := service.Login(ctx, LoginDTO{
				Email:    "nobody@example.com",
				Password: "correct_password",
			}, "test-agent")

			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("should reject a wrong password with the same credentials error", func() {
			_, err := service.Login(ctx, LoginDTO{
				Email:    "advertiser@example.com",
				Password: "wrong_password",
			}, "test-agent")

			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("should hide storage failures behind the credentials error", func() {
			store.setError(errors.New("database connection failed"))
			defer store.clearError()

			_, err := service.Login(ctx, LoginDTO{
				Email:    "advertiser@example.com",
				Password: "correct_password",
			}, "test-agent")

			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("should reject an empty email or password before touching storage", func() {
			_, err := service.Login(ctx, LoginDTO{Password: "correct_password"}, "test-agent")
			gomega.Expect(err).To(gomega.HaveOccurred())

			_, err = service.Login(ctx, LoginDTO{Email: "advertiser@example.com"}, "test-agent")
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Context("Authenticate", func() {
		login := func() AuthTokens {
			issued, err := service.Login(ctx, LoginDTO{
				Email:    "advertiser@example.com",
				Password: "correct_password",
			}, "test-agent")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			return issued
		}

		ginkgo.It("should resolve the user behind a fresh access token", func() {
			issued := login()

			user, sessionID, err := service.Authenticate(ctx, issued.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.ID).To(gomega.Equal(int64(1)))
			gomega.Expect(user.Email).To(gomega.Equal("advertiser@example.com"))
			gomega.Expect(user.Role).To(gomega.Equal(RoleAdvertiser))
			gomega.Expect(sessionID).NotTo(gomega.BeZero())
		})

		ginkgo.It("should reject a refresh token presented as an access token", func() {
			issued := login()

			_, _, err := service.Authenticate(ctx, issued.RefreshToken)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject tokens minted under a revoked session", func() {
			// Given a logged-in user
			issued := login()
			_, sessionID, err := service.Authenticate(ctx, issued.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			// When the session is revoked
			gomega.Expect(service.Logout(ctx, sessionID)).To(gomega.Succeed())

			// Then the still-unexpired token no longer authenticates
			_, _, err = service.Authenticate(ctx, issued.AccessToken)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("should tolerate logging out twice", func() {
			issued := login()
			_, sessionID, err := service.Authenticate(ctx, issued.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(service.Logout(ctx, sessionID)).To(gomega.Succeed())
			gomega.Expect(service.Logout(ctx, sessionID)).To(gomega.Succeed())
		})
	})
})
