package user_test

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/ad-management/internal/auth"
	authPostgres "github.com/frahmantamala/ad-management/internal/auth/postgres"
	"github.com/frahmantamala/ad-management/internal/user"
	userPostgres "github.com/frahmantamala/ad-management/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLite-compatible models for testing
type SQLiteUser struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

type SQLiteSession struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	UserAgent string    `gorm:"column:user_agent"`
	Valid     bool      `gorm:"column:valid"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SQLiteSession) TableName() string {
	return "sessions"
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

var _ = Describe("Account Lifecycle Integration", func() {
	var router *chi.Mux

	doJSON := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var reader *bytes.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		} else {
			reader = bytes.NewReader(nil)
		}

		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) envelope {
		var env envelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		return env
	}

	register := func(email string) *httptest.ResponseRecorder {
		return doJSON(http.MethodPost, "/users", "", map[string]string{
			"email":                 email,
			"name":                  "Test User",
			"password":              "secret123",
			"password_confirmation": "secret123",
		})
	}

	login := func(email, password string) *httptest.ResponseRecorder {
		return doJSON(http.MethodPost, "/sessions", "", map[string]string{
			"email":    email,
			"password": password,
		})
	}

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{}, &SQLiteSession{})
		Expect(err).NotTo(HaveOccurred())

		accessPriv, err := rsa.GenerateKey(rand.Reader, 2048)
		Expect(err).NotTo(HaveOccurred())
		refreshPriv, err := rsa.GenerateKey(rand.Reader, 2048)
		Expect(err).NotTo(HaveOccurred())

		tokens := auth.NewTokenService(
			auth.KeyPair{Private: accessPriv, Public: &accessPriv.PublicKey},
			auth.KeyPair{Private: refreshPriv, Public: &refreshPriv.PublicKey},
			10*time.Minute,
			time.Hour,
		)

		authRepo := authPostgres.NewRepository(db)
		authService := auth.NewService(authRepo, auth.NewSessionService(authRepo), tokens)
		authHandler := auth.NewHandler(authService)

		userService := user.NewService(userPostgres.NewRepository(db), bcrypt.MinCost)
		userHandler := user.NewHandler(userService)

		router = chi.NewRouter()
		router.Post("/users", userHandler.Register)
		router.Post("/sessions", authHandler.Login)
		router.Group(func(r chi.Router) {
			r.Use(authHandler.AuthMiddleware)
			r.Get("/users/me", userHandler.GetCurrentUser)
			r.Get("/sessions", authHandler.ListSessions)
			r.Delete("/sessions", authHandler.Logout)
		})
	})

	It("should carry a user from registration through logout", func() {
		// registration answers 201 and never echoes the password
		w := register("flow@example.com")
		Expect(w.Code).To(Equal(http.StatusCreated))
		body := w.Body.String()
		Expect(body).NotTo(ContainSubstring("secret123"))
		Expect(strings.ToLower(body)).NotTo(ContainSubstring("password_hash"))

		env := decode(w)
		Expect(env.Success).To(BeTrue())
		Expect(env.Message).To(Equal("User registered successfully"))

		// login issues both tokens
		w = login("flow@example.com", "secret123")
		Expect(w.Code).To(Equal(http.StatusOK))

		var tokens struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		}
		env = decode(w)
		Expect(json.Unmarshal(env.Data, &tokens)).To(Succeed())
		Expect(tokens.AccessToken).NotTo(BeEmpty())
		Expect(tokens.RefreshToken).NotTo(BeEmpty())

		// the access token resolves the current user
		w = doJSON(http.MethodGet, "/users/me", tokens.AccessToken, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		env = decode(w)
		Expect(string(env.Data)).To(ContainSubstring("flow@example.com"))

		// one valid session is listed
		w = doJSON(http.MethodGet, "/sessions", tokens.AccessToken, nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var sessions []map[string]interface{}
		env = decode(w)
		Expect(json.Unmarshal(env.Data, &sessions)).To(Succeed())
		Expect(sessions).To(HaveLen(1))

		// logout answers with nulled tokens
		w = doJSON(http.MethodDelete, "/sessions", tokens.AccessToken, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		env = decode(w)

		var nulled map[string]interface{}
		Expect(json.Unmarshal(env.Data, &nulled)).To(Succeed())
		Expect(nulled["access_token"]).To(BeNil())
		Expect(nulled["refresh_token"]).To(BeNil())

		// the still-unexpired token is dead after logout
		w = doJSON(http.MethodGet, "/users/me", tokens.AccessToken, nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should answer 401 for a wrong password", func() {
		Expect(register("wrongpass@example.com").Code).To(Equal(http.StatusCreated))

		w := login("wrongpass@example.com", "not-the-password")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))

		env := decode(w)
		Expect(env.Success).To(BeFalse())
		Expect(env.Message).To(Equal("Invalid email or password"))
	})

	It("should answer 401 for an unknown email, indistinguishable from a wrong password", func() {
		w := login("ghost@example.com", "secret123")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(decode(w).Message).To(Equal("Invalid email or password"))
	})

	It("should answer 409 for a duplicate email", func() {
		Expect(register("dup@example.com").Code).To(Equal(http.StatusCreated))
		Expect(register("dup@example.com").Code).To(Equal(http.StatusConflict))
	})

	It("should answer 403 on protected routes without a token", func() {
		w := doJSON(http.MethodGet, "/users/me", "", nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(decode(w).Message).To(Equal("Access denied. User not authenticated."))
	})

	It("should reject a refresh token used as an access token", func() {
		Expect(register("kinds@example.com").Code).To(Equal(http.StatusCreated))

		w := login("kinds@example.com", "secret123")
		Expect(w.Code).To(Equal(http.StatusOK))

		var tokens struct {
			RefreshToken string `json:"refresh_token"`
		}
		env := decode(w)
		Expect(json.Unmarshal(env.Data, &tokens)).To(Succeed())

		w = doJSON(http.MethodGet, "/users/me", tokens.RefreshToken, nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})
})
