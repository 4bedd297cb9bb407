package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/auth"
	sessionmodel "github.com/frahmantamala/ad-management/internal/core/datamodel/session"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// GetCredentials returns the user id and bcrypt hash for an email.
func (r *Repository) GetCredentials(ctx context.Context, email string) (int64, string, error) {
	var userID int64
	var passwordHash string
	query := `SELECT id, password_hash FROM users WHERE email = ?`

	row := r.db.WithContext(ctx).Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", internal.ErrUserNotFound
		}
		return 0, "", err
	}
	return userID, passwordHash, nil
}

// GetUserByID loads the public identity fields for a user.
func (r *Repository) GetUserByID(ctx context.Context, userID int64) (*auth.User, error) {
	var user auth.User
	var role string
	query := `SELECT id, email, name, role FROM users WHERE id = ?`

	row := r.db.WithContext(ctx).Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	user.Role = auth.Role(role)
	return &user, nil
}

func (r *Repository) CreateSession(ctx context.Context, userID int64, userAgent string) (*auth.Session, error) {
	model := sessionmodel.Session{
		UserID:    userID,
		UserAgent: userAgent,
		Valid:     true,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, err
	}

	return toDomainSession(&model), nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID int64) (*auth.Session, error) {
	var model sessionmodel.Session

	err := r.db.WithContext(ctx).First(&model, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("Session not found", internal.ErrCodeSessionNotFound)
		}
		return nil, err
	}

	return toDomainSession(&model), nil
}

func (r *Repository) SessionsForUser(ctx context.Context, userID int64, validOnly bool) ([]auth.Session, error) {
	var models []sessionmodel.Session

	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if validOnly {
		q = q.Where("valid = ?", true)
	}
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	sessions := make([]auth.Session, 0, len(models))
	for i := range models {
		sessions = append(sessions, *toDomainSession(&models[i]))
	}
	return sessions, nil
}

// InvalidateSession flips valid to false. Matching zero rows is fine, which
// keeps revocation idempotent.
func (r *Repository) InvalidateSession(ctx context.Context, sessionID int64) error {
	return r.db.WithContext(ctx).
		Model(&sessionmodel.Session{}).
		Where("id = ?", sessionID).
		Update("valid", false).Error
}

func toDomainSession(m *sessionmodel.Session) *auth.Session {
	return &auth.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		UserAgent: m.UserAgent,
		Valid:     m.Valid,
		CreatedAt: m.CreatedAt,
	}
}
