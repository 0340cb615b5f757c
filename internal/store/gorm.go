package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/charlesng35/signupd/internal/models"
)

// GormUserStore implements UserStore on top of a relational database.
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore wraps the provided database handle.
func NewGormUserStore(db *gorm.DB) (*GormUserStore, error) {
	if db == nil {
		return nil, errors.New("user store: db is required")
	}
	return &GormUserStore{db: db}, nil
}

func (s *GormUserStore) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("user store: create: %w", err)
	}
	return nil
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user store: find by email: %w", err)
	}
	return &user, nil
}

func (s *GormUserStore) UpdateStatus(ctx context.Context, userID string, status models.UserStatus, at time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"status": status, "updated_at": at})
	if result.Error != nil {
		return fmt.Errorf("user store: update status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GormTokenStore implements TokenStore on top of a relational database.
type GormTokenStore struct {
	db *gorm.DB
}

// NewGormTokenStore wraps the provided database handle.
func NewGormTokenStore(db *gorm.DB) (*GormTokenStore, error) {
	if db == nil {
		return nil, errors.New("token store: db is required")
	}
	return &GormTokenStore{db: db}, nil
}

func (s *GormTokenStore) Create(ctx context.Context, token *models.ActivationToken) error {
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("token store: create: %w", err)
	}
	return nil
}

func (s *GormTokenStore) Find(ctx context.Context, userID, code string) (*models.ActivationToken, error) {
	var token models.ActivationToken
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND code = ?", userID, code).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("token store: find: %w", err)
	}
	return &token, nil
}

func (s *GormTokenStore) DeleteByUser(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.ActivationToken{}).Error
	if err != nil {
		return fmt.Errorf("token store: delete by user: %w", err)
	}
	return nil
}

func (s *GormTokenStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.ActivationToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("token store: delete expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}
