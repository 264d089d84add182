package repositories

import (
	"bananaprep/internal/models"
	"bananaprep/internal/services"
	"bananaprep/internal/utils"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetProfile(ctx context.Context, userID int) (*models.UserProfile, error)
	UpdateLastLogin(ctx context.Context, userID int) error
	StoreRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (int, error)
	RevokeToken(ctx context.Context, token string) error
}

type userRepository struct {
	db    *sqlx.DB
	cache services.Cache
}

func NewUserRepository(db *sqlx.DB, cache services.Cache) UserRepository {
	return &userRepository{db: db, cache: cache}
}

func (r *userRepository) CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `INSERT INTO users (full_name, email, password_hash) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, req.FullName, req.Email, hashedPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	user := &models.User{
		ID:       int(id),
		FullName: req.FullName,
		Email:    req.Email,
	}
	return user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT id, full_name, email, password_hash, date_joined, last_login FROM users WHERE email = ?`
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	var profile models.UserProfile
	query := `SELECT id, full_name, email, date_joined, last_login FROM users WHERE id = ?`
	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %d", userID)
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &profile, nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, userID int) error {
	query := `UPDATE users SET last_login = NOW() WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *userRepository) StoreRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	key := fmt.Sprintf("refresh_token:%s", token)
	ttl := time.Until(expiresAt)

	if ttl <= 0 {
		return fmt.Errorf("token expiration is in the past")
	}

	if err := r.cache.Set(ctx, key, userID, ttl); err != nil {
		return fmt.Errorf("failed to store refresh token in cache: %w", err)
	}
	return nil
}

func (r *userRepository) GetRefreshToken(ctx context.Context, token string) (int, error) {
	key := fmt.Sprintf("refresh_token:%s", token)
	var userID int

	if err := r.cache.Get(ctx, key, &userID); err != nil {
		return 0, fmt.Errorf("refresh token not found in cache: %w", err)
	}
	return userID, nil
}

func (r *userRepository) RevokeToken(ctx context.Context, token string) error {
	key := fmt.Sprintf("refresh_token:%s", token)
	if err := r.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to revoke token from cache: %w", err)
	}
	return nil
}
