package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

type User struct {
	ID           int        `db:"id"`
	FullName     string     `db:"full_name"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	DateJoined   time.Time  `db:"date_joined"`
	LastLogin    *time.Time `db:"last_login"`
}

type UserProfile struct {
	ID         int        `db:"id" json:"id"`
	FullName   string     `db:"full_name" json:"full_name"`
	Email      string     `db:"email" json:"email"`
	DateJoined time.Time  `db:"date_joined" json:"date_joined"`
	LastLogin  *time.Time `db:"last_login" json:"last_login,omitempty"`
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return errors.New("full name cannot be empty")
	}
	if len(r.FullName) > 100 {
		return errors.New("full name must be at most 100 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)
	if !emailRegex.MatchString(strings.ToLower(r.Email)) {
		return errors.New("invalid email format")
	}

	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
