package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/nekogravitycat/league-admin-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailAlreadyUsed   = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email is not confirmed")

	ErrCannotDeleteSelf  = apperror.New(http.StatusBadRequest, "administrators cannot delete their own account")
	ErrInvalidResetToken = apperror.New(http.StatusBadRequest, "password reset link is invalid or has expired")
)

// User is an auth identity joined with its league profile, if one exists.
type User struct {
	ID                string // UUID
	Email             string
	PasswordHash      string
	EmailConfirmedAt  *time.Time
	CreatedAt         time.Time
	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time // nil until the first reset

	HasProfile    bool
	Name          *string
	Phone         *string
	IsAdmin       bool
	IsFacilitator bool
}

// UpdateUserRequest carries the profile fields an administrator may change.
// Nil fields are left untouched.
type UpdateUserRequest struct {
	Name          *string
	Phone         *string
	IsAdmin       *bool
	IsFacilitator *bool
}
