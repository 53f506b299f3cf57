package http

import (
	"time"

	"github.com/nekogravitycat/league-admin-backend/internal/user"
)

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             *string    `json:"name"`
	Phone            *string    `json:"phone"`
	IsAdmin          bool       `json:"is_admin"`
	IsFacilitator    bool       `json:"is_facilitator"`
	HasProfile       bool       `json:"has_profile"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	LastLoginAt      *time.Time `json:"last_login_at"`
}

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Phone:            u.Phone,
		IsAdmin:          u.IsAdmin,
		IsFacilitator:    u.IsFacilitator,
		HasProfile:       u.HasProfile,
		EmailConfirmedAt: u.EmailConfirmedAt,
		CreatedAt:        u.CreatedAt,
		LastLoginAt:      u.LastLoginAt,
	}
}

// LoginRequest defines the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest defines fields allowed to be updated via PATCH /users/:id.
// Use pointers to distinguish between "field not sent" and "field sent as false/empty".
type UpdateUserRequest struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	IsAdmin       *bool   `json:"is_admin"`
	IsFacilitator *bool   `json:"is_facilitator"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the token and user info.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// MeResponse returns the current user info.
type MeResponse struct {
	User UserResponse `json:"user"`
}

type ResetLinkResponse struct {
	Link string `json:"link"`
}
