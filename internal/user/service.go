package user

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/league-admin-backend/internal/auth"
)

// Service defines business logic related to users.
type Service interface {
	Login(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	IsAdmin(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, actorID, id string) error
	PasswordResetLink(ctx context.Context, id string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// ServiceConfig holds the settings the user service needs beyond its collaborators.
type ServiceConfig struct {
	PublicURL        string
	PasswordResetTTL time.Duration
	Logger           *zap.SugaredLogger
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	tokens *auth.JWTManager

	publicURL string
	resetTTL  time.Duration
	log       *zap.SugaredLogger
	now       func() time.Time
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher, tokens *auth.JWTManager, cfg ServiceConfig) Service {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ttl := cfg.PasswordResetTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &service{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		resetTTL:  ttl,
		log:       log,
		now:       time.Now,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	// Compare password hash.
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if u.EmailConfirmedAt == nil {
		return nil, ErrEmailNotConfirmed
	}

	// Update last_login_at (best effort; do not fail login if update fails).
	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warnw("failed to record last login", "user", u.ID, "error", err)
	} else {
		u.LastLoginAt = &now
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// IsAdmin reports the user's own administrator flag. A missing user is simply not an admin.
func (s *service) IsAdmin(ctx context.Context, id string) (bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.IsAdmin, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		req.Phone = &phone
	}

	if err := s.repo.UpdateProfile(ctx, id, req); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return ErrCannotDeleteSelf
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Infow("user deleted", "user", id, "by", actorID)
	return nil
}

// PasswordResetLink signs a short-lived reset token and returns the link to send the user.
func (s *service) PasswordResetLink(ctx context.Context, id string) (string, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.GenerateResetToken(u.ID, u.Email, s.resetTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}

	return s.publicURL + "/reset-password?token=" + url.QueryEscape(token), nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.ParseResetToken(token)
	if err != nil || claims.IssuedAt == nil {
		return ErrInvalidResetToken
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// A link stops working once any reset has gone through after it was issued.
	if err := s.repo.UpdatePassword(ctx, claims.UserID, hash, claims.IssuedAt.Time); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	s.log.Infow("password reset", "user", claims.UserID, "token_id", claims.ID)
	return nil
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
