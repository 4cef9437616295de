package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// invalidCredentials is returned for both unknown emails and wrong
// passwords so the response never discloses which accounts exist.
const invalidCredentials = "invalid email or password"

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	seedEmail  string
	seedPass   string
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		bcryptCost: cfg.BcryptCost,
		seedEmail:  cfg.SeedAdminEmail,
		seedPass:   cfg.SeedAdminPassword,
		logger:     logger,
	}
}

// Register creates a new admin account and issues a credential.
func (s *AuthService) Register(ctx context.Context, email, password string, firstName, lastName *string) (*domain.User, string, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", apperrors.NewConflict("user already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", apperrors.MapError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", apperrors.MapError(err)
	}

	token, _, err := s.tokenMgr.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", apperrors.MapError(err)
	}
	return user, token, nil
}

// Login authenticates by exact email match and password verification. Both
// failure modes collapse into the same generic error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, "", apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", apperrors.NewUnauthorized(invalidCredentials)
	}

	token, _, err := s.tokenMgr.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", apperrors.MapError(err)
	}
	return user, token, nil
}

// Profile returns the account behind an authenticated principal.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// SeedAdminUser creates the bootstrap admin account once, if it is absent.
func (s *AuthService) SeedAdminUser(ctx context.Context) error {
	if s.seedEmail == "" || s.seedPass == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, s.seedEmail); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(s.seedPass, s.bcryptCost)
	if err != nil {
		return err
	}
	firstName, lastName := "Test", "Admin"
	user := &domain.User{
		Email:        s.seedEmail,
		PasswordHash: hash,
		FirstName:    &firstName,
		LastName:     &lastName,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.logger.Info("seeded bootstrap admin user", zap.String("email", s.seedEmail))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
