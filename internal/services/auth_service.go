package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/smartscale/portfolio-api/internal/auth"
	"github.com/smartscale/portfolio-api/internal/constants"
	"github.com/smartscale/portfolio-api/internal/models"
	"github.com/smartscale/portfolio-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidToken         = errors.New("invalid token")
	ErrUserNotFound         = errors.New("user not found")
	ErrWeakPassword         = fmt.Errorf("new password must be at least %d characters long", constants.MinPasswordLength)
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles administrator authentication.
type AuthService struct {
	credentialRepo repository.CredentialRepository
	tokens         *auth.TokenService
	log            *zap.Logger
	hashCost       int
	now            func() time.Time

	dummyHashOnce sync.Once
	dummyHash     []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(credentialRepo repository.CredentialRepository, tokens *auth.TokenService, log *zap.Logger) *AuthService {
	return &AuthService{
		credentialRepo: credentialRepo,
		tokens:         tokens,
		log:            log,
		hashCost:       bcrypt.DefaultCost,
		now:            time.Now,
	}
}

// BootstrapInput holds the configured default administrator.
type BootstrapInput struct {
	Username string
	Password string
}

// Bootstrap creates the default administrator when no credential exists yet.
// It never touches an existing credential and reports whether it created one.
func (s *AuthService) Bootstrap(ctx context.Context, input BootstrapInput) (bool, error) {
	count, err := s.credentialRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count credentials: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return false, err
	}

	credential := &models.Credential{
		Username:     input.Username,
		PasswordHash: hash,
	}
	if err := s.credentialRepo.Create(ctx, credential); err != nil {
		return false, fmt.Errorf("failed to create default admin: %w", err)
	}

	s.log.Info("Default admin user created", zap.String("username", credential.Username))
	return true, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token      string
	ExpiresAt  time.Time
	Credential *models.Credential
}

// Login verifies credentials, stamps the login time, and issues a token.
// Unknown usernames and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	credential, err := s.credentialRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn the same bcrypt work as a real comparison.
			_ = bcrypt.CompareHashAndPassword(s.getDummyHash(), []byte(input.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	loginAt := s.now()
	if err := s.credentialRepo.UpdateLastLogin(ctx, credential.ID, loginAt); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	credential.LastLoginAt = &loginAt

	token, expiresAt, err := s.tokens.Generate(credential.ID, credential.Username)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:      token,
		ExpiresAt:  expiresAt,
		Credential: credential,
	}, nil
}

// Verify decodes the token and confirms its credential still exists.
func (s *AuthService) Verify(ctx context.Context, token string) (*models.Credential, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	credential, err := s.credentialRepo.FindByID(ctx, claims.CredentialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}

	return credential, nil
}

// ChangePasswordInput holds the current and the replacement password.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// ChangePassword replaces the password hash after re-checking the current password.
// Previously issued tokens remain valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, token string, input ChangePasswordInput) error {
	credential, err := s.Verify(ctx, token)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if len(input.NewPassword) < constants.MinPasswordLength {
		return ErrWeakPassword
	}

	hash, err := s.hashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.credentialRepo.UpdatePasswordHash(ctx, credential.ID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.Info("Admin password changed", zap.Uint64("credential_id", credential.ID))
	return nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToHashPassword, err)
	}
	return string(hash), nil
}

func (s *AuthService) getDummyHash() []byte {
	s.dummyHashOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), s.hashCost)
	})
	return s.dummyHash
}
