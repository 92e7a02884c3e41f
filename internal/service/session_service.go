package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bidmarket/internal/auth"
	"bidmarket/internal/cache"
	apperrors "bidmarket/internal/errors"
	"bidmarket/internal/model"
	"bidmarket/internal/otp"
	"bidmarket/internal/repository"
)

// RegisterInput carries the registration payload after handler-level validation.
type RegisterInput struct {
	PhoneNumber string
	OTP         string
	FirstName   string
	LastName    string
	Email       string
	Role        string
	Addresses   []model.Address
}

// SessionResult is a user together with a freshly issued token pair.
type SessionResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
	// Created is false when registration found an existing user; no tokens
	// are issued in that case.
	Created bool
}

// SessionService orchestrates the session lifecycle: registration, login,
// refresh-token rotation, and logout. It is the only component that touches
// the credential verifier, the token service, and the store together.
type SessionService interface {
	Register(ctx context.Context, in RegisterInput) (*SessionResult, error)
	Login(ctx context.Context, phoneNumber, otpCode string) (*SessionResult, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error)
	Logout(ctx context.Context, userID uint) error
}

type sessionService struct {
	users         repository.UserRepository
	tokens        *auth.TokenService
	verifier      otp.Verifier
	cache         *cache.Client
	verifyTimeout time.Duration
}

// NewSessionService creates the session manager.
func NewSessionService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	verifier otp.Verifier,
	cache *cache.Client,
	verifyTimeout time.Duration,
) SessionService {
	return &sessionService{
		users:         users,
		tokens:        tokens,
		verifier:      verifier,
		cache:         cache,
		verifyTimeout: verifyTimeout,
	}
}

func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// verifyOTP calls the external verifier, bounded by the configured timeout.
func (s *sessionService) verifyOTP(ctx context.Context, phoneNumber, otpCode string) error {
	ctx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()
	return s.verifier.Verify(ctx, phoneNumber, otpCode)
}

// issueTokens generates a fresh pair and persists it before returning, so a
// token is never handed out without being stored. Every login or registration
// rotates the refresh token: the previous one stops being valid.
func (s *sessionService) issueTokens(ctx context.Context, user *model.User) (string, string, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.users.SetTokens(ctx, user.ID, accessToken, refreshToken); err != nil {
		return "", "", fmt.Errorf("persist tokens: %w", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(user.ID))

	user.AccessToken = accessToken
	user.RefreshToken = refreshToken
	return accessToken, refreshToken, nil
}

// Register verifies the OTP and creates the user. Registering an already
// known phone number is a no-op lookup: the existing user is returned and no
// tokens are issued.
func (s *sessionService) Register(ctx context.Context, in RegisterInput) (*SessionResult, error) {
	if err := s.verifyOTP(ctx, in.PhoneNumber, in.OTP); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByPhone(ctx, in.PhoneNumber)
	if err == nil {
		return &SessionResult{User: existing, Created: false}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up phone number: %w", err)
	}

	role := in.Role
	if role != model.RoleAdmin {
		role = model.RoleUser
	}
	user := &model.User{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		Role:        role,
		Addresses:   in.Addresses,
		IsNewUser:   true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a registration race for the same phone number
			return nil, apperrors.ErrPhoneNumberTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	return &SessionResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Created:      true,
	}, nil
}

// Login verifies the OTP and issues a fresh token pair, overwriting the
// stored refresh token. A refresh token from an earlier login is rejected
// afterwards.
func (s *sessionService) Login(ctx context.Context, phoneNumber, otpCode string) (*SessionResult, error) {
	if err := s.verifyOTP(ctx, phoneNumber, otpCode); err != nil {
		return nil, err
	}

	user, err := s.users.FindByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("look up phone number: %w", err)
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	return &SessionResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair and rotates
// the stored refresh token, invalidating the presented one. The presented
// token must exactly equal the user's currently stored refresh token; a
// superseded token fails even if its signature and expiry still check out.
func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", apperrors.ErrMissingRefreshToken
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", "", apperrors.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apperrors.ErrInvalidRefreshToken
		}
		return "", "", fmt.Errorf("look up user: %w", err)
	}
	if user.RefreshToken != refreshToken {
		return "", "", apperrors.ErrInvalidRefreshToken
	}

	newAccessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}
	newRefreshToken, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}

	rotated, err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, newRefreshToken, newAccessToken)
	if err != nil {
		return "", "", fmt.Errorf("rotate refresh token: %w", err)
	}
	if !rotated {
		// a concurrent rotation, login, or logout won the race
		return "", "", apperrors.ErrInvalidRefreshToken
	}
	_ = s.cache.Delete(ctx, userCacheKey(user.ID))

	return newAccessToken, newRefreshToken, nil
}

// Logout clears the stored refresh token. Logging out an already logged-out
// user succeeds.
func (s *sessionService) Logout(ctx context.Context, userID uint) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("look up user: %w", err)
	}

	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(userID))
	return nil
}
