package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"bidmarket/internal/auth"
	apperrors "bidmarket/internal/errors"
	"bidmarket/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phoneNumber string) (*model.User, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, phoneNumber string, patch model.ProfilePatch) (*model.User, error) {
	args := m.Called(ctx, phoneNumber, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetTokens(ctx context.Context, id uint, accessToken, refreshToken string) error {
	args := m.Called(ctx, id, accessToken, refreshToken)
	return args.Error(0)
}

func (m *MockUserRepository) RotateRefreshToken(ctx context.Context, id uint, current, next, accessToken string) (bool, error) {
	args := m.Called(ctx, id, current, next, accessToken)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) AddAddress(ctx context.Context, address *model.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAddress(ctx context.Context, userID uint, addressID uuid.UUID, patch model.AddressPatch) (bool, error) {
	args := m.Called(ctx, userID, addressID, patch)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ListAddresses(ctx context.Context, userID uint) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Address), args.Error(1)
}

func (m *MockUserRepository) DeleteAddress(ctx context.Context, userID uint, addressID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, addressID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpsertBid(ctx context.Context, userID uint, productID string, amount float64) error {
	args := m.Called(ctx, userID, productID, amount)
	return args.Error(0)
}

// MockVerifier is a mock implementation of otp.Verifier.
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, phoneNumber, otpCode string) error {
	args := m.Called(ctx, phoneNumber, otpCode)
	return args.Error(0)
}

func newTestTokenService() *auth.TokenService {
	return auth.NewTokenService("test-access-secret", "test-refresh-secret", time.Hour, time.Hour)
}

func newTestSessionService(repo *MockUserRepository, verifier *MockVerifier) SessionService {
	return NewSessionService(repo, newTestTokenService(), verifier, nil, time.Second)
}

func TestSessionService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository, *MockVerifier)
		expectCreated bool
		expectTokens  bool
		expectedError error
	}{
		{
			name:  "new user gets tokens",
			input: RegisterInput{PhoneNumber: "+15551", OTP: "000000", FirstName: "Asha"},
			setupMock: func(repo *MockUserRepository, verifier *MockVerifier) {
				verifier.On("Verify", mock.Anything, "+15551", "000000").Return(nil)
				repo.On("FindByPhone", mock.Anything, "+15551").Return(nil, gorm.ErrRecordNotFound)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
					args.Get(1).(*model.User).ID = 1
				}).Return(nil)
				repo.On("SetTokens", mock.Anything, uint(1), mock.Anything, mock.Anything).Return(nil)
			},
			expectCreated: true,
			expectTokens:  true,
		},
		{
			name:  "existing phone number returns user without new tokens",
			input: RegisterInput{PhoneNumber: "+15552", OTP: "000000"},
			setupMock: func(repo *MockUserRepository, verifier *MockVerifier) {
				verifier.On("Verify", mock.Anything, "+15552", "000000").Return(nil)
				repo.On("FindByPhone", mock.Anything, "+15552").Return(&model.User{ID: 9, PhoneNumber: "+15552"}, nil)
			},
			expectCreated: false,
			expectTokens:  false,
		},
		{
			name:  "otp rejected",
			input: RegisterInput{PhoneNumber: "+15553", OTP: "999999"},
			setupMock: func(repo *MockUserRepository, verifier *MockVerifier) {
				verifier.On("Verify", mock.Anything, "+15553", "999999").Return(&apperrors.OTPError{Message: "wrong code"})
			},
			expectedError: &apperrors.OTPError{Message: "wrong code"},
		},
		{
			name:  "lost registration race surfaces conflict",
			input: RegisterInput{PhoneNumber: "+15554", OTP: "000000"},
			setupMock: func(repo *MockUserRepository, verifier *MockVerifier) {
				verifier.On("Verify", mock.Anything, "+15554", "000000").Return(nil)
				repo.On("FindByPhone", mock.Anything, "+15554").Return(nil, gorm.ErrRecordNotFound)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrPhoneNumberTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			verifier := new(MockVerifier)
			tt.setupMock(repo, verifier)

			svc := newTestSessionService(repo, verifier)
			result, err := svc.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.EqualError(t, err, tt.expectedError.Error())
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, result)
				assert.Equal(t, tt.expectCreated, result.Created)
				if tt.expectTokens {
					assert.NotEmpty(t, result.AccessToken)
					assert.NotEmpty(t, result.RefreshToken)
					assert.True(t, result.User.IsNewUser)
				} else {
					assert.Empty(t, result.AccessToken)
					assert.Empty(t, result.RefreshToken)
				}
			}

			repo.AssertExpectations(t)
			verifier.AssertExpectations(t)
		})
	}
}

func TestSessionService_RegisterIsIdempotent(t *testing.T) {
	repo := new(MockUserRepository)
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "+1555", "000000").Return(nil)

	existing := &model.User{ID: 4, PhoneNumber: "+1555", RefreshToken: "stored"}
	repo.On("FindByPhone", mock.Anything, "+1555").Return(existing, nil)

	svc := newTestSessionService(repo, verifier)
	in := RegisterInput{PhoneNumber: "+1555", OTP: "000000"}

	first, err := svc.Register(context.Background(), in)
	assert.NoError(t, err)
	second, err := svc.Register(context.Background(), in)
	assert.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Empty(t, second.RefreshToken)
	// SetTokens never called: the stored refresh token was not rotated
	repo.AssertNotCalled(t, "SetTokens", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionService_Login(t *testing.T) {
	tests := []struct {
		name          string
		phone         string
		otp           string
		setupMock     func(*MockUserRepository, *MockVerifier)
		expectedError error
	}{
		{
			name:  "successful login issues and persists a fresh pair",
			phone: "+1555",
			otp:   "000000",
			setupMock: func(repo *MockUserRepository, verifier *MockVerifier) {
				verifier.On("Verify", mock.Anything, "+1555", "000000").Return(nil)
				repo.On("FindByPhone", mock.Anything, "+1555").Return(&model.User{ID: 2, PhoneNumber: "+1555", Role: model.RoleUser, RefreshToken: "old"}, nil)
				repo.On("SetTokens", mock.Anything, uint(2), mock.Anything, mock.Anything).Return(nil)
			},
		},
		{
			name:  "unknown phone number",
			phone: "+1556",
			otp:   "000000",
			setupMock: func(repo *MockUserRepository, verifier *MockVerifier) {
				verifier.On("Verify", mock.Anything, "+1556", "000000").Return(nil)
				repo.On("FindByPhone", mock.Anything, "+1556").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:  "otp rejected",
			phone: "+1557",
			otp:   "111111",
			setupMock: func(repo *MockUserRepository, verifier *MockVerifier) {
				verifier.On("Verify", mock.Anything, "+1557", "111111").Return(&apperrors.OTPError{Message: "expired"})
			},
			expectedError: &apperrors.OTPError{Message: "expired"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			verifier := new(MockVerifier)
			tt.setupMock(repo, verifier)

			svc := newTestSessionService(repo, verifier)
			result, err := svc.Login(context.Background(), tt.phone, tt.otp)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.EqualError(t, err, tt.expectedError.Error())
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)
				// login rotates: the new refresh token replaces the old one
				assert.NotEqual(t, "old", result.RefreshToken)
				assert.Equal(t, result.RefreshToken, result.User.RefreshToken)
			}

			repo.AssertExpectations(t)
			verifier.AssertExpectations(t)
		})
	}
}

func TestSessionService_RefreshRotates(t *testing.T) {
	tokens := newTestTokenService()
	stored, err := tokens.GenerateRefreshToken(3)
	assert.NoError(t, err)

	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, uint(3)).Return(&model.User{ID: 3, Role: model.RoleUser, RefreshToken: stored}, nil)
	repo.On("RotateRefreshToken", mock.Anything, uint(3), stored, mock.Anything, mock.Anything).Return(true, nil)

	svc := NewSessionService(repo, tokens, new(MockVerifier), nil, time.Second)
	accessToken, newRefreshToken, err := svc.Refresh(context.Background(), stored)

	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, newRefreshToken)
	assert.NotEqual(t, stored, newRefreshToken)
	repo.AssertExpectations(t)
}

func TestSessionService_RefreshFailures(t *testing.T) {
	tokens := newTestTokenService()

	valid, err := tokens.GenerateRefreshToken(3)
	assert.NoError(t, err)
	superseded, err := tokens.GenerateRefreshToken(3)
	assert.NoError(t, err)

	expiredIssuer := auth.NewTokenService("test-access-secret", "test-refresh-secret", time.Hour, -time.Minute)
	expired, err := expiredIssuer.GenerateRefreshToken(3)
	assert.NoError(t, err)

	tests := []struct {
		name          string
		token         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:          "missing token",
			token:         "",
			setupMock:     func(repo *MockUserRepository) {},
			expectedError: apperrors.ErrMissingRefreshToken,
		},
		{
			name:          "malformed token",
			token:         "garbage",
			setupMock:     func(repo *MockUserRepository) {},
			expectedError: apperrors.ErrInvalidRefreshToken,
		},
		{
			name:          "expired token",
			token:         expired,
			setupMock:     func(repo *MockUserRepository) {},
			expectedError: apperrors.ErrInvalidRefreshToken,
		},
		{
			name:  "user no longer exists",
			token: valid,
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByID", mock.Anything, uint(3)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidRefreshToken,
		},
		{
			name:  "superseded token rejected even though signature is valid",
			token: superseded,
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByID", mock.Anything, uint(3)).Return(&model.User{ID: 3, RefreshToken: valid}, nil)
			},
			expectedError: apperrors.ErrInvalidRefreshToken,
		},
		{
			name:  "lost rotation race rejected",
			token: valid,
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByID", mock.Anything, uint(3)).Return(&model.User{ID: 3, Role: model.RoleUser, RefreshToken: valid}, nil)
				repo.On("RotateRefreshToken", mock.Anything, uint(3), valid, mock.Anything, mock.Anything).Return(false, nil)
			},
			expectedError: apperrors.ErrInvalidRefreshToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)

			svc := NewSessionService(repo, tokens, new(MockVerifier), nil, time.Second)
			accessToken, refreshToken, err := svc.Refresh(context.Background(), tt.token)

			assert.ErrorIs(t, err, tt.expectedError)
			assert.Empty(t, accessToken)
			assert.Empty(t, refreshToken)
			repo.AssertExpectations(t)
		})
	}
}

func TestSessionService_LogoutIsIdempotent(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5}, nil)
	repo.On("ClearRefreshToken", mock.Anything, uint(5)).Return(nil)

	svc := newTestSessionService(repo, new(MockVerifier))

	assert.NoError(t, svc.Logout(context.Background(), 5))
	assert.NoError(t, svc.Logout(context.Background(), 5))
	repo.AssertNumberOfCalls(t, "ClearRefreshToken", 2)
}

func TestSessionService_LogoutUnknownUser(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, uint(6)).Return(nil, gorm.ErrRecordNotFound)

	svc := newTestSessionService(repo, new(MockVerifier))
	assert.ErrorIs(t, svc.Logout(context.Background(), 6), apperrors.ErrUserNotFound)
}
