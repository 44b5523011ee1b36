package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"questforge/internal/auth"
	"questforge/internal/model"
)

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			username: "newplayer",
			email:    "new@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "newplayer").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "username already taken",
			username: "taken",
			email:    "fresh@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "taken").Return(&model.User{Username: "taken"}, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
		{
			name:     "email already taken",
			username: "fresh",
			email:    "taken@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "fresh").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{Email: "taken@example.com"}, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret")
			mockTokenStore := new(MockTokenStore)

			service := NewAuthService(mockRepo, jwtService, mockTokenStore)
			user, err := service.Register(context.Background(), tt.username, tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.username, user.Username)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEmpty(t, user.PasswordHash)
				assert.Equal(t, 1, user.Level)
				assert.Equal(t, 0, user.Experience)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			username: "player",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)
				mRepo.On("FindByUsername", mock.Anything, "player").Return(&model.User{
					ID:           5,
					Username:     "player",
					PasswordHash: string(hashedPassword),
				}, nil)
				mRepo.On("UpdateLoginStats", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, uint(5), "player", mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown username",
			username: "ghost",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			username: "player",
			password: "wrong",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)
				mRepo.On("FindByUsername", mock.Anything, "player").Return(&model.User{
					ID:           5,
					Username:     "player",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(mockRepo, jwtService, mockTokenStore)

			accessToken, refreshToken, user, err := service.Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				assert.NotNil(t, user)
				assert.NotNil(t, user.LastLogin)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestNextStreak(t *testing.T) {
	day := func(d int, hour int) time.Time {
		return time.Date(2024, time.March, d, hour, 0, 0, 0, time.Local)
	}

	tests := []struct {
		name      string
		lastLogin *time.Time
		current   int
		now       time.Time
		expected  int
	}{
		{"first ever login", nil, 0, day(10, 9), 1},
		{"consecutive day extends", ptrTime(day(9, 23)), 3, day(10, 1), 4},
		{"same day keeps streak", ptrTime(day(10, 8)), 3, day(10, 22), 3},
		{"same day with zero streak floors at one", ptrTime(day(10, 8)), 0, day(10, 9), 1},
		{"two day gap resets", ptrTime(day(7, 12)), 9, day(10, 12), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, nextStreak(tt.lastLogin, tt.current, tt.now))
		})
	}
}

func TestNextStreak_AcrossDSTTransitions(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)

	tests := []struct {
		name      string
		lastLogin time.Time
		current   int
		now       time.Time
		expected  int
	}{
		{
			// Spring forward 2024-03-10: noon to noon is only 23 hours.
			"consecutive days across spring forward",
			time.Date(2024, time.March, 9, 12, 0, 0, 0, ny), 4,
			time.Date(2024, time.March, 10, 12, 0, 0, 0, ny), 5,
		},
		{
			// Fall back 2024-11-03: noon to noon is 25 hours.
			"consecutive days across fall back",
			time.Date(2024, time.November, 2, 12, 0, 0, 0, ny), 4,
			time.Date(2024, time.November, 3, 12, 0, 0, 0, ny), 5,
		},
		{
			"same day across fall back keeps streak",
			time.Date(2024, time.November, 3, 0, 30, 0, 0, ny), 4,
			time.Date(2024, time.November, 3, 23, 30, 0, 0, ny), 4,
		},
		{
			"gap across spring forward still resets",
			time.Date(2024, time.March, 8, 12, 0, 0, 0, ny), 4,
			time.Date(2024, time.March, 10, 12, 0, 0, 0, ny), 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, nextStreak(ptrTime(tt.lastLogin), tt.current, tt.now))
		})
	}
}

func TestAuthService_Login_ExtendsStreak(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)
	yesterday := time.Date(2024, time.March, 9, 20, 0, 0, 0, time.Local)
	user := &model.User{
		ID:           5,
		Username:     "player",
		PasswordHash: string(hashedPassword),
		StreakDays:   6,
		LastLogin:    &yesterday,
	}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "player").Return(user, nil)
	mockRepo.On("UpdateLoginStats", mock.Anything, user).Return(nil)

	mockTokenStore := new(MockTokenStore)
	mockTokenStore.On("StoreRefreshToken", mock.Anything, mock.Anything, uint(5), "player", mock.Anything).Return(nil)

	service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), mockTokenStore).(*authService)
	service.now = func() time.Time {
		return time.Date(2024, time.March, 10, 8, 0, 0, 0, time.Local)
	}

	_, _, loggedIn, err := service.Login(context.Background(), "player", "password123")

	assert.NoError(t, err)
	assert.Equal(t, 7, loggedIn.StreakDays)
	mockRepo.AssertExpectations(t)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
