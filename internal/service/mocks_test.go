package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"questforge/internal/model"
	"questforge/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
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

func (m *MockUserRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProgress(ctx context.Context, id uint, experience, level int) error {
	args := m.Called(ctx, id, experience, level)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLoginStats(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockTaskRepository is a mock implementation of TaskRepository. Its
// WithTransaction runs the closure against the mock itself and the user
// repository set in txUsers, standing in for a real transaction scope.
type MockTaskRepository struct {
	mock.Mock
	txUsers repository.UserRepository
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) FindByIDAndOwner(ctx context.Context, id, userID uint) (*model.Task, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByIDAndOwnerForUpdate(ctx context.Context, id, userID uint) (*model.Task, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id, userID uint) (int64, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) ListByOwner(ctx context.Context, userID uint, filter repository.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) CountCompleted(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, tasks repository.TaskRepository, users repository.UserRepository) error) error {
	return fn(ctx, m, m.txUsers)
}

// MockAchievementRepository is a mock implementation of AchievementRepository.
type MockAchievementRepository struct {
	mock.Mock
}

func (m *MockAchievementRepository) SeedCatalog(ctx context.Context, achievements []model.Achievement) error {
	args := m.Called(ctx, achievements)
	return args.Error(0)
}

func (m *MockAchievementRepository) ListCatalog(ctx context.Context) ([]model.Achievement, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Achievement), args.Error(1)
}

func (m *MockAchievementRepository) FindByID(ctx context.Context, id uint) (*model.Achievement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Achievement), args.Error(1)
}

func (m *MockAchievementRepository) UnlockedIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]bool), args.Error(1)
}

func (m *MockAchievementRepository) Unlock(ctx context.Context, userID, achievementID uint, at time.Time) (bool, error) {
	args := m.Called(ctx, userID, achievementID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockAchievementRepository) ListUnlocked(ctx context.Context, userID uint) ([]repository.UnlockedDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.UnlockedDetail), args.Error(1)
}

// MockTokenStore is a mock implementation of auth.TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, username string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, username, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, string, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// MockProgressionService is a mock implementation of ProgressionService.
type MockProgressionService struct {
	mock.Mock
}

func (m *MockProgressionService) CompleteTask(ctx context.Context, taskID, userID uint) (*CompletionResult, error) {
	args := m.Called(ctx, taskID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CompletionResult), args.Error(1)
}

func (m *MockProgressionService) EvaluateAchievements(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
