package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "questforge/internal/errors"
	"questforge/internal/model"
)

func expectEvaluateNoop(taskRepo *MockTaskRepository, userRepo *MockUserRepository, achievementRepo *MockAchievementRepository, user *model.User, completed int64) {
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	taskRepo.On("CountCompleted", mock.Anything, user.ID).Return(completed, nil)
	achievementRepo.On("ListCatalog", mock.Anything).Return([]model.Achievement{}, nil)
	achievementRepo.On("UnlockedIDs", mock.Anything, user.ID).Return(map[uint]bool{}, nil)
}

func TestProgressionService_CompleteTask(t *testing.T) {
	const userID = uint(7)

	// The running scenario from a fresh user: epic, hard, medium, hard.
	// The fourth completion crosses the 100 XP boundary and levels up.
	steps := []struct {
		name            string
		oldExperience   int
		award           int
		difficulty      model.Difficulty
		expectedNewExp  int
		expectedLevel   int
		expectedLevelUp bool
	}{
		{"epic task from zero", 0, 50, model.DifficultyEpic, 50, 1, false},
		{"hard task at 50", 50, 20, model.DifficultyHard, 70, 1, false},
		{"medium task at 70", 70, 10, model.DifficultyMedium, 80, 1, false},
		{"hard task at 80 levels up", 80, 20, model.DifficultyHard, 100, 2, true},
	}

	for i, tt := range steps {
		t.Run(tt.name, func(t *testing.T) {
			taskID := uint(i + 1)
			task := &model.Task{
				ID:               taskID,
				UserID:           userID,
				Title:            "quest",
				Difficulty:       tt.difficulty,
				ExperiencePoints: tt.award,
			}
			user := &model.User{ID: userID, Experience: tt.oldExperience, Level: LevelForExperience(tt.oldExperience)}

			taskRepo := new(MockTaskRepository)
			userRepo := new(MockUserRepository)
			achievementRepo := new(MockAchievementRepository)
			taskRepo.txUsers = userRepo

			taskRepo.On("FindByIDAndOwnerForUpdate", mock.Anything, taskID, userID).Return(task, nil)
			taskRepo.On("Update", mock.Anything, task).Return(nil)
			userRepo.On("FindByIDForUpdate", mock.Anything, userID).Return(user, nil)
			userRepo.On("UpdateProgress", mock.Anything, userID, tt.expectedNewExp, tt.expectedLevel).Return(nil)

			evaluated := &model.User{ID: userID, Experience: tt.expectedNewExp, Level: tt.expectedLevel}
			expectEvaluateNoop(taskRepo, userRepo, achievementRepo, evaluated, int64(i+1))

			svc := NewProgressionService(taskRepo, userRepo, achievementRepo, nil)
			result, err := svc.CompleteTask(context.Background(), taskID, userID)

			assert.NoError(t, err)
			assert.Equal(t, tt.award, result.ExperienceGained)
			assert.Equal(t, tt.expectedNewExp, result.NewExperience)
			assert.Equal(t, tt.expectedLevelUp, result.LevelUp)
			assert.True(t, task.Completed)
			assert.NotNil(t, task.CompletedAt)

			taskRepo.AssertExpectations(t)
			userRepo.AssertExpectations(t)
		})
	}
}

func TestProgressionService_CompleteTask_EvaluationFailureIsLoggedNotFatal(t *testing.T) {
	const userID = uint(7)
	task := &model.Task{ID: 1, UserID: userID, ExperiencePoints: 10}
	user := &model.User{ID: userID, Experience: 0, Level: 1}

	taskRepo := new(MockTaskRepository)
	userRepo := new(MockUserRepository)
	achievementRepo := new(MockAchievementRepository)
	taskRepo.txUsers = userRepo

	taskRepo.On("FindByIDAndOwnerForUpdate", mock.Anything, uint(1), userID).Return(task, nil)
	taskRepo.On("Update", mock.Anything, task).Return(nil)
	userRepo.On("FindByIDForUpdate", mock.Anything, userID).Return(user, nil)
	userRepo.On("UpdateProgress", mock.Anything, userID, 10, 1).Return(nil)

	// Evaluation blows up after the completion transaction committed.
	userRepo.On("FindByID", mock.Anything, userID).Return(nil, errors.New("connection refused"))

	var logs bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&logs)
	defer log.SetOutput(prev)

	svc := NewProgressionService(taskRepo, userRepo, achievementRepo, nil)
	result, err := svc.CompleteTask(context.Background(), 1, userID)

	assert.NoError(t, err)
	assert.Equal(t, 10, result.NewExperience)
	assert.Contains(t, logs.String(), "achievement evaluation")
}

func TestProgressionService_CompleteTask_AlreadyCompleted(t *testing.T) {
	const userID = uint(7)
	task := &model.Task{ID: 1, UserID: userID, Completed: true, ExperiencePoints: 20}

	taskRepo := new(MockTaskRepository)
	userRepo := new(MockUserRepository)
	achievementRepo := new(MockAchievementRepository)
	taskRepo.txUsers = userRepo

	taskRepo.On("FindByIDAndOwnerForUpdate", mock.Anything, uint(1), userID).Return(task, nil)

	svc := NewProgressionService(taskRepo, userRepo, achievementRepo, nil)
	result, err := svc.CompleteTask(context.Background(), 1, userID)

	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrTaskAlreadyCompleted, err)
	taskRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	userRepo.AssertNotCalled(t, "UpdateProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProgressionService_CompleteTask_NotFound(t *testing.T) {
	const userID = uint(7)

	taskRepo := new(MockTaskRepository)
	userRepo := new(MockUserRepository)
	achievementRepo := new(MockAchievementRepository)
	taskRepo.txUsers = userRepo

	// A foreign-owned task surfaces exactly like a missing one.
	taskRepo.On("FindByIDAndOwnerForUpdate", mock.Anything, uint(42), userID).Return(nil, gorm.ErrRecordNotFound)

	svc := NewProgressionService(taskRepo, userRepo, achievementRepo, nil)
	result, err := svc.CompleteTask(context.Background(), 42, userID)

	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrTaskNotFound, err)
	taskRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	userRepo.AssertNotCalled(t, "UpdateProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func testCatalog() []model.Achievement {
	return []model.Achievement{
		{ID: 1, Name: "First Quest", Type: model.AchievementTypeTasksCompleted, RequiredValue: 1},
		{ID: 2, Name: "Task Apprentice", Type: model.AchievementTypeTasksCompleted, RequiredValue: 10},
		{ID: 3, Name: "Task Master", Type: model.AchievementTypeTasksCompleted, RequiredValue: 50},
		{ID: 4, Name: "Week Warrior", Type: model.AchievementTypeStreak, RequiredValue: 7},
		{ID: 5, Name: "Level 5 Hero", Type: model.AchievementTypeLevel, RequiredValue: 5},
	}
}

func TestProgressionService_EvaluateAchievements_ThresholdJump(t *testing.T) {
	const userID = uint(3)
	user := &model.User{ID: userID, Experience: 120, StreakDays: 0}

	taskRepo := new(MockTaskRepository)
	userRepo := new(MockUserRepository)
	achievementRepo := new(MockAchievementRepository)

	userRepo.On("FindByID", mock.Anything, userID).Return(user, nil)
	// Jumped straight from 0 to 12 completed tasks.
	taskRepo.On("CountCompleted", mock.Anything, userID).Return(int64(12), nil)
	achievementRepo.On("ListCatalog", mock.Anything).Return(testCatalog(), nil)
	achievementRepo.On("UnlockedIDs", mock.Anything, userID).Return(map[uint]bool{}, nil)
	achievementRepo.On("Unlock", mock.Anything, userID, uint(1), mock.AnythingOfType("time.Time")).Return(true, nil)
	achievementRepo.On("Unlock", mock.Anything, userID, uint(2), mock.AnythingOfType("time.Time")).Return(true, nil)

	svc := NewProgressionService(taskRepo, userRepo, achievementRepo, nil)
	err := svc.EvaluateAchievements(context.Background(), userID)

	assert.NoError(t, err)
	// Both the 1-task and the 10-task thresholds unlock in one pass, nothing else.
	achievementRepo.AssertExpectations(t)
	achievementRepo.AssertNotCalled(t, "Unlock", mock.Anything, userID, uint(3), mock.Anything)
	achievementRepo.AssertNotCalled(t, "Unlock", mock.Anything, userID, uint(4), mock.Anything)
	achievementRepo.AssertNotCalled(t, "Unlock", mock.Anything, userID, uint(5), mock.Anything)
}

func TestProgressionService_EvaluateAchievements_Idempotent(t *testing.T) {
	const userID = uint(3)
	user := &model.User{ID: userID, Experience: 120, StreakDays: 0}

	taskRepo := new(MockTaskRepository)
	userRepo := new(MockUserRepository)
	achievementRepo := new(MockAchievementRepository)

	userRepo.On("FindByID", mock.Anything, userID).Return(user, nil)
	taskRepo.On("CountCompleted", mock.Anything, userID).Return(int64(12), nil)
	achievementRepo.On("ListCatalog", mock.Anything).Return(testCatalog(), nil)
	// Second run with unchanged signals: previous pass already unlocked 1 and 2.
	achievementRepo.On("UnlockedIDs", mock.Anything, userID).Return(map[uint]bool{1: true, 2: true}, nil)

	svc := NewProgressionService(taskRepo, userRepo, achievementRepo, nil)
	err := svc.EvaluateAchievements(context.Background(), userID)

	assert.NoError(t, err)
	achievementRepo.AssertNotCalled(t, "Unlock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProgressionService_EvaluateAchievements_StreakAndLevel(t *testing.T) {
	const userID = uint(9)
	// Level 5 (experience 430) with a 7-day streak.
	user := &model.User{ID: userID, Experience: 430, StreakDays: 7}

	taskRepo := new(MockTaskRepository)
	userRepo := new(MockUserRepository)
	achievementRepo := new(MockAchievementRepository)

	userRepo.On("FindByID", mock.Anything, userID).Return(user, nil)
	taskRepo.On("CountCompleted", mock.Anything, userID).Return(int64(0), nil)
	achievementRepo.On("ListCatalog", mock.Anything).Return(testCatalog(), nil)
	achievementRepo.On("UnlockedIDs", mock.Anything, userID).Return(map[uint]bool{}, nil)
	achievementRepo.On("Unlock", mock.Anything, userID, uint(4), mock.AnythingOfType("time.Time")).Return(true, nil)
	achievementRepo.On("Unlock", mock.Anything, userID, uint(5), mock.AnythingOfType("time.Time")).Return(true, nil)

	svc := NewProgressionService(taskRepo, userRepo, achievementRepo, nil)
	err := svc.EvaluateAchievements(context.Background(), userID)

	assert.NoError(t, err)
	achievementRepo.AssertExpectations(t)
	achievementRepo.AssertNotCalled(t, "Unlock", mock.Anything, userID, uint(1), mock.Anything)
}
