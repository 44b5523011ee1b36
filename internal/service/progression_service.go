package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"gorm.io/gorm"

	"questforge/internal/cache"
	apperrors "questforge/internal/errors"
	"questforge/internal/model"
	"questforge/internal/repository"
)

const catalogCacheKey = "achievements:catalog"
const catalogCacheTTL = 10 * time.Minute

// CompletionResult is the outcome of completing a task.
type CompletionResult struct {
	ExperienceGained int  `json:"experience_gained"`
	NewExperience    int  `json:"new_experience"`
	LevelUp          bool `json:"level_up"`
}

// ProgressionService converts task completions into experience, level
// transitions and achievement unlocks.
type ProgressionService interface {
	CompleteTask(ctx context.Context, taskID, userID uint) (*CompletionResult, error)
	EvaluateAchievements(ctx context.Context, userID uint) error
}

type progressionService struct {
	taskRepo        repository.TaskRepository
	userRepo        repository.UserRepository
	achievementRepo repository.AchievementRepository
	cache           *cache.Client
}

// NewProgressionService creates a new progression service.
func NewProgressionService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	achievementRepo repository.AchievementRepository,
	cache *cache.Client,
) ProgressionService {
	return &progressionService{
		taskRepo:        taskRepo,
		userRepo:        userRepo,
		achievementRepo: achievementRepo,
		cache:           cache,
	}
}

// CompleteTask marks an owned, uncompleted task as done and awards its frozen
// experience, all within one transaction. A foreign task id fails exactly
// like a missing one.
func (s *progressionService) CompleteTask(ctx context.Context, taskID, userID uint) (*CompletionResult, error) {
	var result CompletionResult

	err := s.taskRepo.WithTransaction(ctx, func(ctx context.Context, tasks repository.TaskRepository, users repository.UserRepository) error {
		task, err := tasks.FindByIDAndOwnerForUpdate(ctx, taskID, userID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrTaskNotFound
			}
			return err
		}

		if task.Completed {
			return apperrors.ErrTaskAlreadyCompleted
		}

		now := time.Now()
		task.Completed = true
		task.CompletedAt = &now
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}

		user, err := users.FindByIDForUpdate(ctx, userID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrUserNotFound
			}
			return err
		}

		// levelUp is derived from values captured under the row lock, before
		// any write, never from a re-fetched row.
		oldExperience := user.Experience
		newExperience := oldExperience + task.ExperiencePoints
		newLevel := LevelForExperience(newExperience)

		if err := users.UpdateProgress(ctx, userID, newExperience, newLevel); err != nil {
			return err
		}

		result = CompletionResult{
			ExperienceGained: task.ExperiencePoints,
			NewExperience:    newExperience,
			LevelUp:          newLevel > LevelForExperience(oldExperience),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Achievements are best-effort enrichment; a failed evaluation never
	// fails the completion that triggered it.
	if err := s.EvaluateAchievements(ctx, userID); err != nil {
		log.Printf("achievement evaluation after completion failed for user %d: %v", userID, err)
	}

	_ = s.cache.Delete(ctx, statsCacheKey(userID))
	_ = s.cache.Delete(ctx, userCacheKey(userID))

	return &result, nil
}

// EvaluateAchievements unlocks every catalog entry the user qualifies for and
// does not yet hold. Safe to re-run with unchanged signals: the second pass
// unlocks nothing.
func (s *progressionService) EvaluateAchievements(ctx context.Context, userID uint) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrUserNotFound
		}
		return err
	}

	completedCount, err := s.taskRepo.CountCompleted(ctx, userID)
	if err != nil {
		return err
	}

	catalog, err := s.catalog(ctx)
	if err != nil {
		return err
	}

	unlocked, err := s.achievementRepo.UnlockedIDs(ctx, userID)
	if err != nil {
		return err
	}

	signals := map[model.AchievementType]int{
		model.AchievementTypeTasksCompleted: int(completedCount),
		model.AchievementTypeStreak:         user.StreakDays,
		model.AchievementTypeLevel:          LevelForExperience(user.Experience),
	}

	now := time.Now()
	newlyUnlocked := false
	for _, achievement := range catalog {
		if unlocked[achievement.ID] {
			continue
		}
		signal, ok := signals[achievement.Type]
		if !ok {
			continue
		}
		// Threshold check is >=, not ==: signals may jump past thresholds.
		if signal < achievement.RequiredValue {
			continue
		}
		created, err := s.achievementRepo.Unlock(ctx, userID, achievement.ID, now)
		if err != nil {
			return err
		}
		if created {
			newlyUnlocked = true
		}
	}

	if newlyUnlocked {
		_ = s.cache.Delete(ctx, statsCacheKey(userID))
	}
	return nil
}

// catalog reads the achievement catalog through the cache. The catalog is
// immutable seed data, so a stale entry cannot occur.
func (s *progressionService) catalog(ctx context.Context) ([]model.Achievement, error) {
	if data, _ := s.cache.Get(ctx, catalogCacheKey); data != nil {
		var cached []model.Achievement
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	catalog, err := s.achievementRepo.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(catalog); err == nil {
		_ = s.cache.Set(ctx, catalogCacheKey, payload, catalogCacheTTL)
	}
	return catalog, nil
}
