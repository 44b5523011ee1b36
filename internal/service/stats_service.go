package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"questforge/internal/cache"
	apperrors "questforge/internal/errors"
	"questforge/internal/repository"
)

const statsCacheTTL = 30 * time.Second

func statsCacheKey(userID uint) string {
	return fmt.Sprintf("stats:%d", userID)
}

// UnlockedAchievementView is the presentation shape of an unlock.
type UnlockedAchievementView struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// Stats is a read-only snapshot of a user's progression.
type Stats struct {
	Level                 int                       `json:"level"`
	Experience            int                       `json:"experience"`
	StreakDays            int                       `json:"streak_days"`
	ExperienceToNextLevel int                       `json:"experience_to_next_level"`
	CompletedCount        int64                     `json:"completed_count"`
	UnlockedAchievements  []UnlockedAchievementView `json:"unlocked_achievements"`
}

// StatsService assembles progression snapshots.
type StatsService interface {
	ComputeStats(ctx context.Context, userID uint) (*Stats, error)
}

type statsService struct {
	userRepo        repository.UserRepository
	taskRepo        repository.TaskRepository
	achievementRepo repository.AchievementRepository
	progression     ProgressionService
	cache           *cache.Client
}

// NewStatsService creates a new stats service.
func NewStatsService(
	userRepo repository.UserRepository,
	taskRepo repository.TaskRepository,
	achievementRepo repository.AchievementRepository,
	progression ProgressionService,
	cache *cache.Client,
) StatsService {
	return &statsService{
		userRepo:        userRepo,
		taskRepo:        taskRepo,
		achievementRepo: achievementRepo,
		progression:     progression,
		cache:           cache,
	}
}

// ComputeStats returns the user's progression snapshot. Due-but-unprocessed
// unlocks are evaluated before assembling, so they appear in this same
// response. A cache hit skips evaluation; the snapshot then lags by at most
// the cache TTL.
func (s *statsService) ComputeStats(ctx context.Context, userID uint) (*Stats, error) {
	if data, _ := s.cache.Get(ctx, statsCacheKey(userID)); data != nil {
		var cached Stats
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	// Best-effort: a failed evaluation must not fail the read.
	_ = s.progression.EvaluateAchievements(ctx, userID)

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	completedCount, err := s.taskRepo.CountCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.achievementRepo.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]UnlockedAchievementView, 0, len(unlocked))
	for _, u := range unlocked {
		views = append(views, UnlockedAchievementView{
			Name:        u.Name,
			Description: u.Description,
			Icon:        u.Icon,
			UnlockedAt:  u.UnlockedAt,
		})
	}

	stats := &Stats{
		Level:                 LevelForExperience(user.Experience),
		Experience:            user.Experience,
		StreakDays:            user.StreakDays,
		ExperienceToNextLevel: ExperienceToNextLevel(user.Experience),
		CompletedCount:        completedCount,
		UnlockedAchievements:  views,
	}

	if payload, err := json.Marshal(stats); err == nil {
		_ = s.cache.Set(ctx, statsCacheKey(userID), payload, statsCacheTTL)
	}

	return stats, nil
}
