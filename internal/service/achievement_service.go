package service

import (
	"context"

	"gorm.io/gorm"

	apperrors "questforge/internal/errors"
	"questforge/internal/model"
	"questforge/internal/repository"
)

// AchievementView is a catalog entry annotated with the caller's progress.
type AchievementView struct {
	ID            uint                  `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Icon          string                `json:"icon"`
	Type          model.AchievementType `json:"type"`
	RequiredValue int                   `json:"required_value"`
	Unlocked      bool                  `json:"unlocked"`
}

// AchievementService serves the catalog from a user's perspective.
type AchievementService interface {
	ListForUser(ctx context.Context, userID uint) ([]AchievementView, error)
	GetForUser(ctx context.Context, userID, achievementID uint) (*AchievementView, error)
}

type achievementService struct {
	achievementRepo repository.AchievementRepository
	progression     ProgressionService
}

// NewAchievementService creates a new achievement service.
func NewAchievementService(achievementRepo repository.AchievementRepository, progression ProgressionService) AchievementService {
	return &achievementService{
		achievementRepo: achievementRepo,
		progression:     progression,
	}
}

// ListForUser returns the full catalog with the caller's unlocked status.
// Evaluation runs first so a freshly earned badge shows up in the same call.
func (s *achievementService) ListForUser(ctx context.Context, userID uint) ([]AchievementView, error) {
	// Best-effort, same contract as the stats read.
	_ = s.progression.EvaluateAchievements(ctx, userID)

	catalog, err := s.achievementRepo.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.achievementRepo.UnlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]AchievementView, 0, len(catalog))
	for _, a := range catalog {
		views = append(views, AchievementView{
			ID:            a.ID,
			Name:          a.Name,
			Description:   a.Description,
			Icon:          a.Icon,
			Type:          a.Type,
			RequiredValue: a.RequiredValue,
			Unlocked:      unlocked[a.ID],
		})
	}
	return views, nil
}

// GetForUser returns a single catalog entry with the caller's unlocked status.
func (s *achievementService) GetForUser(ctx context.Context, userID, achievementID uint) (*AchievementView, error) {
	achievement, err := s.achievementRepo.FindByID(ctx, achievementID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrAchievementNotFound
		}
		return nil, err
	}

	unlocked, err := s.achievementRepo.UnlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &AchievementView{
		ID:            achievement.ID,
		Name:          achievement.Name,
		Description:   achievement.Description,
		Icon:          achievement.Icon,
		Type:          achievement.Type,
		RequiredValue: achievement.RequiredValue,
		Unlocked:      unlocked[achievement.ID],
	}, nil
}
