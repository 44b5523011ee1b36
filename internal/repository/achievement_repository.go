package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"questforge/internal/model"
)

// UnlockedDetail joins an unlock row with its catalog entry for presentation.
type UnlockedDetail struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// AchievementRepository defines catalog and unlock persistence operations.
type AchievementRepository interface {
	SeedCatalog(ctx context.Context, achievements []model.Achievement) error
	ListCatalog(ctx context.Context) ([]model.Achievement, error)
	FindByID(ctx context.Context, id uint) (*model.Achievement, error)
	UnlockedIDs(ctx context.Context, userID uint) (map[uint]bool, error)
	Unlock(ctx context.Context, userID, achievementID uint, at time.Time) (bool, error)
	ListUnlocked(ctx context.Context, userID uint) ([]UnlockedDetail, error)
}

type achievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository creates a new achievement repository.
func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

// SeedCatalog inserts catalog entries, keeping existing rows untouched so
// seeding can run at every boot.
func (r *achievementRepository) SeedCatalog(ctx context.Context, achievements []model.Achievement) error {
	for i := range achievements {
		if err := r.db.WithContext(ctx).
			Where("name = ?", achievements[i].Name).
			FirstOrCreate(&achievements[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *achievementRepository) ListCatalog(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	if err := r.db.WithContext(ctx).
		Order("type, required_value").
		Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

func (r *achievementRepository) FindByID(ctx context.Context, id uint) (*model.Achievement, error) {
	var achievement model.Achievement
	if err := r.db.WithContext(ctx).First(&achievement, id).Error; err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *achievementRepository) UnlockedIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.UnlockedAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, err
	}
	unlocked := make(map[uint]bool, len(ids))
	for _, id := range ids {
		unlocked[id] = true
	}
	return unlocked, nil
}

// Unlock inserts an unlock row. The composite unique index plus ON CONFLICT
// DO NOTHING makes concurrent and repeated unlocks idempotent; the return
// value reports whether a new row was written.
func (r *achievementRepository) Unlock(ctx context.Context, userID, achievementID uint, at time.Time) (bool, error) {
	row := model.UnlockedAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		UnlockedAt:    at,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *achievementRepository) ListUnlocked(ctx context.Context, userID uint) ([]UnlockedDetail, error) {
	var details []UnlockedDetail
	err := r.db.WithContext(ctx).Model(&model.UnlockedAchievement{}).
		Select("achievements.name, achievements.description, achievements.icon, unlocked_achievements.unlocked_at").
		Joins("JOIN achievements ON achievements.id = unlocked_achievements.achievement_id").
		Where("unlocked_achievements.user_id = ?", userID).
		Order("unlocked_achievements.unlocked_at").
		Scan(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}
