package model

import "time"

// AchievementType represents the progression signal an achievement watches.
type AchievementType string

const (
	AchievementTypeTasksCompleted AchievementType = "tasks_completed"
	AchievementTypeStreak         AchievementType = "streak"
	AchievementTypeLevel          AchievementType = "level"
)

// Achievement is an immutable catalog entry describing an unlockable badge.
type Achievement struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Name          string          `json:"name" gorm:"uniqueIndex;size:255;not null"`
	Description   string          `json:"description" gorm:"size:255;not null"`
	Icon          string          `json:"icon" gorm:"size:32;not null"`
	Type          AchievementType `json:"type" gorm:"type:varchar(32);not null;index"`
	RequiredValue int             `json:"required_value" gorm:"not null"`
	CreatedAt     time.Time       `json:"created_at"`
}

// UnlockedAchievement records that a user earned an achievement. At most one
// row may exist per (user, achievement) pair; unlocking is append-only.
type UnlockedAchievement struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	AchievementID uint      `json:"achievement_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	UnlockedAt    time.Time `json:"unlocked_at" gorm:"not null"`

	// Relations
	User        User        `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Achievement Achievement `json:"-" gorm:"foreignKey:AchievementID"`
}
