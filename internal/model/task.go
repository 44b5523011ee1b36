package model

import "time"

// Priority represents how urgent a task is.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Difficulty represents how hard a task is. It determines the experience
// award, which is frozen into ExperiencePoints at creation time.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyEpic   Difficulty = "epic"
)

// Task represents a quest owned by a single user.
type Task struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	UserID           uint       `json:"user_id" gorm:"not null;index"`
	Title            string     `json:"title" gorm:"size:255;not null"`
	Description      string     `json:"description,omitempty" gorm:"type:text"`
	Priority         Priority   `json:"priority" gorm:"type:varchar(20);not null;default:'medium'"`
	Difficulty       Difficulty `json:"difficulty" gorm:"type:varchar(20);not null;default:'medium'"`
	ExperiencePoints int        `json:"experience_points" gorm:"not null"`
	Completed        bool       `json:"completed" gorm:"not null;default:false;index"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
