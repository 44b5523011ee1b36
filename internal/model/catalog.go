package model

// DefaultAchievementCatalog is the fixed set of unlockable achievements,
// seeded once at boot and by the seed command.
func DefaultAchievementCatalog() []Achievement {
	return []Achievement{
		{Name: "First Quest", Description: "Complete your first task", Icon: "✅", Type: AchievementTypeTasksCompleted, RequiredValue: 1},
		{Name: "Task Apprentice", Description: "Complete 10 tasks", Icon: "📋", Type: AchievementTypeTasksCompleted, RequiredValue: 10},
		{Name: "Task Master", Description: "Complete 50 tasks", Icon: "🏆", Type: AchievementTypeTasksCompleted, RequiredValue: 50},
		{Name: "Week Warrior", Description: "Keep a 7-day streak", Icon: "🔥", Type: AchievementTypeStreak, RequiredValue: 7},
		{Name: "Monthly Legend", Description: "Keep a 30-day streak", Icon: "🌟", Type: AchievementTypeStreak, RequiredValue: 30},
		{Name: "Level 5 Hero", Description: "Reach level 5", Icon: "⭐", Type: AchievementTypeLevel, RequiredValue: 5},
		{Name: "Level 10 Champion", Description: "Reach level 10", Icon: "👑", Type: AchievementTypeLevel, RequiredValue: 10},
	}
}
