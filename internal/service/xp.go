package service

import "questforge/internal/model"

const (
	// DefaultAward is the experience granted for any unrecognized difficulty.
	DefaultAward = 10

	// LevelBandWidth is the experience span of a single level.
	LevelBandWidth = 100
)

// AwardForDifficulty maps a task difficulty to its fixed experience award.
// It is total: anything outside the known set yields DefaultAward. The value
// is frozen into the task at creation time and never recomputed.
func AwardForDifficulty(d model.Difficulty) int {
	switch d {
	case model.DifficultyEasy:
		return 5
	case model.DifficultyMedium:
		return 10
	case model.DifficultyHard:
		return 20
	case model.DifficultyEpic:
		return 50
	default:
		return DefaultAward
	}
}

// LevelForExperience derives the level from cumulative experience. The level
// is always recomputed from the total, never incremented independently, so
// stored counters cannot drift.
func LevelForExperience(experience int) int {
	if experience < 0 {
		experience = 0
	}
	return experience/LevelBandWidth + 1
}

// ExperienceToNextLevel reports how much experience remains until the next
// level. At an exact band boundary (including zero experience) it reports the
// full band width, a property of the modulo formula.
func ExperienceToNextLevel(experience int) int {
	if experience < 0 {
		experience = 0
	}
	return LevelBandWidth - experience%LevelBandWidth
}
