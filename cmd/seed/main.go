package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"questforge/internal/config"
	"questforge/internal/db"
	"questforge/internal/model"
	"questforge/internal/repository"
	"questforge/internal/service"
)

// Seeds the achievement catalog and a demo user with a few quests. Safe to
// run repeatedly: existing rows are left untouched.
func main() {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.Achievement{},
		&model.UnlockedAchievement{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	ctx := context.Background()

	achievementRepo := repository.NewAchievementRepository(gormDB)
	if err := achievementRepo.SeedCatalog(ctx, model.DefaultAchievementCatalog()); err != nil {
		log.Fatalf("seed achievement catalog: %v", err)
	}
	log.Println("achievement catalog seeded")

	userRepo := repository.NewUserRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)

	if _, err := userRepo.FindByUsername(ctx, "demo"); err == nil {
		log.Println("demo user already present, nothing to do")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), 10)
	if err != nil {
		log.Fatalf("hash demo password: %v", err)
	}

	demo := &model.User{
		Username:     "demo",
		Email:        "demo@example.com",
		PasswordHash: string(hash),
		Level:        1,
	}
	if err := userRepo.Create(ctx, demo); err != nil {
		log.Fatalf("create demo user: %v", err)
	}

	tasks := []model.Task{
		{Title: "Slay the inbox", Description: "Reach inbox zero", Priority: model.PriorityHigh, Difficulty: model.DifficultyHard},
		{Title: "Water the plants", Priority: model.PriorityLow, Difficulty: model.DifficultyEasy},
		{Title: "Ship the release", Description: "Cut and publish v1", Priority: model.PriorityCritical, Difficulty: model.DifficultyEpic},
		{Title: "Plan the week", Priority: model.PriorityMedium, Difficulty: model.DifficultyMedium},
	}
	for i := range tasks {
		tasks[i].UserID = demo.ID
		tasks[i].ExperiencePoints = service.AwardForDifficulty(tasks[i].Difficulty)
		if err := taskRepo.Create(ctx, &tasks[i]); err != nil {
			log.Fatalf("create demo task %q: %v", tasks[i].Title, err)
		}
	}

	log.Printf("demo user seeded with %d quests", len(tasks))
}
