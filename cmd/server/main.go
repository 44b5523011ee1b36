package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "questforge/docs"
	"questforge/internal/auth"
	"questforge/internal/cache"
	"questforge/internal/config"
	"questforge/internal/db"
	"questforge/internal/handler"
	"questforge/internal/model"
	"questforge/internal/repository"
	"questforge/internal/router"
	"questforge/internal/service"
)

// @title Questforge API
// @version 1.0
// @description Gamified task tracker: quests, experience, levels and achievement badges, with JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.UnlockedAchievement{},
			&model.Achievement{},
			&model.Task{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.Achievement{},
		&model.UnlockedAchievement{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)
	achievementRepo := repository.NewAchievementRepository(gormDB)

	// Seed the achievement catalog (idempotent)
	if err := achievementRepo.SeedCatalog(context.Background(), model.DefaultAchievementCatalog()); err != nil {
		log.Fatalf("seed achievement catalog: %v", err)
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, cacheClient)
	taskService := service.NewTaskService(taskRepo, cacheClient)
	progressionService := service.NewProgressionService(taskRepo, userRepo, achievementRepo, cacheClient)
	statsService := service.NewStatsService(userRepo, taskRepo, achievementRepo, progressionService, cacheClient)
	achievementService := service.NewAchievementService(achievementRepo, progressionService)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	taskHandler := handler.NewTaskHandler(taskService, progressionService)
	statsHandler := handler.NewStatsHandler(statsService)
	achievementHandler := handler.NewAchievementHandler(achievementService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		userHandler,
		taskHandler,
		statsHandler,
		achievementHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
