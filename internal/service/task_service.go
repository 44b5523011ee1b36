package service

import (
	"context"

	"gorm.io/gorm"

	"questforge/internal/cache"
	apperrors "questforge/internal/errors"
	"questforge/internal/model"
	"questforge/internal/repository"
)

// CreateTaskInput carries validated fields for task creation.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    model.Priority
	Difficulty  model.Difficulty
}

// UpdateTaskInput carries the mutable fields of a task. Difficulty, the
// frozen award and the completion state are deliberately absent.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *model.Priority
}

// TaskService exposes quest CRUD scoped to the owning user.
type TaskService interface {
	CreateTask(ctx context.Context, userID uint, input CreateTaskInput) (*model.Task, error)
	GetTask(ctx context.Context, taskID, userID uint) (*model.Task, error)
	ListTasks(ctx context.Context, userID uint, filter repository.TaskFilter) ([]model.Task, error)
	UpdateTask(ctx context.Context, taskID, userID uint, input UpdateTaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, taskID, userID uint) error
}

type taskService struct {
	taskRepo repository.TaskRepository
	cache    *cache.Client
}

// NewTaskService creates a new task service.
func NewTaskService(taskRepo repository.TaskRepository, cache *cache.Client) TaskService {
	return &taskService{taskRepo: taskRepo, cache: cache}
}

// CreateTask creates a quest, freezing the experience award from its
// difficulty. Unknown difficulties fall back to the default award but are
// stored as given.
func (s *taskService) CreateTask(ctx context.Context, userID uint, input CreateTaskInput) (*model.Task, error) {
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}
	if input.Difficulty == "" {
		input.Difficulty = model.DifficultyMedium
	}

	task := &model.Task{
		UserID:           userID,
		Title:            input.Title,
		Description:      input.Description,
		Priority:         input.Priority,
		Difficulty:       input.Difficulty,
		ExperiencePoints: AwardForDifficulty(input.Difficulty),
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, taskID, userID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByIDAndOwner(ctx, taskID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context, userID uint, filter repository.TaskFilter) ([]model.Task, error) {
	return s.taskRepo.ListByOwner(ctx, userID, filter)
}

// UpdateTask edits a quest's mutable fields. Completion state, difficulty and
// the frozen award cannot be changed here.
func (s *taskService) UpdateTask(ctx context.Context, taskID, userID uint, input UpdateTaskInput) (*model.Task, error) {
	task, err := s.taskRepo.FindByIDAndOwner(ctx, taskID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes an owned quest. Deleting a completed quest never
// retracts experience or unlocks already awarded.
func (s *taskService) DeleteTask(ctx context.Context, taskID, userID uint) error {
	affected, err := s.taskRepo.Delete(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrTaskNotFound
	}
	_ = s.cache.Delete(ctx, statsCacheKey(userID))
	return nil
}
