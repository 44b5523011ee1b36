package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"questforge/internal/model"
)

// TaskFilter narrows task listings.
type TaskFilter struct {
	Completed *bool
	Priority  *model.Priority
}

// TaskRepository defines task persistence operations. All lookups are scoped
// to the owning user so a foreign task id behaves exactly like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByIDAndOwner(ctx context.Context, id, userID uint) (*model.Task, error)
	FindByIDAndOwnerForUpdate(ctx context.Context, id, userID uint) (*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id, userID uint) (int64, error)
	ListByOwner(ctx context.Context, userID uint, filter TaskFilter) ([]model.Task, error)
	CountCompleted(ctx context.Context, userID uint) (int64, error)
	// WithTransaction runs fn with task and user repositories bound to one
	// database transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tasks TaskRepository, users UserRepository) error) error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByIDAndOwner(ctx context.Context, id, userID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDAndOwnerForUpdate finds an owned task with a FOR UPDATE row lock.
func (r *taskRepository) FindByIDAndOwnerForUpdate(ctx context.Context, id, userID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete removes an owned task and reports how many rows were affected.
func (r *taskRepository) Delete(ctx context.Context, id, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Task{})
	return res.RowsAffected, res.Error
}

func (r *taskRepository) ListByOwner(ctx context.Context, userID uint, filter TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if filter.Priority != nil {
		q = q.Where("priority = ?", *filter.Priority)
	}
	var tasks []model.Task
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) CountCompleted(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return count, err
}

// WithTransaction executes fn within a database transaction.
func (r *taskRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, tasks TaskRepository, users UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &taskRepository{db: tx}, &userRepository{db: tx})
	})
}
