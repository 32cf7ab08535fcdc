package repository

import (
	"context"
	"errors"

	"constructedge/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Save inserts or updates the task row and replaces its assignee set.
func (r *TaskRepository) Save(ctx context.Context, task *domain.Task) error {
	assigned := task.AssignedEmployees
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(task).Error; err != nil {
		return err
	}
	association := db.Model(task).Association("AssignedEmployees")
	if len(assigned) == 0 {
		if err := association.Clear(); err != nil {
			return err
		}
	} else if err := association.Replace(assigned); err != nil {
		return err
	}
	task.AssignedEmployees = assigned
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Preload("AssignedEmployees").Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, task *domain.Task) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(task).Association("AssignedEmployees").Clear(); err != nil {
		return err
	}
	res := db.Delete(&domain.Task{}, "id = ?", task.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// PruneAssignees drops task assignments in the project for employees not in keep.
func (r *TaskRepository) PruneAssignees(ctx context.Context, projectID string, keep []string) error {
	db := r.db.WithContext(ctx)
	var taskIDs []string
	if err := db.Model(&domain.Task{}).Where("project_id = ?", projectID).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	if len(taskIDs) == 0 {
		return nil
	}
	if len(keep) == 0 {
		return db.Exec("DELETE FROM task_assigned_employees WHERE task_id IN ?", taskIDs).Error
	}
	return db.Exec("DELETE FROM task_assigned_employees WHERE task_id IN ? AND employee_id NOT IN ?", taskIDs, keep).Error
}

func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).Preload("AssignedEmployees").Order("created_at").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).Preload("AssignedEmployees").
		Where("project_id = ?", projectID).Order("created_at").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).Preload("AssignedEmployees").
		Where("status = ?", status).Order("created_at").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	return count[domain.Task](ctx, r.db, "project_id = ?", projectID)
}

func (r *TaskRepository) CountByProjectAndStatus(ctx context.Context, projectID string, status domain.TaskStatus) (int64, error) {
	return count[domain.Task](ctx, r.db, "project_id = ? AND status = ?", projectID, status)
}

func (r *TaskRepository) CountByStatus(ctx context.Context, status domain.TaskStatus) (int64, error) {
	return count[domain.Task](ctx, r.db, "status = ?", status)
}
