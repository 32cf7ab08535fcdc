package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"constructedge/internal/domain"
	"constructedge/internal/lock"
	"constructedge/internal/repository"
	"constructedge/pkg/logger"

	"go.uber.org/zap"
)

type TaskInput struct {
	Title       string `validate:"required"`
	Description string `validate:"max=500"`
	ProjectID   string `validate:"required"`
	// Status defaults to TODO when empty.
	Status      domain.TaskStatus
	Priority    string `validate:"required"`
	DueDate     *time.Time
	EmployeeIDs []string
}

func (in *TaskInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Priority = strings.TrimSpace(in.Priority)
	in.EmployeeIDs = uniqueIDs(in.EmployeeIDs)
	if in.Status == "" {
		in.Status = domain.TaskTodo
	}
	in.Status = domain.TaskStatus(strings.ToUpper(string(in.Status)))
	if err := validateInput(in); err != nil {
		return err
	}
	if !in.Status.Valid() {
		return validationError("unknown task status %q", in.Status)
	}
	return nil
}

// TaskService mutates tasks and keeps every affected project's derived
// progress in step within the same transaction.
type TaskService struct {
	store  *repository.Store
	locker lock.Locker
}

func NewTaskService(store *repository.Store, locker lock.Locker) *TaskService {
	return &TaskService{store: store, locker: locker}
}

func (s *TaskService) CreateTask(ctx context.Context, in TaskInput) (*domain.Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	defer release()

	task := &domain.Task{}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		project, err := tx.Projects.FindForUpdate(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		assignees, err := resolveAssignees(ctx, tx, project, in.EmployeeIDs)
		if err != nil {
			return err
		}
		applyTaskInput(task, in, assignees)
		if err := tx.Tasks.Save(ctx, task); err != nil {
			return err
		}
		_, err = reconcile(ctx, tx, project.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Task created",
		zap.String("task_id", task.ID),
		zap.String("project_id", task.ProjectID),
		zap.String("status", string(task.Status)),
	)
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, in TaskInput) (*domain.Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var task *domain.Task
	err := s.withTaskLocks(ctx, id, in.ProjectID, func(tx *repository.Store, current *domain.Task) error {
		project, err := tx.Projects.FindForUpdate(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		assignees, err := resolveAssignees(ctx, tx, project, in.EmployeeIDs)
		if err != nil {
			return err
		}

		previous := current.ProjectID
		applyTaskInput(current, in, assignees)
		if err := tx.Tasks.Save(ctx, current); err != nil {
			return err
		}
		if _, err := reconcile(ctx, tx, current.ProjectID); err != nil {
			return err
		}
		if previous != current.ProjectID {
			if _, err := reconcile(ctx, tx, previous); err != nil {
				return err
			}
		}
		task = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Task updated",
		zap.String("task_id", task.ID),
		zap.String("project_id", task.ProjectID),
		zap.String("status", string(task.Status)),
	)
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	err := s.withTaskLocks(ctx, id, "", func(tx *repository.Store, current *domain.Task) error {
		if _, err := tx.Projects.FindForUpdate(ctx, current.ProjectID); err != nil {
			return err
		}
		if err := tx.Tasks.Delete(ctx, current); err != nil {
			return err
		}
		_, err := reconcile(ctx, tx, current.ProjectID)
		return err
	})
	if err != nil {
		return err
	}
	logger.Logger.Info("Task deleted", zap.String("task_id", id))
	return nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.store.Tasks.FindByID(ctx, id)
}

func (s *TaskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.store.Tasks.List(ctx)
}

func (s *TaskService) TasksByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	exists, err := s.store.Projects.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrProjectNotFound
	}
	return s.store.Tasks.ListByProject(ctx, projectID)
}

const maxLockAttempts = 3

var errTaskMoved = errors.New("task moved while waiting for lock")

// withTaskLocks locks the task's current project (plus target, if given)
// and runs fn in a transaction with a fresh copy of the task. If the task
// moved to another project while we waited, the locks are retaken.
func (s *TaskService) withTaskLocks(ctx context.Context, id, target string, fn func(tx *repository.Store, current *domain.Task) error) error {
	for attempt := 0; attempt < maxLockAttempts; attempt++ {
		task, err := s.store.Tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}
		locked := task.ProjectID

		release, err := s.locker.Acquire(ctx, locked, target)
		if err != nil {
			return err
		}
		err = s.store.Transaction(ctx, func(tx *repository.Store) error {
			current, err := tx.Tasks.FindByID(ctx, id)
			if err != nil {
				return err
			}
			if current.ProjectID != locked {
				return errTaskMoved
			}
			return fn(tx, current)
		})
		release()
		if errors.Is(err, errTaskMoved) {
			continue
		}
		return err
	}
	return fmt.Errorf("task %s: %w", id, errTaskMoved)
}

// resolveAssignees loads ids and requires each to be a member of project.
// Unknown ids are reported as both not found and not allowed.
func resolveAssignees(ctx context.Context, tx *repository.Store, project *domain.Project, ids []string) ([]domain.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	employees, err := tx.Employees.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[string]domain.Employee, len(employees))
	for _, e := range employees {
		found[e.ID] = e
	}

	out := make([]domain.Employee, 0, len(ids))
	for _, id := range ids {
		e, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("%w (%w): employee %s", domain.ErrAssignmentNotAllowed, domain.ErrEmployeeNotFound, id)
		}
		if !project.HasEmployee(id) {
			return nil, fmt.Errorf("%w: employee %s is not part of project %s", domain.ErrAssignmentNotAllowed, id, project.ID)
		}
		out = append(out, e)
	}
	return out, nil
}

func applyTaskInput(task *domain.Task, in TaskInput, assignees []domain.Employee) {
	task.Title = in.Title
	task.Description = in.Description
	task.ProjectID = in.ProjectID
	task.Status = in.Status
	task.Priority = in.Priority
	task.DueDate = in.DueDate
	task.AssignedEmployees = assignees
}
