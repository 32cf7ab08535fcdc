package service

import (
	"context"
	"errors"

	"constructedge/internal/domain"
	"constructedge/internal/lock"
	"constructedge/internal/repository"
	"constructedge/pkg/logger"

	"go.uber.org/zap"
)

// reconcile recomputes a project's progress and status from its current
// task rows. The caller holds the project lock and runs inside tx.
func reconcile(ctx context.Context, tx *repository.Store, projectID string) (*domain.Project, error) {
	exists, err := tx.Projects.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrProjectNotFound
	}

	total, err := tx.Tasks.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	completed, err := tx.Tasks.CountByProjectAndStatus(ctx, projectID, domain.TaskCompleted)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{ID: projectID}
	project.ApplyTaskCounts(total, completed)
	if err := tx.Projects.SaveProgress(ctx, projectID, project.Progress, project.Status); err != nil {
		return nil, err
	}
	return project, nil
}

type ProjectProgress struct {
	ProjectID string
	Progress  int
	Status    domain.ProjectStatus
}

// Reconciler recomputes derived project state outside of task mutations.
type Reconciler struct {
	store  *repository.Store
	locker lock.Locker
}

func NewReconciler(store *repository.Store, locker lock.Locker) *Reconciler {
	return &Reconciler{store: store, locker: locker}
}

func (r *Reconciler) Reconcile(ctx context.Context, projectID string) (*ProjectProgress, error) {
	release, err := r.locker.Acquire(ctx, projectID)
	if err != nil {
		return nil, err
	}
	defer release()

	var project *domain.Project
	err = r.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Projects.FindForUpdate(ctx, projectID); err != nil {
			return err
		}
		project, err = reconcile(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ProjectProgress{ProjectID: projectID, Progress: project.Progress, Status: project.Status}, nil
}

// RecalculateAll reconciles every project, one lock and transaction each.
// Running it twice in a row with no task changes writes the same values.
func (r *Reconciler) RecalculateAll(ctx context.Context) ([]ProjectProgress, error) {
	ids, err := r.store.Projects.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ProjectProgress, 0, len(ids))
	for _, id := range ids {
		p, err := r.Reconcile(ctx, id)
		if errors.Is(err, domain.ErrProjectNotFound) {
			// deleted since ListIDs
			continue
		}
		if err != nil {
			logger.Logger.Error("Failed to reconcile project", zap.String("project_id", id), zap.Error(err))
			return out, err
		}
		out = append(out, *p)
	}
	logger.Logger.Info("Recalculated project progress", zap.Int("projects", len(out)))
	return out, nil
}
