package repository

import (
	"context"
	"errors"

	"constructedge/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project row and links the given employees and materials.
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	employees, materials := project.Employees, project.Materials
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(project).Error; err != nil {
		return err
	}
	if len(employees) > 0 {
		if err := db.Model(project).Association("Employees").Replace(employees); err != nil {
			return err
		}
	}
	if len(materials) > 0 {
		if err := db.Model(project).Association("Materials").Replace(materials); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Preload("Employees").
		Preload("Materials").
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// FindForUpdate loads the project with its employee set and takes a row
// lock where the dialect supports one. Must run inside a transaction.
func (r *ProjectRepository) FindForUpdate(ctx context.Context, id string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Employees").
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := count[domain.Project](ctx, r.db, "id = ?", id)
	return n > 0, err
}

func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).Preload("Manager").Order("created_at").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) ListByManager(ctx context.Context, managerID string) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).Where("manager_id = ?", managerID).Order("created_at").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.Project{}).Order("created_at").Pluck("id", &ids).Error
	return ids, err
}

// UpdateDetails writes the descriptive columns. Status and progress are
// deliberately not part of the column list.
func (r *ProjectRepository) UpdateDetails(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Model(project).
		Select("name", "budget", "start_date", "end_date", "location", "manager_id").
		Updates(project).Error
}

// SaveProgress is the only writer of the derived status/progress columns.
func (r *ProjectRepository) SaveProgress(ctx context.Context, id string, progress int, status domain.ProjectStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"progress": progress, "status": status}).Error
}

func (r *ProjectRepository) ReplaceEmployees(ctx context.Context, project *domain.Project, employees []domain.Employee) error {
	association := r.db.WithContext(ctx).Model(project).Association("Employees")
	if len(employees) == 0 {
		return association.Clear()
	}
	return association.Replace(employees)
}

func (r *ProjectRepository) ReplaceMaterials(ctx context.Context, project *domain.Project, materials []domain.Material) error {
	association := r.db.WithContext(ctx).Model(project).Association("Materials")
	if len(materials) == 0 {
		return association.Clear()
	}
	return association.Replace(materials)
}

func (r *ProjectRepository) Employees(ctx context.Context, id string) ([]domain.Employee, error) {
	project := &domain.Project{ID: id}
	var employees []domain.Employee
	err := r.db.WithContext(ctx).Model(project).Association("Employees").Find(&employees)
	return employees, err
}

// Delete removes the project, its tasks and every join row.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	var taskIDs []string
	if err := db.Model(&domain.Task{}).Where("project_id = ?", id).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	if len(taskIDs) > 0 {
		if err := db.Exec("DELETE FROM task_assigned_employees WHERE task_id IN ?", taskIDs).Error; err != nil {
			return err
		}
	}
	if err := db.Where("project_id = ?", id).Delete(&domain.Task{}).Error; err != nil {
		return err
	}
	if err := db.Exec("DELETE FROM project_employees WHERE project_id = ?", id).Error; err != nil {
		return err
	}
	if err := db.Exec("DELETE FROM project_materials WHERE project_id = ?", id).Error; err != nil {
		return err
	}
	if err := db.Model(&domain.Employee{}).Where("project_id = ?", id).Update("project_id", nil).Error; err != nil {
		return err
	}
	res := db.Delete(&domain.Project{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	return count[domain.Project](ctx, r.db, "")
}

func (r *ProjectRepository) CountByStatus(ctx context.Context, status domain.ProjectStatus) (int64, error) {
	return count[domain.Project](ctx, r.db, "UPPER(status) = UPPER(?)", string(status))
}
