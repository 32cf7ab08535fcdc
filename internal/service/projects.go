package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"constructedge/internal/domain"
	"constructedge/internal/lock"
	"constructedge/internal/repository"
	"constructedge/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProjectInput struct {
	Name        string `validate:"required"`
	Budget      decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Location    string `validate:"required"`
	ManagerID   string `validate:"required"`
	EmployeeIDs []string
	MaterialIDs []string
}

func (in *ProjectInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.ManagerID = strings.TrimSpace(in.ManagerID)
	in.EmployeeIDs = uniqueIDs(in.EmployeeIDs)
	in.MaterialIDs = uniqueIDs(in.MaterialIDs)
	if err := validateInput(in); err != nil {
		return err
	}
	if in.Budget.IsNegative() {
		return validationError("budget must not be negative")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return validationError("end date is before start date")
	}
	return nil
}

type ProjectService struct {
	store  *repository.Store
	locker lock.Locker
}

func NewProjectService(store *repository.Store, locker lock.Locker) *ProjectService {
	return &ProjectService{store: store, locker: locker}
}

// CreateProject starts every project at PLANNING with zero progress.
func (s *ProjectService) CreateProject(ctx context.Context, in ProjectInput) (*domain.Project, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name:      in.Name,
		Budget:    in.Budget,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Location:  in.Location,
		ManagerID: in.ManagerID,
		Status:    domain.ProjectPlanning,
		Progress:  0,
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Managers.FindByID(ctx, in.ManagerID); err != nil {
			return err
		}
		employees, err := resolveEmployees(ctx, tx, in.EmployeeIDs)
		if err != nil {
			return err
		}
		materials, err := resolveMaterials(ctx, tx, in.MaterialIDs)
		if err != nil {
			return err
		}
		project.Employees = employees
		project.Materials = materials
		if err := tx.Projects.Create(ctx, project); err != nil {
			return err
		}
		return tx.Employees.SetProject(ctx, in.EmployeeIDs, project.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Project created", zap.String("project_id", project.ID), zap.String("manager_id", project.ManagerID))
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return s.store.Projects.FindByID(ctx, id)
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.store.Projects.List(ctx)
}

func (s *ProjectService) ProjectsByManager(ctx context.Context, managerID string) ([]domain.Project, error) {
	if _, err := s.store.Managers.FindByID(ctx, managerID); err != nil {
		return nil, err
	}
	return s.store.Projects.ListByManager(ctx, managerID)
}

// UpdateProject rewrites descriptive fields only. Employee and material
// sets in the input are ignored; use AssignEmployees / AssignMaterials.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, in ProjectInput) (*domain.Project, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		project, err := tx.Projects.FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Managers.FindByID(ctx, in.ManagerID); err != nil {
			return err
		}
		project.Name = in.Name
		project.Budget = in.Budget
		project.StartDate = in.StartDate
		project.EndDate = in.EndDate
		project.Location = in.Location
		project.ManagerID = in.ManagerID
		return tx.Projects.UpdateDetails(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Project updated", zap.String("project_id", id))
	return s.store.Projects.FindByID(ctx, id)
}

// DeleteProject removes the project together with its tasks. Projects still
// referenced by a customer cannot be deleted.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Projects.FindForUpdate(ctx, id); err != nil {
			return err
		}
		customers, err := tx.Customers.CountByProject(ctx, id)
		if err != nil {
			return err
		}
		if customers > 0 {
			return validationError("project %s is referenced by %d customer(s)", id, customers)
		}
		return tx.Projects.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logger.Logger.Info("Project deleted", zap.String("project_id", id))
	return nil
}

func (s *ProjectService) ProjectEmployees(ctx context.Context, id string) ([]domain.Employee, error) {
	exists, err := s.store.Projects.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrProjectNotFound
	}
	return s.store.Projects.Employees(ctx, id)
}

// AssignEmployees replaces the project's employee set. Employees dropped
// from the set are also dropped from the project's task assignments.
func (s *ProjectService) AssignEmployees(ctx context.Context, id string, employeeIDs []string) (*domain.Project, error) {
	employeeIDs = uniqueIDs(employeeIDs)

	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		project, err := tx.Projects.FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		employees, err := resolveEmployees(ctx, tx, employeeIDs)
		if err != nil {
			return err
		}
		if err := tx.Projects.ReplaceEmployees(ctx, project, employees); err != nil {
			return err
		}
		if err := tx.Tasks.PruneAssignees(ctx, id, employeeIDs); err != nil {
			return err
		}
		if err := tx.Employees.ClearProject(ctx, id, employeeIDs); err != nil {
			return err
		}
		return tx.Employees.SetProject(ctx, employeeIDs, id)
	})
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Project employees assigned", zap.String("project_id", id), zap.Int("employees", len(employeeIDs)))
	return s.store.Projects.FindByID(ctx, id)
}

func (s *ProjectService) AssignMaterials(ctx context.Context, id string, materialIDs []string) (*domain.Project, error) {
	materialIDs = uniqueIDs(materialIDs)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		project, err := tx.Projects.FindByID(ctx, id)
		if err != nil {
			return err
		}
		materials, err := resolveMaterials(ctx, tx, materialIDs)
		if err != nil {
			return err
		}
		return tx.Projects.ReplaceMaterials(ctx, project, materials)
	})
	if err != nil {
		return nil, err
	}
	return s.store.Projects.FindByID(ctx, id)
}

func resolveEmployees(ctx context.Context, tx *repository.Store, ids []string) ([]domain.Employee, error) {
	employees, err := tx.Employees.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(ids, len(employees), func(i int) string { return employees[i].ID }); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmployeeNotFound, strings.Join(missing, ", "))
	}
	return employees, nil
}

func resolveMaterials(ctx context.Context, tx *repository.Store, ids []string) ([]domain.Material, error) {
	materials, err := tx.Materials.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(ids, len(materials), func(i int) string { return materials[i].ID }); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMaterialNotFound, strings.Join(missing, ", "))
	}
	return materials, nil
}

func missingIDs(want []string, n int, idAt func(int) string) []string {
	have := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		have[idAt(i)] = struct{}{}
	}
	var missing []string
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
