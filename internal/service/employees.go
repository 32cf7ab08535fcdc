package service

import (
	"context"
	"strings"
	"time"

	"constructedge/internal/domain"
	"constructedge/internal/repository"
	"constructedge/internal/utils"
	"constructedge/pkg/logger"

	"go.uber.org/zap"
)

// defaultEmployeePassword is used when an employee is created without one.
const defaultEmployeePassword = "123"

type EmployeeInput struct {
	ID             string
	UserID         string
	Name           string `validate:"required"`
	Skill          string
	JobRole        string
	ExperienceYear int    `validate:"gte=0"`
	ContactNumber  string
	Email          string `validate:"required"`
	Password       string
	RoleID         string `validate:"required"`
	HireDate       *time.Time
}

type EmployeeService struct {
	store *repository.Store
	codec utils.PasswordCodec
}

func NewEmployeeService(store *repository.Store, codec utils.PasswordCodec) *EmployeeService {
	return &EmployeeService{store: store, codec: codec}
}

// CreateEmployee inserts an employee directly, without a ledger entry.
// The caller supplies the id.
func (s *EmployeeService) CreateEmployee(ctx context.Context, in EmployeeInput) (*domain.Employee, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return nil, validationError("employee id is required")
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Password == "" {
		in.Password = defaultEmployeePassword
	}
	password, err := s.codec.Encode(in.Password)
	if err != nil {
		return nil, err
	}

	employee := &domain.Employee{ID: in.ID, Password: password}
	applyEmployeeInput(employee, in)

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Employees.ExistsByID(ctx, in.ID)
		if err != nil {
			return err
		}
		if exists {
			return validationError("employee %s already exists", in.ID)
		}
		role, err := tx.Roles.FindByID(ctx, in.RoleID)
		if err != nil {
			return err
		}
		if err := tx.Employees.Create(ctx, employee); err != nil {
			return err
		}
		employee.Role = role
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, validationError("email %s is already used by another employee", in.Email)
		}
		return nil, err
	}

	logger.Logger.Info("Employee created", zap.String("employee_id", employee.ID))
	return employee, nil
}

// UpdateEmployee rewrites the profile. A blank password keeps the current one.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id string, in EmployeeInput) (*domain.Employee, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var employee *domain.Employee
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		employee, err = tx.Employees.FindByID(ctx, id)
		if err != nil {
			return err
		}
		role, err := tx.Roles.FindByID(ctx, in.RoleID)
		if err != nil {
			return err
		}
		if in.Password != "" {
			employee.Password, err = s.codec.Encode(in.Password)
			if err != nil {
				return err
			}
		}
		applyEmployeeInput(employee, in)
		if err := tx.Employees.Update(ctx, employee); err != nil {
			return err
		}
		employee.Role = role
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, validationError("email %s is already used by another employee", in.Email)
		}
		return nil, err
	}

	logger.Logger.Info("Employee updated", zap.String("employee_id", id))
	return employee, nil
}

func (s *EmployeeService) DeleteEmployee(ctx context.Context, id string) error {
	if err := s.store.Employees.Delete(ctx, id); err != nil {
		return err
	}
	logger.Logger.Info("Employee deleted", zap.String("employee_id", id))
	return nil
}

func (s *EmployeeService) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	return s.store.Employees.FindByID(ctx, id)
}

func (s *EmployeeService) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	return s.store.Employees.List(ctx)
}

func applyEmployeeInput(e *domain.Employee, in EmployeeInput) {
	roleID := in.RoleID
	e.UserID = in.UserID
	e.Name = in.Name
	e.Skill = in.Skill
	e.JobRole = in.JobRole
	e.ExperienceYear = in.ExperienceYear
	e.ContactNumber = in.ContactNumber
	e.Email = in.Email
	e.RoleID = &roleID
	e.HireDate = in.HireDate
}
