package repository

import (
	"context"
	"errors"

	"constructedge/internal/domain"

	"gorm.io/gorm"
)

// PrincipalStore is one role-specific credential table.
type PrincipalStore interface {
	Tag() domain.RoleTag
	// FindPrincipal returns domain.ErrUserNotFound when the email is absent.
	FindPrincipal(ctx context.Context, email string) (domain.Principal, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdatePassword reports whether a row was found and updated.
	UpdatePassword(ctx context.Context, email, password string) (bool, error)
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Tag() domain.RoleTag { return domain.RoleAdmin }

func (r *AdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return first[domain.Admin](ctx, r.db, domain.ErrUserNotFound, "email = ?", email)
}

func (r *AdminRepository) FindPrincipal(ctx context.Context, email string) (domain.Principal, error) {
	admin, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (r *AdminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := count[domain.Admin](ctx, r.db, "email = ?", email)
	return n > 0, err
}

func (r *AdminRepository) UpdatePassword(ctx context.Context, email, password string) (bool, error) {
	return updatePassword[domain.Admin](ctx, r.db, email, password)
}

func (r *AdminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	var admins []domain.Admin
	err := r.db.WithContext(ctx).Order("created_at").Find(&admins).Error
	return admins, err
}

type ManagerRepository struct {
	db *gorm.DB
}

func NewManagerRepository(db *gorm.DB) *ManagerRepository {
	return &ManagerRepository{db: db}
}

func (r *ManagerRepository) Tag() domain.RoleTag { return domain.RoleManager }

func (r *ManagerRepository) Create(ctx context.Context, manager *domain.Manager) error {
	return r.db.WithContext(ctx).Create(manager).Error
}

func (r *ManagerRepository) FindByEmail(ctx context.Context, email string) (*domain.Manager, error) {
	return first[domain.Manager](ctx, r.db, domain.ErrUserNotFound, "email = ?", email)
}

func (r *ManagerRepository) FindByID(ctx context.Context, id string) (*domain.Manager, error) {
	return first[domain.Manager](ctx, r.db, domain.ErrManagerNotFound, "id = ?", id)
}

func (r *ManagerRepository) FindPrincipal(ctx context.Context, email string) (domain.Principal, error) {
	manager, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return manager, nil
}

func (r *ManagerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := count[domain.Manager](ctx, r.db, "email = ?", email)
	return n > 0, err
}

func (r *ManagerRepository) UpdatePassword(ctx context.Context, email, password string) (bool, error) {
	return updatePassword[domain.Manager](ctx, r.db, email, password)
}

func (r *ManagerRepository) List(ctx context.Context) ([]domain.Manager, error) {
	var managers []domain.Manager
	err := r.db.WithContext(ctx).Order("created_at").Find(&managers).Error
	return managers, err
}

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Tag() domain.RoleTag { return domain.RoleEmployee }

func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	return r.db.WithContext(ctx).Omit("Role").Create(employee).Error
}

func (r *EmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	return r.db.WithContext(ctx).Omit("Role").Save(employee).Error
}

func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_assigned_employees WHERE employee_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM project_employees WHERE employee_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Employee{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrEmployeeNotFound
		}
		return nil
	})
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.db.WithContext(ctx).Preload("Role").Where("id = ?", id).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &employee, nil
}

// FindByIDs returns the employees that exist among ids; missing ids are
// simply absent from the result.
func (r *EmployeeRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Employee, error) {
	var employees []domain.Employee
	if len(ids) == 0 {
		return employees, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	return first[domain.Employee](ctx, r.db, domain.ErrUserNotFound, "email = ?", email)
}

func (r *EmployeeRepository) FindPrincipal(ctx context.Context, email string) (domain.Principal, error) {
	employee, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return employee, nil
}

func (r *EmployeeRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	n, err := count[domain.Employee](ctx, r.db, "id = ?", id)
	return n > 0, err
}

func (r *EmployeeRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := count[domain.Employee](ctx, r.db, "email = ?", email)
	return n > 0, err
}

func (r *EmployeeRepository) UpdatePassword(ctx context.Context, email, password string) (bool, error) {
	return updatePassword[domain.Employee](ctx, r.db, email, password)
}

func (r *EmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	var employees []domain.Employee
	err := r.db.WithContext(ctx).Preload("Role").Order("created_at").Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) Count(ctx context.Context) (int64, error) {
	return count[domain.Employee](ctx, r.db, "")
}

func (r *EmployeeRepository) CountUnassigned(ctx context.Context) (int64, error) {
	return count[domain.Employee](ctx, r.db, "project_id IS NULL")
}

// SetProject points the given employees at projectID.
func (r *EmployeeRepository) SetProject(ctx context.Context, ids []string, projectID string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Employee{}).
		Where("id IN ?", ids).
		Update("project_id", projectID).Error
}

// ClearProject unassigns employees of projectID that are not in keep.
func (r *EmployeeRepository) ClearProject(ctx context.Context, projectID string, keep []string) error {
	q := r.db.WithContext(ctx).Model(&domain.Employee{}).Where("project_id = ?", projectID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	return q.Update("project_id", nil).Error
}

func updatePassword[T any](ctx context.Context, db *gorm.DB, email, password string) (bool, error) {
	res := db.WithContext(ctx).Model(new(T)).Where("email = ?", email).Update("password", password)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
