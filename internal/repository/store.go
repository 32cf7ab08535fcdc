package repository

import (
	"context"
	"errors"

	"constructedge/internal/domain"

	"gorm.io/gorm"
)

// Store groups every repository over one *gorm.DB handle, either the pool
// or an open transaction.
type Store struct {
	db *gorm.DB

	Users     *UserRepository
	Admins    *AdminRepository
	Managers  *ManagerRepository
	Employees *EmployeeRepository
	Projects  *ProjectRepository
	Tasks     *TaskRepository
	Roles     *RoleRepository
	Materials *MaterialRepository
	Inventory *InventoryRepository
	Customers *CustomerRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Users:     NewUserRepository(db),
		Admins:    NewAdminRepository(db),
		Managers:  NewManagerRepository(db),
		Employees: NewEmployeeRepository(db),
		Projects:  NewProjectRepository(db),
		Tasks:     NewTaskRepository(db),
		Roles:     NewRoleRepository(db),
		Materials: NewMaterialRepository(db),
		Inventory: NewInventoryRepository(db),
		Customers: NewCustomerRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single transaction.
// Any error returned by fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// PrincipalStores returns the profile stores in login precedence order.
func (s *Store) PrincipalStores() []PrincipalStore {
	return []PrincipalStore{s.Admins, s.Managers, s.Employees}
}

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&domain.User{},
		&domain.Admin{},
		&domain.Manager{},
		&domain.Role{},
		&domain.Employee{},
		&domain.Material{},
		&domain.Project{},
		&domain.Task{},
		&domain.Inventory{},
		&domain.Customer{},
	)
}

func first[T any](ctx context.Context, db *gorm.DB, notFound error, query string, args ...interface{}) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where(query, args...).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return &out, nil
}

func count[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) (int64, error) {
	var n int64
	q := db.WithContext(ctx).Model(new(T))
	if query != "" {
		q = q.Where(query, args...)
	}
	err := q.Count(&n).Error
	return n, err
}
