package repository

import (
	"context"

	"constructedge/internal/domain"

	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	return first[domain.Role](ctx, r.db, domain.ErrRoleNotFound, "id = ?", id)
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	var roles []domain.Role
	err := r.db.WithContext(ctx).Order("role_name").Find(&roles).Error
	return roles, err
}

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *MaterialRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Material, error) {
	var materials []domain.Material
	if len(ids) == 0 {
		return materials, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&materials).Error
	return materials, err
}

func (r *MaterialRepository) List(ctx context.Context) ([]domain.Material, error) {
	var materials []domain.Material
	err := r.db.WithContext(ctx).Order("material_name").Find(&materials).Error
	return materials, err
}

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Create(ctx context.Context, item *domain.Inventory) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*domain.Inventory, error) {
	return first[domain.Inventory](ctx, r.db, domain.ErrInventoryNotFound, "id = ?", id)
}

func (r *InventoryRepository) Update(ctx context.Context, item *domain.Inventory) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&domain.Inventory{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInventoryNotFound
	}
	return nil
}

func (r *InventoryRepository) List(ctx context.Context) ([]domain.Inventory, error) {
	var items []domain.Inventory
	err := r.db.WithContext(ctx).Order("name").Find(&items).Error
	return items, err
}

func (r *InventoryRepository) CountBelow(ctx context.Context, quantity int) (int64, error) {
	return count[domain.Inventory](ctx, r.db, "quantity < ?", quantity)
}

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := r.db.WithContext(ctx).Order("name").Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	return count[domain.Customer](ctx, r.db, "project_id = ?", projectID)
}
