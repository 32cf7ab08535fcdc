package service

import (
	"context"
	"strings"

	"constructedge/internal/domain"
	"constructedge/internal/repository"
	"constructedge/internal/utils"
	"constructedge/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DirectoryService covers the reference data: roles, materials, inventory,
// customers and the admin/manager profiles created outside registration.
type DirectoryService struct {
	store *repository.Store
	codec utils.PasswordCodec
}

func NewDirectoryService(store *repository.Store, codec utils.PasswordCodec) *DirectoryService {
	return &DirectoryService{store: store, codec: codec}
}

func (s *DirectoryService) CreateRole(ctx context.Context, name string) (*domain.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("role name is required")
	}
	role := &domain.Role{RoleName: name}
	if err := s.store.Roles.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *DirectoryService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.store.Roles.List(ctx)
}

func (s *DirectoryService) CreateMaterial(ctx context.Context, name string) (*domain.Material, error) {
	material := &domain.Material{MaterialName: strings.TrimSpace(name)}
	if err := s.store.Materials.Create(ctx, material); err != nil {
		return nil, err
	}
	return material, nil
}

func (s *DirectoryService) ListMaterials(ctx context.Context) ([]domain.Material, error) {
	return s.store.Materials.List(ctx)
}

type InventoryInput struct {
	Name      string `validate:"required"`
	Category  string
	Quantity  int `validate:"gte=0"`
	Unit      string
	MinStock  int `validate:"gte=0"`
	MaxStock  int `validate:"gte=0"`
	UnitPrice decimal.Decimal
	Location  string
}

func (s *DirectoryService) CreateInventory(ctx context.Context, in InventoryInput) (*domain.Inventory, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	item := &domain.Inventory{}
	applyInventoryInput(item, in)
	if err := s.store.Inventory.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *DirectoryService) UpdateInventory(ctx context.Context, id string, in InventoryInput) (*domain.Inventory, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	item, err := s.store.Inventory.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInventoryInput(item, in)
	if err := s.store.Inventory.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *DirectoryService) DeleteInventory(ctx context.Context, id string) error {
	return s.store.Inventory.Delete(ctx, id)
}

func (s *DirectoryService) ListInventory(ctx context.Context) ([]domain.Inventory, error) {
	return s.store.Inventory.List(ctx)
}

func applyInventoryInput(item *domain.Inventory, in InventoryInput) {
	item.Name = in.Name
	item.Category = in.Category
	item.Quantity = in.Quantity
	item.Unit = in.Unit
	item.MinStock = in.MinStock
	item.MaxStock = in.MaxStock
	item.UnitPrice = in.UnitPrice
	item.Location = in.Location
}

type CustomerInput struct {
	Name        string `validate:"required"`
	ContactName string `validate:"required"`
	ProjectID   string `validate:"required"`
}

// CreateCustomer links a customer to exactly one project; a project has at
// most one customer.
func (s *DirectoryService) CreateCustomer(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ContactName = strings.TrimSpace(in.ContactName)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	customer := &domain.Customer{Name: in.Name, ContactName: in.ContactName, ProjectID: in.ProjectID}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Projects.Exists(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrProjectNotFound
		}
		return tx.Customers.Create(ctx, customer)
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, validationError("project %s already has a customer", in.ProjectID)
		}
		return nil, err
	}
	return customer, nil
}

func (s *DirectoryService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.store.Customers.List(ctx)
}

type ProfileInput struct {
	Name     string
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// CreateAdmin writes an admin profile directly. No ledger row is created.
func (s *DirectoryService) CreateAdmin(ctx context.Context, in ProfileInput) (*domain.Admin, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	password, err := s.codec.Encode(in.Password)
	if err != nil {
		return nil, err
	}
	admin := &domain.Admin{Username: in.Name, Email: in.Email, Password: password}
	if err := s.store.Admins.Create(ctx, admin); err != nil {
		if isDuplicateKey(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, err
	}
	logger.Logger.Info("Admin created", zap.String("admin_id", admin.ID))
	return admin, nil
}

func (s *DirectoryService) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	return s.store.Admins.List(ctx)
}

// CreateManager writes a manager profile directly. No ledger row is created.
func (s *DirectoryService) CreateManager(ctx context.Context, in ProfileInput) (*domain.Manager, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	password, err := s.codec.Encode(in.Password)
	if err != nil {
		return nil, err
	}
	manager := &domain.Manager{Name: in.Name, Email: in.Email, Password: password}
	if err := s.store.Managers.Create(ctx, manager); err != nil {
		if isDuplicateKey(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, err
	}
	logger.Logger.Info("Manager created", zap.String("manager_id", manager.ID))
	return manager, nil
}

func (s *DirectoryService) ListManagers(ctx context.Context) ([]domain.Manager, error) {
	return s.store.Managers.List(ctx)
}
