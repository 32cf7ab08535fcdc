package grpc

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"constructedge/internal/domain"
	"constructedge/internal/repository"
	"constructedge/internal/service"
	"constructedge/internal/utils/middleware"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultBanTTL = time.Hour

// InternalServer serves the authenticated workforce API.
type InternalServer struct {
	Store      *repository.Store
	Auth       *service.AuthService
	Tasks      *service.TaskService
	Reconciler *service.Reconciler
	Projects   *service.ProjectService
	Employees  *service.EmployeeService
	Directory  *service.DirectoryService
	Dashboard  *service.DashboardService
}

var (
	adminOnly      = []domain.RoleTag{domain.RoleAdmin}
	managerOrAdmin = []domain.RoleTag{domain.RoleAdmin, domain.RoleManager}
)

// InternalRoleRules lists the WorkforceService methods that need more than
// an authenticated caller.
func InternalRoleRules() map[string][]domain.RoleTag {
	rules := map[string][]domain.RoleTag{}
	for _, m := range []string{
		"BanUser", "ListUsers", "RecalculateProgress",
		"DeleteProject", "DeleteEmployee",
		"CreateRole", "CreateAdmin", "ListAdmins", "CreateManager",
	} {
		rules[FullMethod(WorkforceServiceName, m)] = adminOnly
	}
	for _, m := range []string{
		"CreateTask", "UpdateTask", "DeleteTask", "ReconcileProject",
		"CreateProject", "UpdateProject", "AssignEmployees", "AssignMaterials", "ExportProjects",
		"CreateEmployee", "UpdateEmployee",
		"CreateMaterial", "CreateInventory", "UpdateInventory", "DeleteInventory", "CreateCustomer",
	} {
		rules[FullMethod(WorkforceServiceName, m)] = managerOrAdmin
	}
	return rules
}

func (s *InternalServer) GetProfile(ctx context.Context, _ *Empty) (*PrincipalView, error) {
	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Internal, "User ID not found in context")
	}
	principal, err := s.Auth.Profile(ctx, claims)
	if err != nil {
		return nil, toStatus(err)
	}
	view := principalView(principal)
	return &view, nil
}

func (s *InternalServer) BanUser(ctx context.Context, req *BanUserRequest) (*MessageResponse, error) {
	ttl := defaultBanTTL
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}
	if err := s.Auth.BanUser(ctx, req.UserID, ttl); err != nil {
		return nil, toStatus(err)
	}
	return &MessageResponse{Message: "User banned successfully"}, nil
}

func (s *InternalServer) ListUsers(ctx context.Context, req *ListUsersRequest) (*ListUsersResponse, error) {
	users, total, err := s.Store.Users.ListUsers(ctx, req.Page, req.PageSize, req.EmailFilter)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListUsersResponse{Users: users, Total: total}, nil
}

func (s *InternalServer) CreateTask(ctx context.Context, req *TaskRequest) (*domain.Task, error) {
	task, err := s.Tasks.CreateTask(ctx, req.input())
	return task, toStatus(err)
}

func (s *InternalServer) UpdateTask(ctx context.Context, req *TaskRequest) (*domain.Task, error) {
	task, err := s.Tasks.UpdateTask(ctx, req.ID, req.input())
	return task, toStatus(err)
}

func (s *InternalServer) DeleteTask(ctx context.Context, req *IDRequest) (*MessageResponse, error) {
	if err := s.Tasks.DeleteTask(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &MessageResponse{Message: "Task deleted"}, nil
}

func (s *InternalServer) ListTasks(ctx context.Context, _ *Empty) (*TaskList, error) {
	tasks, err := s.Tasks.ListTasks(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TaskList{Tasks: tasks}, nil
}

func (s *InternalServer) TasksByStatus(ctx context.Context, req *StatusRequest) (*TaskList, error) {
	tasks, err := s.Dashboard.TasksByStatus(ctx, req.Status)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TaskList{Tasks: tasks}, nil
}

func (s *InternalServer) TasksByProject(ctx context.Context, req *IDRequest) (*TaskList, error) {
	tasks, err := s.Tasks.TasksByProject(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TaskList{Tasks: tasks}, nil
}

func (s *InternalServer) TaskStats(ctx context.Context, _ *Empty) (*service.TaskStats, error) {
	stats, err := s.Dashboard.TaskStats(ctx)
	return stats, toStatus(err)
}

func (s *InternalServer) ReconcileProject(ctx context.Context, req *IDRequest) (*service.ProjectProgress, error) {
	progress, err := s.Reconciler.Reconcile(ctx, req.ID)
	return progress, toStatus(err)
}

func (s *InternalServer) RecalculateProgress(ctx context.Context, _ *Empty) (*ProgressList, error) {
	projects, err := s.Reconciler.RecalculateAll(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ProgressList{Projects: projects}, nil
}

func (s *InternalServer) CreateProject(ctx context.Context, req *ProjectRequest) (*domain.Project, error) {
	project, err := s.Projects.CreateProject(ctx, req.input())
	return project, toStatus(err)
}

func (s *InternalServer) UpdateProject(ctx context.Context, req *ProjectRequest) (*domain.Project, error) {
	project, err := s.Projects.UpdateProject(ctx, req.ID, req.input())
	return project, toStatus(err)
}

func (s *InternalServer) DeleteProject(ctx context.Context, req *IDRequest) (*MessageResponse, error) {
	if err := s.Projects.DeleteProject(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &MessageResponse{Message: "Project deleted"}, nil
}

func (s *InternalServer) GetProject(ctx context.Context, req *IDRequest) (*domain.Project, error) {
	project, err := s.Projects.GetProject(ctx, req.ID)
	return project, toStatus(err)
}

func (s *InternalServer) ListProjects(ctx context.Context, _ *Empty) (*ProjectList, error) {
	projects, err := s.Projects.ListProjects(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ProjectList{Projects: projects}, nil
}

func (s *InternalServer) ProjectEmployees(ctx context.Context, req *IDRequest) (*EmployeeList, error) {
	employees, err := s.Projects.ProjectEmployees(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &EmployeeList{Employees: employees}, nil
}

func (s *InternalServer) AssignEmployees(ctx context.Context, req *AssignRequest) (*domain.Project, error) {
	project, err := s.Projects.AssignEmployees(ctx, req.ID, req.IDs)
	return project, toStatus(err)
}

func (s *InternalServer) AssignMaterials(ctx context.Context, req *AssignRequest) (*domain.Project, error) {
	project, err := s.Projects.AssignMaterials(ctx, req.ID, req.IDs)
	return project, toStatus(err)
}

func (s *InternalServer) ProjectsByManager(ctx context.Context, req *IDRequest) (*ProjectList, error) {
	projects, err := s.Projects.ProjectsByManager(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ProjectList{Projects: projects}, nil
}

func (s *InternalServer) ExportProjects(ctx context.Context, _ *Empty) (*ExportResponse, error) {
	var buf bytes.Buffer
	if err := s.Dashboard.ExportProjects(ctx, &buf); err != nil {
		return nil, toStatus(err)
	}
	return &ExportResponse{
		Filename: fmt.Sprintf("projects-%s.xlsx", time.Now().Format("20060102")),
		Content:  buf.Bytes(),
	}, nil
}

func (s *InternalServer) CreateEmployee(ctx context.Context, req *EmployeeRequest) (*domain.Employee, error) {
	employee, err := s.Employees.CreateEmployee(ctx, req.input())
	return employee, toStatus(err)
}

func (s *InternalServer) UpdateEmployee(ctx context.Context, req *EmployeeRequest) (*domain.Employee, error) {
	employee, err := s.Employees.UpdateEmployee(ctx, req.ID, req.input())
	return employee, toStatus(err)
}

func (s *InternalServer) DeleteEmployee(ctx context.Context, req *IDRequest) (*MessageResponse, error) {
	if err := s.Employees.DeleteEmployee(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &MessageResponse{Message: "Employee deleted"}, nil
}

func (s *InternalServer) GetEmployee(ctx context.Context, req *IDRequest) (*domain.Employee, error) {
	employee, err := s.Employees.GetEmployee(ctx, req.ID)
	return employee, toStatus(err)
}

func (s *InternalServer) ListEmployees(ctx context.Context, _ *Empty) (*EmployeeList, error) {
	employees, err := s.Employees.ListEmployees(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &EmployeeList{Employees: employees}, nil
}

func (s *InternalServer) CreateRole(ctx context.Context, req *RoleRequest) (*domain.Role, error) {
	role, err := s.Directory.CreateRole(ctx, req.RoleName)
	return role, toStatus(err)
}

func (s *InternalServer) ListRoles(ctx context.Context, _ *Empty) (*RoleList, error) {
	roles, err := s.Directory.ListRoles(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &RoleList{Roles: roles}, nil
}

func (s *InternalServer) CreateMaterial(ctx context.Context, req *MaterialRequest) (*domain.Material, error) {
	material, err := s.Directory.CreateMaterial(ctx, req.MaterialName)
	return material, toStatus(err)
}

func (s *InternalServer) ListMaterials(ctx context.Context, _ *Empty) (*MaterialList, error) {
	materials, err := s.Directory.ListMaterials(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &MaterialList{Materials: materials}, nil
}

func (s *InternalServer) CreateInventory(ctx context.Context, req *InventoryRequest) (*domain.Inventory, error) {
	item, err := s.Directory.CreateInventory(ctx, req.input())
	return item, toStatus(err)
}

func (s *InternalServer) UpdateInventory(ctx context.Context, req *InventoryRequest) (*domain.Inventory, error) {
	item, err := s.Directory.UpdateInventory(ctx, req.ID, req.input())
	return item, toStatus(err)
}

func (s *InternalServer) DeleteInventory(ctx context.Context, req *IDRequest) (*MessageResponse, error) {
	if err := s.Directory.DeleteInventory(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &MessageResponse{Message: "Inventory item deleted"}, nil
}

func (s *InternalServer) ListInventory(ctx context.Context, _ *Empty) (*InventoryList, error) {
	items, err := s.Directory.ListInventory(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &InventoryList{Items: items}, nil
}

func (s *InternalServer) CreateCustomer(ctx context.Context, req *CustomerRequest) (*domain.Customer, error) {
	customer, err := s.Directory.CreateCustomer(ctx, service.CustomerInput{
		Name:        req.Name,
		ContactName: req.ContactName,
		ProjectID:   req.ProjectID,
	})
	return customer, toStatus(err)
}

func (s *InternalServer) ListCustomers(ctx context.Context, _ *Empty) (*CustomerList, error) {
	customers, err := s.Directory.ListCustomers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CustomerList{Customers: customers}, nil
}

func (s *InternalServer) CreateAdmin(ctx context.Context, req *ProfileRequest) (*domain.Admin, error) {
	admin, err := s.Directory.CreateAdmin(ctx, service.ProfileInput{Name: req.Name, Email: req.Email, Password: req.Password})
	return admin, toStatus(err)
}

func (s *InternalServer) ListAdmins(ctx context.Context, _ *Empty) (*AdminList, error) {
	admins, err := s.Directory.ListAdmins(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &AdminList{Admins: admins}, nil
}

func (s *InternalServer) CreateManager(ctx context.Context, req *ProfileRequest) (*domain.Manager, error) {
	manager, err := s.Directory.CreateManager(ctx, service.ProfileInput{Name: req.Name, Email: req.Email, Password: req.Password})
	return manager, toStatus(err)
}

func (s *InternalServer) ListManagers(ctx context.Context, _ *Empty) (*ManagerList, error) {
	managers, err := s.Directory.ListManagers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ManagerList{Managers: managers}, nil
}

func (s *InternalServer) DashboardStats(ctx context.Context, _ *Empty) (*service.Stats, error) {
	stats, err := s.Dashboard.Stats(ctx)
	return stats, toStatus(err)
}

func (s *InternalServer) CompanyStats(ctx context.Context, _ *Empty) (*service.CompanyStats, error) {
	stats, err := s.Dashboard.CompanyStats(ctx)
	return stats, toStatus(err)
}
