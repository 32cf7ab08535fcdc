package grpc

import (
	"time"

	"constructedge/internal/domain"
	"constructedge/internal/service"

	"github.com/shopspring/decimal"
)

type Empty struct{}

type MessageResponse struct {
	Message string `json:"message"`
}

type IDRequest struct {
	ID string `json:"id"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RegisterResponse struct {
	Message string         `json:"message"`
	UserID  string         `json:"userId"`
	Role    domain.RoleTag `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PrincipalView is the role-independent shape of a logged-in profile.
type PrincipalView struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Role  domain.RoleTag `json:"role"`
}

func principalView(p domain.Principal) PrincipalView {
	email, _ := p.Credentials()
	view := PrincipalView{ID: p.PrincipalID(), Email: email, Role: p.RoleTag()}
	switch v := p.(type) {
	case *domain.Admin:
		view.Name = v.Username
	case *domain.Manager:
		view.Name = v.Name
	case *domain.Employee:
		view.Name = v.Name
	}
	return view
}

type LoginResponse struct {
	Role      domain.RoleTag `json:"role"`
	Principal PrincipalView  `json:"principal"`
	Token     string         `json:"token"`
	ExpiresIn int64          `json:"expiresIn"`
}

type SendOtpRequest struct {
	Email string `json:"email"`
}

type VerifyOtpRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

type TokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type BanUserRequest struct {
	UserID     string `json:"userId"`
	TTLSeconds int64  `json:"ttlSeconds"`
}

type ListUsersRequest struct {
	Page        int    `json:"page"`
	PageSize    int    `json:"pageSize"`
	EmailFilter string `json:"emailFilter"`
}

type ListUsersResponse struct {
	Users []*domain.User `json:"users"`
	Total int            `json:"total"`
}

type TaskRequest struct {
	ID          string            `json:"id,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	ProjectID   string            `json:"projectId"`
	Status      domain.TaskStatus `json:"status"`
	Priority    string            `json:"priority"`
	DueDate     *time.Time        `json:"dueDate"`
	EmployeeIDs []string          `json:"employeeIds"`
}

func (r *TaskRequest) input() service.TaskInput {
	return service.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		ProjectID:   r.ProjectID,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		EmployeeIDs: r.EmployeeIDs,
	}
}

type StatusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

type TaskList struct {
	Tasks []domain.Task `json:"tasks"`
}

type ProgressList struct {
	Projects []service.ProjectProgress `json:"projects"`
}

type ProjectRequest struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Budget      decimal.Decimal `json:"budget"`
	StartDate   *time.Time      `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
	Location    string          `json:"location"`
	ManagerID   string          `json:"managerId"`
	EmployeeIDs []string        `json:"employeeIds"`
	MaterialIDs []string        `json:"materialIds"`
}

func (r *ProjectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		Name:        r.Name,
		Budget:      r.Budget,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Location:    r.Location,
		ManagerID:   r.ManagerID,
		EmployeeIDs: r.EmployeeIDs,
		MaterialIDs: r.MaterialIDs,
	}
}

type AssignRequest struct {
	ID  string   `json:"id"`
	IDs []string `json:"ids"`
}

type ProjectList struct {
	Projects []domain.Project `json:"projects"`
}

type EmployeeList struct {
	Employees []domain.Employee `json:"employees"`
}

type EmployeeRequest struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Name           string     `json:"name"`
	Skill          string     `json:"skill"`
	JobRole        string     `json:"jobRole"`
	ExperienceYear int        `json:"experienceYear"`
	ContactNumber  string     `json:"contactNumber"`
	Email          string     `json:"email"`
	Password       string     `json:"password"`
	RoleID         string     `json:"roleId"`
	HireDate       *time.Time `json:"hireDate"`
}

func (r *EmployeeRequest) input() service.EmployeeInput {
	return service.EmployeeInput{
		ID:             r.ID,
		UserID:         r.UserID,
		Name:           r.Name,
		Skill:          r.Skill,
		JobRole:        r.JobRole,
		ExperienceYear: r.ExperienceYear,
		ContactNumber:  r.ContactNumber,
		Email:          r.Email,
		Password:       r.Password,
		RoleID:         r.RoleID,
		HireDate:       r.HireDate,
	}
}

type RoleRequest struct {
	RoleName string `json:"roleName"`
}

type RoleList struct {
	Roles []domain.Role `json:"roles"`
}

type MaterialRequest struct {
	MaterialName string `json:"materialName"`
}

type MaterialList struct {
	Materials []domain.Material `json:"materials"`
}

type InventoryRequest struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	Unit      string          `json:"unit"`
	MinStock  int             `json:"minStock"`
	MaxStock  int             `json:"maxStock"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Location  string          `json:"location"`
}

func (r *InventoryRequest) input() service.InventoryInput {
	return service.InventoryInput{
		Name:      r.Name,
		Category:  r.Category,
		Quantity:  r.Quantity,
		Unit:      r.Unit,
		MinStock:  r.MinStock,
		MaxStock:  r.MaxStock,
		UnitPrice: r.UnitPrice,
		Location:  r.Location,
	}
}

type InventoryList struct {
	Items []domain.Inventory `json:"items"`
}

type CustomerRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contactName"`
	ProjectID   string `json:"projectId"`
}

type CustomerList struct {
	Customers []domain.Customer `json:"customers"`
}

type ProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminList struct {
	Admins []domain.Admin `json:"admins"`
}

type ManagerList struct {
	Managers []domain.Manager `json:"managers"`
}

type ExportResponse struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}
