package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"constructedge/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCreateProjectValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.manager(t, "m@x.com")

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)

	tests := []struct {
		name string
		in   ProjectInput
		want error
	}{
		{"missing name", ProjectInput{Location: "L", ManagerID: m.ID}, domain.ErrValidation},
		{"negative budget", ProjectInput{Name: "P", Location: "L", ManagerID: m.ID, Budget: decimal.NewFromInt(-1)}, domain.ErrValidation},
		{"end before start", ProjectInput{Name: "P", Location: "L", ManagerID: m.ID, StartDate: &start, EndDate: &end}, domain.ErrValidation},
		{"unknown manager", ProjectInput{Name: "P", Location: "L", ManagerID: "ghost"}, domain.ErrManagerNotFound},
		{"unknown employee", ProjectInput{Name: "P", Location: "L", ManagerID: m.ID, EmployeeIDs: []string{"ghost"}}, domain.ErrEmployeeNotFound},
		{"unknown material", ProjectInput{Name: "P", Location: "L", ManagerID: m.ID, MaterialIDs: []string{"ghost"}}, domain.ErrMaterialNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.projects.CreateProject(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	projects, err := f.projects.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestCreateProjectLinksEmployeesAndMaterials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.manager(t, "m@x.com")
	f.employee(t, "e1")
	steel, err := f.directory.CreateMaterial(ctx, "Steel")
	require.NoError(t, err)

	p, err := f.projects.CreateProject(ctx, ProjectInput{
		Name: "Bridge", Location: "River", ManagerID: m.ID, Budget: decimal.RequireFromString("1500.50"),
		EmployeeIDs: []string{"e1"}, MaterialIDs: []string{steel.ID},
	})
	require.NoError(t, err)

	got, err := f.projects.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectPlanning, got.Status)
	assert.True(t, got.Budget.Equal(decimal.RequireFromString("1500.50")))
	require.Len(t, got.Employees, 1)
	require.Len(t, got.Materials, 1)
	require.NotNil(t, got.Manager)
	assert.Equal(t, m.ID, got.Manager.ID)

	e, err := f.store.Employees.FindByID(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, e.ProjectID)
	assert.Equal(t, p.ID, *e.ProjectID)

	byManager, err := f.projects.ProjectsByManager(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, byManager, 1)
	_, err = f.projects.ProjectsByManager(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrManagerNotFound)
}

func TestUpdateProjectKeepsDerivedState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.manager(t, "m@x.com")
	p := f.project(t, m.ID)
	f.task(t, p.ID, domain.TaskCompleted)

	updated, err := f.projects.UpdateProject(ctx, p.ID, ProjectInput{Name: "Renamed", Location: "Site B", ManagerID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 100, updated.Progress)
	assert.Equal(t, domain.ProjectCompleted, updated.Status)

	_, err = f.projects.UpdateProject(ctx, "ghost", ProjectInput{Name: "x", Location: "y", ManagerID: m.ID})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestAssignEmployeesPrunesTaskAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.manager(t, "m@x.com")
	f.employee(t, "e1")
	f.employee(t, "e2")
	f.employee(t, "e3")
	p := f.project(t, m.ID, "e1", "e2")
	task := f.task(t, p.ID, domain.TaskTodo, "e1", "e2")

	updated, err := f.projects.AssignEmployees(ctx, p.ID, []string{"e2", "e3"})
	require.NoError(t, err)
	assert.Len(t, updated.Employees, 2)
	assert.True(t, updated.HasEmployee("e3"))
	assert.False(t, updated.HasEmployee("e1"))

	stored, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, stored.AssignedEmployees, 1)
	assert.Equal(t, "e2", stored.AssignedEmployees[0].ID)

	e1, err := f.store.Employees.FindByID(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, e1.ProjectID)

	members, err := f.projects.ProjectEmployees(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	_, err = f.projects.AssignEmployees(ctx, p.ID, []string{"ghost"})
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)

	cleared, err := f.projects.AssignEmployees(ctx, p.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.Employees)
	stored, err = f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.AssignedEmployees)
}

func TestAssignMaterials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.manager(t, "m@x.com")
	p := f.project(t, m.ID)
	wood, err := f.directory.CreateMaterial(ctx, "Wood")
	require.NoError(t, err)

	updated, err := f.projects.AssignMaterials(ctx, p.ID, []string{wood.ID})
	require.NoError(t, err)
	require.Len(t, updated.Materials, 1)
	assert.Equal(t, "Wood", updated.Materials[0].MaterialName)

	_, err = f.projects.AssignMaterials(ctx, "ghost", []string{wood.ID})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestDeleteProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.manager(t, "m@x.com")
	f.employee(t, "e1")
	p := f.project(t, m.ID, "e1")
	task := f.task(t, p.ID, domain.TaskTodo, "e1")

	_, err := f.directory.CreateCustomer(ctx, CustomerInput{Name: "Acme", ContactName: "Jo", ProjectID: p.ID})
	require.NoError(t, err)
	assert.ErrorIs(t, f.projects.DeleteProject(ctx, p.ID), domain.ErrValidation)

	other := f.project(t, m.ID)
	f.task(t, other.ID, domain.TaskTodo)
	require.NoError(t, f.projects.DeleteProject(ctx, other.ID))
	_, err = f.projects.GetProject(ctx, other.ID)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	assert.Equal(t, int64(0), f.taskCount(t, other.ID))

	_, err = f.tasks.GetTask(ctx, task.ID)
	assert.NoError(t, err)
	assert.ErrorIs(t, f.projects.DeleteProject(ctx, "ghost"), domain.ErrProjectNotFound)
}

func TestEmployees(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuth(f, nil)
	role, err := f.directory.CreateRole(ctx, "Welder")
	require.NoError(t, err)

	e, err := f.employees.CreateEmployee(ctx, EmployeeInput{ID: "E-100", Name: "Kim", Email: "kim@x.com", RoleID: role.ID, ExperienceYear: 3})
	require.NoError(t, err)
	require.NotNil(t, e.Role)
	assert.Equal(t, "Welder", e.Role.RoleName)

	// created without a password, the employee can log in with the default one
	res, err := auth.Login(ctx, "kim@x.com", defaultEmployeePassword)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, res.Role)

	_, err = f.employees.CreateEmployee(ctx, EmployeeInput{ID: "E-100", Name: "Kim", Email: "kim2@x.com", RoleID: role.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.employees.CreateEmployee(ctx, EmployeeInput{ID: "E-101", Name: "Lee", Email: "kim@x.com", RoleID: role.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.employees.CreateEmployee(ctx, EmployeeInput{ID: "E-102", Name: "Lee", Email: "lee@x.com", RoleID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
	_, err = f.employees.CreateEmployee(ctx, EmployeeInput{Name: "Lee", Email: "lee@x.com", RoleID: role.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.employees.CreateEmployee(ctx, EmployeeInput{ID: "E-103", Name: "Lee", Email: "lee@x.com", RoleID: role.ID, ExperienceYear: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	updated, err := f.employees.UpdateEmployee(ctx, "E-100", EmployeeInput{Name: "Kim Park", Email: "kim@x.com", RoleID: role.ID, Skill: "TIG"})
	require.NoError(t, err)
	assert.Equal(t, "Kim Park", updated.Name)
	_, err = auth.Login(ctx, "kim@x.com", defaultEmployeePassword)
	require.NoError(t, err, "blank password on update keeps the current one")

	_, err = f.employees.UpdateEmployee(ctx, "E-100", EmployeeInput{Name: "Kim", Email: "kim@x.com", RoleID: role.ID, Password: "s3cret"})
	require.NoError(t, err)
	_, err = auth.Login(ctx, "kim@x.com", "s3cret")
	require.NoError(t, err)

	list, err := f.employees.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.employees.DeleteEmployee(ctx, "E-100"))
	_, err = f.employees.GetEmployee(ctx, "E-100")
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
	assert.ErrorIs(t, f.employees.DeleteEmployee(ctx, "E-100"), domain.ErrEmployeeNotFound)
}

func TestDeleteEmployeeDropsAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.manager(t, "m@x.com")
	f.employee(t, "e1")
	p := f.project(t, m.ID, "e1")
	task := f.task(t, p.ID, domain.TaskTodo, "e1")

	require.NoError(t, f.employees.DeleteEmployee(ctx, "e1"))

	stored, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.AssignedEmployees)
	members, err := f.projects.ProjectEmployees(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestDirectory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.manager(t, "m@x.com")
	p := f.project(t, m.ID)

	_, err := f.directory.CreateRole(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.directory.CreateCustomer(ctx, CustomerInput{Name: "Acme", ContactName: "Jo", ProjectID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	_, err = f.directory.CreateCustomer(ctx, CustomerInput{Name: "Acme", ContactName: "Jo", ProjectID: p.ID})
	require.NoError(t, err)
	_, err = f.directory.CreateCustomer(ctx, CustomerInput{Name: "Other", ContactName: "Al", ProjectID: p.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	item, err := f.directory.CreateInventory(ctx, InventoryInput{Name: "Rebar", Quantity: 5, UnitPrice: decimal.NewFromFloat(2.5)})
	require.NoError(t, err)
	_, err = f.directory.CreateInventory(ctx, InventoryInput{Name: "Cement", Quantity: 50})
	require.NoError(t, err)
	_, err = f.directory.CreateInventory(ctx, InventoryInput{Name: "Bad", Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	updated, err := f.directory.UpdateInventory(ctx, item.ID, InventoryInput{Name: "Rebar", Quantity: 40})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Quantity)
	_, err = f.directory.UpdateInventory(ctx, "ghost", InventoryInput{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInventoryNotFound)

	require.NoError(t, f.directory.DeleteInventory(ctx, item.ID))
	assert.ErrorIs(t, f.directory.DeleteInventory(ctx, item.ID), domain.ErrInventoryNotFound)
	items, err := f.directory.ListInventory(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = f.directory.CreateManager(ctx, ProfileInput{Email: "m@x.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.manager(t, "m@x.com")
	f.employee(t, "e1")
	f.employee(t, "e2")
	p := f.project(t, m.ID, "e1")
	f.project(t, m.ID)
	f.task(t, p.ID, domain.TaskCompleted)
	f.task(t, p.ID, domain.TaskTodo)
	f.task(t, p.ID, domain.TaskInProgress)
	f.task(t, p.ID, domain.TaskOnHold)
	_, err := f.directory.CreateInventory(ctx, InventoryInput{Name: "Rebar", Quantity: 3})
	require.NoError(t, err)

	stats, err := f.dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		TotalProjects:      2,
		ActiveProjects:     1,
		TotalEmployees:     2,
		AvailableEmployees: 1,
		PendingTasks:       1,
		InProgressTasks:    1,
		CompletedTasks:     1,
		LowStockItems:      1,
	}, *stats)

	company, err := f.dashboard.CompanyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, CompanyStats{Employees: 2, ActiveProjects: 1}, *company)

	taskStats, err := f.dashboard.TaskStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), taskStats.Total)
	assert.Equal(t, int64(1), taskStats.OnHold)

	onHold, err := f.dashboard.TasksByStatus(ctx, domain.TaskOnHold)
	require.NoError(t, err)
	assert.Len(t, onHold, 1)
	_, err = f.dashboard.TasksByStatus(ctx, "DONE")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExportProjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.manager(t, "m@x.com")
	p := f.project(t, m.ID)
	f.task(t, p.ID, domain.TaskCompleted)
	f.task(t, p.ID, domain.TaskTodo)

	var buf bytes.Buffer
	require.NoError(t, f.dashboard.ExportProjects(ctx, &buf))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Progress", rows[0][5])
	assert.Equal(t, p.ID, rows[1][0])
	assert.Equal(t, "Manager m@x.com", rows[1][2])
	assert.Equal(t, string(domain.ProjectActive), rows[1][4])
	assert.Equal(t, "50", rows[1][5])
	assert.Equal(t, "2", rows[1][6])
	assert.Equal(t, "1", rows[1][7])
}
