package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"constructedge/internal/config"
	"constructedge/internal/domain"
	"constructedge/internal/lock"
	"constructedge/internal/repository"
	"constructedge/internal/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	store *repository.Store

	identity   *IdentityService
	tasks      *TaskService
	projects   *ProjectService
	reconciler *Reconciler
	employees  *EmployeeService
	directory  *DirectoryService
	dashboard  *DashboardService

	// failProjectWrites makes every UPDATE on the projects table fail.
	failProjectWrites atomic.Bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := config.OpenDatabase(config.DBConfig{
		Driver: "sqlite",
		Name:   "constructedge_test",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	store := repository.NewStore(db)
	require.NoError(t, store.AutoMigrate())

	locker := lock.NewLocalLocker()
	codec := utils.PlainCodec{}
	f := &fixture{
		db:         db,
		store:      store,
		identity:   NewIdentityService(store, codec),
		tasks:      NewTaskService(store, locker),
		projects:   NewProjectService(store, locker),
		reconciler: NewReconciler(store, locker),
		employees:  NewEmployeeService(store, codec),
		directory:  NewDirectoryService(store, codec),
		dashboard:  NewDashboardService(store),
	}

	err = db.Callback().Update().Before("gorm:update").Register("test:fail_project_writes", func(tx *gorm.DB) {
		if f.failProjectWrites.Load() && tx.Statement.Table == "projects" {
			_ = tx.AddError(errors.New("injected project write failure"))
		}
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) manager(t *testing.T, email string) *domain.Manager {
	t.Helper()
	m := &domain.Manager{Name: "Manager " + email, Email: email, Password: "pw"}
	require.NoError(t, f.store.Managers.Create(context.Background(), m))
	return m
}

func (f *fixture) employee(t *testing.T, id string) *domain.Employee {
	t.Helper()
	e := &domain.Employee{ID: id, Name: "Employee " + id, Email: id + "@x.com", Password: "pw"}
	require.NoError(t, f.store.Employees.Create(context.Background(), e))
	return e
}

func (f *fixture) project(t *testing.T, managerID string, employeeIDs ...string) *domain.Project {
	t.Helper()
	p, err := f.projects.CreateProject(context.Background(), ProjectInput{
		Name:        "Tower",
		Location:    "Site A",
		ManagerID:   managerID,
		EmployeeIDs: employeeIDs,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) task(t *testing.T, projectID string, status domain.TaskStatus, assignees ...string) *domain.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), TaskInput{
		Title:       "Pour slab",
		ProjectID:   projectID,
		Status:      status,
		Priority:    "HIGH",
		EmployeeIDs: assignees,
	})
	require.NoError(t, err)
	return task
}

// state reads the persisted derived fields of a project.
func (f *fixture) state(t *testing.T, projectID string) (int, domain.ProjectStatus) {
	t.Helper()
	p, err := f.store.Projects.FindByID(context.Background(), projectID)
	require.NoError(t, err)
	return p.Progress, p.Status
}

func (f *fixture) taskCount(t *testing.T, projectID string) int64 {
	t.Helper()
	n, err := f.store.Tasks.CountByProject(context.Background(), projectID)
	require.NoError(t, err)
	return n
}
