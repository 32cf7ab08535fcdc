package service

import (
	"context"
	"fmt"
	"io"

	"constructedge/internal/domain"
	"constructedge/internal/repository"

	"github.com/xuri/excelize/v2"
)

type Stats struct {
	TotalProjects      int64 `json:"totalProjects"`
	ActiveProjects     int64 `json:"activeProjects"`
	TotalEmployees     int64 `json:"totalEmployees"`
	AvailableEmployees int64 `json:"availableEmployees"`
	PendingTasks       int64 `json:"pendingTasks"`
	InProgressTasks    int64 `json:"inProgressTasks"`
	CompletedTasks     int64 `json:"completedTasks"`
	LowStockItems      int64 `json:"lowStockItems"`
}

type CompanyStats struct {
	Employees      int64 `json:"employees"`
	ActiveProjects int64 `json:"activeProjects"`
}

type TaskStats struct {
	Total      int64 `json:"total"`
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	OnHold     int64 `json:"onHold"`
	Cancelled  int64 `json:"cancelled"`
}

type DashboardService struct {
	store *repository.Store
}

func NewDashboardService(store *repository.Store) *DashboardService {
	return &DashboardService{store: store}
}

func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	var (
		out Stats
		err error
	)
	counters := []struct {
		dst *int64
		fn  func() (int64, error)
	}{
		{&out.TotalProjects, func() (int64, error) { return s.store.Projects.Count(ctx) }},
		{&out.ActiveProjects, func() (int64, error) { return s.store.Projects.CountByStatus(ctx, domain.ProjectActive) }},
		{&out.TotalEmployees, func() (int64, error) { return s.store.Employees.Count(ctx) }},
		{&out.AvailableEmployees, func() (int64, error) { return s.store.Employees.CountUnassigned(ctx) }},
		{&out.PendingTasks, func() (int64, error) { return s.store.Tasks.CountByStatus(ctx, domain.TaskTodo) }},
		{&out.InProgressTasks, func() (int64, error) { return s.store.Tasks.CountByStatus(ctx, domain.TaskInProgress) }},
		{&out.CompletedTasks, func() (int64, error) { return s.store.Tasks.CountByStatus(ctx, domain.TaskCompleted) }},
		{&out.LowStockItems, func() (int64, error) { return s.store.Inventory.CountBelow(ctx, domain.LowStockThreshold) }},
	}
	for _, c := range counters {
		if *c.dst, err = c.fn(); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func (s *DashboardService) CompanyStats(ctx context.Context) (*CompanyStats, error) {
	employees, err := s.store.Employees.Count(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.store.Projects.CountByStatus(ctx, domain.ProjectActive)
	if err != nil {
		return nil, err
	}
	return &CompanyStats{Employees: employees, ActiveProjects: active}, nil
}

func (s *DashboardService) TaskStats(ctx context.Context) (*TaskStats, error) {
	var out TaskStats
	for status, dst := range map[domain.TaskStatus]*int64{
		domain.TaskTodo:       &out.Todo,
		domain.TaskInProgress: &out.InProgress,
		domain.TaskCompleted:  &out.Completed,
		domain.TaskOnHold:     &out.OnHold,
		domain.TaskCancelled:  &out.Cancelled,
	} {
		n, err := s.store.Tasks.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		*dst = n
		out.Total += n
	}
	return &out, nil
}

func (s *DashboardService) TasksByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	if !status.Valid() {
		return nil, validationError("unknown task status %q", status)
	}
	return s.store.Tasks.ListByStatus(ctx, status)
}

const exportSheet = "Projects"

var exportHeader = []interface{}{"ID", "Name", "Manager", "Location", "Status", "Progress", "Tasks", "Completed", "Budget"}

// ExportProjects writes a workbook with one row per project and its
// current progress.
func (s *DashboardService) ExportProjects(ctx context.Context, w io.Writer) error {
	projects, err := s.store.Projects.List(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return err
	}

	for i, p := range projects {
		total, err := s.store.Tasks.CountByProject(ctx, p.ID)
		if err != nil {
			return err
		}
		completed, err := s.store.Tasks.CountByProjectAndStatus(ctx, p.ID, domain.TaskCompleted)
		if err != nil {
			return err
		}
		manager := ""
		if p.Manager != nil {
			manager = p.Manager.Name
		}
		budget, _ := p.Budget.Float64()
		row := []interface{}{p.ID, p.Name, manager, p.Location, string(p.Status), p.Progress, total, completed, budget}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
