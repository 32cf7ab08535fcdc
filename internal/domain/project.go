package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "PLANNING"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskOnHold     TaskStatus = "ON_HOLD"
	TaskCancelled  TaskStatus = "CANCELLED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskCompleted, TaskOnHold, TaskCancelled:
		return true
	}
	return false
}

// Project status and progress are derived from the task set and are only
// written by the reconciliation path.
type Project struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Budget    decimal.Decimal `gorm:"type:decimal(20,2)" json:"budget"`
	StartDate *time.Time      `json:"startDate"`
	EndDate   *time.Time      `json:"endDate"`
	ManagerID string          `gorm:"size:36;not null;index" json:"managerId"`
	Manager   *Manager        `json:"manager,omitempty"`
	Employees []Employee      `gorm:"many2many:project_employees;" json:"employees,omitempty"`
	Materials []Material      `gorm:"many2many:project_materials;" json:"materials,omitempty"`
	Tasks     []Task          `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
	Location  string          `gorm:"not null" json:"location"`
	Status    ProjectStatus   `gorm:"size:16;not null;index" json:"status"`
	Progress  int             `gorm:"not null" json:"progress"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// HasEmployee reports whether the loaded employee set contains id.
func (p *Project) HasEmployee(id string) bool {
	for _, e := range p.Employees {
		if e.ID == id {
			return true
		}
	}
	return false
}

// ApplyTaskCounts overwrites progress and status from the task counts.
func (p *Project) ApplyTaskCounts(total, completed int64) {
	p.Progress = DeriveProgress(total, completed)
	p.Status = DeriveStatus(p.Progress)
}

// DeriveProgress is floor(100*completed/total), or 0 for an empty project.
func DeriveProgress(total, completed int64) int {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return int(completed * 100 / total)
}

func DeriveStatus(progress int) ProjectStatus {
	switch {
	case progress <= 0:
		return ProjectPlanning
	case progress < 100:
		return ProjectActive
	default:
		return ProjectCompleted
	}
}

type Task struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	Title             string     `gorm:"not null" json:"title"`
	Description       string     `gorm:"size:500" json:"description"`
	ProjectID         string     `gorm:"size:36;not null;index" json:"projectId"`
	Project           *Project   `json:"-"`
	Status            TaskStatus `gorm:"size:16;not null;index" json:"status"`
	Priority          string     `gorm:"not null" json:"priority"`
	DueDate           *time.Time `json:"dueDate"`
	AssignedEmployees []Employee `gorm:"many2many:task_assigned_employees;" json:"assignedEmployees"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}
