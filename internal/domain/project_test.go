package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveProgress(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		completed int64
		want      int
	}{
		{"no tasks", 0, 0, 0},
		{"none completed", 4, 0, 0},
		{"half", 4, 2, 50},
		{"floors", 3, 2, 66},
		{"one third", 3, 1, 33},
		{"all", 5, 5, 100},
		{"completed above total is clamped", 2, 3, 100},
		{"negative total", -1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveProgress(tt.total, tt.completed))
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, ProjectPlanning, DeriveStatus(0))
	assert.Equal(t, ProjectActive, DeriveStatus(1))
	assert.Equal(t, ProjectActive, DeriveStatus(99))
	assert.Equal(t, ProjectCompleted, DeriveStatus(100))
}

func TestApplyTaskCountsInvariants(t *testing.T) {
	for total := int64(0); total <= 40; total++ {
		for completed := int64(0); completed <= total; completed++ {
			p := &Project{Status: ProjectCompleted, Progress: 77}
			p.ApplyTaskCounts(total, completed)

			assert.GreaterOrEqual(t, p.Progress, 0)
			assert.LessOrEqual(t, p.Progress, 100)
			switch {
			case total == 0 || p.Progress == 0:
				assert.Equal(t, ProjectPlanning, p.Status, "total=%d completed=%d", total, completed)
			case p.Progress == 100:
				assert.Equal(t, total, completed)
				assert.Equal(t, ProjectCompleted, p.Status)
			default:
				assert.Equal(t, ProjectActive, p.Status)
			}
		}
	}
}

func TestHasEmployee(t *testing.T) {
	p := &Project{Employees: []Employee{{ID: "e1"}, {ID: "e2"}}}
	assert.True(t, p.HasEmployee("e2"))
	assert.False(t, p.HasEmployee("e3"))
}

func TestTaskStatusValid(t *testing.T) {
	for _, s := range []TaskStatus{TaskTodo, TaskInProgress, TaskCompleted, TaskOnHold, TaskCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, TaskStatus("DONE").Valid())
	assert.False(t, TaskStatus("completed").Valid())
}
