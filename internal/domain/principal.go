package domain

import (
	"time"

	"gorm.io/gorm"
)

// Principal is implemented by the three role-specific profiles.
type Principal interface {
	PrincipalID() string
	RoleTag() RoleTag
	Credentials() (email, password string)
}

type Admin struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Username  string `json:"username"`
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}

func (a *Admin) PrincipalID() string                   { return a.ID }
func (a *Admin) RoleTag() RoleTag                      { return RoleAdmin }
func (a *Admin) Credentials() (email, password string) { return a.Email, a.Password }

type Manager struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Name      string `json:"name"`
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m *Manager) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}

func (m *Manager) PrincipalID() string                   { return m.ID }
func (m *Manager) RoleTag() RoleTag                      { return RoleManager }
func (m *Manager) Credentials() (email, password string) { return m.Email, m.Password }

// Employee ids are never generated: registration copies the ledger id and
// direct creation requires the caller to pick one.
type Employee struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	UserID         string     `gorm:"size:36" json:"userId"`
	Name           string     `json:"name"`
	Skill          string     `json:"skill"`
	JobRole        string     `json:"jobRole"`
	ExperienceYear int        `json:"experienceYear"`
	ContactNumber  string     `json:"contactNumber"`
	Email          string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password       string     `gorm:"not null" json:"-"`
	RoleID         *string    `gorm:"size:36;index" json:"roleId"`
	Role           *Role      `json:"role,omitempty"`
	ProjectID      *string    `gorm:"size:36;index" json:"projectId"`
	HireDate       *time.Time `json:"hireDate"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (e *Employee) PrincipalID() string                   { return e.ID }
func (e *Employee) RoleTag() RoleTag                      { return RoleEmployee }
func (e *Employee) Credentials() (email, password string) { return e.Email, e.Password }
