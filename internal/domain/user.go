package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleTag string

const (
	RoleAdmin    RoleTag = "ADMIN"
	RoleManager  RoleTag = "MANAGER"
	RoleEmployee RoleTag = "EMPLOYEE"
)

// User is a row of the registration ledger. It is the only place where
// email uniqueness is enforced across roles.
type User struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	Name      string  `json:"name"`
	Email     string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string  `gorm:"not null" json:"-"`
	Role      RoleTag `gorm:"size:16;not null" json:"role"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
