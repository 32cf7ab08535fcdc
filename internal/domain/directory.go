package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Role struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	RoleName string `gorm:"not null" json:"roleName"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

type Material struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	MaterialName string `json:"materialName"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}

type Inventory struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	Unit      string          `json:"unit"`
	MinStock  int             `json:"minStock"`
	MaxStock  int             `json:"maxStock"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,2)" json:"unitPrice"`
	Location  string          `json:"location"`
	UpdatedAt time.Time
}

func (Inventory) TableName() string { return "inventory" }

func (i *Inventory) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// LowStockThreshold is the quantity below which an item counts as low stock.
const LowStockThreshold = 10

type Customer struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	ContactName string `gorm:"not null" json:"contactName"`
	ProjectID   string `gorm:"size:36;not null;uniqueIndex" json:"projectId"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
