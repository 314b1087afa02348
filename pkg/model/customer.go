// pkg/model/customer.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer 租户，用户、通知、模板都按租户隔离
type Customer struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联
	Users []User `gorm:"foreignKey:CustomerID" json:"users,omitempty"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
