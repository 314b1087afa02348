// pkg/model/user.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 租户下的用户
type User struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID string         `gorm:"type:uuid;not null;index" json:"customer_id"`
	Email      string         `gorm:"uniqueIndex" json:"email"`
	Name       string         `json:"name"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"` // 已删除用户不参与任何通知分发

	// 关联
	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
