// pkg/model/template.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Template 可复用的通知模板
type Template struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string         `gorm:"not null" json:"title"`
	Message    string         `gorm:"type:text" json:"message"` // 已消毒的HTML内容
	Comment    *string        `gorm:"type:text" json:"comment"`
	Types      TypeList       `gorm:"type:jsonb" json:"types"`
	Channel    string         `gorm:"type:varchar(20)" json:"channel"`
	CustomerID *string        `gorm:"type:uuid;index" json:"customer_id"` // 为空表示全局共享模板
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// IsEmailOnly 模板是否仅限邮件渠道，仅限邮件的模板不能走站内发送
func (t *Template) IsEmailOnly() bool {
	return t.Types.Has(TypeEmail)
}
