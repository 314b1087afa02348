// pkg/model/notification.go
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification 通知记录，一条记录对应一个接收人
type Notification struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string     `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID *string    `gorm:"type:uuid;index" json:"customer_id"`
	SenderID   *string    `gorm:"type:uuid" json:"sender_id"`
	Types      TypeList   `gorm:"type:jsonb" json:"types"`
	Title      string     `gorm:"not null" json:"title"`
	Message    string     `gorm:"type:text" json:"message"` // 已消毒的HTML内容
	TemplateID *string    `gorm:"type:uuid;index" json:"template_id"`
	Metadata   Metadata   `gorm:"type:jsonb" json:"metadata,omitempty"`
	Channel    string     `gorm:"type:varchar(20)" json:"channel"`
	ReadAt     *time.Time `gorm:"index" json:"read_at"` // 为空表示未读，已读状态的唯一依据
	CreatedBy  string     `gorm:"type:varchar(50)" json:"created_by"`
	CreatedAt  time.Time  `gorm:"index:idx_notifications_user_created" json:"created_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

// IsRead 已读标志只能从ReadAt推导，不单独存储
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarshalJSON 输出时附带推导的is_read字段
func (n Notification) MarshalJSON() ([]byte, error) {
	type alias Notification
	return json.Marshal(struct {
		alias
		IsRead bool `json:"is_read"`
	}{
		alias:  alias(n),
		IsRead: n.ReadAt != nil,
	})
}
