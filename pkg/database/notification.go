// pkg/database/notification.go
package database

import (
	"fmt"
	"time"

	"NotifyHub/pkg/model"

	"gorm.io/gorm"
)

type NotificationDB struct {
	db *gorm.DB
}

func (p *Postgres) Notification() *NotificationDB {
	return &NotificationDB{db: p.db}
}

// CreateBatch 批量创建通知，一次INSERT写入所有接收人的记录
func (n *NotificationDB) CreateBatch(notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := n.db.Create(&notifications).Error; err != nil {
		return fmt.Errorf("批量创建通知失败: %w", err)
	}
	return nil
}

func (n *NotificationDB) GetByID(notificationID string) (*model.Notification, error) {
	var notification model.Notification
	err := n.db.First(&notification, "id = ?", notificationID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("获取通知失败: %w", err)
	}
	return &notification, nil
}

// GetForUser 按接收人获取通知，防止跨用户读取
func (n *NotificationDB) GetForUser(userID, notificationID string) (*model.Notification, error) {
	var notification model.Notification
	err := n.db.First(&notification, "id = ? AND user_id = ?", notificationID, userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("获取通知失败: %w", err)
	}
	return &notification, nil
}

// ListFilter 用户侧列表过滤条件
type ListFilter struct {
	Type       string // 通知类型标签
	Channel    string
	UnreadOnly bool
	Limit      int
	Offset     int
}

func (n *NotificationDB) ListByUser(userID string, filter ListFilter) ([]*model.Notification, error) {
	var notifications []*model.Notification
	query := n.db.Where("user_id = ?", userID)

	if filter.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if filter.Type != "" {
		query = query.Where("types @> ?::jsonb", fmt.Sprintf(`["%s"]`, filter.Type))
	}
	if filter.Channel != "" {
		query = query.Where("channel = ?", filter.Channel)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&notifications).Error

	if err != nil {
		return nil, fmt.Errorf("查询用户通知失败: %w", err)
	}
	return notifications, nil
}

// AdminFilter 管理端列表过滤条件
type AdminFilter struct {
	CustomerID string
	UserID     string
	SenderID   string
	Search     string // 标题/内容全文检索
	Limit      int
	Offset     int
}

// ListAdmin 管理端通知列表，支持按租户/接收人/发送人/关键字过滤
func (n *NotificationDB) ListAdmin(filter AdminFilter) ([]*model.Notification, int64, error) {
	query := n.db.Model(&model.Notification{})

	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.SenderID != "" {
		query = query.Where("sender_id = ?", filter.SenderID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR message ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计通知数量失败: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var notifications []*model.Notification
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&notifications).Error

	if err != nil {
		return nil, 0, fmt.Errorf("查询通知列表失败: %w", err)
	}
	return notifications, total, nil
}

// MarkAsRead 按id+接收人标记已读，返回受影响的行数。
// 只按id和接收人匹配，重复调用会覆盖时间戳但不会报错。
func (n *NotificationDB) MarkAsRead(userID, notificationID string) (int64, error) {
	result := n.db.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read_at", time.Now())

	if result.Error != nil {
		return 0, fmt.Errorf("标记通知已读失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// MarkAllAsRead 一条UPDATE语句标记该用户全部未读通知
func (n *NotificationDB) MarkAllAsRead(userID string) (int64, error) {
	result := n.db.Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now())

	if result.Error != nil {
		return 0, fmt.Errorf("批量标记已读失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// MarkManyAsRead 标记指定id集合中属于该用户的未读通知，
// 不属于该用户或已读的id静默跳过
func (n *NotificationDB) MarkManyAsRead(userID string, notificationIDs []string) (int64, error) {
	if len(notificationIDs) == 0 {
		return 0, nil
	}

	result := n.db.Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL AND id IN ?", userID, notificationIDs).
		Update("read_at", time.Now())

	if result.Error != nil {
		return 0, fmt.Errorf("批量标记已读失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetUnreadCount 获取用户未读通知数量
func (n *NotificationDB) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := n.db.Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计未读通知失败: %w", err)
	}
	return count, nil
}

// UserUnread 用户未读统计
type UserUnread struct {
	UserID string `json:"user_id"`
	Count  int64  `json:"count"`
}

// ListUsersWithUnread 统计所有有未读通知的用户，用于每日摘要任务
func (n *NotificationDB) ListUsersWithUnread() ([]UserUnread, error) {
	var stats []UserUnread
	err := n.db.Model(&model.Notification{}).
		Select("user_id, COUNT(*) as count").
		Where("read_at IS NULL").
		Group("user_id").
		Find(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("统计未读用户失败: %w", err)
	}
	return stats, nil
}
