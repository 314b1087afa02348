// pkg/notifier/store.go
package notifier

import "NotifyHub/pkg/model"

// NotificationStore 通知存储能力，核心逻辑只依赖这组窄接口，
// 便于在测试中用假实现替换
type NotificationStore interface {
	CreateBatch(notifications []*model.Notification) error
	GetForUser(userID, notificationID string) (*model.Notification, error)
	MarkAsRead(userID, notificationID string) (int64, error)
	MarkAllAsRead(userID string) (int64, error)
	MarkManyAsRead(userID string, notificationIDs []string) (int64, error)
	GetUnreadCount(userID string) (int64, error)
}

// UserStore 用户查询能力，分发时解析租户下的接收人
type UserStore interface {
	ActiveByCustomer(customerID string) ([]*model.User, error)
}

// TemplateStore 模板查询能力，软删除的模板不可见
type TemplateStore interface {
	GetActive(templateID string) (*model.Template, error)
}

// Publisher 实时推送能力，推送失败不影响已落库的数据
type Publisher interface {
	Publish(channel, event string, payload interface{}) error
}

// Sanitizer HTML消毒能力，只在写入时调用一次
type Sanitizer interface {
	Sanitize(raw string) string
}
