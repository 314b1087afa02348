// pkg/notifier/dispatcher.go
package notifier

import (
	"log"
	"sync"

	"NotifyHub/pkg/errno"
	"NotifyHub/pkg/model"
)

// 实时推送频道命名
const (
	channelMainNotifications   = "main-notifications:"
	channelUnreadNotifications = "unread-notifications:"

	eventNewNotification = "new"
	eventUnreadCount     = "unread_count"
)

// CreateRequest 创建通知请求
type CreateRequest struct {
	UserID     string         `json:"user_id"`
	CustomerID string         `json:"customer_id"`
	SenderID   string         `json:"sender_id"`
	Title      string         `json:"title"`
	Message    string         `json:"message"` // 未消毒的原始内容
	Types      model.TypeList `json:"types"`
	Channel    string         `json:"channel"`
	TemplateID string         `json:"template_id"`
	Metadata   model.Metadata `json:"metadata"`
	CreatedBy  string         `json:"created_by"` // 通知来源的归因说明
}

// Dispatcher 通知分发器。
// 负责接收人解析、内容消毒、批量落库，落库后异步触发实时推送。
// 落库必须成功，推送是尽力而为的。
type Dispatcher struct {
	notifications NotificationStore
	users         UserStore
	sanitizer     Sanitizer
	readState     *ReadStateTracker
	publisher     Publisher

	wg sync.WaitGroup // 跟踪落库后的异步推送，停机时等待排空
}

// NewDispatcher 创建通知分发器
func NewDispatcher(
	notifications NotificationStore,
	users UserStore,
	sanitizer Sanitizer,
	readState *ReadStateTracker,
	publisher Publisher,
) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		users:         users,
		sanitizer:     sanitizer,
		readState:     readState,
		publisher:     publisher,
	}
}

// Create 创建通知。
// 接收人解析规则：
//  1. 只给customerID时，向该租户下所有未删除用户分发，一人一条记录；
//     租户下没有用户时直接报冲突，不静默跳过。
//  2. 给了userID时只发给该用户，customerID仅作为记录上的元数据保留。
//  3. 两者都没给时报冲突。
//
// 多接收人分发走一次批量INSERT，要么全部写入要么全部失败。
// 返回单接收人时创建的记录，多接收人时返回批次的最后一条。
func (d *Dispatcher) Create(req CreateRequest) (*model.Notification, error) {
	// 解析接收人集合
	var recipientIDs []string
	switch {
	case req.UserID == "" && req.CustomerID != "":
		users, err := d.users.ActiveByCustomer(req.CustomerID)
		if err != nil {
			return nil, err
		}
		if len(users) == 0 {
			return nil, errno.ErrConflict.WithMessage("no recipients found for customer")
		}
		for _, u := range users {
			recipientIDs = append(recipientIDs, u.ID)
		}
	case req.UserID != "":
		recipientIDs = []string{req.UserID}
	default:
		return nil, errno.ErrConflict.WithMessage("notification must be associated with a user or a customer")
	}

	// 写入前消毒一次，之后不存在重新消毒的路径
	message := d.sanitizer.Sanitize(req.Message)

	notifications := make([]*model.Notification, 0, len(recipientIDs))
	for _, userID := range recipientIDs {
		notifications = append(notifications, &model.Notification{
			UserID:     userID,
			CustomerID: optional(req.CustomerID),
			SenderID:   optional(req.SenderID),
			Types:      req.Types,
			Title:      req.Title,
			Message:    message,
			TemplateID: optional(req.TemplateID),
			Metadata:   req.Metadata,
			Channel:    req.Channel,
			CreatedBy:  req.CreatedBy,
		})
	}

	// 批量落库
	if err := d.notifications.CreateBatch(notifications); err != nil {
		return nil, err
	}

	// 落库成功后异步推送，不阻塞调用方，失败只记日志不回滚
	d.wg.Add(1)
	go d.afterCreate(notifications)

	return notifications[len(notifications)-1], nil
}

// afterCreate 落库后的推送步骤：逐个接收人刷新未读数，
// 站内类型的通知再推送new事件
func (d *Dispatcher) afterCreate(notifications []*model.Notification) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("通知推送任务异常退出: %v", r)
		}
	}()

	for _, n := range notifications {
		if err := d.readState.PushUnreadCount(n.UserID); err != nil {
			log.Printf("推送未读数失败 user=%s: %v", n.UserID, err)
		}
		if err := d.SendInApp(n); err != nil {
			log.Printf("推送站内通知失败 user=%s: %v", n.UserID, err)
		}
	}
}

// SendInApp 向接收人的实时频道推送new事件。
// 仅当接收人、租户都存在且类型包含in_app时推送，否则静默跳过。
func (d *Dispatcher) SendInApp(n *model.Notification) error {
	if n.UserID == "" || n.CustomerID == nil || *n.CustomerID == "" {
		return nil
	}
	if !n.Types.Has(model.TypeInApp) {
		return nil
	}
	return d.publisher.Publish(channelMainNotifications+n.UserID, eventNewNotification, n)
}

// Drain 等待所有已调度的异步推送完成，停机时调用
func (d *Dispatcher) Drain() {
	d.wg.Wait()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
