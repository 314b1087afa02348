// pkg/notifier/readstate.go
package notifier

import (
	"log"

	"NotifyHub/pkg/errno"
)

// ReadStateTracker 通知已读状态维护。
// read_at时间戳是已读状态的唯一依据，状态只有未读→已读一个方向，
// 任何路径都不会把已读翻回未读。每次可能改变未读数的变更之后，
// 都要通过PushUnreadCount把最新未读数推给前端。
type ReadStateTracker struct {
	notifications NotificationStore
	publisher     Publisher
}

// NewReadStateTracker 创建已读状态跟踪器
func NewReadStateTracker(notifications NotificationStore, publisher Publisher) *ReadStateTracker {
	return &ReadStateTracker{
		notifications: notifications,
		publisher:     publisher,
	}
}

// MarkOne 标记单条通知已读。
// 按通知id加接收人匹配，防止跨用户修改；没有匹配的记录时报not found。
// 并发重复调用只会覆盖时间戳，不是错误。
func (r *ReadStateTracker) MarkOne(userID, notificationID string) error {
	affected, err := r.notifications.MarkAsRead(userID, notificationID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errno.ErrNotFound.WithMessage("notification not found")
	}
	return r.PushUnreadCount(userID)
}

// MarkAll 标记该用户全部未读通知为已读。
// 一条UPDATE语句完成，幂等：重复调用影响零行，不是错误。
// 推送只在批量更新后做一次。
func (r *ReadStateTracker) MarkAll(userID string) (int64, error) {
	affected, err := r.notifications.MarkAllAsRead(userID)
	if err != nil {
		return 0, err
	}
	if err := r.PushUnreadCount(userID); err != nil {
		return affected, err
	}
	return affected, nil
}

// MarkMany 标记指定id集合中属于该用户的未读通知。
// 不属于该用户或已读的id静默跳过，不报错。
func (r *ReadStateTracker) MarkMany(userID string, notificationIDs []string) (int64, error) {
	affected, err := r.notifications.MarkManyAsRead(userID, notificationIDs)
	if err != nil {
		return 0, err
	}
	if err := r.PushUnreadCount(userID); err != nil {
		return affected, err
	}
	return affected, nil
}

// UnreadCount 获取用户未读通知数量，纯查询无副作用
func (r *ReadStateTracker) UnreadCount(userID string) (int64, error) {
	return r.notifications.GetUnreadCount(userID)
}

// PushUnreadCount 重新统计未读数并推送到用户的未读数频道。
// 前端未读角标的一致性全部经过这个入口。
// 数据库错误向上传递；推送错误只记日志，变更本身已经提交。
func (r *ReadStateTracker) PushUnreadCount(userID string) error {
	count, err := r.notifications.GetUnreadCount(userID)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{"count": count}
	if err := r.publisher.Publish(channelUnreadNotifications+userID, eventUnreadCount, payload); err != nil {
		// 漏推的未读数会在用户下一次变更时自愈
		log.Printf("推送未读数失败 user=%s: %v", userID, err)
	}
	return nil
}
