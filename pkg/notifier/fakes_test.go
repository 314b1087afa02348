// pkg/notifier/fakes_test.go
package notifier

import (
	"errors"
	"regexp"
	"sync"
	"time"

	"NotifyHub/pkg/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeNotificationStore 内存通知存储
type fakeNotificationStore struct {
	mu   sync.Mutex
	rows []*model.Notification

	failCreateForUser string // 批次包含该接收人时写入失败
}

func (f *fakeNotificationStore) CreateBatch(notifications []*model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreateForUser != "" {
		for _, n := range notifications {
			if n.UserID == f.failCreateForUser {
				return errors.New("数据库写入失败")
			}
		}
	}

	for _, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		n.CreatedAt = time.Now()
		f.rows = append(f.rows, n)
	}
	return nil
}

func (f *fakeNotificationStore) GetForUser(userID, notificationID string) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.rows {
		if n.ID == notificationID && n.UserID == userID {
			return n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNotificationStore) MarkAsRead(userID, notificationID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var affected int64
	now := time.Now()
	for _, n := range f.rows {
		if n.ID == notificationID && n.UserID == userID {
			n.ReadAt = &now
			affected++
		}
	}
	return affected, nil
}

func (f *fakeNotificationStore) MarkAllAsRead(userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var affected int64
	now := time.Now()
	for _, n := range f.rows {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &now
			affected++
		}
	}
	return affected, nil
}

func (f *fakeNotificationStore) MarkManyAsRead(userID string, notificationIDs []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make(map[string]struct{}, len(notificationIDs))
	for _, id := range notificationIDs {
		ids[id] = struct{}{}
	}
	var affected int64
	now := time.Now()
	for _, n := range f.rows {
		if _, ok := ids[n.ID]; !ok {
			continue
		}
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &now
			affected++
		}
	}
	return affected, nil
}

func (f *fakeNotificationStore) GetUnreadCount(userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.rows {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) rowsForUser(userID string) []*model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Notification
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeNotificationStore) seed(userID string, unread, read int) {
	now := time.Now()
	for i := 0; i < unread; i++ {
		f.rows = append(f.rows, &model.Notification{
			ID:     uuid.New().String(),
			UserID: userID,
			Title:  "未读通知",
		})
	}
	for i := 0; i < read; i++ {
		readAt := now
		f.rows = append(f.rows, &model.Notification{
			ID:     uuid.New().String(),
			UserID: userID,
			Title:  "已读通知",
			ReadAt: &readAt,
		})
	}
}

// fakeUserStore 内存用户存储
type fakeUserStore struct {
	byCustomer map[string][]*model.User
}

func (f *fakeUserStore) ActiveByCustomer(customerID string) ([]*model.User, error) {
	return f.byCustomer[customerID], nil
}

// fakeTemplateStore 内存模板存储
type fakeTemplateStore struct {
	templates map[string]*model.Template
}

func (f *fakeTemplateStore) GetActive(templateID string) (*model.Template, error) {
	if t, ok := f.templates[templateID]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// publishedEvent 记录一次推送
type publishedEvent struct {
	Channel string
	Event   string
	Payload interface{}
}

// fakePublisher 记录推送的假实现
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error // 非空时所有推送返回该错误
}

func (f *fakePublisher) Publish(channel, event string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{Channel: channel, Event: event, Payload: payload})
	return nil
}

func (f *fakePublisher) byEvent(event string) []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishedEvent
	for _, e := range f.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

var scriptRe = regexp.MustCompile(`(?is)<script.*?</script>`)

// fakeSanitizer 去掉script标签的简化消毒器
type fakeSanitizer struct{}

func (fakeSanitizer) Sanitize(raw string) string {
	return scriptRe.ReplaceAllString(raw, "")
}

// newTestCore 组装一套用假依赖接好的核心组件
func newTestCore() (*Dispatcher, *ReadStateTracker, *fakeNotificationStore, *fakeUserStore, *fakePublisher) {
	store := &fakeNotificationStore{}
	users := &fakeUserStore{byCustomer: make(map[string][]*model.User)}
	pub := &fakePublisher{}
	tracker := NewReadStateTracker(store, pub)
	dispatcher := NewDispatcher(store, users, fakeSanitizer{}, tracker, pub)
	return dispatcher, tracker, store, users, pub
}
