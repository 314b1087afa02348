// pkg/notifier/dispatcher_test.go
package notifier

import (
	"errors"
	"testing"

	"NotifyHub/pkg/errno"
	"NotifyHub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFanOutToCustomerUsers(t *testing.T) {
	dispatcher, _, store, users, pub := newTestCore()
	users.byCustomer["c1"] = []*model.User{
		{ID: "u1", CustomerID: "c1"},
		{ID: "u2", CustomerID: "c1"},
		{ID: "u3", CustomerID: "c1"},
	}

	last, err := dispatcher.Create(CreateRequest{
		CustomerID: "c1",
		Title:      "系统维护",
		Message:    "今晚升级",
		Types:      model.TypeList{model.TypeInApp},
		Channel:    model.ChannelInApp,
	})
	require.NoError(t, err)
	require.NotNil(t, last)
	dispatcher.Drain()

	// 每个用户恰好一条记录，全部未读
	for _, uid := range []string{"u1", "u2", "u3"} {
		rows := store.rowsForUser(uid)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].ReadAt)
		assert.False(t, rows[0].IsRead())
		require.NotNil(t, rows[0].CustomerID)
		assert.Equal(t, "c1", *rows[0].CustomerID)
	}

	// 落库后每个接收人都收到一次未读数推送和一次new事件
	assert.Len(t, pub.byEvent(eventUnreadCount), 3)
	newEvents := pub.byEvent(eventNewNotification)
	require.Len(t, newEvents, 3)
	for _, e := range newEvents {
		n := e.Payload.(*model.Notification)
		assert.Equal(t, channelMainNotifications+n.UserID, e.Channel)
	}
}

func TestCreateEmptyCustomerRejected(t *testing.T) {
	dispatcher, _, store, users, _ := newTestCore()
	users.byCustomer["empty"] = nil

	_, err := dispatcher.Create(CreateRequest{
		CustomerID: "empty",
		Title:      "t",
		Message:    "m",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errno.ErrConflict))
	assert.Empty(t, store.rows)
}

func TestCreateWithoutRecipientRejected(t *testing.T) {
	dispatcher, _, store, _, _ := newTestCore()

	_, err := dispatcher.Create(CreateRequest{Title: "t", Message: "m"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errno.ErrConflict))
	assert.Empty(t, store.rows)
}

func TestCreateUserWinsOverCustomer(t *testing.T) {
	dispatcher, _, store, users, _ := newTestCore()
	// 租户下有其他用户，但给了userID时不做租户分发
	users.byCustomer["c1"] = []*model.User{
		{ID: "u1", CustomerID: "c1"},
		{ID: "u2", CustomerID: "c1"},
	}

	created, err := dispatcher.Create(CreateRequest{
		UserID:     "u9",
		CustomerID: "c1",
		Title:      "私信",
		Message:    "hi",
	})
	require.NoError(t, err)
	dispatcher.Drain()

	assert.Len(t, store.rows, 1)
	assert.Equal(t, "u9", created.UserID)
	// customerID仅作为记录元数据保留
	require.NotNil(t, created.CustomerID)
	assert.Equal(t, "c1", *created.CustomerID)
}

func TestCreateSanitizesOnceAtWrite(t *testing.T) {
	dispatcher, _, store, _, pub := newTestCore()

	created, err := dispatcher.Create(CreateRequest{
		UserID:     "u1",
		CustomerID: "c1",
		Title:      "t",
		Message:    "<script>evil()</script>hello",
		Types:      model.TypeList{model.TypeInApp},
	})
	require.NoError(t, err)
	dispatcher.Drain()

	// 落库内容不含脚本
	assert.Equal(t, "hello", created.Message)
	assert.NotContains(t, store.rowsForUser("u1")[0].Message, "<script>")

	// 实时推送携带的就是落库的消毒后内容
	newEvents := pub.byEvent(eventNewNotification)
	require.Len(t, newEvents, 1)
	assert.Equal(t, "hello", newEvents[0].Payload.(*model.Notification).Message)
}

func TestCreateReturnsLastOfBatch(t *testing.T) {
	dispatcher, _, _, users, _ := newTestCore()
	users.byCustomer["c1"] = []*model.User{
		{ID: "u1", CustomerID: "c1"},
		{ID: "u2", CustomerID: "c1"},
	}

	last, err := dispatcher.Create(CreateRequest{CustomerID: "c1", Title: "t", Message: "m"})
	require.NoError(t, err)
	dispatcher.Drain()

	assert.Equal(t, "u2", last.UserID)
}

func TestSendInAppGuards(t *testing.T) {
	dispatcher, _, _, _, pub := newTestCore()
	customerID := "c1"

	// 类型不含in_app时不推送
	err := dispatcher.SendInApp(&model.Notification{
		UserID:     "u1",
		CustomerID: &customerID,
		Types:      model.TypeList{model.TypeEmail},
	})
	require.NoError(t, err)
	assert.Empty(t, pub.events)

	// 缺少租户时不推送
	err = dispatcher.SendInApp(&model.Notification{
		UserID: "u1",
		Types:  model.TypeList{model.TypeInApp},
	})
	require.NoError(t, err)
	assert.Empty(t, pub.events)

	// 三个条件齐备时推送new事件
	err = dispatcher.SendInApp(&model.Notification{
		UserID:     "u1",
		CustomerID: &customerID,
		Types:      model.TypeList{model.TypeInApp},
	})
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "main-notifications:u1", pub.events[0].Channel)
	assert.Equal(t, eventNewNotification, pub.events[0].Event)
}

func TestCreatePublishFailureDoesNotFailCreate(t *testing.T) {
	dispatcher, _, store, _, pub := newTestCore()
	pub.err = errors.New("推送服务不可用")

	_, err := dispatcher.Create(CreateRequest{
		UserID:     "u1",
		CustomerID: "c1",
		Title:      "t",
		Message:    "m",
		Types:      model.TypeList{model.TypeInApp},
	})
	require.NoError(t, err)
	dispatcher.Drain()

	// 推送失败不回滚已落库的记录
	assert.Len(t, store.rowsForUser("u1"), 1)
}
