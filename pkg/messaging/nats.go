// pkg/messaging/nats.go
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSPublisher 基于NATS JetStream的实时推送客户端。
// 前端按频道订阅（如 main-notifications:{userId}、unread-notifications:{userId}），
// 服务端只负责发布，推送是尽力而为的。
type NATSPublisher struct {
	conn       *nats.Conn
	jetStream  jetstream.JetStream
	natsURL    string
	streamName string
	ctx        context.Context
	cancel     context.CancelFunc
}

// Envelope 实时消息信封
type Envelope struct {
	Channel   string      `json:"channel"`
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewNATSPublisher 创建新的NATS推送客户端
func NewNATSPublisher(natsURL, streamName string) (*NATSPublisher, error) {
	// 连接NATS
	nc, err := nats.Connect(natsURL,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // 无限重连
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS连接断开: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Println("NATS重新连接成功")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("连接NATS失败: %w", err)
	}

	// 创建JetStream上下文
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("创建JetStream失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	if streamName == "" {
		streamName = "REALTIME_STREAM"
	}

	client := &NATSPublisher{
		conn:       nc,
		jetStream:  js,
		natsURL:    natsURL,
		streamName: streamName,
		ctx:        ctx,
		cancel:     cancel,
	}

	// 初始化实时推送Stream
	if err := client.setupStream(); err != nil {
		log.Printf("警告: 设置Stream失败: %v", err)
	}

	return client, nil
}

// setupStream 设置实时推送Stream
func (c *NATSPublisher) setupStream() error {
	streamConfig := jetstream.StreamConfig{
		Name:        c.streamName,
		Subjects:    []string{"realtime.>"},
		Description: "实时推送数据流",
		Retention:   jetstream.LimitsPolicy,
		MaxMsgs:     100000,
		MaxBytes:    50 * 1024 * 1024, // 50MB
		MaxAge:      24 * time.Hour,   // 实时信号只保留24小时
	}

	_, err := c.jetStream.CreateOrUpdateStream(c.ctx, streamConfig)
	if err != nil {
		return fmt.Errorf("创建/更新Stream %s 失败: %w", c.streamName, err)
	}

	log.Printf("Stream %s 设置成功", c.streamName)
	return nil
}

// subjectFor 把频道名转换为NATS主题。
// 频道形如 unread-notifications:{userId}，冒号在主题里换成层级分隔。
func subjectFor(channel string) string {
	return "realtime." + strings.ReplaceAll(channel, ":", ".")
}

// Publish 向指定频道发布事件
func (c *NATSPublisher) Publish(channel, event string, payload interface{}) error {
	envelope := Envelope{
		Channel:   channel,
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("序列化数据失败: %w", err)
	}

	subject := subjectFor(channel)
	if _, err := c.jetStream.Publish(c.ctx, subject, data); err != nil {
		return fmt.Errorf("发布消息到 %s 失败: %w", subject, err)
	}

	log.Printf("发布事件 %s 到频道: %s, 数据大小: %d bytes", event, channel, len(data))
	return nil
}

// Close 关闭连接
func (c *NATSPublisher) Close() error {
	log.Println("正在关闭NATS连接...")

	c.cancel()

	if c.conn != nil {
		c.conn.Close()
	}

	log.Println("NATS连接已关闭")
	return nil
}

// IsConnected 检查连接状态
func (c *NATSPublisher) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// GetStats 获取连接统计信息
func (c *NATSPublisher) GetStats() nats.Statistics {
	if c.conn != nil {
		return c.conn.Stats()
	}
	return nats.Statistics{}
}
