// pkg/scheduler/task.go
package scheduler

import (
	"fmt"
	"log"
	"time"

	"NotifyHub/pkg/database"
	"NotifyHub/pkg/model"
	"NotifyHub/pkg/notifier"

	"github.com/robfig/cron/v3"
)

// Scheduler 任务调度器
type Scheduler struct {
	cron          *cron.Cron
	notifications *database.NotificationDB
	templates     *database.TemplateDB
	dispatcher    *notifier.Dispatcher

	digestSpec     string
	purgeSpec      string
	purgeAfterDays int
}

// NewScheduler 创建任务调度器
func NewScheduler(
	notifications *database.NotificationDB,
	templates *database.TemplateDB,
	dispatcher *notifier.Dispatcher,
	digestSpec, purgeSpec string,
	purgeAfterDays int,
) *Scheduler {
	if digestSpec == "" {
		digestSpec = "0 9 * * *" // 每天上午9点
	}
	if purgeSpec == "" {
		purgeSpec = "30 3 * * *" // 每天凌晨3点半
	}
	if purgeAfterDays <= 0 {
		purgeAfterDays = 30
	}

	return &Scheduler{
		cron:           cron.New(),
		notifications:  notifications,
		templates:      templates,
		dispatcher:     dispatcher,
		digestSpec:     digestSpec,
		purgeSpec:      purgeSpec,
		purgeAfterDays: purgeAfterDays,
	}
}

// Start 启动调度器
func (s *Scheduler) Start() {
	// 每日未读摘要
	if _, err := s.cron.AddFunc(s.digestSpec, s.sendDailyDigests); err != nil {
		log.Printf("注册未读摘要任务失败: %v", err)
	}

	// 清理软删除超过保留期的模板
	if _, err := s.cron.AddFunc(s.purgeSpec, s.purgeTemplates); err != nil {
		log.Printf("注册模板清理任务失败: %v", err)
	}

	s.cron.Start()
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// sendDailyDigests 给所有有未读通知的用户发一条摘要通知
func (s *Scheduler) sendDailyDigests() {
	log.Println("开始发送每日未读摘要...")

	stats, err := s.notifications.ListUsersWithUnread()
	if err != nil {
		log.Printf("统计未读用户失败: %v", err)
		return
	}

	sent := 0
	for _, stat := range stats {
		_, err := s.dispatcher.Create(notifier.CreateRequest{
			UserID:    stat.UserID,
			Title:     "未读通知提醒",
			Message:   fmt.Sprintf("您有 %d 条未读通知，请及时查看。", stat.Count),
			Types:     model.TypeList{model.TypeInApp},
			Channel:   model.ChannelInApp,
			CreatedBy: "daily_digest",
		})
		if err != nil {
			log.Printf("发送未读摘要失败 user=%s: %v", stat.UserID, err)
			continue
		}
		sent++
	}

	log.Printf("每日未读摘要发送完成: %d/%d", sent, len(stats))
}

// purgeTemplates 物理清理软删除超过保留期的模板
func (s *Scheduler) purgeTemplates() {
	cutoff := time.Now().AddDate(0, 0, -s.purgeAfterDays)

	purged, err := s.templates.PurgeDeletedBefore(cutoff)
	if err != nil {
		log.Printf("清理过期模板失败: %v", err)
		return
	}

	if purged > 0 {
		log.Printf("已清理 %d 个软删除超过 %d 天的模板", purged, s.purgeAfterDays)
	}
}
