package main

import (
	"errors"
	"log"
	"time"

	"NotifyHub/pkg/api"
	"NotifyHub/pkg/config"
	"NotifyHub/pkg/database"
	"NotifyHub/pkg/messaging"
	"NotifyHub/pkg/monitor"
	"NotifyHub/pkg/notifier"
	"NotifyHub/pkg/sanitize"
	"NotifyHub/pkg/scheduler"
)

func main() {
	log.Println("启动API服务...")

	// 加载配置
	cfg, err := config.LoadConfig(config.GetDefaultConfigPath())
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 连接数据库
	db, err := database.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatalf("同步表结构失败: %v", err)
	}

	// 连接NATS
	publisher, err := messaging.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.StreamName)
	if err != nil {
		log.Fatalf("连接NATS失败: %v", err)
	}
	defer publisher.Close()

	// 组装核心组件
	sanitizer := sanitize.NewHTMLSanitizer()
	readState := notifier.NewReadStateTracker(db.Notification(), publisher)
	dispatcher := notifier.NewDispatcher(db.Notification(), db.User(), sanitizer, readState, publisher)
	sender := notifier.NewTemplateSender(db.Template(), dispatcher)

	// 组件健康监控
	mon := monitor.NewMonitor(func(component, status, message string) {
		log.Printf("组件告警: %s 状态=%s %s", component, status, message)
	})
	mon.RegisterComponent("postgres")
	mon.RegisterComponent("nats")
	mon.StartChecking("postgres", db.Ping, 30*time.Second)
	mon.StartChecking("nats", func() error {
		if !publisher.IsConnected() {
			return errors.New("NATS未连接")
		}
		return nil
	}, 30*time.Second)
	mon.CheckComponent("postgres", db.Ping)
	mon.UpdateStatus("nats", "healthy", "")

	// 启动定时任务
	sched := scheduler.NewScheduler(
		db.Notification(),
		db.Template(),
		dispatcher,
		cfg.Scheduler.DigestCron,
		cfg.Scheduler.PurgeCron,
		cfg.Scheduler.PurgeAfterDays,
	)
	sched.Start()
	defer sched.Stop()

	// 创建API处理程序
	handlers := api.NewHandlers(
		dispatcher,
		readState,
		sender,
		db.Notification(),
		db.Template(),
		sanitizer,
		mon,
	)

	// 创建并启动服务器，阻塞到收到退出信号
	server := api.NewServer(cfg.API.Port)
	server.SetupRoutes(handlers)
	server.Start()

	// 等待已调度的异步推送排空后再退出
	dispatcher.Drain()
}
