package task

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"ultrasooq_session_v1/internal/service"
)

// CounterTask 未读计数轮询任务
// 固定间隔拉取远端未读数，没有推送通道；失败不重试，等下一轮。
type CounterTask struct {
	counterService *service.CounterService
	Cron           *cron.Cron

	intervalSeconds int
}

// NewCounterTask 创建轮询任务
// intervalSeconds 由启动配置传入，默认 30 秒一轮。
func NewCounterTask(counterService *service.CounterService, intervalSeconds int) *CounterTask {
	if intervalSeconds <= 0 {
		intervalSeconds = 30
	}
	return &CounterTask{
		counterService:  counterService,
		Cron:            cron.New(cron.WithSeconds()), // 支持秒级控制
		intervalSeconds: intervalSeconds,
	}
}

// Start 启动定时任务
func (t *CounterTask) Start() {
	spec := fmt.Sprintf("@every %ds", t.intervalSeconds)
	_, err := t.Cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := t.counterService.RefreshUnreadCount(ctx); err != nil {
			// 轮询失败不致命，记一笔等下一轮
			log.Printf("[Task] 未读数轮询失败: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("无法启动未读数轮询任务: %v", err)
	}

	t.Cron.Start()
	log.Printf("[Task] 未读数轮询任务已启动 (每 %d 秒一轮)", t.intervalSeconds)
}

// Stop 停止任务 (优雅关停时调用，避免泄漏定时器)
func (t *CounterTask) Stop() {
	ctx := t.Cron.Stop()
	<-ctx.Done()
	log.Println("[Task] 未读数轮询任务已停止")
}
