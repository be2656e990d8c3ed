package schedule

import (
	"context"
	"log/slog"
	"time"
)

// IntervalRunner 以固定间隔驱动一个 Task
// 单协程串行执行, 上一轮未结束时错过的 tick 直接丢弃, 不会并发触发
type IntervalRunner struct {
	task     Task
	interval time.Duration
}

func NewIntervalRunner(task Task, interval time.Duration) *IntervalRunner {
	return &IntervalRunner{
		task:     task,
		interval: interval,
	}
}

// Run 阻塞运行直到 ctx 取消
func (r *IntervalRunner) Run(ctx context.Context) error {
	slog.Info("interval runner started", "task", r.task.Name(), "interval", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.task.Run(ctx); err != nil {
				slog.Error("task run failed", "task", r.task.Name(), "error", err)
			}
		}
	}
}
