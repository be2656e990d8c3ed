package monitor

import (
	"context"

	"github.com/KNICEX/trade-alert/internal/schedule"
)

type CheckTask struct {
	svc Service
}

func NewCheckTask(svc Service) schedule.Task {
	return &CheckTask{
		svc: svc,
	}
}

func (t *CheckTask) Run(ctx context.Context) error {
	return t.svc.CheckAll(ctx)
}

func (t *CheckTask) Name() string {
	return "price check task"
}
