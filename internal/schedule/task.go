package schedule

import "context"

// Task 一次完整的定时作业
type Task interface {
	Run(ctx context.Context) error
	Name() string
}
