package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/pkg/common"
	"github.com/glowbooking/glowbook/pkg/metrics"
)

// Task type names for sys_scheduler rows
const (
	TaskGoogleReviewsRefresh = "google_reviews_refresh"
	TaskPaymentReminder      = "payment_reminder"
	TaskTokenCleanup         = "token_cleanup"
)

// SchedTaskFunc executes one scheduler run. The scheduler row is passed so
// runners can read their Config JSON.
type SchedTaskFunc func(ctx context.Context, sched *domain.SysScheduler) error

// RegisterSchedTask binds a task type name to its runner. Registration happens
// at startup before StartSchedulerService.
func (a *Application) RegisterSchedTask(taskType string, fn SchedTaskFunc) {
	a.tasks[taskType] = fn
}

// StartSchedulerService runs enabled scheduler rows periodically
func (a *Application) StartSchedulerService(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.runSchedulers(ctx)
			}
		}
	}()
}

// runSchedulers executes enabled schedulers whose next_run_at has passed
func (a *Application) runSchedulers(ctx context.Context) {
	var schedulers []domain.SysScheduler
	a.gormDB.Where("status = ?", common.ENABLED).Find(&schedulers)
	now := time.Now()
	for i := range schedulers {
		sched := schedulers[i]
		if sched.NextRunAt.IsZero() || !now.Before(sched.NextRunAt) {
			a.runOne(ctx, &sched)
			a.gormDB.Model(&domain.SysScheduler{}).
				Where("id = ?", sched.ID).
				Update("next_run_at", now.Add(time.Duration(sched.Interval)*time.Second))
		}
	}
}

func (a *Application) runOne(ctx context.Context, sched *domain.SysScheduler) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	fn, ok := a.tasks[sched.TaskType]
	if !ok {
		zap.L().Warn("no runner registered for scheduler task",
			zap.String("task_type", sched.TaskType))
		return
	}

	result := "success"
	message := "ok"
	if err := fn(ctx, sched); err != nil {
		result = "failed"
		message = err.Error()
		zap.L().Error("scheduler task failed",
			zap.String("task_type", sched.TaskType),
			zap.Error(err))
	} else {
		zap.L().Info("scheduler task completed",
			zap.String("task_type", sched.TaskType))
	}
	metrics.IncrCounter("scheduler_run_" + sched.TaskType)

	a.gormDB.Model(&domain.SysScheduler{}).Where("id = ?", sched.ID).Updates(map[string]interface{}{
		"last_run_at":  time.Now(),
		"last_result":  result,
		"last_message": message,
	})
}

// RunSchedulerNow triggers a scheduler execution immediately by ID
func (a *Application) RunSchedulerNow(id int64) error {
	var sched domain.SysScheduler
	if err := a.gormDB.Where("id = ?", id).First(&sched).Error; err != nil {
		return fmt.Errorf("scheduler %d not found", id)
	}
	a.runOne(context.Background(), &sched)
	a.gormDB.Model(&domain.SysScheduler{}).
		Where("id = ?", sched.ID).
		Update("next_run_at", time.Now().Add(time.Duration(sched.Interval)*time.Second))
	return nil
}
