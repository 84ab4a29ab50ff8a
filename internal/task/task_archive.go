package task

import (
	"context"
	"fmt"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/internal/app"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ArchiveTask 按 cron 表达式定时把全部版本历史导出到归档存储
type ArchiveTask struct {
	app      *app.App
	logger   *zap.Logger
	schedule cron.Schedule
	next     time.Time
}

func init() {
	RegisterWithApp(NewArchiveTask)
}

// NewArchiveTask 创建归档任务
// 未配置 cron 表达式或归档存储时任务关闭
func NewArchiveTask(appContainer *app.App) (Task, error) {
	cfg := appContainer.Config()
	if cfg.Archive.Schedule == "" || !cfg.IsArchiveEnabled() {
		appContainer.Logger().Info("task log",
			zap.String("task", "Archive"),
			zap.String("event", "disabled"),
			zap.String("reason", "schedule or storage not configured"))
		return nil, nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cfg.Archive.Schedule)
	if err != nil {
		return nil, fmt.Errorf("parse archive schedule %q: %w", cfg.Archive.Schedule, err)
	}

	return &ArchiveTask{
		app:      appContainer,
		logger:   appContainer.Logger(),
		schedule: schedule,
		next:     schedule.Next(time.Now()),
	}, nil
}

// Name 返回任务名称
func (t *ArchiveTask) Name() string {
	return "Archive"
}

// LoopInterval 返回执行间隔，每分钟评估一次表达式
func (t *ArchiveTask) LoopInterval() time.Duration {
	return time.Minute
}

// IsStartupRun 启动时不导出，等待首个计划时刻
func (t *ArchiveTask) IsStartupRun() bool {
	return false
}

// Run 到达计划时刻时执行全量导出
func (t *ArchiveTask) Run(ctx context.Context) error {
	now := time.Now()
	if now.Before(t.next) {
		return nil
	}
	t.next = t.schedule.Next(now)

	done := t.app.TrackOperation()
	defer done()

	result, err := t.app.ArchiveService.ExportAll(ctx)
	if err != nil {
		t.logger.Error("task log",
			zap.String("task", t.Name()),
			zap.String("type", "loopRun"),
			zap.String("reason", "export failed"),
			zap.String("msg", "failed"),
			zap.Error(err))
		return err
	}

	t.logger.Info("task log",
		zap.String("task", t.Name()),
		zap.String("type", "loopRun"),
		zap.String("event", "export completed"),
		zap.Int("exported", result.Exported),
		zap.Int("failed", result.Failed),
		zap.String("msg", "success"))
	return nil
}
