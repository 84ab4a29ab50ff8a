package task

import (
	"context"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/internal/app"
	"github.com/juju/ratelimit"
	"go.uber.org/zap"
)

// init 自动注册清理任务
func init() {
	RegisterWithApp(NewVersionCleanupTask)
}

// VersionCleanupTask 定期为所有笔记重新套用常规版本保留上限
// 扫描节奏由令牌桶限制，避免占满写通道
type VersionCleanupTask struct {
	app      *app.App
	logger   *zap.Logger
	interval time.Duration
	bucket   *ratelimit.Bucket
	firstRun bool
}

// NewVersionCleanupTask 创建清理任务
func NewVersionCleanupTask(appContainer *app.App) (Task, error) {
	return &VersionCleanupTask{
		app:      appContainer,
		logger:   appContainer.Logger(),
		interval: 10 * time.Minute,
		// 每秒最多处理 20 篇笔记
		bucket:   ratelimit.NewBucketWithRate(20, 1),
		firstRun: true,
	}, nil
}

// Name 返回任务名称
func (t *VersionCleanupTask) Name() string {
	return "VersionCleanup"
}

// Run 执行清理任务
func (t *VersionCleanupTask) Run(ctx context.Context) error {
	status := "scheduled"
	if t.firstRun {
		status = "first-run"
		t.firstRun = false
	}

	noteIDs, err := t.app.VersionService.NoteIDs(ctx)
	if err != nil {
		t.logger.Error(t.Name()+" failed ["+status+"]: ", zap.Error(err))
		return err
	}

	removed := 0
	swept := 0
	for _, noteID := range noteIDs {
		if wait := t.bucket.Take(1); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if t.app.IsShuttingDown() {
			break
		}

		n, err := t.app.VersionService.CleanupExcessFor(ctx, noteID)
		if err != nil {
			t.logger.Warn(t.Name()+" note sweep failed",
				zap.Int64("noteId", noteID),
				zap.Error(err))
			continue
		}
		removed += n
		swept++
	}

	t.logger.Info(t.Name()+" completed successfully ["+status+"]",
		zap.Int("notes", swept),
		zap.Int("removed", removed))
	return nil
}

// LoopInterval 返回执行间隔
func (t *VersionCleanupTask) LoopInterval() time.Duration {
	return t.interval
}

// IsStartupRun 是否立即执行一次
func (t *VersionCleanupTask) IsStartupRun() bool {
	return true
}
