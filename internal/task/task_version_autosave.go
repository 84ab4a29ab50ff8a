package task

import (
	"context"
	"sync"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/internal/app"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/service"
	"go.uber.org/zap"
)

// VersionAutosaveTask 消费笔记编辑事件并按笔记去抖，静默期结束后触发自动建版
type VersionAutosaveTask struct {
	app    *app.App
	logger *zap.Logger

	// delay 去抖延迟，等于配置的建版最小间隔
	delay  time.Duration
	timers map[int64]*time.Timer
	mu     sync.Mutex
}

func init() {
	RegisterWithApp(func(appContainer *app.App) (Task, error) {
		if !appContainer.Config().GetVersioningPolicy().Enabled {
			appContainer.Logger().Info("task log",
				zap.String("task", "VersionAutosave"),
				zap.String("event", "disabled"),
				zap.String("reason", "auto-versioning off"))
			return nil, nil
		}
		return &VersionAutosaveTask{
			app:    appContainer,
			logger: appContainer.Logger(),
			delay:  appContainer.Config().GetSaveIntervalDuration(),
			timers: make(map[int64]*time.Timer),
		}, nil
	})
}

// Name 返回任务名称
func (t *VersionAutosaveTask) Name() string {
	return "VersionAutosave"
}

// LoopInterval 返回执行间隔，此处为0，因为由 Run 内部循环控制
func (t *VersionAutosaveTask) LoopInterval() time.Duration {
	return 0
}

// IsStartupRun 返回 true，使任务启动后立即开始执行 Run 循环
func (t *VersionAutosaveTask) IsStartupRun() bool {
	return true
}

// Run 启动任务主循环，处理通道中的消息
func (t *VersionAutosaveTask) Run(ctx context.Context) error {

	// 恢复重启前未落版的笔记
	go t.resumeInterruptedTasks(ctx)

	for {
		select {
		case msg := <-service.VersionEditChannel:
			t.handleMsg(msg)
		case <-ctx.Done():
			t.cleanup()
			t.logger.Info("task log",
				zap.String("task", t.Name()),
				zap.String("type", "startupRun"),
				zap.String("event", "stopped"),
				zap.String("msg", "success"))
			return nil
		}
	}
}

// resumeInterruptedTasks 扫描内容与快照不一致的笔记并安排补偿建版
func (t *VersionAutosaveTask) resumeInterruptedTasks(ctx context.Context) {
	ids, err := t.app.NoteRepo.ListIDs(ctx)
	if err != nil {
		t.logger.Error("task log",
			zap.String("task", t.Name()),
			zap.String("type", "startupRun"),
			zap.String("reason", "failed to list notes"),
			zap.String("msg", "failed"),
			zap.Error(err))
		return
	}

	resumed := 0
	for i, noteID := range ids {
		note, err := t.app.NoteRepo.GetByID(ctx, noteID)
		if err != nil {
			t.logger.Warn("task log",
				zap.String("task", t.Name()),
				zap.String("type", "startupRun"),
				zap.String("reason", "failed to load note"),
				zap.String("msg", "failed"),
				zap.Int64("noteId", noteID),
				zap.Error(err))
			continue
		}
		if note.Content == note.VersionSnapshot {
			continue
		}

		// 增加微小的错峰延迟，避免瞬间触发大量写事务
		delay := time.Duration(i%100) * 10 * time.Millisecond
		t.scheduleWithDelay(noteID, delay)
		resumed++
	}

	if resumed > 0 {
		t.logger.Info("task log",
			zap.String("task", t.Name()),
			zap.String("type", "startupRun"),
			zap.String("event", "resumed pending notes"),
			zap.Int("count", resumed))
	}
}

// handleMsg 处理单条消息并管理定时器
func (t *VersionAutosaveTask) handleMsg(msg service.VersionEditMsg) {
	t.scheduleWithDelay(msg.NoteID, t.delay)
}

// scheduleWithDelay 为笔记安排一次建版，重复安排重置倒计时
func (t *VersionAutosaveTask) scheduleWithDelay(noteID int64, delay time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// 如果已存在定时器，先停止它（重置倒计时）
	if timer, ok := t.timers[noteID]; ok {
		timer.Stop()
	}

	t.timers[noteID] = time.AfterFunc(delay, func() {
		t.process(noteID)
	})
}

// process 执行实际的建版逻辑
func (t *VersionAutosaveTask) process(noteID int64) {
	t.mu.Lock()
	delete(t.timers, noteID)
	t.mu.Unlock()

	if t.app.IsShuttingDown() {
		return
	}
	done := t.app.TrackOperation()
	defer done()

	err := t.app.VersionService.RecordEdit(context.Background(), noteID)
	if err != nil {
		t.logger.Error("task log",
			zap.String("task", t.Name()),
			zap.String("type", "startupRun"),
			zap.Int64("noteId", noteID),
			zap.String("reason", "record edit failed"),
			zap.String("msg", "failed"),
			zap.Error(err))
	} else {
		t.logger.Debug("task log",
			zap.String("task", t.Name()),
			zap.String("type", "startupRun"),
			zap.Int64("noteId", noteID),
			zap.String("msg", "success"))
	}
}

// cleanup 在任务停止时清理所有定时器
func (t *VersionAutosaveTask) cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, timer := range t.timers {
		timer.Stop()
	}
	t.timers = make(map[int64]*time.Timer)
}
