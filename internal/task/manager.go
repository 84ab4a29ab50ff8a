package task

import (
	"github.com/YanGranat/ukhvat-notes-sub000/internal/app"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/safe_close"
	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
	app       *app.App
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose, appContainer *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
		app:       appContainer,
	}
}

// RegisterTasks 注册所有任务
// 工厂返回 (nil, nil) 的任务视为按配置关闭，跳过不计错误
func (m *Manager) RegisterTasks() error {
	registered := 0

	for _, factory := range GetFactories() {
		t, err := factory()
		if err != nil {
			m.logger.Warn("failed to create task", zap.Error(err))
			return err
		}
		if t == nil {
			continue
		}
		m.scheduler.AddTask(t)
		registered++
	}

	for _, factory := range GetAppFactories() {
		t, err := factory(m.app)
		if err != nil {
			m.logger.Warn("failed to create task", zap.Error(err))
			return err
		}
		if t == nil {
			continue
		}
		m.scheduler.AddTask(t)
		registered++
	}

	m.logger.Info("tasks registered", zap.Int("count", registered))
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
