package task

import (
	"sync"

	"github.com/YanGranat/ukhvat-notes-sub000/internal/app"
)

// TaskFactory 任务工厂函数类型,用于创建任务实例
type TaskFactory func() (Task, error)

// AppTaskFactory 需要应用容器的任务工厂函数类型
// 工厂返回 (nil, nil) 表示任务按配置关闭
type AppTaskFactory func(appContainer *app.App) (Task, error)

// taskRegistry 全局任务注册表
var (
	taskRegistry    []TaskFactory
	appTaskRegistry []AppTaskFactory
	registryMutex   sync.RWMutex
)

// Register 注册任务工厂函数
// 通常在各个任务文件的 init() 函数中调用
func Register(factory TaskFactory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	taskRegistry = append(taskRegistry, factory)
}

// RegisterWithApp 注册需要应用容器的任务工厂函数
func RegisterWithApp(factory AppTaskFactory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	appTaskRegistry = append(appTaskRegistry, factory)
}

// GetFactories 获取所有已注册的任务工厂
func GetFactories() []TaskFactory {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	// 返回副本,避免外部修改
	factories := make([]TaskFactory, len(taskRegistry))
	copy(factories, taskRegistry)
	return factories
}

// GetAppFactories 获取所有需要应用容器的任务工厂
func GetAppFactories() []AppTaskFactory {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	factories := make([]AppTaskFactory, len(appTaskRegistry))
	copy(factories, appTaskRegistry)
	return factories
}
