package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/global"
	internalApp "github.com/YanGranat/ukhvat-notes-sub000/internal/app"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/dao"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/task"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/upgrade"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/code"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/logger"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/metrics"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/safe_close"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is one bootstrapped runtime instance, rebuilt on config reload
// Service 是一次完整引导出的运行实例，配置热加载时整体重建
type Service struct {
	logger        *zap.Logger            // Logger // 日志对象
	config        *internalApp.AppConfig // App configuration (injected dependency) // 应用配置（注入的依赖）
	db            *gorm.DB               // Database connection // 数据库连接
	metricsServer *http.Server           // Private metrics/pprof listener // 私有指标监听
	sc            *safe_close.SafeClose
	app           *internalApp.App // App Container
}

// currentApp points at the live container so the process wide gauges survive
// config reloads, prometheus registration only happens once per process
// currentApp 指向当前容器，函数型 Gauge 注册一次即可跨热加载存活
var (
	currentApp atomic.Pointer[internalApp.App]
	gaugesOnce sync.Once
)

func NewService(runEnv *runFlags) (*Service, error) {

	// Use LoadConfig to directly load config into AppConfig
	// 使用 LoadConfig 直接加载配置到 AppConfig
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Command line mode overrides the config file
	// 命令行模式优先于配置文件
	if len(runEnv.runMode) > 0 {
		appConfig.App.RunMode = runEnv.runMode
	}

	s := &Service{
		config: appConfig,
		sc:     safe_close.NewSafeClose(),
	}

	// Initialize logger (using injected config)
	// 初始化日志器（使用注入的配置）
	if err := initLoggerWithConfig(s, appConfig); err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	// Error message language // 错误消息语言
	if err := code.SetGlobalDefaultLang(appConfig.App.Lang); err != nil {
		s.logger.Warn("unsupported lang in config, falling back", zap.String("lang", appConfig.App.Lang))
	}

	// Initialize storage directory (using injected config)
	// 初始化存储目录（使用注入的配置）
	if err := initStorageWithConfig(appConfig); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	// Initialize database (using injected config)
	// 初始化数据库（使用注入的配置）
	db, err := initDatabaseWithConfig(appConfig, s.logger)
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}
	s.db = db

	// Initialize App Container (using AppConfig directly)
	// 初始化 App Container（直接使用 AppConfig）
	app, err := internalApp.NewApp(appConfig, s.logger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	s.app = app
	currentApp.Store(app)

	// Auto-execute migration tasks (using injected config)
	// 自动执行迁移任务（使用注入的配置）
	if err := upgrade.Execute(db, s.logger, internalApp.Version); err != nil {
		return nil, fmt.Errorf("upgrade.Execute: %w", err)
	}

	// Start scheduler
	// 启动调度器
	initScheduler(s)

	// Start private metrics listener
	// 启动私有指标监听
	if appConfig.Metrics.Enabled {
		initMetricsListener(s)
	}

	banner := `
   __  ____   __               __
  / / / / /__/ /_ _   ______ _/ /_
 / / / / //_/ __ \ | / / __ ` + "`" + `/ __/
/ /_/ / ,< / / / / |/ / /_/ / /_
\____/_/|_/_/ /_/|___/\__,_/\__/  `
	s.logger.Warn(fmt.Sprintf("%s\n\n%s v%s\nGit: %s\nBuildTime: %s\n", banner, internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))

	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	// Register App Container graceful shutdown (using Shutdown method)
	// 注册 App Container 的优雅关闭（使用 Shutdown 方法）
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		if s.app != nil {
			// Use graceful shutdown with timeout
			// 使用带超时的优雅关闭
			ctx, cancel := context.WithTimeout(context.Background(), internalApp.DefaultShutdownTimeout)
			defer cancel()

			if err := s.app.Shutdown(ctx); err != nil {
				s.logger.Error("failed to shutdown app container", zap.Error(err))
			} else {
				s.logger.Info("App container shutdown gracefully")
			}
		}
	})

	return s, nil
}

func initScheduler(s *Service) {
	// Create task manager
	// 创建任务管理器
	manager := task.NewManager(s.logger, s.sc, s.app)

	// Register all tasks (business layer control)
	// 注册所有任务(业务层控制)
	if err := manager.RegisterTasks(); err != nil {
		s.logger.Error("failed to register tasks", zap.Error(err))
		return
	}

	// Start task scheduler
	// 启动任务调度器
	manager.Start()
}

// initMetricsListener serves prometheus metrics and pprof on the private bind
// initMetricsListener 在私有地址上提供 prometheus 指标与 pprof
func initMetricsListener(s *Service) {
	registerRuntimeGauges()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	s.logger.Info("metrics listener", zap.String("config.metrics.Listen", s.config.Metrics.Listen))
	s.metricsServer = &http.Server{
		Addr:           s.config.Metrics.Listen,
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errChan := make(chan error, 1)
		go func() {
			errChan <- s.metricsServer.ListenAndServe()
		}()
		select {
		case err := <-errChan:
			s.logger.Error("metrics listener err", zap.Error(err))
			s.sc.SendCloseSignal(err)
		case <-closeSignal:

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := s.metricsServer.Shutdown(ctx); err != nil {
				s.logger.Error("metrics listener shutdown error", zap.Error(err))
			}
		}
	})
}

// registerRuntimeGauges exposes queue depth of the live container
// registerRuntimeGauges 暴露当前容器的队列深度
func registerRuntimeGauges() {
	gaugesOnce.Do(func() {
		metrics.RegisterGaugeFunc("pool_active_workers", "Workers currently executing tasks.", func() float64 {
			if a := currentApp.Load(); a != nil {
				return float64(a.WorkerPool().ActiveCount())
			}
			return 0
		})
		metrics.RegisterGaugeFunc("pool_queued_tasks", "Tasks waiting in the worker pool queue.", func() float64 {
			if a := currentApp.Load(); a != nil {
				return float64(a.WorkerPool().QueuedCount())
			}
			return 0
		})
		metrics.RegisterGaugeFunc("write_queues", "Per note write queues currently alive.", func() float64 {
			if a := currentApp.Load(); a != nil {
				return float64(a.WriteQueueManager().QueueCount())
			}
			return 0
		})
	})
}

// initLoggerWithConfig initializes logger (using injected config)
// initLoggerWithConfig 初始化日志器（使用注入的配置）
func initLoggerWithConfig(s *Service, cfg *internalApp.AppConfig) error {
	lg, err := logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		Production: cfg.Log.Production,
	})
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	s.logger = lg

	// 迁移脚本等深层代码通过 global.Logger 记录日志
	global.Logger = lg

	return nil
}

// initDatabaseWithConfig initializes database (using injected config)
// initDatabaseWithConfig 初始化数据库（使用注入的配置）
func initDatabaseWithConfig(cfg *internalApp.AppConfig, lg *zap.Logger) (*gorm.DB, error) {
	db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), lg)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// initStorageWithConfig initializes storage directory (using injected config)
// initStorageWithConfig 初始化存储目录（使用注入的配置）
func initStorageWithConfig(cfg *internalApp.AppConfig) error {
	dirs := []string{
		filepath.Dir(cfg.Log.File),
		filepath.Dir(cfg.Database.Path),
	}
	if cfg.IsArchiveEnabled() && cfg.Archive.Storage.SavePath != "" {
		dirs = append(dirs, cfg.Archive.Storage.SavePath)
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetApp gets App Container
// GetApp 获取 App Container
func (s *Service) GetApp() *internalApp.App {
	return s.app
}

// GetConfig gets app configuration
// GetConfig 获取应用配置
func (s *Service) GetConfig() *internalApp.AppConfig {
	return s.config
}
