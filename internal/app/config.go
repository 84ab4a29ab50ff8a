// Package app 提供应用容器，封装所有依赖和服务
// Package app provides the application container that owns every dependency
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/internal/dao"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/service"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/code"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/storage"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/util"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/workerpool"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File       string           `yaml:"-"` // 配置文件路径，不序列化
	App        AppSettings      `yaml:"app"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Versioning VersioningConfig `yaml:"versioning"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Update     UpdateConfig     `yaml:"update"`
}

// AppSettings 应用设置
type AppSettings struct {
	// RunMode 运行模式 debug/release
	RunMode string `yaml:"run-mode" default:"release"`
	// Lang 错误消息语言 en/zh_cn
	Lang string `yaml:"lang" default:"en"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`

	// Worker Pool 配置
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"100"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"1000"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时仅输出到控制台
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite/mysql/postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/db.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix" default:"uv_"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集（MySQL）
	Charset string `yaml:"charset"`
	// ParseTime 是否解析时间（MySQL）
	ParseTime bool `yaml:"parse-time"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时），默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，支持格式：10m（分钟）、1h（小时），默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
	// ContentOffloadThreshold 版本内容超过该大小时卸载到文件存储，支持格式：64KB、1MB
	ContentOffloadThreshold string `yaml:"content-offload-threshold" default:"64KB"`
}

// VersioningConfig 版本保留策略配置
type VersioningConfig struct {
	// AutoVersioning 是否启用自动建版
	// 指针类型让显式的 false 在二次填充默认值后仍然生效
	AutoVersioning *bool `yaml:"auto-versioning" default:"true"`
	// SaveInterval 建版最小间隔，仅支持 30s/60s/120s/300s
	SaveInterval string `yaml:"save-interval" default:"60s" validate:"oneof=30s 60s 120s 300s"`
	// MinChangeChars 建版最小变更字符数
	MinChangeChars int `yaml:"min-change-chars" default:"140" validate:"gte=0"`
	// MaxRegularVersions 每笔记常规版本上限
	MaxRegularVersions int `yaml:"max-regular-versions" default:"100" validate:"gte=10"`
}

// ArchiveConfig 归档导出配置
type ArchiveConfig struct {
	// Schedule 定时归档的 cron 表达式，空字符串关闭定时归档
	Schedule string `yaml:"schedule"`
	// Storage 归档目标存储
	Storage storage.Config `yaml:"storage"`
}

// MetricsConfig 指标暴露配置
type MetricsConfig struct {
	// Enabled 是否启动私有指标监听
	Enabled bool `yaml:"enabled"`
	// Listen 私有监听地址
	Listen string `yaml:"listen" default:":9001"`
}

// UpdateConfig 更新检查配置
type UpdateConfig struct {
	// CheckEnabled 是否启用新版本检查
	CheckEnabled bool `yaml:"check-enabled"`
	// ShieldURL 版本徽标 JSON 地址
	ShieldURL string `yaml:"shield-url" default:"https://img.shields.io/github/v/release/YanGranat/ukhvat-notes-sub000.json"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	err = yaml.Unmarshal(file, c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，以填充 YAML 中存在但值为空的字段
	// defaults.Set 只有在字段为该类型的零值时才会填充
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	if err := validator.New().Struct(c); err != nil {
		return nil, realpath, code.ErrorConfigInvalid.WithDetails(err.Error())
	}

	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()

	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}

	return cfg
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	if c.App.WriteQueueTimeout != "" {
		if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil {
			cfg.WriteTimeout = timeout
		}
	}
	if c.App.WriteQueueIdleTime != "" {
		if idleTime, err := util.ParseDuration(c.App.WriteQueueIdleTime); err == nil {
			cfg.IdleTimeout = idleTime
		}
	}

	return cfg
}

// GetDatabaseConfig 构建数据访问层配置
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		RunMode:         c.App.RunMode,
	}
}

// GetVersioningPolicy 构建服务层版本保留策略
func (c *AppConfig) GetVersioningPolicy() *service.VersioningServiceConfig {
	enabled := true
	if c.Versioning.AutoVersioning != nil {
		enabled = *c.Versioning.AutoVersioning
	}

	cfg := &service.VersioningServiceConfig{
		Enabled:            enabled,
		MinChangeChars:     c.Versioning.MinChangeChars,
		MaxRegularVersions: c.Versioning.MaxRegularVersions,
	}
	if interval, err := util.ParseDuration(c.Versioning.SaveInterval); err == nil {
		cfg.SaveIntervalMs = interval.Milliseconds()
	}
	return cfg
}

// GetSaveIntervalDuration 获取建版最小间隔
// 自动建版任务用它作为去抖延迟
func (c *AppConfig) GetSaveIntervalDuration() time.Duration {
	if interval, err := util.ParseDuration(c.Versioning.SaveInterval); err == nil && interval > 0 {
		return interval
	}
	return time.Duration(service.DefaultSaveIntervalMs) * time.Millisecond
}

// GetOffloadThreshold 获取版本内容卸载阈值（字节）
func (c *AppConfig) GetOffloadThreshold() int64 {
	return util.ParseSize(c.Database.ContentOffloadThreshold, 64*1024)
}

// IsArchiveEnabled 是否配置了归档存储
func (c *AppConfig) IsArchiveEnabled() bool {
	return c.Archive.Storage.IsEnabled && c.Archive.Storage.Type != ""
}
