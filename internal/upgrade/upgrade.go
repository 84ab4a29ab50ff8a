// Package upgrade 管理数据库结构与数据的升级脚本
package upgrade

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/pkg/code"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gorm.io/gorm"
)

// SchemaVersion 数据库版本记录表
type SchemaVersion struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Version     string    `gorm:"not null;uniqueIndex;type:varchar(64)" json:"version"`
	Description string    `gorm:"type:text" json:"description"`
	AppliedAt   time.Time `gorm:"not null" json:"applied_at"`
}

// TableName 指定表名
func (SchemaVersion) TableName() string {
	return "schema_version"
}

// Migration 定义升级接口
type Migration interface {
	Version() string
	Description() string
	Up(db *gorm.DB, ctx context.Context) error
}

// referenceVersionFile 上次运行版本的记录文件
const referenceVersionFile = "config/lastVersion"

// MigrationManager 升级管理器
type MigrationManager struct {
	db         *gorm.DB
	logger     *zap.Logger
	current    string
	migrations []Migration
}

// NewMigrationManager 创建升级管理器
// current: 当前运行的程序版本号
func NewMigrationManager(db *gorm.DB, logger *zap.Logger, current string) *MigrationManager {
	return &MigrationManager{
		db:      db,
		logger:  logger,
		current: current,
		migrations: []Migration{
			// 在这里注册所有的升级脚本
			&VersionMetadataMigrate{},
		},
	}
}

// Run 执行升级
// 已应用的脚本跳过，未应用的按 semver 升序执行，每个脚本在事务中运行并记录
func (m *MigrationManager) Run(ctx context.Context) error {
	m.logger.Info("Migration started")

	// 确保 schema_version 表存在
	if err := m.db.AutoMigrate(&SchemaVersion{}); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// 获取已应用的数据库版本
	appliedVersions, err := m.getAppliedVersions()
	if err != nil {
		return fmt.Errorf("failed to get applied versions: %w", err)
	}

	lastVersion := normalizeSemver(m.getReferenceVersion())
	if !semver.IsValid(lastVersion) {
		m.logger.Warn("reference version (from config/lastVersion) is not a valid semver, using v0.0.0",
			zap.String("lastVersion", lastVersion))
		lastVersion = "v0.0.0"
	}

	runningVersion := normalizeSemver(m.current)
	m.logger.Info("Versions", zap.String("runningVersion", runningVersion), zap.String("lastVersion", lastVersion))

	if semver.IsValid(runningVersion) {
		// 数据目录由更新的发行版写入过，旧程序不得继续迁移
		if semver.Compare(runningVersion, lastVersion) < 0 {
			return code.ErrorConfigVersionNewer.WithDetails(
				fmt.Sprintf("running %s, data dir recorded %s", runningVersion, lastVersion))
		}

		// 当前版本下已经运行过一次升级逻辑，跳过后续检查
		// 避免每次重启都进行不必要的数据库查询或日志输出
		if semver.Compare(runningVersion, lastVersion) == 0 {
			m.logger.Info("skipping upgrade", zap.String("runningVersion", runningVersion))
			return nil
		}
	}

	// 按 semver 升序执行
	ordered := make([]Migration, len(m.migrations))
	copy(ordered, m.migrations)
	sort.Slice(ordered, func(i, j int) bool {
		return semver.Compare(normalizeSemver(ordered[i].Version()), normalizeSemver(ordered[j].Version())) < 0
	})

	executed := 0
	for _, migration := range ordered {
		scriptVersion := migration.Version()

		// 比较版本: 如果 migration.Version <= lastVersion, 则跳过
		currentScriptVersion := normalizeSemver(scriptVersion)
		if semver.IsValid(currentScriptVersion) && semver.Compare(currentScriptVersion, lastVersion) <= 0 {
			m.logger.Info("skip migration <= lastVersion",
				zap.String("scriptVersion", scriptVersion),
				zap.String("lastVersion", lastVersion))
			continue
		}

		// 检查是否已应用
		if appliedVersions[scriptVersion] {
			continue
		}

		m.logger.Info("applying migration",
			zap.String("scriptVersion", migration.Version()),
			zap.String("desc", migration.Description()))

		// 在事务中执行升级
		if err := m.db.Transaction(func(tx *gorm.DB) error {
			// 执行升级脚本
			if err := migration.Up(tx, ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			// 记录版本
			record := &SchemaVersion{
				Version:     migration.Version(),
				Description: migration.Description(),
				AppliedAt:   time.Now(),
			}
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("failed to record version: %w", err)
			}

			return nil
		}); err != nil {
			return code.ErrorUpgradeFailed.WithDetails(
				fmt.Sprintf("migration %s: %v", migration.Version(), err))
		}

		m.logger.Info("migration applied successfully", zap.String("scriptVersion", migration.Version()))
		executed++
	}

	if executed == 0 {
		m.logger.Info("database is already up to date")
	} else {
		m.logger.Info("upgrade completed", zap.Int("migrations_applied", executed))
	}

	// 无论是否执行了升级，最后将当前版本写入 config/lastVersion
	// 作为下一次运行的基准
	if err := m.saveReferenceVersion(m.current); err != nil {
		m.logger.Error("save lastVersion failed", zap.Error(err))
		// 记录错误但不阻断启动
	} else {
		m.logger.Info("save lastVersion success", zap.String("ver", m.current))
	}

	return nil
}

// getAppliedVersions 获取已应用的数据库版本
func (m *MigrationManager) getAppliedVersions() (map[string]bool, error) {
	var versions []SchemaVersion
	err := m.db.Find(&versions).Error
	if err != nil {
		return nil, err
	}

	applied := make(map[string]bool)
	for _, v := range versions {
		applied[v.Version] = true
	}
	return applied, nil
}

// getReferenceVersion 获取参考版本号
// 从 config/lastVersion 读取，文件不存在或为空时返回 v0.0.0
func (m *MigrationManager) getReferenceVersion() string {
	content, err := os.ReadFile(referenceVersionFile)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("read config/lastVersion failed", zap.Error(err))
		} else {
			m.logger.Info("config/lastVersion not found, default v0.0.0")
		}
		return "v0.0.0"
	}

	ver := strings.TrimSpace(string(content))
	if ver == "" {
		m.logger.Info("config/lastVersion empty, default v0.0.0")
		return "v0.0.0"
	}
	return ver
}

// saveReferenceVersion 保存当前版本号到 config/lastVersion
func (m *MigrationManager) saveReferenceVersion(version string) error {
	if err := os.MkdirAll("config", 0755); err != nil {
		return err
	}
	return os.WriteFile(referenceVersionFile, []byte(version), 0644)
}

// normalizeSemver 为版本号补上 v 前缀
func normalizeSemver(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Execute 执行升级(便捷方法)
// currentVersion: 当前运行的程序版本号
func Execute(db *gorm.DB, logger *zap.Logger, currentVersion string) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	if logger == nil {
		return fmt.Errorf("logger not initialized")
	}

	manager := NewMigrationManager(db, logger, currentVersion)
	return manager.Run(context.Background())
}
