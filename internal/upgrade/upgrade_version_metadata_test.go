package upgrade

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/YanGranat/ukhvat-notes-sub000/global"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/dao"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/model"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/code"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/timex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newTestDB 创建基于临时 SQLite 文件的数据库连接
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
	global.Logger = zap.NewNop()

	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{
		Type:         "sqlite",
		Path:         filepath.Join("storage", "database", "test.sqlite3"),
		AutoMigrate:  true,
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	return db
}

func seedNamedVersion(t *testing.T, db *gorm.DB, noteID int64, customName string) int64 {
	t.Helper()
	v := &model.Version{
		NoteID:     noteID,
		Content:    "содержимое",
		CustomName: customName,
		CreatedAt:  timex.Now(),
	}
	require.NoError(t, db.Create(v).Error)
	return v.ID
}

func TestParseLegacyAIName(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantProvider string
		wantModel    string
		wantDuration int64
		wantDisplay  string
		wantOK       bool
	}{
		{
			name:         "full form with display name",
			input:        "ai::openai::gpt-4o::2300::Черновик статьи",
			wantProvider: "openai",
			wantModel:    "gpt-4o",
			wantDuration: 2300,
			wantDisplay:  "Черновик статьи",
			wantOK:       true,
		},
		{
			name:         "no display name",
			input:        "ai::local::llama::800",
			wantProvider: "local",
			wantModel:    "llama",
			wantDuration: 800,
			wantOK:       true,
		},
		{
			name:         "display name containing separator",
			input:        "ai::anthropic::claude-sonnet::150::до::после",
			wantProvider: "anthropic",
			wantModel:    "claude-sonnet",
			wantDuration: 150,
			wantDisplay:  "до::после",
			wantOK:       true,
		},
		{name: "plain user name", input: "веха перед правкой", wantOK: false},
		{name: "too few segments", input: "ai::openai::gpt-4o", wantOK: false},
		{name: "empty provider", input: "ai::::gpt-4o::100", wantOK: false},
		{name: "empty model", input: "ai::openai::::100", wantOK: false},
		{name: "duration not a number", input: "ai::openai::gpt-4o::fast", wantOK: false},
		{name: "negative duration", input: "ai::openai::gpt-4o::-5", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, aiModel, duration, display, ok := parseLegacyAIName(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantProvider, provider)
			assert.Equal(t, tt.wantModel, aiModel)
			assert.Equal(t, tt.wantDuration, duration)
			assert.Equal(t, tt.wantDisplay, display)
		})
	}
}

func TestVersionMetadataMigrateUp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	legacyID := seedNamedVersion(t, db, 1, "ai::openai::gpt-4o::2300::Черновик статьи")
	bareID := seedNamedVersion(t, db, 1, "ai::local::llama::800")
	brokenID := seedNamedVersion(t, db, 1, "ai::anthropic::claude-sonnet::fast")
	plainID := seedNamedVersion(t, db, 2, "веха")

	migrate := &VersionMetadataMigrate{}
	require.NoError(t, migrate.Up(db, ctx))

	var legacy model.Version
	require.NoError(t, db.First(&legacy, legacyID).Error)
	assert.Equal(t, "openai", legacy.AIProvider)
	assert.Equal(t, "gpt-4o", legacy.AIModel)
	assert.Equal(t, int64(2300), legacy.AIDurationMs)
	assert.Equal(t, "Черновик статьи", legacy.CustomName)

	// 没有展示名称的旧格式回填后变为未命名
	var bare model.Version
	require.NoError(t, db.First(&bare, bareID).Error)
	assert.Equal(t, "local", bare.AIProvider)
	assert.Equal(t, "llama", bare.AIModel)
	assert.Equal(t, int64(800), bare.AIDurationMs)
	assert.Empty(t, bare.CustomName)

	// 解析失败的行保持原样
	var broken model.Version
	require.NoError(t, db.First(&broken, brokenID).Error)
	assert.Equal(t, "ai::anthropic::claude-sonnet::fast", broken.CustomName)
	assert.Empty(t, broken.AIProvider)

	var plain model.Version
	require.NoError(t, db.First(&plain, plainID).Error)
	assert.Equal(t, "веха", plain.CustomName)
	assert.Empty(t, plain.AIProvider)
}

func TestMigrationManagerRun(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	legacyID := seedNamedVersion(t, db, 3, "ai::openai::gpt-4o::120::Итог")

	manager := NewMigrationManager(db, zap.NewNop(), "1.2.0")
	require.NoError(t, manager.Run(ctx))

	// 脚本已应用并登记
	var record SchemaVersion
	require.NoError(t, db.Where("version = ?", "1.1.0").First(&record).Error)
	assert.NotZero(t, record.AppliedAt)

	var migrated model.Version
	require.NoError(t, db.First(&migrated, legacyID).Error)
	assert.Equal(t, "openai", migrated.AIProvider)
	assert.Equal(t, "Итог", migrated.CustomName)

	// 当前版本写入参考文件
	raw, err := os.ReadFile(referenceVersionFile)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", string(raw))

	// 同一版本重复运行走快速跳过
	require.NoError(t, manager.Run(ctx))

	// 更旧的程序不得在该数据目录上继续迁移
	older := NewMigrationManager(db, zap.NewNop(), "1.0.0")
	err = older.Run(ctx)
	assert.ErrorIs(t, err, code.ErrorConfigVersionNewer)
}

func TestMigrationManagerFreshDatabase(t *testing.T) {
	db := newTestDB(t)

	manager := NewMigrationManager(db, zap.NewNop(), "1.2.0")
	require.NoError(t, manager.Run(context.Background()))

	var count int64
	require.NoError(t, db.Model(&SchemaVersion{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
