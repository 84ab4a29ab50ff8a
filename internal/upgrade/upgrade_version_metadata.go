package upgrade

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/YanGranat/ukhvat-notes-sub000/global"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// legacyAIPrefix 旧版 AI 元数据在 custom_name 中的前缀
const legacyAIPrefix = "ai::"

// VersionMetadataMigrate 回填 AI 元数据列
// 旧版把 AI 元数据编码在 custom_name 中：
// ai::<provider>::<model>::<durationMs>[::<display name>]
// 迁移后元数据存入显式列，custom_name 只保留展示名称
type VersionMetadataMigrate struct{}

// Version 返回版本号
func (m *VersionMetadataMigrate) Version() string {
	return "1.1.0"
}

// Description 返回描述
func (m *VersionMetadataMigrate) Description() string {
	return "Backfill AI metadata columns from the legacy custom_name convention"
}

// Up 执行升级
func (m *VersionMetadataMigrate) Up(db *gorm.DB, ctx context.Context) error {
	lg := global.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	migrated := 0
	skipped := 0

	var rows []*model.Version
	result := db.WithContext(ctx).
		Where("custom_name LIKE ?", legacyAIPrefix+"%").
		FindInBatches(&rows, 200, func(tx *gorm.DB, batch int) error {
			for _, row := range rows {
				provider, aiModel, durationMs, display, ok := parseLegacyAIName(row.CustomName)
				if !ok {
					// 形似旧格式但解析不了的名称保持原样
					skipped++
					lg.Warn("legacy AI name not parsable, leaving untouched",
						zap.Int64("versionId", row.ID),
						zap.String("customName", row.CustomName))
					continue
				}

				updates := map[string]interface{}{
					"ai_provider":    provider,
					"ai_model":       aiModel,
					"ai_duration_ms": durationMs,
					"custom_name":    display,
				}
				if err := tx.Model(&model.Version{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
					return fmt.Errorf("backfill version %d: %w", row.ID, err)
				}
				migrated++
			}
			return nil
		})
	if result.Error != nil {
		return result.Error
	}

	lg.Info("AI metadata backfill completed",
		zap.Int("migrated", migrated),
		zap.Int("skipped", skipped))
	return nil
}

// parseLegacyAIName 解析旧版 AI 元数据名称
// 展示名称可选且允许包含 "::"，provider 与 model 不允许为空
func parseLegacyAIName(name string) (provider, aiModel string, durationMs int64, display string, ok bool) {
	if !strings.HasPrefix(name, legacyAIPrefix) {
		return
	}

	parts := strings.Split(name, "::")
	if len(parts) < 4 || parts[0] != "ai" {
		return
	}

	provider = parts[1]
	aiModel = parts[2]
	if provider == "" || aiModel == "" {
		return "", "", 0, "", false
	}

	d, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil || d < 0 {
		return "", "", 0, "", false
	}
	durationMs = d

	if len(parts) > 4 {
		display = strings.Join(parts[4:], "::")
	}
	return provider, aiModel, durationMs, display, true
}
