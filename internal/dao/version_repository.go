// Package dao 实现数据访问层
package dao

import (
	"context"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/internal/domain"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/model"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/logger"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/metrics"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/timex"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// versionRepository 实现 domain.VersionRepository 接口
type versionRepository struct {
	dao *Dao
	// offloadThreshold 内容落盘阈值（字节），超过阈值的内容写入文件而非数据库
	offloadThreshold int64
}

// NewVersionRepository 创建 VersionRepository 实例
// offloadThreshold: 内容落盘阈值（字节），0 表示任何非空内容都落盘
func NewVersionRepository(dao *Dao, offloadThreshold int64) domain.VersionRepository {
	return &versionRepository{dao: dao, offloadThreshold: offloadThreshold}
}

func (r *versionRepository) db(ctx context.Context) *gorm.DB {
	return r.dao.DB().WithContext(ctx)
}

// toDomain 将数据库模型转换为领域模型
func (r *versionRepository) toDomain(m *model.Version) *domain.Version {
	if m == nil {
		return nil
	}
	return &domain.Version{
		ID:                m.ID,
		NoteID:            m.NoteID,
		Content:           m.Content,
		ContentHash:       m.ContentHash,
		ChangedChars:      m.ChangedChars,
		ChangeDescription: m.ChangeDescription,
		CustomName:        m.CustomName,
		AIProvider:        m.AIProvider,
		AIModel:           m.AIModel,
		AIDurationMs:      m.AIDurationMs,
		DiffOpsJSON:       m.DiffOpsJSON,
		CreatedAt:         time.Time(m.CreatedAt),
	}
}

// fillVersionContent 填充版本内容
// 优先读取落盘文件；文件缺失但行内内容超过阈值时执行懒迁移；
// 文件与行内内容都缺失时按空内容返回并记录日志
func (r *versionRepository) fillVersionContent(v *domain.Version) {
	if v == nil {
		return
	}
	folder := r.dao.GetVersionFolderPath(v.NoteID)
	fileName := VersionContentFileName(v.ID)

	content, exists, err := r.dao.LoadContentFromFile(folder, fileName)
	if err != nil {
		r.dao.Logger().Warn("failed to load version content file",
			zap.Int64(logger.FieldNoteID, v.NoteID),
			zap.Int64(logger.FieldVersionID, v.ID),
			zap.Error(err),
		)
		return
	}
	if exists {
		v.Content = content
		return
	}

	if v.Content != "" {
		// 行内内容超过当前阈值时懒迁移到文件，失败不阻断读取
		if int64(len(v.Content)) > r.offloadThreshold {
			if err := r.dao.SaveContentToFile(folder, fileName, v.Content); err != nil {
				r.dao.Logger().Warn("lazy migration: SaveContentToFile failed for version content",
					zap.Int64(logger.FieldNoteID, v.NoteID),
					zap.Int64(logger.FieldVersionID, v.ID),
					zap.String(logger.FieldMethod, "versionRepository.fillVersionContent"),
					zap.Error(err),
				)
			} else {
				metrics.ContentOffloads.Inc()
			}
		}
		return
	}

	r.dao.Logger().Debug("version content empty and no content file",
		zap.Int64(logger.FieldNoteID, v.NoteID),
		zap.Int64(logger.FieldVersionID, v.ID),
	)
}

// GetByID 根据ID获取版本（含完整内容）
func (r *versionRepository) GetByID(ctx context.Context, id int64) (*domain.Version, error) {
	var m model.Version
	if err := r.db(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	v := r.toDomain(&m)
	r.fillVersionContent(v)
	return v, nil
}

// GetLatestByNoteID 获取笔记最新的版本
func (r *versionRepository) GetLatestByNoteID(ctx context.Context, noteID int64) (*domain.Version, error) {
	var m model.Version
	err := r.db(ctx).
		Where("note_id = ?", noteID).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	v := r.toDomain(&m)
	r.fillVersionContent(v)
	return v, nil
}

// Create 创建版本
// 超过阈值的内容不入库，写入版本内容文件
func (r *versionRepository) Create(ctx context.Context, version *domain.Version) (*domain.Version, error) {
	var result *domain.Version

	err := r.dao.ExecuteWrite(ctx, version.NoteID, func(db *gorm.DB) error {
		m := &model.Version{
			NoteID:            version.NoteID,
			Content:           version.Content,
			ContentHash:       version.ContentHash,
			ChangedChars:      version.ChangedChars,
			ChangeDescription: version.ChangeDescription,
			CustomName:        version.CustomName,
			AIProvider:        version.AIProvider,
			AIModel:           version.AIModel,
			AIDurationMs:      version.AIDurationMs,
			DiffOpsJSON:       version.DiffOpsJSON,
			CreatedAt:         timex.Time(version.CreatedAt),
		}

		content := version.Content
		offload := int64(len(content)) > r.offloadThreshold && content != ""
		if offload {
			m.Content = ""
		}

		if err := db.WithContext(ctx).Create(m).Error; err != nil {
			return err
		}

		if offload {
			folder := r.dao.GetVersionFolderPath(m.NoteID)
			if err := r.dao.SaveContentToFile(folder, VersionContentFileName(m.ID), content); err != nil {
				return err
			}
			metrics.ContentOffloads.Inc()
		}

		res := r.toDomain(m)
		res.Content = content
		result = res
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListByNoteID 获取笔记的版本列表，按创建时间倒序
func (r *versionRepository) ListByNoteID(ctx context.Context, noteID int64) ([]*domain.Version, error) {
	var ms []*model.Version
	err := r.db(ctx).
		Where("note_id = ?", noteID).
		Order("created_at DESC, id DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	var list []*domain.Version
	for _, m := range ms {
		v := r.toDomain(m)
		r.fillVersionContent(v)
		list = append(list, v)
	}
	return list, nil
}

// CountRegularByNoteID 统计笔记的常规版本数量（未命名版本）
func (r *versionRepository) CountRegularByNoteID(ctx context.Context, noteID int64) (int64, error) {
	var count int64
	err := r.db(ctx).Model(&model.Version{}).
		Where("note_id = ? AND (custom_name IS NULL OR custom_name = '')", noteID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListRegularBeyond 获取超出保留数量的最旧常规版本，按创建时间升序（最旧在前）
func (r *versionRepository) ListRegularBeyond(ctx context.Context, noteID int64, keep int) ([]*domain.Version, error) {
	if keep < 0 {
		keep = 0
	}

	count, err := r.CountRegularByNoteID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	excess := count - int64(keep)
	if excess <= 0 {
		return nil, nil
	}

	var ms []*model.Version
	err = r.db(ctx).
		Where("note_id = ? AND (custom_name IS NULL OR custom_name = '')", noteID).
		Order("created_at ASC, id ASC").
		Limit(int(excess)).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	var list []*domain.Version
	for _, m := range ms {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// UpdateCustomName 更新版本的用户命名
func (r *versionRepository) UpdateCustomName(ctx context.Context, id int64, name string) error {
	return r.dao.ExecuteWrite(ctx, r.noteIDOf(ctx, id), func(db *gorm.DB) error {
		res := db.WithContext(ctx).Model(&model.Version{}).
			Where("id = ?", id).
			Update("custom_name", name)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// UpdateAIMetadata 更新版本的 AI 元数据
func (r *versionRepository) UpdateAIMetadata(ctx context.Context, id int64, provider, modelName string, durationMs int64) error {
	return r.dao.ExecuteWrite(ctx, r.noteIDOf(ctx, id), func(db *gorm.DB) error {
		res := db.WithContext(ctx).Model(&model.Version{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"ai_provider":    provider,
				"ai_model":       modelName,
				"ai_duration_ms": durationMs,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Delete 删除指定ID的版本及其内容文件
func (r *versionRepository) Delete(ctx context.Context, id int64) error {
	var m model.Version
	if err := r.db(ctx).Select("id", "note_id").Where("id = ?", id).First(&m).Error; err != nil {
		return err
	}

	return r.dao.ExecuteWrite(ctx, m.NoteID, func(db *gorm.DB) error {
		if err := db.WithContext(ctx).Where("id = ?", id).Delete(&model.Version{}).Error; err != nil {
			return err
		}

		folder := r.dao.GetVersionFolderPath(m.NoteID)
		if err := r.dao.RemoveContentFile(folder, VersionContentFileName(id)); err != nil {
			r.dao.Logger().Warn("failed to delete version content file",
				zap.Int64(logger.FieldNoteID, m.NoteID),
				zap.Int64(logger.FieldVersionID, id),
				zap.Error(err),
			)
		}
		return nil
	})
}

// DeleteAllByNoteID 删除笔记的全部版本（含命名版本）
func (r *versionRepository) DeleteAllByNoteID(ctx context.Context, noteID int64) (int64, error) {
	var removed int64

	err := r.dao.ExecuteWrite(ctx, noteID, func(db *gorm.DB) error {
		res := db.WithContext(ctx).Where("note_id = ?", noteID).Delete(&model.Version{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		folder := r.dao.GetVersionFolderPath(noteID)
		if err := r.dao.RemoveContentFolder(folder); err != nil {
			r.dao.Logger().Warn("failed to delete version content folder",
				zap.Int64(logger.FieldNoteID, noteID),
				zap.String("folder", folder),
				zap.Error(err),
			)
		}
		return nil
	})

	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ListNoteIDs 获取存在版本的全部笔记ID
func (r *versionRepository) ListNoteIDs(ctx context.Context) ([]int64, error) {
	var noteIDs []int64
	err := r.db(ctx).Model(&model.Version{}).
		Distinct("note_id").
		Order("note_id ASC").
		Pluck("note_id", &noteIDs).Error
	if err != nil {
		return nil, err
	}
	return noteIDs, nil
}

// noteIDOf 查询版本所属的笔记ID，查不到时返回 0（写队列退化为全局串行键）
func (r *versionRepository) noteIDOf(ctx context.Context, versionID int64) int64 {
	var m model.Version
	if err := r.db(ctx).Select("note_id").Where("id = ?", versionID).First(&m).Error; err != nil {
		return 0
	}
	return m.NoteID
}

// 确保 versionRepository 实现了 domain.VersionRepository 接口
var _ domain.VersionRepository = (*versionRepository)(nil)
