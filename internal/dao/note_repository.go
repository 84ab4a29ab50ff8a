// Package dao 实现数据访问层
package dao

import (
	"context"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/internal/domain"
	"github.com/YanGranat/ukhvat-notes-sub000/internal/model"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/timex"

	"gorm.io/gorm"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

func (r *noteRepository) db(ctx context.Context) *gorm.DB {
	return r.dao.DB().WithContext(ctx)
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	return &domain.Note{
		ID:              m.ID,
		Title:           m.Title,
		Content:         m.Content,
		VersionSnapshot: m.VersionSnapshot,
		SnapshotHash:    m.SnapshotHash,
		LastVersionAt:   time.Time(m.LastVersionAt),
		CreatedAt:       time.Time(m.CreatedAt),
		UpdatedAt:       time.Time(m.UpdatedAt),
	}
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	var m model.Note
	if err := r.db(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	var result *domain.Note

	err := r.dao.ExecuteWrite(ctx, note.ID, func(db *gorm.DB) error {
		now := timex.Now()
		m := &model.Note{
			ID:              note.ID,
			Title:           note.Title,
			Content:         note.Content,
			VersionSnapshot: note.VersionSnapshot,
			SnapshotHash:    note.SnapshotHash,
			LastVersionAt:   timex.Time(note.LastVersionAt),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := db.WithContext(ctx).Create(m).Error; err != nil {
			return err
		}
		result = r.toDomain(m)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateContent 更新笔记内容（回滚写回）
func (r *noteRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	return r.dao.ExecuteWrite(ctx, id, func(db *gorm.DB) error {
		res := db.WithContext(ctx).Model(&model.Note{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"content":    content,
				"updated_at": timex.Now(),
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

// UpdateSnapshot 更新笔记的版本快照记账字段
func (r *noteRepository) UpdateSnapshot(ctx context.Context, id int64, snapshot, snapshotHash string) error {
	return r.dao.ExecuteWrite(ctx, id, func(db *gorm.DB) error {
		res := db.WithContext(ctx).Model(&model.Note{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"version_snapshot": snapshot,
				"snapshot_hash":    snapshotHash,
				"last_version_at":  timex.Now(),
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

// ListIDs 获取全部笔记ID
func (r *noteRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db(ctx).Model(&model.Note{}).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// 确保 noteRepository 实现了 domain.NoteRepository 接口
var _ domain.NoteRepository = (*noteRepository)(nil)
