// Package domain 定义领域模型和接口
package domain

import "context"

// VersionRepository 版本仓储接口
type VersionRepository interface {
	// GetByID 根据ID获取版本（含完整内容）
	GetByID(ctx context.Context, id int64) (*Version, error)

	// GetLatestByNoteID 获取笔记最新的版本，无版本时返回 gorm.ErrRecordNotFound
	GetLatestByNoteID(ctx context.Context, noteID int64) (*Version, error)

	// Create 创建版本，返回带ID的版本
	Create(ctx context.Context, version *Version) (*Version, error)

	// ListByNoteID 获取笔记的版本列表，按创建时间倒序（ID 倒序决胜）
	ListByNoteID(ctx context.Context, noteID int64) ([]*Version, error)

	// CountRegularByNoteID 统计笔记的常规版本数量（未命名版本）
	CountRegularByNoteID(ctx context.Context, noteID int64) (int64, error)

	// ListRegularBeyond 获取超出保留数量的最旧常规版本（淘汰候选）
	// keep: 需要保留的常规版本数量
	ListRegularBeyond(ctx context.Context, noteID int64, keep int) ([]*Version, error)

	// UpdateCustomName 更新版本的用户命名（唯一的常规可变字段）
	UpdateCustomName(ctx context.Context, id int64, name string) error

	// UpdateAIMetadata 更新版本的 AI 元数据
	UpdateAIMetadata(ctx context.Context, id int64, provider, model string, durationMs int64) error

	// Delete 删除指定ID的版本
	Delete(ctx context.Context, id int64) error

	// DeleteAllByNoteID 删除笔记的全部版本（含命名版本），返回删除数量
	DeleteAllByNoteID(ctx context.Context, noteID int64) (int64, error)

	// ListNoteIDs 获取存在版本的全部笔记ID（清理扫描和归档使用）
	ListNoteIDs(ctx context.Context) ([]int64, error)
}

// NoteRepository 笔记仓储接口（最小协作面）
type NoteRepository interface {
	// GetByID 根据ID获取笔记
	GetByID(ctx context.Context, id int64) (*Note, error)

	// Create 创建笔记
	Create(ctx context.Context, note *Note) (*Note, error)

	// UpdateContent 更新笔记内容（回滚写回）
	UpdateContent(ctx context.Context, id int64, content string) error

	// UpdateSnapshot 更新笔记的版本快照记账字段
	UpdateSnapshot(ctx context.Context, id int64, snapshot, snapshotHash string) error

	// ListIDs 获取全部笔记ID
	ListIDs(ctx context.Context) ([]int64, error)
}
