// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/diff"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/timex"
)

// VersionDTO Version data transfer object with full content
// VersionDTO 包含完整内容的版本数据传输对象
type VersionDTO struct {
	ID                int64      `json:"id" form:"id"`
	NoteID            int64      `json:"noteId" form:"noteId"`
	Content           string     `json:"content" form:"content"`
	ContentHash       string     `json:"contentHash" form:"contentHash"`
	ChangedChars      int        `json:"changedChars" form:"changedChars"`
	ChangeDescription string     `json:"changeDescription" form:"changeDescription"`
	CustomName        string     `json:"customName" form:"customName"`
	AIProvider        string     `json:"aiProvider,omitempty" form:"aiProvider"`
	AIModel           string     `json:"aiModel,omitempty" form:"aiModel"`
	AIDurationMs      int64      `json:"aiDurationMs,omitempty" form:"aiDurationMs"`
	CreatedAt         timex.Time `json:"createdAt" form:"createdAt"`
}

// VersionListItemDTO Version list item without content
// Similarity is computed against the chronological predecessor, -1 when there is none
// VersionListItemDTO 不包含内容的版本列表项
// Similarity 为与时间上前一版本的相似度，无前驱时为 -1
type VersionListItemDTO struct {
	ID                int64      `json:"id" form:"id"`
	NoteID            int64      `json:"noteId" form:"noteId"`
	ChangedChars      int        `json:"changedChars" form:"changedChars"`
	ChangeDescription string     `json:"changeDescription" form:"changeDescription"`
	CustomName        string     `json:"customName" form:"customName"`
	Similarity        float64    `json:"similarity" form:"similarity"`
	AIProvider        string     `json:"aiProvider,omitempty" form:"aiProvider"`
	AIModel           string     `json:"aiModel,omitempty" form:"aiModel"`
	AIDurationMs      int64      `json:"aiDurationMs,omitempty" form:"aiDurationMs"`
	CreatedAt         timex.Time `json:"createdAt" form:"createdAt"`
}

// HighlightDTO Per-character diff classification against positional neighbors
// HighlightDTO 相对相邻版本的逐字符差异分类
type HighlightDTO struct {
	VersionID     int64           `json:"versionId" form:"versionId"`
	NoteID        int64           `json:"noteId" form:"noteId"`
	PrevVersionID int64           `json:"prevVersionId,omitempty" form:"prevVersionId"`
	NextVersionID int64           `json:"nextVersionId,omitempty" form:"nextVersionId"`
	Spans         []diff.CharSpan `json:"spans" form:"spans"`
	AddedChars    int             `json:"addedChars" form:"addedChars"`
	RemovedChars  int             `json:"removedChars" form:"removedChars"`
}

// RollbackResultDTO Result of a rollback operation
// RollbackResultDTO 回滚操作结果
type RollbackResultDTO struct {
	NoteID            int64 `json:"noteId" form:"noteId"`
	SourceVersionID   int64 `json:"sourceVersionId" form:"sourceVersionId"`
	BackupVersionID   int64 `json:"backupVersionId" form:"backupVersionId"`
	RollbackVersionID int64 `json:"rollbackVersionId" form:"rollbackVersionId"`
	RestoredChars     int   `json:"restoredChars" form:"restoredChars"`
}

// ArchiveResultDTO Result of an archive export
// ArchiveResultDTO 归档导出结果
type ArchiveResultDTO struct {
	NoteID       int64  `json:"noteId" form:"noteId"`
	Provider     string `json:"provider" form:"provider"`
	ManifestPath string `json:"manifestPath" form:"manifestPath"`
	VersionCount int    `json:"versionCount" form:"versionCount"`
	RunID        string `json:"runId" form:"runId"`
}

// ArchiveSweepDTO Result of a full archive sweep across notes
// ArchiveSweepDTO 全量归档扫描结果
type ArchiveSweepDTO struct {
	Exported int `json:"exported" form:"exported"`
	Failed   int `json:"failed" form:"failed"`
}
