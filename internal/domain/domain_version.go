// Package domain 定义领域模型和接口
package domain

import (
	"fmt"
	"time"
)

// 版本来源描述，写入 ChangeDescription 字段
// Version origin descriptions, stored in the ChangeDescription field
const (
	ChangeAutosave       = "autosave"
	ChangeInitialCreate  = "initial creation"
	ChangeForcedSave     = "forced save"
	ChangeRollbackBackup = "pre-rollback backup"
	ChangeImported       = "imported"
)

// RollbackChangeDescription 生成回滚版本的来源描述
// RollbackChangeDescription builds the origin description for a rollback version
func RollbackChangeDescription(versionID int64) string {
	return fmt.Sprintf("rollback to version %d", versionID)
}

// Version 笔记历史版本领域模型
// 除 CustomName 与 AI 元数据外，所有字段在创建后不可变
// Version is the note history snapshot domain model
// All fields except CustomName and the AI metadata are immutable after creation
type Version struct {
	ID                int64
	NoteID            int64
	Content           string
	ContentHash       string
	ChangedChars      int
	ChangeDescription string
	CustomName        string
	AIProvider        string
	AIModel           string
	AIDurationMs      int64
	DiffOpsJSON       string
	CreatedAt         time.Time
}

// IsNamed 判断版本是否被用户命名
// 命名版本不参与容量淘汰
// Named versions are exempt from cap based eviction
func (v *Version) IsNamed() bool {
	return v.CustomName != ""
}

// HasAIMetadata 判断版本是否携带 AI 元数据
func (v *Version) HasAIMetadata() bool {
	return v.AIProvider != "" || v.AIModel != "" || v.AIDurationMs > 0
}
