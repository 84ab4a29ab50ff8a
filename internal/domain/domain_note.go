// Package domain 定义领域模型和接口
package domain

import "time"

// Note 笔记领域模型（最小协作面）
// 版本引擎只读取内容与快照，回滚时写回内容，建版后更新快照记账字段
// Note is the minimal collaborator surface of the owning note
// The version engine reads content and snapshot, writes content back on
// rollback, and updates the snapshot bookkeeping after each capture
type Note struct {
	ID              int64
	Title           string
	Content         string
	VersionSnapshot string
	SnapshotHash    string
	LastVersionAt   time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasVersionBaseline 判断笔记是否已有版本基线
// 没有基线的笔记在首次合格编辑时无条件获得 "initial creation" 版本
func (n *Note) HasVersionBaseline() bool {
	return !n.LastVersionAt.IsZero()
}
