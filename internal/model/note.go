package model

import "github.com/YanGranat/ukhvat-notes-sub000/pkg/timex"

const TableNameNote = "note"

// Note mapped from table <note>
type Note struct {
	ID              int64      `gorm:"column:id;primaryKey" json:"id" form:"id"`
	Title           string     `gorm:"column:title;type:varchar(512)" json:"title" form:"title"`
	Content         string     `gorm:"column:content;type:text" json:"content" form:"content"`
	VersionSnapshot string     `gorm:"column:version_snapshot;type:text" json:"versionSnapshot" form:"versionSnapshot"`
	SnapshotHash    string     `gorm:"column:snapshot_hash;type:varchar(64)" json:"snapshotHash" form:"snapshotHash"`
	LastVersionAt   timex.Time `gorm:"column:last_version_at;type:datetime;default:NULL;autoCreateTime:false" json:"lastVersionAt" form:"lastVersionAt"`
	CreatedAt       timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt       timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoCreateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}
