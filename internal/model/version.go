package model

import "github.com/YanGranat/ukhvat-notes-sub000/pkg/timex"

const TableNameVersion = "note_version"

// Version mapped from table <note_version>
type Version struct {
	ID                int64      `gorm:"column:id;primaryKey" json:"id" form:"id"`
	NoteID            int64      `gorm:"column:note_id;not null;index:idx_note_created,priority:1" json:"noteId" form:"noteId"`
	Content           string     `gorm:"column:content;type:text" json:"content" form:"content"`
	ContentHash       string     `gorm:"column:content_hash;type:varchar(64)" json:"contentHash" form:"contentHash"`
	ChangedChars      int        `gorm:"column:changed_chars;default:0" json:"changedChars" form:"changedChars"`
	ChangeDescription string     `gorm:"column:change_description;type:varchar(255)" json:"changeDescription" form:"changeDescription"`
	CustomName        string     `gorm:"column:custom_name;type:varchar(255);index:idx_custom_name" json:"customName" form:"customName"`
	AIProvider        string     `gorm:"column:ai_provider;type:varchar(64)" json:"aiProvider" form:"aiProvider"`
	AIModel           string     `gorm:"column:ai_model;type:varchar(128)" json:"aiModel" form:"aiModel"`
	AIDurationMs      int64      `gorm:"column:ai_duration_ms;default:0" json:"aiDurationMs" form:"aiDurationMs"`
	DiffOpsJSON       string     `gorm:"column:diff_ops_json;type:text" json:"diffOpsJson" form:"diffOpsJson"`
	CreatedAt         timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false;index:idx_note_created,priority:2" json:"createdAt" form:"createdAt"`
}

// TableName Version's table name
func (*Version) TableName() string {
	return TableNameVersion
}
