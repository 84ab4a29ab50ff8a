package model

import (
	"gorm.io/gorm"
)

// AutoMigrateAll 迁移全部数据表
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Note{}, Version{})
}
