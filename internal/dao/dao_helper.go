package dao

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/YanGranat/ukhvat-notes-sub000/pkg/code"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/fileurl"
)

// GetVersionFolderPath 获取笔记版本内容的存储目录
func (d *Dao) GetVersionFolderPath(noteID int64) string {
	return filepath.Join("storage", "vault", fmt.Sprintf("n_%d", noteID))
}

// VersionContentFileName 版本内容文件名
func VersionContentFileName(versionID int64) string {
	return fmt.Sprintf("v_%d.txt", versionID)
}

// SaveContentToFile 保存内容到文件
func (d *Dao) SaveContentToFile(folderPath string, fileName string, content string) error {
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return code.ErrorContentWrite.WithDetails(err.Error())
	}
	filePath := filepath.Join(folderPath, fileName)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		return code.ErrorContentWrite.WithDetails(err.Error())
	}
	return nil
}

// LoadContentFromFile 从文件加载内容
// 返回值: 内容, 是否存在, 错误
func (d *Dao) LoadContentFromFile(folderPath string, fileName string) (string, bool, error) {
	filePath := filepath.Join(folderPath, fileName)
	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, code.ErrorContentRead.WithDetails(err.Error())
	}
	return string(content), true, nil
}

// RemoveContentFile 删除单个内容文件
func (d *Dao) RemoveContentFile(folderPath string, fileName string) error {
	filePath := filepath.Join(folderPath, fileName)
	if fileurl.IsExist(filePath) {
		return os.Remove(filePath)
	}
	return nil
}

// RemoveContentFolder 删除内容文件夹
func (d *Dao) RemoveContentFolder(folderPath string) error {
	if fileurl.IsExist(folderPath) {
		return os.RemoveAll(folderPath)
	}
	return nil
}
