package local_fs

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/pkg/fileurl"
)

// getSavePath 返回带结尾斜杠的保存根路径
func (p *LocalFS) getSavePath() string {
	return fileurl.PathSuffixCheckAdd(p.Config.SavePath, "/")
}

// resolve 计算文件的落盘路径
func (p *LocalFS) resolve(fileKey string) string {
	if p.Config.CustomPath != "" {
		fileKey = fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/") + fileKey
	}
	return p.getSavePath() + fileKey
}

// SendFile 将文件流保存到本地磁盘
// SendFile saves a file stream to the local disk
func (p *LocalFS) SendFile(fileKey string, file io.Reader, cType string, modTime time.Time) (string, error) {
	dstFileKey := p.resolve(fileKey)

	if err := os.MkdirAll(filepath.Dir(dstFileKey), 0o754); err != nil {
		return "", err
	}

	dst, err := os.Create(dstFileKey)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}

	if !modTime.IsZero() {
		if err := os.Chtimes(dstFileKey, modTime, modTime); err != nil {
			return "", err
		}
	}

	return dstFileKey, nil
}

// SendContent 将二进制内容保存到本地磁盘
// SendContent saves raw content to the local disk
func (p *LocalFS) SendContent(fileKey string, content []byte, modTime time.Time) (string, error) {
	dstFileKey := p.resolve(fileKey)

	if err := os.MkdirAll(filepath.Dir(dstFileKey), 0o754); err != nil {
		return "", err
	}

	if err := os.WriteFile(dstFileKey, content, 0o644); err != nil {
		return "", err
	}

	if !modTime.IsZero() {
		if err := os.Chtimes(dstFileKey, modTime, modTime); err != nil {
			return "", err
		}
	}

	return dstFileKey, nil
}
