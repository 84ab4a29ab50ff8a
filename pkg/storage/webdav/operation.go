package webdav

import (
	"io"
	"os"
	"path"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/pkg/fileurl"

	"github.com/pkg/errors"
)

// resolve 拼接自定义前缀后的远端路径
func (w *WebDAV) resolve(fileKey string) string {
	return fileurl.PathSuffixCheckAdd(w.Config.CustomPath, "/") + fileKey
}

// SendFile 将文件流上传到 WebDAV 服务器
func (w *WebDAV) SendFile(fileKey string, file io.Reader, cType string, modTime time.Time) (string, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	return w.SendContent(fileKey, content, modTime)
}

// SendContent 将二进制内容上传到 WebDAV 服务器
// 远端父目录不存在时先行创建
func (w *WebDAV) SendContent(fileKey string, content []byte, modTime time.Time) (string, error) {
	fileKey = w.resolve(fileKey)

	if dir := path.Dir(fileKey); dir != "." && dir != "/" {
		if err := w.Client.MkdirAll(dir, 0644); err != nil {
			return "", errors.Wrap(err, "webdav")
		}
	}

	if err := w.Client.Write(fileKey, content, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "webdav")
	}

	return fileKey, nil
}
