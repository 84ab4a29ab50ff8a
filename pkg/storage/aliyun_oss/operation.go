package aliyun_oss

import (
	"bytes"
	"io"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/pkg/fileurl"
)

// SendFile 上传文件流
func (p *OSS) SendFile(fileKey string, file io.Reader, cType string, modTime time.Time) (string, error) {
	if p.Bucket == nil {
		err := p.GetBucket("")
		if err != nil {
			return "", err
		}
	}
	fileKey = fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/") + fileKey
	err := p.Bucket.PutObject(fileKey, file)
	if err != nil {
		return "", err
	}
	return fileKey, nil
}

// SendContent 上传二进制内容
func (p *OSS) SendContent(fileKey string, content []byte, modTime time.Time) (string, error) {

	if p.Bucket == nil {
		err := p.GetBucket("")
		if err != nil {
			return "", err
		}
	}
	fileKey = fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/") + fileKey
	err := p.Bucket.PutObject(fileKey, bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	return fileKey, nil
}
