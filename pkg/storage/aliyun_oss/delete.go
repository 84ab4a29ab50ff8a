package aliyun_oss

import (
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/fileurl"
)

func (p *OSS) Delete(fileKey string) error {
	if p.Bucket == nil {
		if err := p.GetBucket(""); err != nil {
			return err
		}
	}
	fileKey = fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/") + fileKey
	return p.Bucket.DeleteObject(fileKey)
}
