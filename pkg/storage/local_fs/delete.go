package local_fs

import (
	"os"

	"github.com/YanGranat/ukhvat-notes-sub000/pkg/fileurl"
)

func (p *LocalFS) Delete(fileKey string) error {
	dstFileKey := p.resolve(fileKey)
	if fileurl.IsExist(dstFileKey) {
		return os.Remove(dstFileKey)
	}
	return nil
}
