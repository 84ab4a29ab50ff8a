package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YanGranat/ukhvat-notes-sub000/pkg/code"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/storage"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/storage/local_fs"
)

func TestNewClientLocal(t *testing.T) {
	client, err := storage.NewClient(&storage.Config{
		Type:     storage.LOCAL,
		SavePath: t.TempDir(),
	})
	require.NoError(t, err)
	require.NotNil(t, client)

	_, ok := client.(*local_fs.LocalFS)
	assert.True(t, ok, "expected *local_fs.LocalFS, got %T", client)
}

func TestNewClientUnknownType(t *testing.T) {
	_, err := storage.NewClient(&storage.Config{Type: "tape"})
	assert.ErrorIs(t, err, code.ErrorStorageTypeUnknown)

	_, err = storage.NewClient(nil)
	assert.ErrorIs(t, err, code.ErrorStorageTypeUnknown)
}

func TestNewClientConfigValidation(t *testing.T) {
	// localfs 缺少 save-path
	_, err := storage.NewClient(&storage.Config{Type: storage.LOCAL})
	assert.ErrorIs(t, err, code.ErrorStorageConfigInvalid)

	// s3 缺少 region
	_, err = storage.NewClient(&storage.Config{Type: storage.S3, BucketName: "archives"})
	assert.ErrorIs(t, err, code.ErrorStorageConfigInvalid)

	// webdav 缺少 endpoint
	_, err = storage.NewClient(&storage.Config{Type: storage.WebDAV, User: "sync"})
	assert.ErrorIs(t, err, code.ErrorStorageConfigInvalid)
}

func TestStorageTypeMaps(t *testing.T) {
	for _, typ := range []storage.Type{storage.OSS, storage.R2, storage.S3, storage.MINIO, storage.LOCAL, storage.WebDAV} {
		assert.True(t, storage.StorageTypeMap[typ], "type %q missing from registry", typ)
	}

	// 云端子集不包含本地与 WebDAV
	assert.False(t, storage.CloudStorageTypeMap[storage.LOCAL])
	assert.False(t, storage.CloudStorageTypeMap[storage.WebDAV])
	assert.True(t, storage.CloudStorageTypeMap[storage.S3])
	assert.True(t, storage.CloudStorageTypeMap[storage.MINIO])
}
