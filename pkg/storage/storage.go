// Package storage 提供归档导出使用的统一对象存储客户端
// Package storage provides the unified object storage clients used by archive export
package storage

import (
	"io"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/pkg/code"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/storage/aliyun_oss"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/storage/aws_s3"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/storage/cloudflare_r2"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/storage/local_fs"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/storage/minio"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/storage/webdav"
)

type Type = string
type CloudType = Type

const OSS CloudType = "oss"
const R2 CloudType = "r2"
const S3 CloudType = "s3"
const MINIO CloudType = "minio"
const LOCAL Type = "localfs"
const WebDAV CloudType = "webdav"

var StorageTypeMap = map[Type]bool{
	OSS:    true,
	R2:     true,
	S3:     true,
	MINIO:  true,
	LOCAL:  true,
	WebDAV: true,
}

var CloudStorageTypeMap = map[Type]bool{
	OSS:   true,
	R2:    true,
	S3:    true,
	MINIO: true,
}

// Config Unified storage configuration
type Config struct {
	Type Type `yaml:"type"`

	// Common settings
	IsEnabled  bool   `yaml:"is-enable"`
	CustomPath string `yaml:"custom-path"`

	// Cloud Storage (S3/OSS/R2)
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	AccountID       string `yaml:"account-id"` // Cloudflare R2 specific

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Path     string `yaml:"path"` // WebDAV specific path if needed

	// Local FS
	SavePath string `yaml:"save-path"`
}

type Storager interface {
	SendFile(pathKey string, file io.Reader, cType string, modTime time.Time) (string, error)
	SendContent(pathKey string, content []byte, modTime time.Time) (string, error)
	Delete(pathKey string) error
}

func NewClient(config *Config) (Storager, error) {
	if config == nil {
		return nil, code.ErrorStorageTypeUnknown
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	cType := config.Type
	if cType == LOCAL {
		cfg := &local_fs.Config{
			IsEnabled:  config.IsEnabled,
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		}
		return local_fs.NewClient(cfg)
	} else if cType == OSS {
		cfg := &aliyun_oss.Config{
			IsEnabled:       config.IsEnabled,
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}
		return aliyun_oss.NewClient(cfg)
	} else if cType == R2 {
		cfg := &cloudflare_r2.Config{
			IsEnabled:       config.IsEnabled,
			AccountID:       config.AccountID,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}
		return cloudflare_r2.NewClient(cfg)
	} else if cType == S3 {
		cfg := &aws_s3.Config{
			IsEnabled:       config.IsEnabled,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}
		return aws_s3.NewClient(cfg)
	} else if cType == MINIO {
		cfg := &minio.Config{
			IsEnabled:       config.IsEnabled,
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}
		return minio.NewClient(cfg)
	} else if cType == WebDAV {
		cfg := &webdav.Config{
			IsEnabled:  config.IsEnabled,
			Endpoint:   config.Endpoint,
			Path:       config.Path,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		}
		return webdav.NewClient(cfg)
	}
	return nil, code.ErrorStorageTypeUnknown
}

// validateConfig 校验各存储类型的必填配置
// validateConfig checks the required settings per storage type
func validateConfig(c *Config) error {
	switch c.Type {
	case LOCAL:
		if c.SavePath == "" {
			return code.ErrorStorageConfigInvalid.WithDetails("localfs requires save-path")
		}
	case OSS:
		if c.Endpoint == "" || c.BucketName == "" {
			return code.ErrorStorageConfigInvalid.WithDetails("oss requires endpoint and bucket-name")
		}
	case R2:
		if c.AccountID == "" || c.BucketName == "" {
			return code.ErrorStorageConfigInvalid.WithDetails("r2 requires account-id and bucket-name")
		}
	case S3:
		if c.Region == "" || c.BucketName == "" {
			return code.ErrorStorageConfigInvalid.WithDetails("s3 requires region and bucket-name")
		}
	case MINIO:
		if c.Endpoint == "" || c.BucketName == "" {
			return code.ErrorStorageConfigInvalid.WithDetails("minio requires endpoint and bucket-name")
		}
	case WebDAV:
		if c.Endpoint == "" {
			return code.ErrorStorageConfigInvalid.WithDetails("webdav requires endpoint")
		}
	}
	return nil
}
