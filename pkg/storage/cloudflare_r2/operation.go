package cloudflare_r2

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/pkg/fileurl"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SendFile uploads a file stream
// SendFile 上传文件流
func (p *R2) SendFile(fileKey string, file io.Reader, cType string, modTime time.Time) (string, error) {

	ctx := context.Background()
	bucket := p.Config.BucketName

	fileKey = fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/") + fileKey

	_, err := p.S3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(fileKey),
		Body:        file,
		ContentType: aws.String(cType),
	})
	if err != nil {
		return "", errors.Wrap(err, "cloudflare_r2")
	}

	p.logger.Debug("r2 file uploaded",
		zap.String(logger.FieldBucket, bucket),
		zap.String(logger.FieldFileKey, fileKey))

	return fileKey, nil
}

// SendContent uploads raw content through the multipart uploader
// SendContent 通过分段上传器上传二进制内容
func (p *R2) SendContent(fileKey string, content []byte, modTime time.Time) (string, error) {

	ctx := context.Background()
	bucket := p.Config.BucketName

	fileKey = fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/") + fileKey

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(fileKey),
		Body:   bytes.NewReader(content),
	}
	_, err := p.S3Manager.Upload(ctx, input)
	if err != nil {
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noBucket) {
			p.logger.Error("r2 bucket does not exist", zap.String(logger.FieldBucket, bucket))
			err = noBucket
		}
		return "", errors.Wrap(err, "cloudflare_r2")
	}

	return fileKey, nil
}
