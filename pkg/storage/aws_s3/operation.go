package aws_s3

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

// SendFile 上传文件流
// SendFile uploads a file stream
func (p *S3) SendFile(fileKey string, file io.Reader, cType string, modTime time.Time) (string, error) {

	bucket := p.Config.BucketName
	ctx := context.Background()

	fileKey = fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/") + fileKey

	_, err := p.S3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(fileKey),
		Body:        file,
		ContentType: aws.String(cType),
	})
	if err != nil {
		return "", errors.Wrap(err, "aws_s3")
	}

	p.logger.Debug("s3 file uploaded",
		zap.String(logger.FieldBucket, bucket),
		zap.String(logger.FieldFileKey, fileKey))

	return fileKey, nil
}

// SendContent 上传二进制内容，走分段上传器并带校验和
// SendContent uploads raw content through the multipart uploader with a checksum
func (p *S3) SendContent(fileKey string, content []byte, modTime time.Time) (string, error) {

	ctx := context.Background()
	bucket := p.Config.BucketName

	fileKey = fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/") + fileKey

	input := &s3.PutObjectInput{
		Bucket:            aws.String(bucket),
		Key:               aws.String(fileKey),
		Body:              bytes.NewReader(content),
		ChecksumAlgorithm: types.ChecksumAlgorithmSha256,
	}
	_, err := p.S3Manager.Upload(ctx, input)
	if err != nil {
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noBucket) {
			p.logger.Error("s3 bucket does not exist", zap.String(logger.FieldBucket, bucket))
			err = noBucket
		}
		return "", errors.Wrap(err, "aws_s3")
	}

	err = s3.NewObjectExistsWaiter(p.S3Client).Wait(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(fileKey),
	}, time.Minute)
	if err != nil {
		return "", errors.Wrap(err, "aws_s3")
	}

	return fileKey, nil
}
