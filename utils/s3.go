package utils

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the slice of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader writes store exports to a bucket under an optional prefix.
type S3Uploader struct {
	client ObjectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Uploader loads the default AWS credential chain for region.
func NewS3Uploader(ctx context.Context, region, bucket, prefix string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config for S3: %w", err)
	}
	return NewS3UploaderWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func NewS3UploaderWithClient(client ObjectPutter, bucket, prefix string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// Upload stores a JSON export and returns its s3:// location.
func (u *S3Uploader) Upload(ctx context.Context, body []byte) (string, error) {
	key := path.Join(u.prefix, fmt.Sprintf("caltrack-%s.json", u.now().Format("20060102-150405")))

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
