package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Backend stores artifacts in an S3 bucket under an optional key prefix.
type S3Backend struct {
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
}

// NewS3 creates an S3 backend. Credentials and region resolve through the
// usual AWS environment and shared config chain.
func NewS3(bucket, prefix, region string) (*S3Backend, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket must be specified")
	}

	opts := session.Options{SharedConfigState: session.SharedConfigEnable}
	if region != "" {
		opts.Config = aws.Config{Region: aws.String(region)}
	}
	sess, err := session.NewSessionWithOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Backend{
		uploader: s3manager.NewUploader(sess),
		bucket:   bucket,
		prefix:   prefix,
	}, nil
}

// Put implements Backend.
func (s *S3Backend) Put(ctx context.Context, key string, data []byte) (string, error) {
	fullKey := key
	if s.prefix != "" {
		fullKey = path.Join(s.prefix, key)
	}

	result, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact to s3://%s/%s: %w", s.bucket, fullKey, err)
	}
	return result.Location, nil
}
