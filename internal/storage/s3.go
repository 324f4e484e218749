package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/smartscale/portfolio-api/internal/config"
)

// S3Backend stores assets as objects under a key prefix in one bucket.
type S3Backend struct {
	svc    s3iface.S3API
	bucket string
	prefix string
}

// NewS3Backend creates an S3 client from the storage configuration.
// Static credentials are used when configured, otherwise the default chain applies.
func NewS3Backend(cfg config.StorageConfig) (*S3Backend, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)
	}
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return NewS3BackendWithClient(s3.New(sess), cfg.S3Bucket, cfg.S3Prefix), nil
}

// NewS3BackendWithClient wraps an existing S3 client.
func NewS3BackendWithClient(svc s3iface.S3API, bucket, prefix string) *S3Backend {
	return &S3Backend{
		svc:    svc,
		bucket: bucket,
		prefix: prefix,
	}
}

func (b *S3Backend) key(name string) string {
	return path.Join(b.prefix, name)
}

// Put uploads the object in a single request.
func (b *S3Backend) Put(ctx context.Context, name string, body io.ReadSeeker, size int64, contentType string) error {
	_, err := b.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(b.key(name)),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	return err
}

// Delete removes the object. S3 treats deleting a missing key as success.
func (b *S3Backend) Delete(ctx context.Context, name string) error {
	_, err := b.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(name)),
	})
	if isS3NotFound(err) {
		return nil
	}
	return err
}

// Open streams the object body.
func (b *S3Backend) Open(ctx context.Context, name string) (io.ReadCloser, *AssetInfo, error) {
	out, err := b.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(name)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, nil, ErrAssetNotFound
		}
		return nil, nil, err
	}

	return out.Body, &AssetInfo{
		Name:        name,
		ContentType: aws.StringValue(out.ContentType),
		Size:        aws.Int64Value(out.ContentLength),
		ModTime:     aws.TimeValue(out.LastModified),
	}, nil
}

func isS3NotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}
