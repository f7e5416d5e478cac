package remote

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/famvault/famvault/internal/common"
)

// S3Blobs stores media directly in an S3-compatible bucket (AWS or
// MinIO). Used when the deployment talks to object storage itself rather
// than through the backend's presign endpoint.
type S3Blobs struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// S3Config carries the credentials and addressing for the bucket.
type S3Config struct {
	Region       string
	Bucket       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// NewS3Blobs builds the S3 client from static credentials, the same way
// a MinIO-backed deployment is configured.
func NewS3Blobs(ctx context.Context, cfg S3Config) (*S3Blobs, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "")))
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = cfg.BaseEndpoint != ""
	})

	return &S3Blobs{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

func (b *S3Blobs) Upload(ctx context.Context, path string, content []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return fmt.Errorf("%w: put object %s: %w", common.ErrRemoteUnavailable, path, err)
	}
	return nil
}

// URL presigns a GET for the object, valid long enough for the document
// write that references it to complete and for readers to fetch it.
func (b *S3Blobs) URL(ctx context.Context, path string) (string, error) {
	req, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("%w: presign get %s: %w", common.ErrRemoteUnavailable, path, err)
	}
	return req.URL, nil
}
