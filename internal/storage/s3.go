package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/blogsphere/backend/internal/common/config"
)

const s3Driver = "s3"

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Replaced in tests.
var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

type S3Store struct {
	client    s3API
	bucket    string
	publicURL string
}

func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Store(client, cfg), nil
}

func newS3Store(client s3API, cfg config.S3Config) *S3Store {
	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Store{client: client, bucket: cfg.Bucket, publicURL: publicURL}
}

func (s *S3Store) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/png"),
	})
	observeSave(s3Driver, len(data), err)
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	return s.publicURL + "/" + name, nil
}

// Delete relies on S3 treating a missing key as a successful delete.
func (s *S3Store) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	observeDelete(s3Driver, err)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}
