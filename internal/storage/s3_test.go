package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogsphere/backend/internal/common/config"
)

type fakeS3 struct {
	putFunc    func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error)
	deleteFunc func(ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error)
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putFunc != nil {
		return f.putFunc(ctx, in)
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteFunc != nil {
		return f.deleteFunc(ctx, in)
	}
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_Save(t *testing.T) {
	var gotKey, gotBucket string
	var gotBody []byte
	client := &fakeS3{
		putFunc: func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			gotKey = aws.ToString(in.Key)
			gotBucket = aws.ToString(in.Bucket)
			gotBody, _ = io.ReadAll(in.Body)
			return &s3.PutObjectOutput{}, nil
		},
	}
	store := newS3Store(client, config.S3Config{Bucket: "photos", Region: "eu-west-1"})

	url, err := store.Save(context.Background(), "photo.png", []byte("bytes"))
	require.NoError(t, err)

	assert.Equal(t, "photo.png", gotKey)
	assert.Equal(t, "photos", gotBucket)
	assert.Equal(t, []byte("bytes"), gotBody)
	assert.Equal(t, "https://photos.s3.eu-west-1.amazonaws.com/photo.png", url)
}

func TestS3Store_PublicURL(t *testing.T) {
	store := newS3Store(&fakeS3{}, config.S3Config{Bucket: "photos", PublicURL: "http://minio:9000/photos/"})

	url, err := store.Save(context.Background(), "photo.png", []byte("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/photos/photo.png", url)
}

func TestS3Store_Errors(t *testing.T) {
	client := &fakeS3{
		putFunc: func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			return nil, errors.New("access denied")
		},
		deleteFunc: func(ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
			return nil, errors.New("access denied")
		},
	}
	store := newS3Store(client, config.S3Config{Bucket: "photos", Region: "us-east-1"})

	_, err := store.Save(context.Background(), "photo.png", []byte("bytes"))
	assert.Error(t, err)
	assert.Error(t, store.Delete(context.Background(), "photo.png"))
}

func TestNewS3Store_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no credentials")
	}

	_, err := NewS3Store(context.Background(), config.S3Config{Bucket: "photos", Region: "us-east-1"})
	assert.Error(t, err)
}

func TestNewS3Store_Builds(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	var opts awsconfig.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&opts))
		}
		return aws.Config{Region: opts.Region}, nil
	}

	store, err := NewS3Store(context.Background(), config.S3Config{
		Bucket:          "photos",
		Region:          "eu-central-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", opts.Region)
	assert.NotNil(t, opts.Credentials)
	assert.Equal(t, "photos", store.bucket)
}
