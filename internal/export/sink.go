package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/ppiankov/commentlab/internal/model"
)

// Sink stores exported files by name.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
	Location(name string) string
}

// DirSink writes files into a local directory.
type DirSink struct {
	dir string
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// Put writes name under the directory.
func (s *DirSink) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
}

// Location returns the file path of name.
func (s *DirSink) Location(name string) string {
	return filepath.Join(s.dir, name)
}

// S3Sink uploads files to an S3-compatible bucket.
type S3Sink struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3Sink creates a sink for an existing bucket.
func NewS3Sink(client *minio.Client, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

// NewS3SinkFromConfig builds the MinIO client from configuration. Access
// keys are read from the environment variables the configuration names.
func NewS3SinkFromConfig(cfg *model.S3Config) (*S3Sink, error) {
	if cfg == nil || cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 export needs endpoint and bucket", model.ErrConfig)
	}
	accessEnv, secretEnv := cfg.AccessKeyEnv, cfg.SecretKeyEnv
	if accessEnv == "" {
		accessEnv = "AWS_ACCESS_KEY_ID"
	}
	if secretEnv == "" {
		secretEnv = "AWS_SECRET_ACCESS_KEY"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv(accessEnv), os.Getenv(secretEnv), ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: s3 client: %v", model.ErrConfig, err)
	}
	return NewS3Sink(client, cfg.Bucket, cfg.Prefix), nil
}

func (s *S3Sink) key(name string) string {
	return path.Join(s.prefix, name)
}

// Put uploads name.
func (s *S3Sink) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType(name),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

// Location returns the s3:// URL of name.
func (s *S3Sink) Location(name string) string {
	return "s3://" + s.bucket + "/" + s.key(name)
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".csv":
		return "text/csv"
	case ".arff":
		return "text/plain"
	}
	return "application/octet-stream"
}
