package export

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// Sink stores a finished export and reports where it went
type Sink interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
}

// NewSink picks a sink for dest: empty means none, s3:// selects S3, anything else is a directory
func NewSink(ctx context.Context, dest string) (Sink, error) {
	switch {
	case dest == "":
		return nil, nil
	case strings.HasPrefix(dest, "s3://"):
		return NewS3Sink(ctx, dest)
	default:
		return NewFileSink(dest)
	}
}

// FileSink writes exports into a local directory
type FileSink struct {
	dir string
}

// NewFileSink creates dir if needed
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

func (s *FileSink) Write(_ context.Context, name string, data []byte) (string, error) {
	p := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	return p, nil
}

type s3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Sink uploads exports to a bucket under a key prefix
type S3Sink struct {
	uploader s3Uploader
	bucket   string
	prefix   string
}

// NewS3Sink builds an uploader from the default AWS credential chain
func NewS3Sink(ctx context.Context, dest string) (*S3Sink, error) {
	bucket, prefix, err := ParseS3URL(dest)
	if err != nil {
		return nil, err
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Sink{
		uploader: manager.NewUploader(s3.NewFromConfig(cfg)),
		bucket:   bucket,
		prefix:   prefix,
	}, nil
}

func (s *S3Sink) Write(ctx context.Context, name string, data []byte) (string, error) {
	key := path.Join(s.prefix, name)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		log.Error().Err(err).Str("bucket", s.bucket).Str("key", key).Msg("export upload failed")
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return "s3://" + s.bucket + "/" + key, nil
}

// ParseS3URL splits s3://bucket/prefix into its parts
func ParseS3URL(dest string) (bucket, prefix string, err error) {
	u, err := url.Parse(dest)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 destination %q: %w", dest, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid S3 destination %q: want s3://bucket/prefix", dest)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}
