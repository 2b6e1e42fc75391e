package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/reecem02/relational-db/internal/config"
)

const s3Scheme = "s3://"

// IsS3URL reports whether dest names an S3 object.
func IsS3URL(dest string) bool {
	return strings.HasPrefix(strings.ToLower(dest), s3Scheme)
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(dest string) (bucket, key string, err error) {
	if !IsS3URL(dest) {
		return "", "", fmt.Errorf("not an s3 url: %q", dest)
	}
	rest := dest[len(s3Scheme):]
	bucket, key, _ = strings.Cut(rest, "/")
	key = strings.TrimLeft(key, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url must be s3://bucket/key: %q", dest)
	}
	return bucket, key, nil
}

// S3Sink stores exports as S3 objects named by s3://bucket/key URLs.
type S3Sink struct {
	client *s3.Client
}

// NewS3Sink builds a client from cfg. Static credentials are used when both
// keys are set; otherwise the default AWS credential chain applies.
func NewS3Sink(ctx context.Context, cfg config.ExportConfig) (*S3Sink, error) {
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3PathStyle
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})
	return NewS3SinkFromClient(client), nil
}

// NewS3SinkFromClient wraps an existing client.
func NewS3SinkFromClient(client *s3.Client) *S3Sink {
	return &S3Sink{client: client}
}

func (s *S3Sink) Location(name string) string { return name }

func (s *S3Sink) Exists(ctx context.Context, name string) (bool, error) {
	bucket, key, err := ParseS3URL(name)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &bucket, Key: &key})
	if err == nil {
		return true, nil
	}
	if isS3NotFound(err) {
		return false, nil
	}
	return false, err
}

func (s *S3Sink) Read(ctx context.Context, name string) ([]byte, error) {
	bucket, key, err := ParseS3URL(name)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *S3Sink) Write(ctx context.Context, name string, data []byte) error {
	bucket, key, err := ParseS3URL(name)
	if err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(name)),
	}
	_, err = s.client.PutObject(ctx, input)
	return err
}

func isS3NotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

func contentType(name string) string {
	format, err := FormatFromPath(name)
	if err != nil {
		return "application/octet-stream"
	}
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}
