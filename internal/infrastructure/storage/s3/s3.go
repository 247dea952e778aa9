// Package s3 stores uploaded files in an S3-compatible bucket (AWS S3, MinIO,
// Cloudflare R2).
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/storefront/storefront-api/internal/core/ports"
)

// ErrInvalidKey is returned when an object name would resolve outside the
// folder it was uploaded to.
var ErrInvalidKey = errors.New("invalid object key")

// Config holds the bucket settings. Endpoint is left empty for real AWS.
type Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	PublicURL string
}

// objectAPI is the subset of the S3 client used here.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Storage struct {
	api     objectAPI
	bucket  string
	baseURL string
}

// New builds a Storage from cfg. Static credentials are used when both keys
// are set; otherwise the default AWS credential chain applies.
func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage/s3: bucket is not configured")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage/s3: load config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	baseURL := strings.TrimRight(cfg.PublicURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
	}

	return newStorage(s3.NewFromConfig(awsConfig, clientOpts...), cfg.Bucket, baseURL), nil
}

func newStorage(api objectAPI, bucket, baseURL string) *Storage {
	return &Storage{api: api, bucket: bucket, baseURL: baseURL}
}

// Upload puts body under folder/filename. The object key doubles as the
// public id used for later deletion.
func (s *Storage) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader, size int64) (*ports.StoredObject, error) {
	key, err := objectKey(folder, filename)
	if err != nil {
		return nil, err
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return nil, fmt.Errorf("storage/s3: put %s: %w", key, err)
	}

	return &ports.StoredObject{PublicID: key, URL: s.URL(key)}, nil
}

// objectKey joins folder and filename. The result must sit directly inside
// folder once the path is cleaned.
func objectKey(folder, filename string) (string, error) {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	key := path.Join(folder, filename)
	if folder == "" || path.Dir(key) != folder || path.Base(key) != filename {
		return "", fmt.Errorf("storage/s3: object %q in %q: %w", filename, folder, ErrInvalidKey)
	}
	return key, nil
}

func (s *Storage) Delete(ctx context.Context, publicID string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: delete %s: %w", publicID, err)
	}
	return nil
}

func (s *Storage) URL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}
