// Package thumbnail stores product images in S3-compatible object storage
// (AWS S3, MinIO, R2). When no bucket is configured the store is disabled:
// uploads fail with STORAGE_DISABLED and removals are no-ops.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/frahmantamala/school-store/internal"
	"github.com/google/uuid"
)

const keyPrefix = "thumbnails/"

var (
	ErrStorageDisabled = internal.NewValidationError("thumbnail storage is not configured", internal.ErrCodeStorageDisabled)
	ErrInvalidImage    = internal.NewValidationFieldError("thumbnail", "thumbnail must be a png, jpeg, gif or webp image", internal.ErrCodeValidationFailed)
)

var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Object identifies a stored thumbnail.
type Object struct {
	ID  string `json:"thumbnail_id"`
	URL string `json:"thumbnail_url"`
}

type Store interface {
	Upload(ctx context.Context, contentType string, body io.Reader) (*Object, error)
	Remove(ctx context.Context, key string) error
}

type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// New returns an S3 store for the configured bucket, or a disabled store.
func New(ctx context.Context, cfg internal.StorageConfig) (Store, error) {
	if !cfg.Enabled() {
		return Disabled{}, nil
	}
	return NewS3Store(ctx, cfg)
}

func NewS3Store(ctx context.Context, cfg internal.StorageConfig) (*S3Store, error) {
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(region),
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsConfig, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: load aws config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.S3Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		})
	}

	baseURL := strings.TrimRight(cfg.PublicURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, region)
	}

	return &S3Store{
		client:  s3.NewFromConfig(awsConfig, clientOpts...),
		bucket:  cfg.S3Bucket,
		baseURL: baseURL,
	}, nil
}

// Upload stores the image under a fresh key.
func (s *S3Store) Upload(ctx context.Context, contentType string, body io.Reader) (*Object, error) {
	ext, err := ExtensionFor(contentType)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: read upload: %w", err)
	}

	key := NewKey(ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("thumbnail: put %s: %w", key, err)
	}

	return &Object{ID: key, URL: s.URL(key)}, nil
}

func (s *S3Store) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("thumbnail: delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) URL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader) (*Object, error) {
	return nil, ErrStorageDisabled
}

func (Disabled) Remove(context.Context, string) error {
	return nil
}

// ExtensionFor maps an accepted image content type to its file extension.
func ExtensionFor(contentType string) (string, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := allowedTypes[mediaType]
	if !ok {
		return "", ErrInvalidImage
	}
	return ext, nil
}

func NewKey(ext string) string {
	return path.Join(keyPrefix, uuid.NewString()+ext)
}
