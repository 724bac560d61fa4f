package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const (
	// MaxTemplateFileSize is the maximum allowed file size for share template uploads (5MB).
	MaxTemplateFileSize = 5 * 1024 * 1024
	// FolderTemplates is the S3 prefix for share template images.
	FolderTemplates = "share-templates"
)

// AllowedTemplateTypes maps accepted MIME types to extensions.
var AllowedTemplateTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// S3Config holds S3 client configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	TemplatesBucket      string
	PresignExpireMinutes int
}

// S3 provides S3 operations for share template images with pre-signed URLs.
type S3 struct {
	client   *s3.Client
	presign  *s3.PresignClient
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or environment.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
	} else if logger != nil {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
	})
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3{
		client:   client,
		presign:  s3.NewPresignClient(client),
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// TemplateKey builds the S3 object key for a named share template.
func TemplateKey(name, ext string) string {
	return path.Join(FolderTemplates, strings.ToLower(name)+ext)
}

// UploadTemplate streams a share template image to the templates bucket and returns its key.
func (s *S3) UploadTemplate(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	ext, ok := AllowedTemplateTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
	key := TemplateKey(name, ext)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.TemplatesBucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload template: %w", err)
	}
	s.logger.Info("share template uploaded", zap.String("key", key))
	return key, nil
}

// TemplateURL returns a pre-signed GET URL for a template key, usable as a share image URL.
func (s *S3) TemplateURL(ctx context.Context, key string) (string, error) {
	expire := time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
	if expire <= 0 {
		expire = 15 * time.Minute
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.TemplatesBucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expire))
	if err != nil {
		return "", fmt.Errorf("presign template: %w", err)
	}
	return req.URL, nil
}

// FindTemplateKey resolves a template name to an existing object key, trying known extensions.
func (s *S3) FindTemplateKey(ctx context.Context, name string) (string, error) {
	for _, ext := range []string{".jpg", ".png", ".webp"} {
		key := TemplateKey(name, ext)
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.cfg.TemplatesBucket),
			Key:    aws.String(key),
		})
		if err == nil {
			return key, nil
		}
	}
	return "", fmt.Errorf("template not found: %s", name)
}
