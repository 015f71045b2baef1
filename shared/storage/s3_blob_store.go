package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	sharedInterfaces "quest-server/shared/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Compile-time check to ensure S3BlobStore implements BlobStore
var _ sharedInterfaces.BlobStore = (*S3BlobStore)(nil)

// Config - настройки подключения к S3-совместимому хранилищу.
// Endpoint пустой для AWS, либо URL для совместимых хранилищ
// (MinIO, DigitalOcean Spaces и т.п.).
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// S3BlobStore - хранилище ассетов страниц артефактов поверх S3.
type S3BlobStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *zap.Logger
}

// NewS3BlobStore создает клиент S3 со статическими кредами.
func NewS3BlobStore(ctx context.Context, cfg Config, logger *zap.Logger) (*S3BlobStore, error) {
	loadOpts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(cfg.Region),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: endpoint}, nil
		})
		loadOpts = append(loadOpts, awsConfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Path-style нужен для S3-совместимых хранилищ за одним хостом
		o.UsePathStyle = cfg.Endpoint != ""
	})

	return &S3BlobStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		logger:  logger.Named("S3BlobStore"),
	}, nil
}

// PutObject загружает объект по ключу.
func (s *S3BlobStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("Failed to upload object", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	s.logger.Debug("Object uploaded", zap.String("key", key), zap.Int("size", len(data)))
	return nil
}

// PresignedGetURL выдает временную ссылку на чтение объекта.
func (s *S3BlobStore) PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		s.logger.Error("Failed to presign object URL", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to presign URL for %s: %w", key, err)
	}
	return req.URL, nil
}
