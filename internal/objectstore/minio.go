package objectstore

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"s3drive/internal/domain"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore реализует Store поверх minio-go (MinIO или любой S3-совместимый сервис)
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(conf *Config) (*MinioStore, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(conf.Endpoint, "https://"), "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(conf.AccessKeyID, conf.SecretAccessKey, ""),
		Secure:     conf.UseSSL,
		Region:     conf.Region,
		MaxRetries: conf.MaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStore{
		client: client,
		bucket: conf.Bucket,
	}, nil
}

// EnsureBucket создает бакет, если его еще нет
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", domain.ErrStorageUnavailable, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("%w: create bucket %q: %v", domain.ErrStorageUnavailable, s.bucket, err)
		}
		log.Printf("[Minio] Created bucket %q", s.bucket)
	}
	return nil
}

func (s *MinioStore) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", domain.ErrStorageUnavailable, err)
	}
	if !exists {
		return fmt.Errorf("%w: bucket %q does not exist", domain.ErrStorageUnavailable, s.bucket)
	}
	return nil
}

func minioNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

func (s *MinioStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minioNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: stat object %q: %v", domain.ErrStorageUnavailable, key, err)
}

// PutObject стримит данные в MinIO. size должен быть точным размером.
func (s *MinioStore) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: put object %q: %v", domain.ErrStorageUnavailable, key, err)
	}
	return nil
}

// PresignPut - contentType не входит в подпись MinIO, клиент передает его заголовком
func (s *MinioStore) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, ttl)
	if err != nil {
		return "", fmt.Errorf("%w: presign put %q: %v", domain.ErrStorageUnavailable, key, err)
	}
	return u.String(), nil
}

func (s *MinioStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: presign get %q: %v", domain.ErrStorageUnavailable, key, err)
	}
	return u.String(), nil
}

// DeleteObject удаляет объект. RemoveObject молча игнорирует отсутствующие ключи,
// поэтому сначала проверяем наличие.
func (s *MinioStore) DeleteObject(ctx context.Context, key string) error {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: object %s", domain.ErrNotFound, key)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: remove object %q: %v", domain.ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *MinioStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("%w: list objects: %v", domain.ErrStorageUnavailable, obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:        obj.Key,
			Size:       obj.Size,
			ModifiedAt: obj.LastModified,
		})
	}
	return objects, nil
}
