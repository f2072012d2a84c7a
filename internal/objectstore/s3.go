package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"s3drive/internal/domain"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const (
	defaultTimeout = 30 * time.Second
	uploadTimeout  = 10 * time.Minute
)

// S3Store работает с S3-совместимым хранилищем через aws-sdk-go-v2
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Store создает клиента S3. Сетевых вызовов не делает, подключение проверяет Ping.
func NewS3Store(conf *Config) (*S3Store, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	if conf.AccessKeyID == "" || conf.SecretAccessKey == "" || conf.Bucket == "" {
		return nil, fmt.Errorf("missing required configuration: accessKeyID, secretAccessKey, and bucket are required")
	}

	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		conf.AccessKeyID,
		conf.SecretAccessKey,
		"",
	))

	maxAttempts := conf.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	client := s3.New(s3.Options{
		BaseEndpoint:     aws.String(endpointURL(conf.Endpoint, conf.UseSSL)),
		Region:           conf.Region,
		Credentials:      creds,
		UsePathStyle:     conf.UsePathStyle,
		RetryMode:        aws.RetryModeAdaptive,
		RetryMaxAttempts: maxAttempts,
	})

	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  conf.Bucket,
	}, nil
}

func endpointURL(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// isNotFound распознает отсутствие объекта во всех формах, которые отдает SDK
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}

func (h *S3Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := h.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(h.bucket),
	})
	if err != nil {
		return fmt.Errorf("%w: unable to access bucket %s: %v", domain.ErrStorageUnavailable, h.bucket, err)
	}
	return nil
}

// Exists проверяет наличие объекта через HeadObject
func (h *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := h.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: failed to check object existence: %v", domain.ErrStorageUnavailable, err)
}

// PutObject загружает объект в S3 с content type в метаданных
func (h *S3Store) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" || body == nil {
		return fmt.Errorf("%w: key and body are required", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upload file to S3: %v", domain.ErrStorageUnavailable, err)
	}

	return nil
}

// PresignPut выдает подписанный URL на запись объекта
func (h *S3Store) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	req, err := h.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("%w: failed to presign put: %v", domain.ErrStorageUnavailable, err)
	}
	return req.URL, nil
}

// PresignGet выдает подписанный URL на чтение объекта
func (h *S3Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := h.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("%w: failed to presign get: %v", domain.ErrStorageUnavailable, err)
	}
	return req.URL, nil
}

// DeleteObject удаляет объект из S3. Отсутствующий объект - ErrNotFound.
func (h *S3Store) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	exists, err := h.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: object %s", domain.ErrNotFound, key)
	}

	_, err = h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete object from S3: %v", domain.ErrStorageUnavailable, err)
	}

	return nil
}

// ListObjects возвращает все объекты с указанным префиксом
func (h *S3Store) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	paginator := s3.NewListObjectsV2Paginator(h.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(h.bucket),
		Prefix: aws.String(prefix),
	})

	var objects []ObjectInfo
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list objects: %v", domain.ErrStorageUnavailable, err)
		}
		for _, obj := range page.Contents {
			info := ObjectInfo{
				Key:  aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				info.ModifiedAt = *obj.LastModified
			}
			objects = append(objects, info)
		}
	}

	log.Printf("[S3] Listed %d objects with prefix %q", len(objects), prefix)
	return objects, nil
}
