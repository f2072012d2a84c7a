// storage.go
package objectstore

import (
	"context"
	"io"
	"time"
)

// ObjectInfo - описание объекта, возвращаемое листингом
type ObjectInfo struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Store определяет интерфейс для работы с объектным хранилищем.
//
// Ошибки оборачивают domain.ErrNotFound или domain.ErrStorageUnavailable.
// Сетевая ошибка никогда не означает "объекта нет".
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Ping проверяет доступность бакета
	Ping(ctx context.Context) error
}
