package service

import (
	"context"
	"s3drive/internal/domain"
	"s3drive/internal/service/upload"

	"github.com/google/uuid"
)

// Интерфейсы хранилищ метаданных. Реализации - в пакете repository.

type FileRepo interface {
	Create(ctx context.Context, file *domain.StoredFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredFile, error)
	ListByFolder(ctx context.Context, ownerID string, folderID *int64) ([]domain.StoredFile, error)
	CountByFolder(ctx context.Context, folderID int64) (int, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdateFolder(ctx context.Context, id uuid.UUID, folderID *int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	KnownStorageKeys(ctx context.Context, keys []string) (map[string]bool, error)
}

type FolderRepo interface {
	Create(ctx context.Context, folder *domain.Folder) error
	GetByID(ctx context.Context, id int64) (*domain.Folder, error)
	ListChildren(ctx context.Context, ownerID string, parentID *int64) ([]domain.Folder, error)
	CountChildren(ctx context.Context, id int64) (int, error)
	Ancestors(ctx context.Context, id int64) ([]domain.Folder, error)
	UpdateName(ctx context.Context, id int64, name string) error
	UpdateParent(ctx context.Context, id int64, parentID *int64) error
	Delete(ctx context.Context, id int64) error
}

type PermissionRepo interface {
	Get(ctx context.Context, fileID uuid.UUID) (*domain.FilePermission, error)
	Upsert(ctx context.Context, perm *domain.FilePermission) error
	ListSharedWith(ctx context.Context, userID string) ([]domain.FileWithPermission, error)
}

type QuotaRepo interface {
	GetQuota(ctx context.Context, ownerID string) (*domain.StorageQuota, error)
	UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error
	UsedBytes(ctx context.Context, ownerID string) (int64, error)
}

// Uploader - брокер загрузки (upload.Broker)
type Uploader interface {
	Upload(ctx context.Context, req upload.Request) (*upload.Result, error)
}
