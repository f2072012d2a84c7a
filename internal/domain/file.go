package domain

import (
	"github.com/google/uuid"
	"time"
)

// DownloadURLTTL - срок действия подписанной ссылки на скачивание
const DownloadURLTTL = time.Hour

// StoredFile описывает загруженный файл и его положение в объектном хранилище
type StoredFile struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	OriginalName string    `json:"original_name" db:"original_name"`
	StorageKey   string    `json:"storage_key" db:"storage_key"`
	SizeBytes    int64     `json:"size_bytes" db:"size_bytes"`
	ContentType  string    `json:"content_type" db:"content_type"`
	Category     Category  `json:"category" db:"category"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	FolderID     *int64    `json:"folder_id,omitempty" db:"folder_id"`
	UploadedAt   time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// FileWithPermission используется в списках "доступно мне"
type FileWithPermission struct {
	StoredFile
	PermissionType PermissionType `json:"permission_type" db:"permission_type"`
}

// FileUploadResponse представляет ответ на загрузку файла
type FileUploadResponse struct {
	File     *StoredFile `json:"file"`
	Strategy string      `json:"strategy"`
}
