package repository

import (
	"context"
	"s3drive/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const fileColumns = `id, name, original_name, storage_key, size_bytes, content_type, category, owner_id, folder_id, uploaded_at`

type FileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *domain.StoredFile) error {
	query := `
        INSERT INTO files (id, name, original_name, storage_key, size_bytes, content_type, category, owner_id, folder_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING uploaded_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		file.ID,
		file.Name,
		file.OriginalName,
		file.StorageKey,
		file.SizeBytes,
		file.ContentType,
		file.Category,
		file.OwnerID,
		file.FolderID,
	).Scan(&file.UploadedAt)
	return mapError(err, "file "+file.StorageKey)
}

func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredFile, error) {
	var file domain.StoredFile
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		return nil, mapError(err, "file "+id.String())
	}
	return &file, nil
}

// ListByFolder возвращает файлы владельца в папке; folderID == nil - файлы без папки
func (r *FileRepository) ListByFolder(ctx context.Context, ownerID string, folderID *int64) ([]domain.StoredFile, error) {
	files := []domain.StoredFile{}
	query := `
        SELECT ` + fileColumns + `
        FROM files
        WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2
        ORDER BY name`

	if err := r.db.SelectContext(ctx, &files, query, ownerID, folderID); err != nil {
		return nil, mapError(err, "files")
	}
	return files, nil
}

// CountByFolder нужен для проверки, что папка пуста перед удалением
func (r *FileRepository) CountByFolder(ctx context.Context, folderID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM files WHERE folder_id = $1`, folderID)
	if err != nil {
		return 0, mapError(err, "files")
	}
	return count, nil
}

// UpdateName меняет только отображаемое имя, ключ в хранилище остается прежним
func (r *FileRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE files SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return mapError(err, "file "+id.String())
	}
	return expectAffected(res, "file "+id.String())
}

func (r *FileRepository) UpdateFolder(ctx context.Context, id uuid.UUID, folderID *int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE files SET folder_id = $1 WHERE id = $2`, folderID, id)
	if err != nil {
		return mapError(err, "file "+id.String())
	}
	return expectAffected(res, "file "+id.String())
}

// Delete удаляет запись о файле; настройки доступа удаляются каскадом
func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "file "+id.String())
	}
	return expectAffected(res, "file "+id.String())
}

// KnownStorageKeys возвращает подмножество keys, для которых есть запись о файле
func (r *FileRepository) KnownStorageKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	known := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return known, nil
	}

	var found []string
	query := `SELECT storage_key FROM files WHERE storage_key = ANY($1)`
	if err := r.db.SelectContext(ctx, &found, query, pq.Array(keys)); err != nil {
		return nil, mapError(err, "storage keys")
	}
	for _, k := range found {
		known[k] = true
	}
	return known, nil
}
