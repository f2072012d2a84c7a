package repository

import (
	"context"
	"database/sql"
	"errors"
	"s3drive/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PermissionRepository struct {
	db *sqlx.DB
}

func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// Get возвращает настройки доступа или nil, если их нет (файл приватный)
func (r *PermissionRepository) Get(ctx context.Context, fileID uuid.UUID) (*domain.FilePermission, error) {
	perm := domain.FilePermission{FileID: fileID}
	query := `
        SELECT permission_type, shared_with, created_at, updated_at
        FROM file_permissions
        WHERE file_id = $1`

	err := r.db.QueryRowContext(ctx, query, fileID).
		Scan(&perm.PermissionType, pq.Array(&perm.SharedWith), &perm.CreatedAt, &perm.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err, "permission for "+fileID.String())
	}
	return &perm, nil
}

// Upsert сохраняет тип доступа и список пользователей
func (r *PermissionRepository) Upsert(ctx context.Context, perm *domain.FilePermission) error {
	sharedWith := perm.SharedWith
	if sharedWith == nil {
		sharedWith = []string{}
	}

	query := `
        INSERT INTO file_permissions (file_id, permission_type, shared_with)
        VALUES ($1, $2, $3)
        ON CONFLICT (file_id) DO UPDATE
        SET permission_type = EXCLUDED.permission_type,
            shared_with = EXCLUDED.shared_with,
            updated_at = CURRENT_TIMESTAMP
        RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, perm.FileID, perm.PermissionType, pq.Array(sharedWith)).
		Scan(&perm.CreatedAt, &perm.UpdatedAt)
	return mapError(err, "permission for "+perm.FileID.String())
}

// ListSharedWith возвращает чужие файлы, открытые пользователю явно
func (r *PermissionRepository) ListSharedWith(ctx context.Context, userID string) ([]domain.FileWithPermission, error) {
	files := []domain.FileWithPermission{}
	query := `
        SELECT f.id, f.name, f.original_name, f.storage_key, f.size_bytes, f.content_type,
               f.category, f.owner_id, f.folder_id, f.uploaded_at, p.permission_type
        FROM files f
        INNER JOIN file_permissions p ON p.file_id = f.id
        WHERE p.permission_type = 'shared'
          AND $1 = ANY(p.shared_with)
          AND f.owner_id <> $1
        ORDER BY f.uploaded_at DESC`

	if err := r.db.SelectContext(ctx, &files, query, userID); err != nil {
		return nil, mapError(err, "shared files")
	}
	return files, nil
}
