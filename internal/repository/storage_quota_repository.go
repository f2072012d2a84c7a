package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"s3drive/internal/domain"

	"github.com/jmoiron/sqlx"
)

type StorageQuotaRepository struct {
	db *sqlx.DB
}

func NewStorageQuotaRepository(db *sqlx.DB) *StorageQuotaRepository {
	return &StorageQuotaRepository{db: db}
}

// GetQuota возвращает квоту владельца; если записи нет, создает ее с лимитом по умолчанию
func (r *StorageQuotaRepository) GetQuota(ctx context.Context, ownerID string) (*domain.StorageQuota, error) {
	var quota domain.StorageQuota

	err := r.db.GetContext(ctx, &quota,
		`SELECT owner_id, total_bytes_limit, created_at, updated_at FROM storage_quotas WHERE owner_id = $1`,
		ownerID)
	if err == nil {
		return &quota, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	quota = domain.StorageQuota{
		OwnerID:         ownerID,
		TotalBytesLimit: domain.DefaultQuotaBytes,
	}
	if err := r.create(ctx, &quota); err != nil {
		return nil, fmt.Errorf("failed to create quota: %w", err)
	}
	log.Printf("[Quota] Created default quota for %s", ownerID)
	return &quota, nil
}

// create использует ON CONFLICT, чтобы два первых запроса пользователя не падали друг на друге
func (r *StorageQuotaRepository) create(ctx context.Context, quota *domain.StorageQuota) error {
	query := `
        INSERT INTO storage_quotas (owner_id, total_bytes_limit)
        VALUES ($1, $2)
        ON CONFLICT (owner_id) DO UPDATE SET owner_id = EXCLUDED.owner_id
        RETURNING total_bytes_limit, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query, quota.OwnerID, quota.TotalBytesLimit).
		Scan(&quota.TotalBytesLimit, &quota.CreatedAt, &quota.UpdatedAt)
}

// UpdateQuotaLimit задает лимит, создавая запись при необходимости
func (r *StorageQuotaRepository) UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error {
	query := `
        INSERT INTO storage_quotas (owner_id, total_bytes_limit)
        VALUES ($1, $2)
        ON CONFLICT (owner_id) DO UPDATE
        SET total_bytes_limit = EXCLUDED.total_bytes_limit,
            updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query, ownerID, newLimit); err != nil {
		return mapError(err, "quota for "+ownerID)
	}
	return nil
}

// UsedBytes считает занятое место по файлам владельца. Значение нигде не хранится.
func (r *StorageQuotaRepository) UsedBytes(ctx context.Context, ownerID string) (int64, error) {
	var used int64
	err := r.db.GetContext(ctx, &used,
		`SELECT COALESCE(SUM(size_bytes), 0) FROM files WHERE owner_id = $1`,
		ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate used space: %w", err)
	}
	return used, nil
}
