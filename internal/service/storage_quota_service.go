package service

import (
	"context"
	"fmt"
	"s3drive/internal/domain"
)

type StorageQuotaService struct {
	quotaRepo QuotaRepo
}

func NewStorageQuotaService(quotaRepo QuotaRepo) *StorageQuotaService {
	return &StorageQuotaService{
		quotaRepo: quotaRepo,
	}
}

func (s *StorageQuotaService) GetQuotaInfo(ctx context.Context, ownerID string) (*domain.QuotaInfo, error) {
	quota, err := s.quotaRepo.GetQuota(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	used, err := s.quotaRepo.UsedBytes(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return domain.NewQuotaInfo(quota.TotalBytesLimit, used), nil
}

// CheckSpaceAvailable - предварительная проверка. Параллельные загрузки одного
// пользователя могут пройти ее одновременно и превысить лимит.
func (s *StorageQuotaService) CheckSpaceAvailable(ctx context.Context, ownerID string, requiredBytes int64) (bool, error) {
	info, err := s.GetQuotaInfo(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return requiredBytes <= info.AvailableSpace, nil
}

func (s *StorageQuotaService) UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error {
	if newLimit < 0 {
		return fmt.Errorf("%w: new quota limit cannot be negative", domain.ErrInvalidInput)
	}
	return s.quotaRepo.UpdateQuotaLimit(ctx, ownerID, newLimit)
}
