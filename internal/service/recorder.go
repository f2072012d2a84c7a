package service

import (
	"context"
	"fmt"
	"s3drive/internal/domain"
	"s3drive/internal/service/upload"
	"strings"

	"github.com/google/uuid"
)

// RecordInput - сведения о файле, которых нет в результате загрузки
type RecordInput struct {
	OwnerID      string
	OriginalName string
	DisplayName  string
	FolderID     *int64
}

// Recorder сохраняет метаданные файла. Принимает только результат успешной загрузки.
type Recorder struct {
	fileRepo FileRepo
}

func NewRecorder(fileRepo FileRepo) *Recorder {
	return &Recorder{fileRepo: fileRepo}
}

func (r *Recorder) Record(ctx context.Context, res *upload.Result, in RecordInput) (*domain.StoredFile, error) {
	if res == nil || res.StorageKey == "" {
		return nil, fmt.Errorf("%w: upload result is required", domain.ErrInvalidInput)
	}
	if in.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}

	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = in.OriginalName
	}

	file := &domain.StoredFile{
		ID:           uuid.New(),
		Name:         name,
		OriginalName: in.OriginalName,
		StorageKey:   res.StorageKey,
		SizeBytes:    res.SizeBytes,
		ContentType:  res.ContentType,
		Category:     domain.CategoryFor(res.ContentType),
		OwnerID:      in.OwnerID,
		FolderID:     in.FolderID,
	}
	if err := r.fileRepo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to record file %s: %w", res.StorageKey, err)
	}
	return file, nil
}
