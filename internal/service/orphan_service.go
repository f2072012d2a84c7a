package service

import (
	"context"
	"fmt"
	"log"
	"s3drive/internal/objectstore"
)

// orphanBatchSize - сколько ключей проверяем в базе одним запросом
const orphanBatchSize = 500

// OrphanService находит объекты в хранилище, для которых нет записи о файле.
// Такие объекты остаются, если загрузка прошла, а запись в базу - нет.
// Сервис только отчитывается, удаляет их оператор.
type OrphanService struct {
	store    objectstore.Store
	fileRepo FileRepo
}

func NewOrphanService(store objectstore.Store, fileRepo FileRepo) *OrphanService {
	return &OrphanService{store: store, fileRepo: fileRepo}
}

func (s *OrphanService) FindOrphans(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	objects, err := s.store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	orphans := []objectstore.ObjectInfo{}
	for start := 0; start < len(objects); start += orphanBatchSize {
		end := min(start+orphanBatchSize, len(objects))
		batch := objects[start:end]

		keys := make([]string, len(batch))
		for i, obj := range batch {
			keys[i] = obj.Key
		}
		known, err := s.fileRepo.KnownStorageKeys(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("failed to check storage keys: %w", err)
		}
		for _, obj := range batch {
			if !known[obj.Key] {
				orphans = append(orphans, obj)
			}
		}
	}

	log.Printf("[Orphans] %d of %d objects under %q have no file record", len(orphans), len(objects), prefix)
	return orphans, nil
}
