package service

import (
	"context"
	"fmt"
	"s3drive/internal/domain"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memRepo - хранилище метаданных в памяти, реализует все интерфейсы репозиториев
type memRepo struct {
	mu         sync.Mutex
	files      map[uuid.UUID]domain.StoredFile
	folders    map[int64]domain.Folder
	perms      map[uuid.UUID]domain.FilePermission
	quotas     map[string]int64
	nextFolder int64
	failCreate error
}

func newMemRepo() *memRepo {
	return &memRepo{
		files:   make(map[uuid.UUID]domain.StoredFile),
		folders: make(map[int64]domain.Folder),
		perms:   make(map[uuid.UUID]domain.FilePermission),
		quotas:  make(map[string]int64),
	}
}

type fileRepo struct{ *memRepo }
type folderRepo struct{ *memRepo }
type permRepo struct{ *memRepo }
type quotaRepo struct{ *memRepo }

func (r fileRepo) Create(ctx context.Context, file *domain.StoredFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	for _, f := range r.files {
		if f.StorageKey == file.StorageKey {
			return fmt.Errorf("%w: file %s", domain.ErrConflict, file.StorageKey)
		}
	}
	file.UploadedAt = time.Now()
	r.files[file.ID] = *file
	return nil
}

func (r fileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: file %s", domain.ErrNotFound, id)
	}
	return &f, nil
}

func sameFolder(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r fileRepo) ListByFolder(ctx context.Context, ownerID string, folderID *int64) ([]domain.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	files := []domain.StoredFile{}
	for _, f := range r.files {
		if f.OwnerID == ownerID && sameFolder(f.FolderID, folderID) {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (r fileRepo) CountByFolder(ctx context.Context, folderID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.files {
		if f.FolderID != nil && *f.FolderID == folderID {
			n++
		}
	}
	return n, nil
}

func (r fileRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return domain.ErrNotFound
	}
	f.Name = name
	r.files[id] = f
	return nil
}

func (r fileRepo) UpdateFolder(ctx context.Context, id uuid.UUID, folderID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return domain.ErrNotFound
	}
	f.FolderID = folderID
	r.files[id] = f
	return nil
}

func (r fileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.files, id)
	delete(r.perms, id)
	return nil
}

func (r fileRepo) KnownStorageKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	known := make(map[string]bool)
	for _, k := range keys {
		for _, f := range r.files {
			if f.StorageKey == k {
				known[k] = true
			}
		}
	}
	return known, nil
}

func (r folderRepo) Create(ctx context.Context, folder *domain.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.OwnerID == folder.OwnerID && f.Name == folder.Name && sameFolder(f.ParentID, folder.ParentID) {
			return fmt.Errorf("%w: folder %s", domain.ErrConflict, folder.Name)
		}
	}
	r.nextFolder++
	folder.ID = r.nextFolder
	folder.CreatedAt = time.Now()
	r.folders[folder.ID] = *folder
	return nil
}

func (r folderRepo) GetByID(ctx context.Context, id int64) (*domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("%w: folder %d", domain.ErrNotFound, id)
	}
	return &f, nil
}

func (r folderRepo) ListChildren(ctx context.Context, ownerID string, parentID *int64) ([]domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	folders := []domain.Folder{}
	for _, f := range r.folders {
		if f.OwnerID == ownerID && sameFolder(f.ParentID, parentID) {
			folders = append(folders, f)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, nil
}

func (r folderRepo) CountChildren(ctx context.Context, id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.folders {
		if f.ParentID != nil && *f.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (r folderRepo) Ancestors(ctx context.Context, id int64) ([]domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var chain []domain.Folder
	cur, ok := r.folders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for {
		chain = append([]domain.Folder{cur}, chain...)
		if cur.ParentID == nil {
			return chain, nil
		}
		cur = r.folders[*cur.ParentID]
	}
}

func (r folderRepo) UpdateName(ctx context.Context, id int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, other := range r.folders {
		if other.ID != id && other.OwnerID == f.OwnerID && other.Name == name && sameFolder(other.ParentID, f.ParentID) {
			return domain.ErrConflict
		}
	}
	f.Name = name
	r.folders[id] = f
	return nil
}

func (r folderRepo) UpdateParent(ctx context.Context, id int64, parentID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return domain.ErrNotFound
	}
	for p := parentID; p != nil; {
		if *p == id {
			return fmt.Errorf("%w: cycle", domain.ErrInvalidInput)
		}
		p = r.folders[*p].ParentID
	}
	f.ParentID = parentID
	r.folders[id] = f
	return nil
}

func (r folderRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.folders, id)
	return nil
}

func (r permRepo) Get(ctx context.Context, fileID uuid.UUID) (*domain.FilePermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.perms[fileID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r permRepo) Upsert(ctx context.Context, perm *domain.FilePermission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	perm.UpdatedAt = time.Now()
	r.perms[perm.FileID] = *perm
	return nil
}

func (r permRepo) ListSharedWith(ctx context.Context, userID string) ([]domain.FileWithPermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.FileWithPermission
	for id, p := range r.perms {
		f := r.files[id]
		if p.PermissionType == domain.PermissionShared && p.IsSharedWith(userID) && f.OwnerID != userID {
			result = append(result, domain.FileWithPermission{StoredFile: f, PermissionType: p.PermissionType})
		}
	}
	return result, nil
}

func (r quotaRepo) GetQuota(ctx context.Context, ownerID string) (*domain.StorageQuota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	limit, ok := r.quotas[ownerID]
	if !ok {
		limit = domain.DefaultQuotaBytes
		r.quotas[ownerID] = limit
	}
	return &domain.StorageQuota{OwnerID: ownerID, TotalBytesLimit: limit}, nil
}

func (r quotaRepo) UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotas[ownerID] = newLimit
	return nil
}

func (r quotaRepo) UsedBytes(ctx context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var used int64
	for _, f := range r.files {
		if f.OwnerID == ownerID {
			used += f.SizeBytes
		}
	}
	return used, nil
}
