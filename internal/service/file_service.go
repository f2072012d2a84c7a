package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"s3drive/internal/domain"
	"s3drive/internal/objectstore"
	"s3drive/internal/service/upload"
	"strings"

	"github.com/google/uuid"
)

const DownloadURLTTL = domain.DownloadURLTTL

// UploadInput - файл, пришедший от клиента
type UploadInput struct {
	Body        io.ReadSeeker
	Size        int64
	Filename    string
	DisplayName string
	FolderID    *int64
	OwnerID     string
}

// FileService представляет сервис для работы с файлами
type FileService struct {
	uploader    Uploader
	recorder    *Recorder
	fileRepo    FileRepo
	folders     *FolderService
	permissions *PermissionService
	quota       *StorageQuotaService
	store       objectstore.Store
	urls        *DownloadURLCache
	keyPrefix   string
}

func NewFileService(
	uploader Uploader,
	recorder *Recorder,
	fileRepo FileRepo,
	folders *FolderService,
	permissions *PermissionService,
	quota *StorageQuotaService,
	store objectstore.Store,
	urls *DownloadURLCache,
	keyPrefix string,
) *FileService {
	return &FileService{
		uploader:    uploader,
		recorder:    recorder,
		fileRepo:    fileRepo,
		folders:     folders,
		permissions: permissions,
		quota:       quota,
		store:       store,
		urls:        urls,
		keyPrefix:   keyPrefix,
	}
}

// UploadFile загружает файл через брокер и сохраняет запись о нем.
// Ключ в хранилище: <prefix>/<owner>/<путь папки>/<имя>.
func (s *FileService) UploadFile(ctx context.Context, in UploadInput) (*domain.FileUploadResponse, error) {
	if in.OwnerID == "" || in.Body == nil {
		return nil, fmt.Errorf("%w: missing required parameters", domain.ErrInvalidInput)
	}
	// Отображаемое имя проверяем до загрузки, иначе отказ базы оставит объект без записи
	if strings.TrimSpace(in.DisplayName) != "" {
		name, err := validateName(in.DisplayName)
		if err != nil {
			return nil, err
		}
		in.DisplayName = name
	}

	folderPath := ""
	if in.FolderID != nil {
		if _, err := s.folders.GetOwnedFolder(ctx, *in.FolderID, in.OwnerID); err != nil {
			return nil, err
		}
		p, err := s.folders.FolderPath(ctx, in.FolderID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve folder path: %w", err)
		}
		folderPath = p
	}

	// Проверяем наличие свободного места
	available, err := s.quota.CheckSpaceAvailable(ctx, in.OwnerID, in.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to check available space: %w", err)
	}
	if !available {
		return nil, fmt.Errorf("%w: %d bytes requested", domain.ErrQuotaExceeded, in.Size)
	}

	res, err := s.uploader.Upload(ctx, upload.Request{
		Body:     in.Body,
		Size:     in.Size,
		Filename: in.Filename,
		Folder:   path.Join(s.keyPrefix, in.OwnerID, folderPath),
	})
	if err != nil {
		return nil, err
	}

	file, err := s.recorder.Record(ctx, res, RecordInput{
		OwnerID:      in.OwnerID,
		OriginalName: upload.CleanFilename(in.Filename),
		DisplayName:  in.DisplayName,
		FolderID:     in.FolderID,
	})
	if err != nil {
		// Объект уже в хранилище; его найдет отчет о потерянных объектах
		log.Printf("[Upload] orphaned object %s: %v", res.StorageKey, err)
		return nil, err
	}

	log.Printf("[FileService] Uploaded %s as %s (%s)", file.ID, file.StorageKey, res.Strategy)
	return &domain.FileUploadResponse{File: file, Strategy: string(res.Strategy)}, nil
}

// GetFileInfo возвращает файл, если у пользователя есть право на чтение
func (s *FileService) GetFileInfo(ctx context.Context, fileID uuid.UUID, userID string) (*domain.StoredFile, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.CheckFile(ctx, file, userID, OperationView); err != nil {
		return nil, err
	}
	return file, nil
}

// ListFiles возвращает файлы пользователя в папке (nil - файлы без папки)
func (s *FileService) ListFiles(ctx context.Context, folderID *int64, userID string) ([]domain.StoredFile, error) {
	if folderID != nil {
		if _, err := s.folders.GetOwnedFolder(ctx, *folderID, userID); err != nil {
			return nil, err
		}
	}
	return s.fileRepo.ListByFolder(ctx, userID, folderID)
}

// DownloadURL выдает подписанную ссылку на скачивание
func (s *FileService) DownloadURL(ctx context.Context, fileID uuid.UUID, userID string) (string, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return "", err
	}
	if err := s.permissions.CheckFile(ctx, file, userID, OperationDownload); err != nil {
		return "", err
	}

	if url, ok := s.urls.Get(file.StorageKey); ok {
		return url, nil
	}

	url, err := s.store.PresignGet(ctx, file.StorageKey, DownloadURLTTL)
	if err != nil {
		return "", err
	}
	s.urls.Set(file.StorageKey, url)
	return url, nil
}

// DeleteFile удаляет объект из хранилища, затем запись о нем.
// Если объекта в хранилище уже нет, запись все равно удаляется.
func (s *FileService) DeleteFile(ctx context.Context, fileID uuid.UUID, userID string) error {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if err := s.permissions.CheckFile(ctx, file, userID, OperationDelete); err != nil {
		return err
	}

	err = s.store.DeleteObject(ctx, file.StorageKey)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		log.Printf("[FileService] warning: object %s already absent from storage, removing record", file.StorageKey)
	default:
		return fmt.Errorf("failed to delete object: %w", err)
	}
	s.urls.Invalidate(file.StorageKey)

	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	log.Printf("[FileService] Deleted file %s (%s)", fileID, file.StorageKey)
	return nil
}

// RenameFile меняет отображаемое имя; ключ в хранилище не меняется
func (s *FileService) RenameFile(ctx context.Context, fileID uuid.UUID, newName string, userID string) (*domain.StoredFile, error) {
	newName, err := validateName(newName)
	if err != nil {
		return nil, err
	}

	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.CheckFile(ctx, file, userID, OperationRename); err != nil {
		return nil, err
	}

	if err := s.fileRepo.UpdateName(ctx, fileID, newName); err != nil {
		return nil, fmt.Errorf("failed to update file name: %w", err)
	}
	file.Name = newName
	return file, nil
}

// MoveFile перемещает файл в другую папку пользователя (nil - из папки в корень)
func (s *FileService) MoveFile(ctx context.Context, fileID uuid.UUID, newFolderID *int64, userID string) (*domain.StoredFile, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.CheckFile(ctx, file, userID, OperationMove); err != nil {
		return nil, err
	}
	if newFolderID != nil {
		if _, err := s.folders.GetOwnedFolder(ctx, *newFolderID, userID); err != nil {
			return nil, err
		}
	}

	if err := s.fileRepo.UpdateFolder(ctx, fileID, newFolderID); err != nil {
		return nil, fmt.Errorf("failed to move file: %w", err)
	}
	file.FolderID = newFolderID
	return file, nil
}
