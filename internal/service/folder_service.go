package service

import (
	"context"
	"fmt"
	"log"
	"s3drive/internal/domain"
	"strings"
	"unicode/utf8"
)

const maxNameLength = 255

type FolderService struct {
	folderRepo FolderRepo
	fileRepo   FileRepo
}

func NewFolderService(folderRepo FolderRepo, fileRepo FileRepo) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
	}
}

// validateName проверяет имя папки или файла: непустое, без разделителей пути
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "", name == ".", name == "..":
		return "", fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case strings.ContainsAny(name, "/\\"):
		return "", fmt.Errorf("%w: name must not contain path separators", domain.ErrInvalidInput)
	case len(name) > maxNameLength:
		return "", fmt.Errorf("%w: name is longer than %d bytes", domain.ErrInvalidInput, maxNameLength)
	case !utf8.ValidString(name):
		return "", fmt.Errorf("%w: name is not valid UTF-8", domain.ErrInvalidInput)
	}
	return name, nil
}

// GetOwnedFolder возвращает папку, если она принадлежит пользователю
func (s *FolderService) GetOwnedFolder(ctx context.Context, folderID int64, userID string) (*domain.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.OwnerID != userID {
		return nil, fmt.Errorf("%w: folder %d", domain.ErrAccessDenied, folderID)
	}
	return folder, nil
}

// CreateFolder создает папку. Родитель должен существовать и принадлежать пользователю.
func (s *FolderService) CreateFolder(ctx context.Context, name string, parentID *int64, userID string) (*domain.Folder, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if _, err := s.GetOwnedFolder(ctx, *parentID, userID); err != nil {
			return nil, err
		}
	}

	folder := &domain.Folder{
		Name:     name,
		OwnerID:  userID,
		ParentID: parentID,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	log.Printf("[FolderService] Created folder %d %q for %s", folder.ID, folder.Name, userID)
	return folder, nil
}

// FolderPath возвращает путь папки вида "docs/work"; для nil - пустую строку
func (s *FolderService) FolderPath(ctx context.Context, folderID *int64) (string, error) {
	if folderID == nil {
		return "", nil
	}
	chain, err := s.folderRepo.Ancestors(ctx, *folderID)
	if err != nil {
		return "", err
	}
	return domain.FolderPath(chain), nil
}

// GetFolderContent возвращает подпапки и файлы. folderID == nil - корень пользователя.
func (s *FolderService) GetFolderContent(ctx context.Context, folderID *int64, userID string) (*domain.FolderContent, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", domain.ErrInvalidInput)
	}

	content := &domain.FolderContent{}
	if folderID != nil {
		folder, err := s.GetOwnedFolder(ctx, *folderID, userID)
		if err != nil {
			return nil, err
		}
		content.Folder = folder
		if content.Path, err = s.FolderPath(ctx, folderID); err != nil {
			return nil, err
		}
	}

	folders, err := s.folderRepo.ListChildren(ctx, userID, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	files, err := s.fileRepo.ListByFolder(ctx, userID, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	content.Folders = folders
	content.Files = files
	return content, nil
}

func (s *FolderService) RenameFolder(ctx context.Context, folderID int64, newName string, userID string) error {
	newName, err := validateName(newName)
	if err != nil {
		return err
	}
	if _, err := s.GetOwnedFolder(ctx, folderID, userID); err != nil {
		return err
	}
	// уникальность среди соседей гарантирует индекс (ErrConflict)
	return s.folderRepo.UpdateName(ctx, folderID, newName)
}

// MoveFolder переносит папку к новому родителю (nil - в корень).
// Перенос в саму себя или в потомка отклоняется репозиторием.
func (s *FolderService) MoveFolder(ctx context.Context, folderID int64, newParentID *int64, userID string) error {
	if _, err := s.GetOwnedFolder(ctx, folderID, userID); err != nil {
		return err
	}
	if newParentID != nil {
		if *newParentID == folderID {
			return fmt.Errorf("%w: folder cannot be its own parent", domain.ErrInvalidInput)
		}
		if _, err := s.GetOwnedFolder(ctx, *newParentID, userID); err != nil {
			return err
		}
	}
	return s.folderRepo.UpdateParent(ctx, folderID, newParentID)
}

// DeleteFolder удаляет только пустую папку
func (s *FolderService) DeleteFolder(ctx context.Context, folderID int64, userID string) error {
	if _, err := s.GetOwnedFolder(ctx, folderID, userID); err != nil {
		return err
	}

	children, err := s.folderRepo.CountChildren(ctx, folderID)
	if err != nil {
		return err
	}
	files, err := s.fileRepo.CountByFolder(ctx, folderID)
	if err != nil {
		return err
	}
	if children > 0 || files > 0 {
		return fmt.Errorf("%w: folder %d is not empty (%d folders, %d files)", domain.ErrConflict, folderID, children, files)
	}

	return s.folderRepo.Delete(ctx, folderID)
}
