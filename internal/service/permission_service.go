package service

import (
	"context"
	"fmt"
	"log"
	"s3drive/internal/domain"
	"strings"

	"github.com/google/uuid"
)

// OperationType определяет тип операции над файлом
type OperationType string

const (
	OperationView     OperationType = "view"
	OperationDownload OperationType = "download"
	OperationRename   OperationType = "rename"
	OperationMove     OperationType = "move"
	OperationDelete   OperationType = "delete"
	OperationShare    OperationType = "share"
)

// readOnly - операции, доступные не только владельцу
func (op OperationType) readOnly() bool {
	return op == OperationView || op == OperationDownload
}

// CanAccess решает, может ли requester читать файл.
// Владелец имеет доступ всегда; perm == nil означает приватный файл.
func CanAccess(file *domain.StoredFile, perm *domain.FilePermission, requesterID string) bool {
	if file == nil {
		return false
	}
	if requesterID != "" && file.OwnerID == requesterID {
		return true
	}
	if perm == nil {
		return false
	}
	switch perm.PermissionType {
	case domain.PermissionPublic:
		return true
	case domain.PermissionShared:
		return requesterID != "" && perm.IsSharedWith(requesterID)
	default:
		return false
	}
}

// PermissionService представляет сервис для проверки и изменения прав доступа
type PermissionService struct {
	fileRepo       FileRepo
	permissionRepo PermissionRepo
}

func NewPermissionService(fileRepo FileRepo, permissionRepo PermissionRepo) *PermissionService {
	return &PermissionService{
		fileRepo:       fileRepo,
		permissionRepo: permissionRepo,
	}
}

// CheckFile проверяет право на операцию. Изменять файл может только владелец.
func (s *PermissionService) CheckFile(ctx context.Context, file *domain.StoredFile, userID string, op OperationType) error {
	if file.OwnerID == userID {
		return nil
	}
	if !op.readOnly() {
		return fmt.Errorf("%w: only the owner can %s file %s", domain.ErrAccessDenied, op, file.ID)
	}

	perm, err := s.permissionRepo.Get(ctx, file.ID)
	if err != nil {
		return fmt.Errorf("failed to get permission: %w", err)
	}
	if !CanAccess(file, perm, userID) {
		return fmt.Errorf("%w: file %s", domain.ErrAccessDenied, file.ID)
	}
	return nil
}

// GetPermission возвращает настройки доступа; отсутствие записи - приватный файл
func (s *PermissionService) GetPermission(ctx context.Context, fileID uuid.UUID, userID string) (*domain.FilePermission, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.CheckFile(ctx, file, userID, OperationShare); err != nil {
		return nil, err
	}

	perm, err := s.permissionRepo.Get(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	if perm == nil {
		perm = &domain.FilePermission{FileID: fileID, PermissionType: domain.PermissionPrivate, SharedWith: []string{}}
	}
	return perm, nil
}

// SetPermission меняет тип доступа и список пользователей. Только для владельца.
func (s *PermissionService) SetPermission(
	ctx context.Context,
	fileID uuid.UUID,
	permType domain.PermissionType,
	sharedWith []string,
	userID string,
) (*domain.FilePermission, error) {
	if !permType.Valid() {
		return nil, fmt.Errorf("%w: unknown permission type %q", domain.ErrInvalidInput, permType)
	}

	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.CheckFile(ctx, file, userID, OperationShare); err != nil {
		return nil, err
	}

	users := normalizeUsers(sharedWith, file.OwnerID)
	if permType != domain.PermissionShared {
		users = []string{}
	}

	perm := &domain.FilePermission{
		FileID:         fileID,
		PermissionType: permType,
		SharedWith:     users,
	}
	if err := s.permissionRepo.Upsert(ctx, perm); err != nil {
		return nil, fmt.Errorf("failed to save permission: %w", err)
	}

	log.Printf("[Permission] File %s is now %s (%d users)", fileID, permType, len(users))
	return perm, nil
}

func (s *PermissionService) ListSharedWithMe(ctx context.Context, userID string) ([]domain.FileWithPermission, error) {
	return s.permissionRepo.ListSharedWith(ctx, userID)
}

// normalizeUsers убирает пустые значения, дубликаты и самого владельца
func normalizeUsers(users []string, ownerID string) []string {
	seen := make(map[string]bool, len(users))
	result := make([]string, 0, len(users))
	for _, u := range users {
		u = strings.TrimSpace(u)
		if u == "" || u == ownerID || seen[u] {
			continue
		}
		seen[u] = true
		result = append(result, u)
	}
	return result
}
