package domain

import (
	"github.com/google/uuid"
	"time"
)

type PermissionType string

const (
	PermissionPrivate PermissionType = "private"
	PermissionPublic  PermissionType = "public"
	PermissionShared  PermissionType = "shared"
)

// Valid проверяет, что тип доступа из известного набора
func (p PermissionType) Valid() bool {
	switch p {
	case PermissionPrivate, PermissionPublic, PermissionShared:
		return true
	}
	return false
}

// FilePermission - настройки доступа к файлу (одна запись на файл)
type FilePermission struct {
	FileID         uuid.UUID      `json:"file_id" db:"file_id"`
	PermissionType PermissionType `json:"permission_type" db:"permission_type"`
	SharedWith     []string       `json:"shared_with"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// IsSharedWith проверяет, входит ли пользователь в список доступа
func (p *FilePermission) IsSharedWith(userID string) bool {
	for _, id := range p.SharedWith {
		if id == userID {
			return true
		}
	}
	return false
}
