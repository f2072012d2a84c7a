package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFileTooLarge       = errors.New("file size exceeds maximum allowed size")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUploadFailed       = errors.New("upload failed")
	ErrNotFound           = errors.New("not found")
	ErrQuotaExceeded      = errors.New("not enough storage space available")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("already exists")
)

// UploadError - ошибка передачи данных в хранилище.
// StatusCode и Body заполняются, когда хранилище ответило не-2xx на presigned PUT.
type UploadError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload failed: status %d: %s", e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("upload failed: %v", e.Err)
	}
	return "upload failed"
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

func (e *UploadError) Is(target error) bool {
	return target == ErrUploadFailed
}
