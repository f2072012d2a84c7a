package upload

import (
	"context"
	"fmt"
	"path"
	"s3drive/internal/domain"
	"strings"
	"unicode/utf8"
)

// maxNameAttempts ограничивает перебор суффиксов, если ключи с меткой времени тоже заняты
const maxNameAttempts = 100

// maxFilenameBytes - предел длины имени в метаданных (VARCHAR(255))
const maxFilenameBytes = 255

// CleanFilename оставляет только последний элемент пути, присланного клиентом
func CleanFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	switch name {
	case ".", "..", "/":
		return ""
	}
	return name
}

// validateFilename отсекает имена, которые не поместятся в запись о файле
func validateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if len(name) > maxFilenameBytes {
		return fmt.Errorf("%w: filename is %d bytes, limit is %d", domain.ErrInvalidInput, len(name), maxFilenameBytes)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: filename is not valid UTF-8", domain.ErrInvalidInput)
	}
	return nil
}

func joinKey(folder, filename string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return filename
	}
	return folder + "/" + filename
}

// splitExt делит ключ на основу и расширение. Скрытые файлы (".env") расширения не имеют.
func splitExt(key string) (string, string) {
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	if ext == "" || strings.HasSuffix(base, "/") || base == "" {
		return key, ""
	}
	return base, ext
}

func withSuffix(key, suffix string) string {
	base, ext := splitExt(key)
	return base + suffix + ext
}

// claimKey возвращает свободный ключ: исходный, с меткой времени или с меткой времени и счетчиком.
// Каждый кандидат проверяется под своей блокировкой, блокировка выбранного ключа
// остается захваченной до вызова unlock.
func (b *Broker) claimKey(ctx context.Context, naive string) (key string, unlock func(), err error) {
	free, unlock, err := b.tryClaim(ctx, naive)
	if err != nil {
		return "", nil, err
	}
	if free {
		return naive, unlock, nil
	}

	stamped := withSuffix(naive, fmt.Sprintf("_%d", b.now().Unix()))
	candidate := stamped
	for n := 1; n <= maxNameAttempts; n++ {
		free, unlock, err := b.tryClaim(ctx, candidate)
		if err != nil {
			return "", nil, err
		}
		if free {
			return candidate, unlock, nil
		}
		candidate = withSuffix(stamped, fmt.Sprintf("_%d", n))
	}
	return "", nil, fmt.Errorf("%w: no free storage key for %s after %d attempts", domain.ErrConflict, naive, maxNameAttempts)
}

// tryClaim блокирует ключ и проверяет, что объекта нет. Занятый ключ сразу отпускается.
func (b *Broker) tryClaim(ctx context.Context, key string) (bool, func(), error) {
	unlock, err := b.locks.LockContext(ctx, key)
	if err != nil {
		return false, nil, err
	}
	exists, err := b.store.Exists(ctx, key)
	if err != nil {
		unlock()
		return false, nil, err
	}
	if exists {
		unlock()
		return false, nil, nil
	}
	return true, unlock, nil
}
