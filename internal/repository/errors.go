package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"s3drive/internal/domain"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
	pqStringTooLong       = "22001"
	pqInvalidEncoding     = "22021"
)

// mapError переводит ошибки драйвера в доменные
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrConflict, what)
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %s references a missing row", domain.ErrNotFound, what)
		case pqCheckViolation, pqStringTooLong, pqInvalidEncoding:
			return fmt.Errorf("%w: %s: %s", domain.ErrInvalidInput, what, pqErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// expectAffected возвращает ErrNotFound, если запрос не затронул ни одной строки
func expectAffected(res sql.Result, what string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	return nil
}
