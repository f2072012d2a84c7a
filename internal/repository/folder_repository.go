package repository

import (
	"context"
	"fmt"
	"s3drive/internal/domain"

	"github.com/jmoiron/sqlx"
)

const folderColumns = `id, name, owner_id, parent_id, created_at`

type FolderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	query := `
        INSERT INTO folders (name, owner_id, parent_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, folder.Name, folder.OwnerID, folder.ParentID).
		Scan(&folder.ID, &folder.CreatedAt)
	return mapError(err, "folder "+folder.Name)
}

func (r *FolderRepository) GetByID(ctx context.Context, id int64) (*domain.Folder, error) {
	var folder domain.Folder
	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = $1`

	if err := r.db.GetContext(ctx, &folder, query, id); err != nil {
		return nil, mapError(err, fmt.Sprintf("folder %d", id))
	}
	return &folder, nil
}

// ListChildren возвращает подпапки; parentID == nil - папки верхнего уровня
func (r *FolderRepository) ListChildren(ctx context.Context, ownerID string, parentID *int64) ([]domain.Folder, error) {
	folders := []domain.Folder{}
	query := `
        SELECT ` + folderColumns + `
        FROM folders
        WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2
        ORDER BY name`

	if err := r.db.SelectContext(ctx, &folders, query, ownerID, parentID); err != nil {
		return nil, mapError(err, "folders")
	}
	return folders, nil
}

func (r *FolderRepository) CountChildren(ctx context.Context, id int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM folders WHERE parent_id = $1`, id); err != nil {
		return 0, mapError(err, "folders")
	}
	return count, nil
}

// Ancestors возвращает цепочку от корня до самой папки включительно
func (r *FolderRepository) Ancestors(ctx context.Context, id int64) ([]domain.Folder, error) {
	query := `
        WITH RECURSIVE chain AS (
            SELECT id, name, owner_id, parent_id, created_at, 0 AS depth
            FROM folders
            WHERE id = $1

            UNION ALL

            SELECT f.id, f.name, f.owner_id, f.parent_id, f.created_at, c.depth + 1
            FROM folders f
            INNER JOIN chain c ON f.id = c.parent_id
            WHERE c.depth < 1000
        )
        SELECT id, name, owner_id, parent_id, created_at
        FROM chain
        ORDER BY depth DESC`

	var chain []domain.Folder
	if err := r.db.SelectContext(ctx, &chain, query, id); err != nil {
		return nil, mapError(err, fmt.Sprintf("folder %d", id))
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: folder %d", domain.ErrNotFound, id)
	}
	return chain, nil
}

func (r *FolderRepository) UpdateName(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE folders SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return mapError(err, "folder "+name)
	}
	return expectAffected(res, fmt.Sprintf("folder %d", id))
}

// UpdateParent переносит папку. Перенос в саму себя или в своего потомка
// отклоняется с ErrInvalidInput: проверка и обновление идут в одной транзакции.
func (r *FolderRepository) UpdateParent(ctx context.Context, id int64, parentID *int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if parentID != nil {
		// Поднимаемся от нового родителя к корню и ищем среди предков переносимую папку
		cycleQuery := `
            WITH RECURSIVE up AS (
                SELECT id, parent_id, 0 AS depth FROM folders WHERE id = $1
                UNION ALL
                SELECT f.id, f.parent_id, u.depth + 1
                FROM folders f
                INNER JOIN up u ON f.id = u.parent_id
                WHERE u.depth < 1000
            )
            SELECT EXISTS(SELECT 1 FROM up WHERE id = $2)`

		var cycle bool
		if err := tx.GetContext(ctx, &cycle, cycleQuery, *parentID, id); err != nil {
			return mapError(err, fmt.Sprintf("folder %d", *parentID))
		}
		if cycle {
			return fmt.Errorf("%w: folder %d cannot be moved into itself or its descendant", domain.ErrInvalidInput, id)
		}
	}

	res, err := tx.ExecContext(ctx, `UPDATE folders SET parent_id = $1 WHERE id = $2`, parentID, id)
	if err != nil {
		return mapError(err, fmt.Sprintf("folder %d", id))
	}
	if err := expectAffected(res, fmt.Sprintf("folder %d", id)); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete удаляет папку. Подпапки удаляются каскадом, файлы отвязываются (folder_id = NULL).
func (r *FolderRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return mapError(err, fmt.Sprintf("folder %d", id))
	}
	return expectAffected(res, fmt.Sprintf("folder %d", id))
}
