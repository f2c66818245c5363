package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/marksync/internal/domain"
	"github.com/MrSnakeDoc/marksync/internal/store"
)

type tx struct {
	tx *sql.Tx
}

var _ store.Tx = (*tx)(nil)

func (t *tx) ListUpdatedSince(ctx context.Context, kind domain.Kind, ownerID string, since *time.Time) ([]domain.Record, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s AS r
		WHERE r.owner_id = ? AND r.is_deleted = 0 AND r.updated_at > ?
		ORDER BY r.updated_at, r.id`, tbl.columns, tbl.name)

	rows, err := t.tx.QueryContext(ctx, query, ownerID, sinceMillis(since))
	if err != nil {
		return nil, fmt.Errorf("failed to list updated %s: %w", tbl.name, err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (t *tx) ListDeletedSince(ctx context.Context, kind domain.Kind, ownerID string, since *time.Time) ([]string, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE owner_id = ? AND is_deleted = 1 AND deleted_at > ?
		ORDER BY deleted_at, id`, tbl.name)

	ids, err := t.queryIDs(ctx, query, ownerID, sinceMillis(since))
	if err != nil {
		return nil, fmt.Errorf("failed to list deleted %s: %w", tbl.name, err)
	}
	return ids, nil
}

// relationTable maps a relation to its join table and far-side column.
func relationTable(rel domain.Relation) (name, column string, err error) {
	switch rel {
	case domain.RelationFolders:
		return "bookmark_folders", "folder_id", nil
	case domain.RelationTags:
		return "bookmark_tags", "tag_id", nil
	default:
		return "", "", fmt.Errorf("unknown relation %q", rel)
	}
}

func (t *tx) Members(ctx context.Context, rel domain.Relation, bookmarkID string) ([]string, error) {
	name, column, err := relationTable(rel)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE bookmark_id = ? ORDER BY %s`, column, name, column)
	ids, err := t.queryIDs(ctx, query, bookmarkID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s of bookmark %s: %w", rel, bookmarkID, err)
	}
	return ids, nil
}

func (t *tx) AddMembers(ctx context.Context, rel domain.Relation, bookmarkID string, ids []string, at time.Time) error {
	name, column, err := relationTable(rel)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (bookmark_id, %s, created_at) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING`, name, column)
	for _, id := range ids {
		if _, err := t.tx.ExecContext(ctx, stmt, bookmarkID, id, toMillis(at)); err != nil {
			return fmt.Errorf("failed to add %s %s to bookmark %s: %w", rel, id, bookmarkID, translate(err))
		}
	}
	return nil
}

func (t *tx) RemoveMembers(ctx context.Context, rel domain.Relation, bookmarkID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	name, column, err := relationTable(rel)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf(`DELETE FROM %s WHERE bookmark_id = ? AND %s IN (%s)`, name, column, placeholders(len(ids)))
	args := append([]any{bookmarkID}, stringArgs(ids)...)
	if _, err := t.tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to remove %s from bookmark %s: %w", rel, bookmarkID, translate(err))
	}
	return nil
}

func (t *tx) OwnedIDs(ctx context.Context, kind domain.Kind, ownerID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE owner_id = ? AND is_deleted = 0 AND id IN (%s)`, tbl.name, placeholders(len(ids)))
	args := append([]any{ownerID}, stringArgs(ids)...)

	owned, err := t.queryIDs(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s ownership: %w", tbl.name, err)
	}
	return owned, nil
}

// FolderDescendantIDs walks parent_id edges downwards. UNION (not UNION ALL)
// stops the walk even if the stored tree already contains a cycle.
func (t *tx) FolderDescendantIDs(ctx context.Context, ownerID, folderID string) ([]string, error) {
	const query = `
		WITH RECURSIVE descendants(id) AS (
			SELECT id FROM folders
			WHERE owner_id = ? AND parent_id = ?

			UNION

			SELECT f.id FROM folders f
			JOIN descendants d ON f.parent_id = d.id
			WHERE f.owner_id = ?
		)
		SELECT id FROM descendants WHERE id <> ?`

	ids, err := t.queryIDs(ctx, query, ownerID, folderID, ownerID, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load descendants of folder %s: %w", folderID, err)
	}
	return ids, nil
}

func (t *tx) NameTaken(ctx context.Context, kind domain.Kind, ownerID string, parentID *string, name, excludeID string) (bool, error) {
	var (
		query string
		args  []any
	)

	switch kind {
	case domain.KindFolder:
		parent := ""
		if parentID != nil {
			parent = *parentID
		}
		query = `SELECT 1 FROM folders
			WHERE owner_id = ? AND IFNULL(parent_id, '') = ? AND name = ? AND is_deleted = 0 AND id <> ?
			LIMIT 1`
		args = []any{ownerID, parent, name, excludeID}
	case domain.KindTag, domain.KindCollection:
		tbl, _ := tableFor(kind)
		query = fmt.Sprintf(`SELECT 1 FROM %s
			WHERE owner_id = ? AND name = ? AND is_deleted = 0 AND id <> ?
			LIMIT 1`, tbl.name)
		args = []any{ownerID, name, excludeID}
	default:
		// Bookmarks carry no name constraint.
		return false, nil
	}

	var one int
	err := t.tx.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to check %s name: %w", kind, err)
	default:
		return true, nil
	}
}

func (t *tx) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
