package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/MrSnakeDoc/marksync/internal/domain"
	"github.com/MrSnakeDoc/marksync/internal/store"
)

type table struct {
	kind    domain.Kind
	name    string
	columns string // select list, aliased as "r"
}

const syncColumns = `r.created_at, r.updated_at, r.is_deleted, r.deleted_at`

var tables = []table{
	{
		kind: domain.KindBookmark,
		name: "bookmarks",
		columns: `r.id, r.owner_id, r.url, r.title, r.description, r.notes, ` + syncColumns + `,
			(SELECT json_group_array(folder_id) FROM bookmark_folders WHERE bookmark_id = r.id),
			(SELECT json_group_array(tag_id) FROM bookmark_tags WHERE bookmark_id = r.id)`,
	},
	{
		kind:    domain.KindFolder,
		name:    "folders",
		columns: `r.id, r.owner_id, r.name, r.parent_id, r.description, r.icon, r.color, ` + syncColumns,
	},
	{
		kind:    domain.KindTag,
		name:    "tags",
		columns: `r.id, r.owner_id, r.name, r.color, ` + syncColumns,
	},
	{
		kind:    domain.KindCollection,
		name:    "collections",
		columns: `r.id, r.owner_id, r.name, r.description, r.is_public, r.thumbnail, ` + syncColumns,
	},
}

func tableFor(kind domain.Kind) (table, error) {
	for _, t := range tables {
		if t.kind == kind {
			return t, nil
		}
	}
	return table{}, fmt.Errorf("no table for kind %q", kind)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// syncFields collects the shared columns during a scan.
type syncFields struct {
	createdAt int64
	updatedAt int64
	isDeleted bool
	deletedAt sql.NullInt64
}

func (f *syncFields) dest() []any {
	return []any{&f.createdAt, &f.updatedAt, &f.isDeleted, &f.deletedAt}
}

func (f *syncFields) apply(s *domain.Syncable) {
	s.CreatedAt = fromMillis(f.createdAt)
	s.UpdatedAt = fromMillis(f.updatedAt)
	s.IsDeleted = f.isDeleted
	if f.deletedAt.Valid {
		at := fromMillis(f.deletedAt.Int64)
		s.DeletedAt = &at
	}
}

func scanRecord(kind domain.Kind, row rowScanner) (domain.Record, error) {
	var sf syncFields

	switch kind {
	case domain.KindBookmark:
		var b domain.Bookmark
		var folders, tags string
		dest := append([]any{&b.ID, &b.OwnerID, &b.URL, &b.Title, &b.Description, &b.Notes}, sf.dest()...)
		dest = append(dest, &folders, &tags)
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		sf.apply(&b.Syncable)
		var err error
		if b.FolderIDs, err = decodeIDs(folders); err != nil {
			return nil, err
		}
		if b.TagIDs, err = decodeIDs(tags); err != nil {
			return nil, err
		}
		return &b, nil

	case domain.KindFolder:
		var f domain.Folder
		var parent sql.NullString
		dest := append([]any{&f.ID, &f.OwnerID, &f.Name, &parent, &f.Description, &f.Icon, &f.Color}, sf.dest()...)
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		sf.apply(&f.Syncable)
		if parent.Valid {
			f.ParentID = &parent.String
		}
		return &f, nil

	case domain.KindTag:
		var t domain.Tag
		dest := append([]any{&t.ID, &t.OwnerID, &t.Name, &t.Color}, sf.dest()...)
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		sf.apply(&t.Syncable)
		return &t, nil

	case domain.KindCollection:
		var c domain.Collection
		dest := append([]any{&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.IsPublic, &c.Thumbnail}, sf.dest()...)
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		sf.apply(&c.Syncable)
		return &c, nil
	}

	return nil, fmt.Errorf("no table for kind %q", kind)
}

// decodeIDs parses a json_group_array result into a sorted id list.
func decodeIDs(raw string) ([]string, error) {
	ids := []string{}
	if raw == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode relation ids: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (t *tx) Get(ctx context.Context, kind domain.Kind, id string) (domain.Record, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s AS r WHERE r.id = ?`, tbl.columns, tbl.name)
	rec, err := scanRecord(kind, t.tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", kind, id, err)
	}
	return rec, nil
}

func (t *tx) Insert(ctx context.Context, rec domain.Record) error {
	m := rec.Meta()
	var err error

	switch r := rec.(type) {
	case *domain.Bookmark:
		_, err = t.tx.ExecContext(ctx, `
			INSERT INTO bookmarks
			(id, owner_id, url, title, description, notes, created_at, updated_at, is_deleted, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.OwnerID, r.URL, r.Title, r.Description, r.Notes,
			toMillis(m.CreatedAt), toMillis(m.UpdatedAt), m.IsDeleted, millisPtr(m.DeletedAt))
	case *domain.Folder:
		_, err = t.tx.ExecContext(ctx, `
			INSERT INTO folders
			(id, owner_id, name, parent_id, description, icon, color, created_at, updated_at, is_deleted, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.OwnerID, r.Name, r.ParentID, r.Description, r.Icon, r.Color,
			toMillis(m.CreatedAt), toMillis(m.UpdatedAt), m.IsDeleted, millisPtr(m.DeletedAt))
	case *domain.Tag:
		_, err = t.tx.ExecContext(ctx, `
			INSERT INTO tags
			(id, owner_id, name, color, created_at, updated_at, is_deleted, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.OwnerID, r.Name, r.Color,
			toMillis(m.CreatedAt), toMillis(m.UpdatedAt), m.IsDeleted, millisPtr(m.DeletedAt))
	case *domain.Collection:
		_, err = t.tx.ExecContext(ctx, `
			INSERT INTO collections
			(id, owner_id, name, description, is_public, thumbnail, created_at, updated_at, is_deleted, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.OwnerID, r.Name, r.Description, r.IsPublic, r.Thumbnail,
			toMillis(m.CreatedAt), toMillis(m.UpdatedAt), m.IsDeleted, millisPtr(m.DeletedAt))
	default:
		return fmt.Errorf("failed to insert: unsupported record %T", rec)
	}

	if err != nil {
		return fmt.Errorf("failed to insert %s %s: %w", rec.Kind(), m.ID, translate(err))
	}
	return nil
}

// Update rewrites the mutable columns. id, owner_id and created_at never change.
func (t *tx) Update(ctx context.Context, rec domain.Record) error {
	m := rec.Meta()
	var (
		res sql.Result
		err error
	)

	switch r := rec.(type) {
	case *domain.Bookmark:
		res, err = t.tx.ExecContext(ctx, `
			UPDATE bookmarks SET url = ?, title = ?, description = ?, notes = ?,
			updated_at = ?, is_deleted = ?, deleted_at = ?
			WHERE id = ?`,
			r.URL, r.Title, r.Description, r.Notes,
			toMillis(m.UpdatedAt), m.IsDeleted, millisPtr(m.DeletedAt), m.ID)
	case *domain.Folder:
		res, err = t.tx.ExecContext(ctx, `
			UPDATE folders SET name = ?, parent_id = ?, description = ?, icon = ?, color = ?,
			updated_at = ?, is_deleted = ?, deleted_at = ?
			WHERE id = ?`,
			r.Name, r.ParentID, r.Description, r.Icon, r.Color,
			toMillis(m.UpdatedAt), m.IsDeleted, millisPtr(m.DeletedAt), m.ID)
	case *domain.Tag:
		res, err = t.tx.ExecContext(ctx, `
			UPDATE tags SET name = ?, color = ?,
			updated_at = ?, is_deleted = ?, deleted_at = ?
			WHERE id = ?`,
			r.Name, r.Color,
			toMillis(m.UpdatedAt), m.IsDeleted, millisPtr(m.DeletedAt), m.ID)
	case *domain.Collection:
		res, err = t.tx.ExecContext(ctx, `
			UPDATE collections SET name = ?, description = ?, is_public = ?, thumbnail = ?,
			updated_at = ?, is_deleted = ?, deleted_at = ?
			WHERE id = ?`,
			r.Name, r.Description, r.IsPublic, r.Thumbnail,
			toMillis(m.UpdatedAt), m.IsDeleted, millisPtr(m.DeletedAt), m.ID)
	default:
		return fmt.Errorf("failed to update: unsupported record %T", rec)
	}

	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", rec.Kind(), m.ID, translate(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update %s %s: %w", rec.Kind(), m.ID, store.ErrNotFound)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func millisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func sinceMillis(since *time.Time) int64 {
	if since == nil {
		return -1
	}
	return since.UnixMilli()
}
