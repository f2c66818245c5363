// Package store defines the transactional persistence contract the sync
// engine relies on. Adapters live in sub-packages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/marksync/internal/domain"
)

// ErrNotFound is returned by Tx.Get when no record has the id.
var ErrNotFound = errors.New("record not found")

// Store opens transactions. Every read used to validate a write must go
// through the same Tx as the write itself.
type Store interface {
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(tx Tx) error) error
	// Update runs fn in a read-write transaction. It commits when fn returns
	// nil and rolls back when fn returns an error or panics.
	Update(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

// Tx is the per-transaction view of the four entity tables and the
// bookmark relations.
type Tx interface {
	// Get loads a record of any owner by id, tombstoned or not. Bookmarks
	// come back hydrated with their folder and tag ids.
	Get(ctx context.Context, kind domain.Kind, id string) (domain.Record, error)
	Insert(ctx context.Context, rec domain.Record) error
	Update(ctx context.Context, rec domain.Record) error

	// ListUpdatedSince returns active records with updatedAt > since.
	// A nil since returns every active record.
	ListUpdatedSince(ctx context.Context, kind domain.Kind, ownerID string, since *time.Time) ([]domain.Record, error)
	// ListDeletedSince returns ids of tombstones with deletedAt > since.
	ListDeletedSince(ctx context.Context, kind domain.Kind, ownerID string, since *time.Time) ([]string, error)

	Members(ctx context.Context, rel domain.Relation, bookmarkID string) ([]string, error)
	// AddMembers ignores ids already present.
	AddMembers(ctx context.Context, rel domain.Relation, bookmarkID string, ids []string, at time.Time) error
	RemoveMembers(ctx context.Context, rel domain.Relation, bookmarkID string, ids []string) error

	// OwnedIDs returns the subset of ids that exist, belong to ownerID and
	// are not tombstoned.
	OwnedIDs(ctx context.Context, kind domain.Kind, ownerID string, ids []string) ([]string, error)
	// FolderDescendantIDs returns the transitive children of folderID
	// (folderID itself excluded) among ownerID's folders. Tombstoned folders
	// are followed too: their parent edges still exist.
	FolderDescendantIDs(ctx context.Context, ownerID, folderID string) ([]string, error)
	// NameTaken reports whether another active record of ownerID already
	// uses name. parentID scopes folder names and is ignored for other kinds.
	NameTaken(ctx context.Context, kind domain.Kind, ownerID string, parentID *string, name, excludeID string) (bool, error)
}
