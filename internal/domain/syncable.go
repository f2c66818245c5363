package domain

import "time"

// Syncable carries the fields every synchronized record shares.
// It is embedded in Bookmark, Folder, Tag and Collection.
type Syncable struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"ownerId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	IsDeleted bool       `json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Meta exposes the shared fields through the Record interface.
func (s *Syncable) Meta() *Syncable {
	return s
}

// Touch stamps an accepted mutation and clears any tombstone.
func (s *Syncable) Touch(at time.Time) {
	s.UpdatedAt = at
	s.IsDeleted = false
	s.DeletedAt = nil
}

// InitTimestamps sets both CreatedAt and UpdatedAt for a new record.
func (s *Syncable) InitTimestamps(at time.Time) {
	s.CreatedAt = at
	s.UpdatedAt = at
}

// MarkDeleted tombstones the record. UpdatedAt moves too so the record
// leaves every "updated since" window that starts before the deletion.
func (s *Syncable) MarkDeleted(at time.Time) {
	deletedAt := at
	s.IsDeleted = true
	s.DeletedAt = &deletedAt
	s.UpdatedAt = at
}

// Record is implemented by every synchronized entity.
type Record interface {
	Kind() Kind
	Meta() *Syncable
}
