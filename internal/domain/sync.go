package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SyncRequest is what a client submits on each sync.
type SyncRequest struct {
	// LastSyncTimestamp is the watermark returned by the previous sync.
	// Nil requests a full bootstrap.
	LastSyncTimestamp *time.Time    `json:"lastSyncTimestamp"`
	ClientChanges     ClientChanges `json:"clientChanges"`
}

// ClientChanges groups pending changes by kind.
type ClientChanges struct {
	Bookmarks   []*BookmarkChange   `json:"bookmarks,omitempty"`
	Folders     []*FolderChange     `json:"folders,omitempty"`
	Tags        []*TagChange        `json:"tags,omitempty"`
	Collections []*CollectionChange `json:"collections,omitempty"`
}

// Len counts every change across kinds.
func (c ClientChanges) Len() int {
	return len(c.Bookmarks) + len(c.Folders) + len(c.Tags) + len(c.Collections)
}

// All flattens the changes in processing order: kinds in Kinds order,
// submission order within a kind. Nil entries are dropped.
func (c ClientChanges) All() []Change {
	out := make([]Change, 0, c.Len())
	for _, ch := range c.Bookmarks {
		if ch != nil {
			out = append(out, ch)
		}
	}
	for _, ch := range c.Folders {
		if ch != nil {
			out = append(out, ch)
		}
	}
	for _, ch := range c.Tags {
		if ch != nil {
			out = append(out, ch)
		}
	}
	for _, ch := range c.Collections {
		if ch != nil {
			out = append(out, ch)
		}
	}
	return out
}

// SyncResponse is everything the client needs to converge.
type SyncResponse struct {
	Success       bool           `json:"success"`
	ServerChanges []ServerChange `json:"serverChanges"`
	DeletedIDs    DeletedIDs     `json:"deletedIds"`
	Conflicts     []Conflict     `json:"conflicts"`
	// NewSyncTimestamp is the watermark for the next call. On failure it
	// echoes the request's watermark, which may be null.
	NewSyncTimestamp *time.Time `json:"newSyncTimestamp"`
	Message          string     `json:"message,omitempty"`
}

// DeletedIDs lists tombstoned ids per kind. Lists are never null on the wire.
type DeletedIDs struct {
	Bookmarks   []string `json:"bookmarks"`
	Folders     []string `json:"folders"`
	Tags        []string `json:"tags"`
	Collections []string `json:"collections"`
}

// NewDeletedIDs returns empty, non-nil lists.
func NewDeletedIDs() DeletedIDs {
	return DeletedIDs{
		Bookmarks:   []string{},
		Folders:     []string{},
		Tags:        []string{},
		Collections: []string{},
	}
}

// Add appends ids to the list for kind.
func (d *DeletedIDs) Add(kind Kind, ids ...string) {
	switch kind {
	case KindBookmark:
		d.Bookmarks = append(d.Bookmarks, ids...)
	case KindFolder:
		d.Folders = append(d.Folders, ids...)
	case KindTag:
		d.Tags = append(d.Tags, ids...)
	case KindCollection:
		d.Collections = append(d.Collections, ids...)
	}
}

// Len is the total number of ids across kinds.
func (d DeletedIDs) Len() int {
	return len(d.Bookmarks) + len(d.Folders) + len(d.Tags) + len(d.Collections)
}

// ServerChange is a record the client must apply, tagged with its kind.
// On the wire the record fields sit next to "kind" in one flat object.
type ServerChange struct {
	Kind   Kind
	Record Record
}

func (c ServerChange) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(c.Record)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("server change %s: record did not encode to an object", c.Kind)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"kind":`)
	kind, _ := json.Marshal(c.Kind)
	buf.Write(kind)
	if len(body) > 2 {
		buf.WriteByte(',')
	}
	buf.Write(body[1:])
	return buf.Bytes(), nil
}

func (c *ServerChange) UnmarshalJSON(data []byte) error {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	kind, err := ParseKind(head.Kind)
	if err != nil {
		return err
	}
	rec, err := NewRecord(kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return fmt.Errorf("failed to decode %s record: %w", kind, err)
	}
	c.Kind = kind
	c.Record = rec
	return nil
}

// Conflict reports a client change that was not applied. Either
// ServerRecord (stale base or tombstoned target) or Error is set.
type Conflict struct {
	Kind         Kind   `json:"kind"`
	ClientChange Change `json:"clientChange"`
	ServerRecord Record `json:"serverRecord,omitempty"`
	Error        string `json:"error,omitempty"`
	Code         Code   `json:"code"`
}

// StaleConflict builds the entry for a change whose base version lost.
func StaleConflict(change Change, server Record) Conflict {
	return Conflict{
		Kind:         change.Kind(),
		ClientChange: change,
		ServerRecord: server,
		Code:         CodeConflict,
	}
}

// ErrorConflict builds the entry for a change that failed validation or storage.
func ErrorConflict(change Change, err error) Conflict {
	return Conflict{
		Kind:         change.Kind(),
		ClientChange: change,
		Error:        err.Error(),
		Code:         CodeOf(err),
	}
}
