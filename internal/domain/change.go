package domain

import (
	"strings"
	"time"
)

// ChangeMeta holds the fields every client change carries.
type ChangeMeta struct {
	ID string `json:"id"`
	// UpdatedAt is the client-side edit time. Informational only: the server
	// stamps accepted writes with its own sync start time.
	UpdatedAt time.Time `json:"updatedAt"`
	// LastServerUpdatedAt is the server version the client edited from.
	// Nil means the client never saw a server copy (blind write).
	LastServerUpdatedAt *time.Time `json:"lastServerUpdatedAt,omitempty"`
	IsDeleted           bool       `json:"isDeleted,omitempty"`
}

func (m *ChangeMeta) Meta() *ChangeMeta { return m }

// Change is one pending client mutation of a single record.
type Change interface {
	Kind() Kind
	Meta() *ChangeMeta
	// Build creates the record a create request produces.
	Build(ownerID string) (Record, error)
	// Apply copies the fields present in the change onto rec.
	Apply(rec Record) error
}

// Relation names a bookmark many-to-many membership.
type Relation string

const (
	RelationFolders Relation = "folders"
	RelationTags    Relation = "tags"
)

// Relations lists the bookmark relations in sync order.
var Relations = []Relation{RelationFolders, RelationTags}

// Target is the kind of record on the far side of the relation.
func (r Relation) Target() Kind {
	if r == RelationTags {
		return KindTag
	}
	return KindFolder
}

// BookmarkChange mutates a bookmark. FolderIDs / TagIDs, when non-nil,
// are the complete desired membership sets (an empty slice clears them).
type BookmarkChange struct {
	ChangeMeta

	URL         *string `json:"url,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Notes       *string `json:"notes,omitempty"`

	FolderIDs []string `json:"folderIds"`
	TagIDs    []string `json:"tagIds"`
}

func (*BookmarkChange) Kind() Kind { return KindBookmark }

// Desired returns the requested membership set for rel and whether the
// change carries one at all.
func (c *BookmarkChange) Desired(rel Relation) ([]string, bool) {
	switch rel {
	case RelationFolders:
		return c.FolderIDs, c.FolderIDs != nil
	case RelationTags:
		return c.TagIDs, c.TagIDs != nil
	default:
		return nil, false
	}
}

func (c *BookmarkChange) Build(ownerID string) (Record, error) {
	if c.URL == nil || strings.TrimSpace(*c.URL) == "" {
		return nil, InvalidInput(KindBookmark, c.ID, "bookmark %s: url is required", c.ID)
	}
	b := &Bookmark{Syncable: Syncable{ID: c.ID, OwnerID: ownerID}}
	return b, c.Apply(b)
}

func (c *BookmarkChange) Apply(rec Record) error {
	b, ok := rec.(*Bookmark)
	if !ok {
		return kindMismatch(KindBookmark, c.ID, rec)
	}
	if c.URL != nil {
		url := strings.TrimSpace(*c.URL)
		if url == "" {
			return InvalidInput(KindBookmark, c.ID, "bookmark %s: url cannot be empty", c.ID)
		}
		b.URL = url
	}
	setString(&b.Title, c.Title)
	setString(&b.Description, c.Description)
	setString(&b.Notes, c.Notes)
	return nil
}

// FolderChange mutates a folder. ParentID distinguishes "absent" (keep)
// from an explicit null (move to root).
type FolderChange struct {
	ChangeMeta

	Name        *string          `json:"name,omitempty"`
	ParentID    Optional[string] `json:"parentId,omitzero"`
	Description *string          `json:"description,omitempty"`
	Icon        *string          `json:"icon,omitempty"`
	Color       *string          `json:"color,omitempty"`
}

func (*FolderChange) Kind() Kind { return KindFolder }

func (c *FolderChange) Build(ownerID string) (Record, error) {
	if c.Name == nil {
		return nil, InvalidInput(KindFolder, c.ID, "folder %s: name is required", c.ID)
	}
	f := &Folder{Syncable: Syncable{ID: c.ID, OwnerID: ownerID}}
	return f, c.Apply(f)
}

func (c *FolderChange) Apply(rec Record) error {
	f, ok := rec.(*Folder)
	if !ok {
		return kindMismatch(KindFolder, c.ID, rec)
	}
	if err := setName(&f.Name, c.Name, KindFolder, c.ID); err != nil {
		return err
	}
	if c.ParentID.Set {
		if c.ParentID.Value == nil || *c.ParentID.Value == "" {
			f.ParentID = nil
		} else {
			parent := *c.ParentID.Value
			f.ParentID = &parent
		}
	}
	setString(&f.Description, c.Description)
	setString(&f.Icon, c.Icon)
	setString(&f.Color, c.Color)
	return nil
}

// TagChange mutates a tag.
type TagChange struct {
	ChangeMeta

	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (*TagChange) Kind() Kind { return KindTag }

func (c *TagChange) Build(ownerID string) (Record, error) {
	if c.Name == nil {
		return nil, InvalidInput(KindTag, c.ID, "tag %s: name is required", c.ID)
	}
	t := &Tag{Syncable: Syncable{ID: c.ID, OwnerID: ownerID}}
	return t, c.Apply(t)
}

func (c *TagChange) Apply(rec Record) error {
	t, ok := rec.(*Tag)
	if !ok {
		return kindMismatch(KindTag, c.ID, rec)
	}
	if err := setName(&t.Name, c.Name, KindTag, c.ID); err != nil {
		return err
	}
	setString(&t.Color, c.Color)
	return nil
}

// CollectionChange mutates a collection.
type CollectionChange struct {
	ChangeMeta

	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"isPublic,omitempty"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
}

func (*CollectionChange) Kind() Kind { return KindCollection }

func (c *CollectionChange) Build(ownerID string) (Record, error) {
	if c.Name == nil {
		return nil, InvalidInput(KindCollection, c.ID, "collection %s: name is required", c.ID)
	}
	col := &Collection{Syncable: Syncable{ID: c.ID, OwnerID: ownerID}}
	return col, c.Apply(col)
}

func (c *CollectionChange) Apply(rec Record) error {
	col, ok := rec.(*Collection)
	if !ok {
		return kindMismatch(KindCollection, c.ID, rec)
	}
	if err := setName(&col.Name, c.Name, KindCollection, c.ID); err != nil {
		return err
	}
	setString(&col.Description, c.Description)
	if c.IsPublic != nil {
		col.IsPublic = *c.IsPublic
	}
	setString(&col.Thumbnail, c.Thumbnail)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setName(dst *string, src *string, kind Kind, id string) error {
	if src == nil {
		return nil
	}
	name := strings.TrimSpace(*src)
	if name == "" {
		return InvalidInput(kind, id, "%s %s: name cannot be empty", kind, id)
	}
	*dst = name
	return nil
}

func kindMismatch(want Kind, id string, rec Record) error {
	return InvalidInput(want, id, "%s change %s cannot be applied to a %s record", want, id, rec.Kind())
}
