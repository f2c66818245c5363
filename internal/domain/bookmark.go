package domain

// Bookmark is a saved URL. FolderIDs and TagIDs hold the full membership
// sets of the bookmark↔folder and bookmark↔tag join relations.
type Bookmark struct {
	Syncable

	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Notes       string `json:"notes"`

	FolderIDs []string `json:"folderIds"`
	TagIDs    []string `json:"tagIds"`
}

func (*Bookmark) Kind() Kind { return KindBookmark }

// Folder is a node of the owner's folder tree. A nil ParentID means root level.
type Folder struct {
	Syncable

	Name        string  `json:"name"`
	ParentID    *string `json:"parentId"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
}

func (*Folder) Kind() Kind { return KindFolder }

// Tag is a flat, owner-scoped label.
type Tag struct {
	Syncable

	Name  string `json:"name"`
	Color string `json:"color"`
}

func (*Tag) Kind() Kind { return KindTag }

// Collection is a named, optionally public, grouping.
type Collection struct {
	Syncable

	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
	Thumbnail   string `json:"thumbnail"`
}

func (*Collection) Kind() Kind { return KindCollection }

// NewRecord returns an empty record of the given kind.
func NewRecord(kind Kind) (Record, error) {
	switch kind {
	case KindBookmark:
		return &Bookmark{}, nil
	case KindFolder:
		return &Folder{}, nil
	case KindTag:
		return &Tag{}, nil
	case KindCollection:
		return &Collection{}, nil
	default:
		return nil, InvalidInput(kind, "", "unknown entity kind %q", kind)
	}
}

// SameParent reports whether two optional parent ids point to the same folder.
func SameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
