package domain

import "fmt"

// Kind discriminates the four synchronized entity types.
type Kind string

const (
	KindBookmark   Kind = "bookmark"
	KindFolder     Kind = "folder"
	KindTag        Kind = "tag"
	KindCollection Kind = "collection"
)

// Kinds lists every kind in processing order.
// Bookmarks first, then folders, tags and collections.
var Kinds = []Kind{KindBookmark, KindFolder, KindTag, KindCollection}

// ParseKind validates a wire discriminator.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindBookmark, KindFolder, KindTag, KindCollection:
		return k, nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
}

// Plural is the key used for per-kind collections on the wire ("bookmarks", "folders", ...).
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Action is the lifecycle step announced to real-time listeners.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// EventName builds the published event name, e.g. "folder:deleted".
func EventName(kind Kind, action Action) string {
	return string(kind) + ":" + string(action)
}
