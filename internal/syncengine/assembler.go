package syncengine

import (
	"time"

	"github.com/MrSnakeDoc/marksync/internal/domain"
)

// assemble builds the response. Server changes for records the client just
// sent are dropped so the device does not re-apply its own write.
func assemble(c *collected, res *result, syncStart time.Time) *domain.SyncResponse {
	changes := make([]domain.ServerChange, 0, len(c.changes))
	for _, sc := range c.changes {
		if res.processed(sc.Kind, sc.Record.Meta().ID) {
			continue
		}
		changes = append(changes, sc)
	}

	watermark := syncStart
	return &domain.SyncResponse{
		Success:          true,
		ServerChanges:    changes,
		DeletedIDs:       c.deleted,
		Conflicts:        res.conflicts,
		NewSyncTimestamp: &watermark,
	}
}
