package syncengine

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/marksync/internal/domain"
	"github.com/MrSnakeDoc/marksync/internal/store"
)

// collected is the server side of a sync: what changed since the watermark.
type collected struct {
	changes []domain.ServerChange
	deleted domain.DeletedIDs
}

// collect reads every kind's deltas in one read transaction, before any
// client change is applied. A nil since is a bootstrap: every active record
// is returned and tombstones are skipped since the client holds nothing yet.
func (e *Engine) collect(ctx context.Context, ownerID string, since *time.Time) (*collected, error) {
	out := &collected{
		changes: []domain.ServerChange{},
		deleted: domain.NewDeletedIDs(),
	}

	err := e.store.View(ctx, func(tx store.Tx) error {
		for _, kind := range domain.Kinds {
			records, err := tx.ListUpdatedSince(ctx, kind, ownerID, since)
			if err != nil {
				return fmt.Errorf("failed to list updated %s: %w", kind.Plural(), err)
			}
			for _, rec := range records {
				out.changes = append(out.changes, domain.ServerChange{Kind: kind, Record: rec})
			}

			if since == nil {
				continue
			}
			ids, err := tx.ListDeletedSince(ctx, kind, ownerID, since)
			if err != nil {
				return fmt.Errorf("failed to list deleted %s: %w", kind.Plural(), err)
			}
			out.deleted.Add(kind, ids...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
