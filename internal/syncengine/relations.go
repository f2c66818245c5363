package syncengine

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MrSnakeDoc/marksync/internal/domain"
	"github.com/MrSnakeDoc/marksync/internal/store"
)

// syncRelations brings the bookmark's folder and tag memberships to the
// sets carried by the change. Relations the change leaves nil are kept.
func syncRelations(ctx context.Context, tx store.Tx, ownerID string, at time.Time, change *domain.BookmarkChange) error {
	for _, rel := range domain.Relations {
		desired, ok := change.Desired(rel)
		if !ok {
			continue
		}
		if err := syncRelation(ctx, tx, ownerID, at, change.ID, rel, desired); err != nil {
			return err
		}
	}
	return nil
}

func syncRelation(ctx context.Context, tx store.Tx, ownerID string, at time.Time, bookmarkID string, rel domain.Relation, desired []string) error {
	current, err := tx.Members(ctx, rel, bookmarkID)
	if err != nil {
		return fmt.Errorf("failed to load bookmark %s: %w", rel, err)
	}

	toAdd, toRemove := diff(current, desired)

	if len(toAdd) > 0 {
		owned, err := tx.OwnedIDs(ctx, rel.Target(), ownerID, toAdd)
		if err != nil {
			return fmt.Errorf("failed to check %s ownership: %w", rel, err)
		}
		if missing := subtract(toAdd, owned); len(missing) > 0 {
			return domain.PermissionDenied(domain.KindBookmark, bookmarkID,
				"bookmark %s references %s not owned by the user: %s",
				bookmarkID, rel, strings.Join(missing, ", "))
		}
		if err := tx.AddMembers(ctx, rel, bookmarkID, toAdd, at); err != nil {
			return err
		}
	}

	if len(toRemove) > 0 {
		if err := tx.RemoveMembers(ctx, rel, bookmarkID, toRemove); err != nil {
			return err
		}
	}
	return nil
}

// diff returns desired - current and current - desired. Blank and
// duplicate desired ids are ignored.
func diff(current, desired []string) (toAdd, toRemove []string) {
	want := make(map[string]struct{}, len(desired))
	for _, id := range desired {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := want[id]; dup {
			continue
		}
		want[id] = struct{}{}
		if !slices.Contains(current, id) {
			toAdd = append(toAdd, id)
		}
	}
	for _, id := range current {
		if _, ok := want[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	return toAdd, toRemove
}

// subtract returns the ids of a not present in b, in a's order.
func subtract(a, b []string) []string {
	var out []string
	for _, id := range a {
		if !slices.Contains(b, id) {
			out = append(out, id)
		}
	}
	return out
}
