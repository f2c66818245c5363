package syncengine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/MrSnakeDoc/marksync/internal/domain"
	"github.com/MrSnakeDoc/marksync/internal/store"
)

// checkConstraints validates rec's effective post-change state: folder
// parentage when it is set or changed, then name uniqueness.
func checkConstraints(ctx context.Context, tx store.Tx, ownerID string, rec domain.Record, created bool, prevParent *string) error {
	switch r := rec.(type) {
	case *domain.Folder:
		if created || !domain.SameParent(prevParent, r.ParentID) {
			if err := checkParent(ctx, tx, ownerID, r); err != nil {
				return err
			}
		}
		return checkName(ctx, tx, domain.KindFolder, ownerID, r.ParentID, r.ID, r.Name)
	case *domain.Tag:
		return checkName(ctx, tx, domain.KindTag, ownerID, nil, r.ID, r.Name)
	case *domain.Collection:
		return checkName(ctx, tx, domain.KindCollection, ownerID, nil, r.ID, r.Name)
	default:
		return nil
	}
}

// checkParent rejects self-parenting, parents the owner cannot see, and
// parents inside the folder's own subtree.
func checkParent(ctx context.Context, tx store.Tx, ownerID string, f *domain.Folder) error {
	if f.ParentID == nil {
		return nil
	}
	parentID := *f.ParentID
	if parentID == f.ID {
		return domain.HierarchyViolation(f.ID, parentID)
	}

	parent, err := tx.Get(ctx, domain.KindFolder, parentID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NotFound(domain.KindFolder, parentID)
	}
	if err != nil {
		return fmt.Errorf("failed to load parent folder %s: %w", parentID, err)
	}
	if pm := parent.Meta(); pm.OwnerID != ownerID || pm.IsDeleted {
		return domain.NotFound(domain.KindFolder, parentID)
	}

	descendants, err := tx.FolderDescendantIDs(ctx, ownerID, f.ID)
	if err != nil {
		return fmt.Errorf("failed to load descendants of folder %s: %w", f.ID, err)
	}
	if slices.Contains(descendants, parentID) {
		return domain.HierarchyViolation(f.ID, parentID)
	}
	return nil
}

func checkName(ctx context.Context, tx store.Tx, kind domain.Kind, ownerID string, parentID *string, id, name string) error {
	taken, err := tx.NameTaken(ctx, kind, ownerID, parentID, name, id)
	if err != nil {
		return fmt.Errorf("failed to check %s name: %w", kind, err)
	}
	if taken {
		return domain.UniquenessViolation(kind, id, name)
	}
	return nil
}
