package syncengine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrSnakeDoc/marksync/internal/domain"
	"github.com/MrSnakeDoc/marksync/internal/logger"
	"github.com/MrSnakeDoc/marksync/internal/store"
)

// result accumulates the outcome of every client change of a call.
type result struct {
	seen      map[domain.Kind]map[string]struct{}
	conflicts []domain.Conflict
	applied   int
	skipped   int
}

func newResult() *result {
	return &result{
		seen:      make(map[domain.Kind]map[string]struct{}, len(domain.Kinds)),
		conflicts: []domain.Conflict{},
	}
}

func (r *result) markProcessed(kind domain.Kind, id string) {
	ids, ok := r.seen[kind]
	if !ok {
		ids = make(map[string]struct{})
		r.seen[kind] = ids
	}
	ids[id] = struct{}{}
}

func (r *result) processed(kind domain.Kind, id string) bool {
	_, ok := r.seen[kind][id]
	return ok
}

// step is what one change transaction decided.
type step struct {
	action   domain.Action
	record   domain.Record
	conflict *domain.Conflict
	skipped  bool
}

// reconcile applies the client changes in order, one transaction each.
// Only a cancelled context aborts the batch; every other failure becomes a
// conflict entry for the change that caused it.
func (e *Engine) reconcile(ctx context.Context, log logger.Logger, ownerID string, at time.Time, changes domain.ClientChanges) (*result, error) {
	res := newResult()

	for _, change := range changes.All() {
		meta := change.Meta()
		res.markProcessed(change.Kind(), meta.ID)

		if strings.TrimSpace(meta.ID) == "" {
			res.conflicts = append(res.conflicts, domain.ErrorConflict(change,
				domain.InvalidInput(change.Kind(), "", "%s change has no id", change.Kind())))
			continue
		}

		var st step
		err := e.store.Update(ctx, func(tx store.Tx) error {
			var err error
			st, err = e.apply(ctx, tx, ownerID, at, change)
			return err
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			res.conflicts = append(res.conflicts, e.errorConflict(log, change, err))
			continue
		}

		switch {
		case st.skipped:
			res.skipped++
			log.Debug("skipped change for record of another owner",
				logger.String("kind", string(change.Kind())),
				logger.String("id", meta.ID))
		case st.conflict != nil:
			res.conflicts = append(res.conflicts, *st.conflict)
		case st.record != nil:
			res.applied++
			e.publish(ctx, log, ownerID, st)
		}
	}

	return res, nil
}

// apply runs inside the change's write transaction. Every read that
// validates the write goes through tx.
func (e *Engine) apply(ctx context.Context, tx store.Tx, ownerID string, at time.Time, change domain.Change) (step, error) {
	meta := change.Meta()

	existing, err := tx.Get(ctx, change.Kind(), meta.ID)
	if errors.Is(err, store.ErrNotFound) {
		existing = nil
	} else if err != nil {
		return step{}, err
	}

	if existing != nil && existing.Meta().OwnerID != ownerID {
		return step{skipped: true}, nil
	}

	if meta.IsDeleted {
		return softDelete(ctx, tx, at, existing)
	}

	if existing != nil && isStale(existing, meta) {
		c := domain.StaleConflict(change, existing)
		return step{conflict: &c}, nil
	}

	return e.write(ctx, tx, ownerID, at, change, existing)
}

// isStale reports whether the server copy moved past the client's base
// version, or was deleted. A change without a base version is a blind
// write and only loses against a tombstone.
func isStale(existing domain.Record, meta *domain.ChangeMeta) bool {
	m := existing.Meta()
	if m.IsDeleted {
		return true
	}
	if meta.LastServerUpdatedAt == nil {
		return false
	}
	return m.UpdatedAt.UnixMilli() > meta.LastServerUpdatedAt.UnixMilli()
}

func softDelete(ctx context.Context, tx store.Tx, at time.Time, existing domain.Record) (step, error) {
	if existing == nil || existing.Meta().IsDeleted {
		return step{}, nil
	}
	existing.Meta().MarkDeleted(at)
	if err := tx.Update(ctx, existing); err != nil {
		return step{}, err
	}
	return step{action: domain.ActionDeleted, record: existing}, nil
}

// write creates the record when existing is nil and updates it otherwise.
func (e *Engine) write(ctx context.Context, tx store.Tx, ownerID string, at time.Time, change domain.Change, existing domain.Record) (step, error) {
	var (
		rec        domain.Record
		prevParent *string
		err        error
	)

	created := existing == nil
	if created {
		if rec, err = change.Build(ownerID); err != nil {
			return step{}, err
		}
	} else {
		rec = existing
		if f, ok := existing.(*domain.Folder); ok && f.ParentID != nil {
			parent := *f.ParentID
			prevParent = &parent
		}
		if err := change.Apply(rec); err != nil {
			return step{}, err
		}
	}

	if err := checkConstraints(ctx, tx, ownerID, rec, created, prevParent); err != nil {
		return step{}, err
	}

	action := domain.ActionUpdated
	if created {
		action = domain.ActionCreated
		rec.Meta().InitTimestamps(at)
		err = tx.Insert(ctx, rec)
	} else {
		rec.Meta().Touch(at)
		err = tx.Update(ctx, rec)
	}
	if err != nil {
		return step{}, err
	}

	if bc, ok := change.(*domain.BookmarkChange); ok {
		if err := syncRelations(ctx, tx, ownerID, at, bc); err != nil {
			return step{}, err
		}
		// Reload so the event carries the committed membership sets.
		if rec, err = tx.Get(ctx, domain.KindBookmark, bc.ID); err != nil {
			return step{}, err
		}
	}

	return step{action: action, record: rec}, nil
}

// errorConflict turns a failed change into its conflict entry. Typed errors
// keep their message but not their cause; anything else is reported as
// internal. Storage details only go to the log.
func (e *Engine) errorConflict(log logger.Logger, change domain.Change, err error) domain.Conflict {
	meta := change.Meta()
	log.Warn("change rejected",
		logger.String("kind", string(change.Kind())),
		logger.String("id", meta.ID),
		logger.String("code", string(domain.CodeOf(err))),
		logger.Error(err))

	var typed *domain.Error
	if !errors.As(err, &typed) || typed.Code == domain.CodeInternal {
		return domain.ErrorConflict(change, domain.Internal(change.Kind(), meta.ID, nil))
	}
	return domain.ErrorConflict(change, typed.Public())
}

// publish emits the event for a committed change. Delivery is best effort:
// the change is already durable.
func (e *Engine) publish(ctx context.Context, log logger.Logger, ownerID string, st step) {
	kind := st.record.Kind()
	event := domain.EventName(kind, st.action)
	payload := domain.ServerChange{Kind: kind, Record: st.record}

	if err := e.publisher.Publish(ctx, ownerID, event, payload); err != nil {
		log.Warn("failed to publish event",
			logger.String("event", event),
			logger.String("id", st.record.Meta().ID),
			logger.Error(err))
	}
}
