// Package syncengine merges client changes into the server of record and
// returns the deltas a device needs to converge.
package syncengine

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/marksync/internal/domain"
	"github.com/MrSnakeDoc/marksync/internal/logger"
	"github.com/MrSnakeDoc/marksync/internal/notify"
	"github.com/MrSnakeDoc/marksync/internal/store"
)

// Engine runs sync calls. It is safe for concurrent use. Calls for the same
// owner run one at a time; calls for different owners run in parallel.
type Engine struct {
	store     store.Store
	publisher notify.Publisher
	log       logger.Logger
	now       func() time.Time
	locks     ownerLocks
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now. Used by tests to pin the sync start time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine.
func New(st store.Store, pub notify.Publisher, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		publisher: pub,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync performs one sync call for ownerID. It never returns nil: a call
// that cannot complete yields a degraded response with Success false and
// the request's watermark, so the client retries the same window.
func (e *Engine) Sync(ctx context.Context, ownerID string, req domain.SyncRequest) (resp *domain.SyncResponse) {
	started := time.Now()
	log := e.log.With(logger.String("owner_id", ownerID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("sync panicked", logger.Any("panic", r))
			resp = failed(req, fmt.Errorf("panic: %v", r))
		}
	}()

	// Held from the sync start until the response is built: every write of
	// an earlier call is committed before this call collects.
	release, err := e.locks.acquire(ctx, ownerID)
	if err != nil {
		log.Warn("gave up waiting for a concurrent sync", logger.Error(err))
		return failed(req, err)
	}
	defer release()

	syncStart := e.now().UTC().Truncate(time.Millisecond)

	collected, err := e.collect(ctx, ownerID, req.LastSyncTimestamp)
	if err != nil {
		log.Error("failed to collect server changes", logger.Error(err))
		return failed(req, err)
	}

	res, err := e.reconcile(ctx, log, ownerID, syncStart, req.ClientChanges)
	if err != nil {
		log.Error("sync aborted", logger.Error(err))
		return failed(req, err)
	}

	resp = assemble(collected, res, syncStart)

	log.Info("sync completed",
		logger.Bool("bootstrap", req.LastSyncTimestamp == nil),
		logger.Int("client_changes", req.ClientChanges.Len()),
		logger.Int("applied", res.applied),
		logger.Int("conflicts", len(res.conflicts)),
		logger.Int("skipped", res.skipped),
		logger.Int("server_changes", len(resp.ServerChanges)),
		logger.Int("deleted_ids", resp.DeletedIDs.Len()),
		logger.Duration("duration", time.Since(started)))

	return resp
}

// failed builds the degraded response for an aborted call.
func failed(req domain.SyncRequest, err error) *domain.SyncResponse {
	return &domain.SyncResponse{
		Success:          false,
		ServerChanges:    []domain.ServerChange{},
		DeletedIDs:       domain.NewDeletedIDs(),
		Conflicts:        []domain.Conflict{},
		NewSyncTimestamp: req.LastSyncTimestamp,
		Message:          "sync failed: " + err.Error(),
	}
}
