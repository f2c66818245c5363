package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/marksync/internal/domain"
	"github.com/MrSnakeDoc/marksync/internal/logger"
)

// Syncer runs one sync call. Implemented by *syncengine.Engine.
type Syncer interface {
	Sync(ctx context.Context, ownerID string, req domain.SyncRequest) *domain.SyncResponse
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	Syncer Syncer
	Store  Pinger // SQLite store
	Redis  Pinger // nil when notifications only go to the log

	OwnerHeader  string // header carrying the authenticated owner id
	MaxChanges   int    // max client changes per sync call
	MaxBodyBytes int64  // max sync request body size

	AllowedHosts   []string // Host headers allowed to reach the sync API
	AllowedCIDRS   []string // IPs allowed to access infra endpoints
	AllowedOrigins []string // CORS origins
	TrustProxy     bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitBurst int
	RateLimitRPM   int
}
