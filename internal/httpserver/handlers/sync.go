package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/marksync/internal/domain"
	"github.com/MrSnakeDoc/marksync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marksync/internal/httpserver/mw"
	"github.com/MrSnakeDoc/marksync/internal/logger"
)

// Sync decodes a sync request, runs it for the authenticated owner and
// writes the engine's response. A degraded response is sent with 500 so
// clients and proxies can tell it apart without parsing the body.
func Sync(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := mw.OwnerID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing owner")
			return
		}

		if d.MaxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, d.MaxBodyBytes)
		}

		var req domain.SyncRequest
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			d.Logger.Debug("invalid sync request", logger.String("owner_id", ownerID), logger.Error(err))
			writeError(w, http.StatusBadRequest, "invalid sync request: "+err.Error())
			return
		}

		if n := req.ClientChanges.Len(); d.MaxChanges > 0 && n > d.MaxChanges {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("too many changes: %d (max %d)", n, d.MaxChanges))
			return
		}

		resp := d.Syncer.Sync(r.Context(), ownerID, req)

		// The timeout middleware answers 504 itself once the deadline passed.
		if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
			d.Logger.Warn("sync exceeded request timeout", logger.String("owner_id", ownerID))
			return
		}

		status := http.StatusOK
		if !resp.Success {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, resp)
	}
}
