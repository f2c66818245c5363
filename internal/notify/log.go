package notify

import (
	"context"

	"github.com/MrSnakeDoc/marksync/internal/logger"
)

// LogPublisher writes events to the log. Used when Redis is disabled.
type LogPublisher struct {
	log logger.Logger
}

func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, ownerID, event string, _ any) error {
	p.log.Debug("event",
		logger.String("event", event),
		logger.String("owner_id", ownerID))
	return nil
}
