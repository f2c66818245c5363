package utils

import (
	"io"

	"github.com/MrSnakeDoc/marksync/internal/logger"
)

// MustClose closes c and logs any error under name.
// Use in shutdown paths where the error cannot be returned.
func MustClose(c io.Closer, name string, log logger.Logger) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", name), logger.Error(err))
	}
}
