package utils

import (
	"io"

	"github.com/MrSnakeDoc/boardwatch/internal/logger"
)

// Close closes c and ignores any error.
// Use for best-effort cleanup where a close error changes nothing.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseLogged closes c and logs a failure at debug level.
// Use in defers on response bodies and clients.
func CloseLogged(c io.Closer, log logger.Logger, what string) {
	if err := c.Close(); err != nil {
		log.Debug("failed to close", logger.String("what", what), logger.Error(err))
	}
}
