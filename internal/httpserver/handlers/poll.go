package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/boardwatch/internal/httpserver/deps"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
)

// Poll asks the scheduler for an immediate poll cycle without waiting for it.
func Poll(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.PollTrigger <- struct{}{}:
			d.Logger.Info("manual poll triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusAccepted)
			if _, err := w.Write([]byte("✅ Poll cycle triggered\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		default:
			d.Logger.Warn("poll cycle already pending",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("⏳ Poll cycle already pending, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		}
	}
}
