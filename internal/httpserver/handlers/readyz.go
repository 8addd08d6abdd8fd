package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/boardwatch/internal/httpserver/deps"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
)

const readyTimeout = 2 * time.Second

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz reports ready only while the store answers a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		resp := readyzResponse{Ready: true}
		if d.Store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := d.Store.Ping(ctx); err != nil {
				d.Logger.Warn("readiness check failed", logger.Error(err))
				resp = readyzResponse{Ready: false, Error: "store unreachable"}
			}
		}

		if !resp.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
