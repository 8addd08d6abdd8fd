package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/httpserver/deps"
)

const infraTimeout = 2 * time.Second

type componentStatus struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend,omitempty"`
	Pending *int64 `json:"pending,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

type watermarkStatus struct {
	URL    string `json:"url,omitempty"`
	SeenAt string `json:"seen_at,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
	Watermarks map[string]watermarkStatus `json:"watermarks"`
}

// Infra reports store, queue and channel state plus the last post seen per category.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), infraTimeout)
		defer cancel()

		components := map[string]componentStatus{
			"store":    checkStore(ctx, d),
			"queue":    checkQueue(ctx, d),
			"channels": checkChannels(ctx, d),
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(infraResponse{
			Mode:       determineMode(components),
			Components: components,
			Watermarks: watermarks(ctx, d),
		})
	}
}

// determineMode: "critical" without a store, "idle" without a channel to
// notify, "degraded" when the queue cannot be read.
func determineMode(components map[string]componentStatus) string {
	if !components["store"].OK {
		return "critical"
	}
	if !components["queue"].OK {
		return "degraded"
	}
	if ch := components["channels"]; !ch.OK || ch.Count == nil || *ch.Count == 0 {
		return "idle"
	}
	return "operational"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Error: "not initialized"}
	}
	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{OK: false, Backend: d.StoreName, Error: "unreachable"}
	}
	return componentStatus{OK: true, Backend: d.StoreName}
}

func checkQueue(ctx context.Context, d deps.Deps) componentStatus {
	if d.QueueDepth == nil {
		return componentStatus{OK: true}
	}
	n, err := d.QueueDepth(ctx)
	if err != nil {
		return componentStatus{OK: false, Error: "unreadable"}
	}
	return componentStatus{OK: true, Pending: &n}
}

func checkChannels(ctx context.Context, d deps.Deps) componentStatus {
	if d.Channels == nil {
		return componentStatus{OK: false, Error: "not initialized"}
	}
	bindings, err := d.Channels.Channels(ctx)
	if err != nil {
		return componentStatus{OK: false, Error: "unreadable"}
	}
	n := len(bindings)
	return componentStatus{OK: true, Count: &n}
}

func watermarks(ctx context.Context, d deps.Deps) map[string]watermarkStatus {
	out := make(map[string]watermarkStatus, len(domain.Categories))
	if d.Watermarks == nil {
		return out
	}
	for _, c := range domain.Categories {
		wm, ok, err := d.Watermarks.GetLast(ctx, c)
		switch {
		case err != nil:
			out[c.Slug()] = watermarkStatus{Error: "unreadable"}
		case ok:
			out[c.Slug()] = watermarkStatus{URL: wm.URL, SeenAt: wm.SeenAt.UTC().Format(time.RFC3339)}
		default:
			out[c.Slug()] = watermarkStatus{}
		}
	}
	return out
}
