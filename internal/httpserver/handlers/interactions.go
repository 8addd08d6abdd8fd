package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/httpserver/deps"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
)

// Interactions decodes a signature-verified interaction and writes the
// coordinator's immediate response.
func Interactions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var i discordgo.Interaction
		if err := json.NewDecoder(r.Body).Decode(&i); err != nil {
			d.Logger.Warn("malformed interaction payload", logger.Error(err))
			http.Error(w, "malformed interaction", http.StatusBadRequest)
			return
		}

		resp, err := d.Interactions.Handle(r.Context(), &i)
		switch {
		case errors.Is(err, domain.ErrUnsupported):
			d.Logger.Info("unsupported interaction", logger.Int("type", int(i.Type)))
			http.Error(w, "unsupported interaction", http.StatusBadRequest)
			return
		case err != nil:
			d.Logger.Error("interaction handling failed", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			d.Logger.Debug("failed to write interaction response", logger.Error(err))
		}
	}
}
