package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/boardwatch/internal/httpserver/deps"
	"github.com/MrSnakeDoc/boardwatch/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/boardwatch/internal/httpserver/mw"
)

func init() { Register(registerInteractions) }

// Discord calls this endpoint from its own address pool: no IP filter.
func registerInteractions(r chi.Router, d deps.Deps) {
	if d.Interactions == nil || d.Verifier == nil {
		return
	}
	r.With(mw.VerifySignature(d.Verifier, d.Logger)).Post("/interactions", handlers.Interactions(d))
}
