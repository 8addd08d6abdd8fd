package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/boardwatch/internal/httpserver/deps"
	"github.com/MrSnakeDoc/boardwatch/internal/httpserver/handlers"
)

func init() { Register(registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	ops := r.With(opsGuard(d)...)
	ops.Get("/infra", handlers.Infra(d))
	if d.PollTrigger != nil {
		ops.Post("/poll", handlers.Poll(d))
	}
	if d.Metrics != nil {
		ops.Get("/metrics", d.Metrics.ServeHTTP)
	}
}
