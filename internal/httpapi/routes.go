package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/helldraft/helldraft/internal/hub"
	"github.com/helldraft/helldraft/internal/ws"
)

func SetupRoutes(h *hub.Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Post("/lobbies", CreateLobby(h, log))
	r.Get("/lobbies/{code}/export", ExportState(h))
	r.Post("/lobbies/{code}/import", ImportState(h))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	return r
}
