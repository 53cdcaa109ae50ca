package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"chathub/internal/config"
	"chathub/internal/handler/history"
	"chathub/internal/handler/ws"
	"chathub/internal/hub"
	"chathub/internal/store"
	"chathub/pkg/utils"
)

// NewRouter wires HTTP routes to the hub and message store.
func NewRouter(chatHub *hub.Hub, messages *store.Store, wsCfg config.WebsocketConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	historyHandler := history.New(messages)
	wsHandler := ws.New(chatHub, wsCfg)

	r.Route("/api", func(api chi.Router) {
		historyHandler.RegisterRoutes(api)
		api.Get("/healthz", handleHealthz)
	})

	wsHandler.RegisterRoutes(r)

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
