package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DoyleJ11/yahtzee-backend/internal/hub"
	"github.com/DoyleJ11/yahtzee-backend/internal/results"
	"github.com/DoyleJ11/yahtzee-backend/internal/ws"
)

type Deps struct {
	Hub          *hub.Hub
	Results      results.Store
	ResultsLimit int
	WS           ws.Options
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz(d.Hub))
	r.Get("/ws", ws.Handler(d.Hub, d.WS))
	r.Get("/rooms/{code}", GetRoom(d.Hub))
	r.Get("/results", RecentResults(d.Results, d.ResultsLimit))
	return r
}
