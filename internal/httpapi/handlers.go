package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/DoyleJ11/yahtzee-backend/internal/hub"
	"github.com/DoyleJ11/yahtzee-backend/internal/results"
	"github.com/DoyleJ11/yahtzee-backend/internal/room"
	"github.com/DoyleJ11/yahtzee-backend/internal/types"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func GetRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, err := h.Find(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			if errors.Is(err, hub.ErrRoomNotFound) {
				http.Error(w, "room not found", http.StatusNotFound)
				return
			}
			http.Error(w, "registry unavailable", http.StatusServiceUnavailable)
			return
		}

		view, err := lb.State(r.Context())
		if errors.Is(err, room.ErrRoomClosed) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		} else if err != nil {
			http.Error(w, "room unavailable", http.StatusServiceUnavailable)
			return
		}

		writeJSON(w, http.StatusOK, types.RoomSummary{
			Code:    view.Code,
			Phase:   string(view.State.Phase),
			Players: types.PlayersFrom(view.State),
		})
	}
}

// RecentResults lists finished games, newest first. ?limit= is capped at maxLimit.
func RecentResults(store results.Store, maxLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := maxLimit
		if q := r.URL.Query().Get("limit"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = min(n, maxLimit)
		}

		games, err := store.RecentGames(r.Context(), limit)
		if err != nil {
			http.Error(w, "failed to load results", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Games []results.GameResult `json:"games"`
		}{Games: games})
	}
}

func Healthz(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := h.Count(r.Context())
		if err != nil {
			http.Error(w, "registry unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Status string `json:"status"`
			Rooms  int    `json:"rooms"`
		}{Status: "ok", Rooms: n})
	}
}
