package app

import (
	"net/http"

	"github.com/flycamp/console/internal/platform/httpx"
)

// NewMux builds the kiosk routing table over the handlers.
func NewMux(h *Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	get := func(handler http.HandlerFunc) http.Handler {
		return httpx.Chain(handler, httpx.RequireMethod(http.MethodGet))
	}
	post := func(handler http.HandlerFunc) http.Handler {
		return httpx.Chain(handler, httpx.RequireMethod(http.MethodPost))
	}

	mux.Handle("/", get(h.handleIndex))
	mux.Handle("/scan_rfid", get(h.handleScanRFID))
	mux.Handle("/write_rfid_token", post(h.handleWriteRFIDToken))
	mux.Handle("/api/connection_check", post(h.handleConnectionCheck))
	mux.Handle("/api/start_game", post(h.handleStartGame))
	mux.Handle("/start_hue_game", get(h.handleStartHueGame))
	mux.Handle("/start_hover_game", get(h.handleStartHoverGame))
	mux.Handle("/submit_score", post(h.handleSubmitScore))
	mux.Handle("/get_leaderboard", get(h.handleLeaderboard))
	mux.Handle("/game_done", get(h.handleGameDone))

	return mux
}
