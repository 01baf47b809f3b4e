package app

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	apperrors "github.com/flycamp/console/internal/platform/errors"
	"github.com/flycamp/console/internal/platform/httpx"
	"github.com/flycamp/console/internal/services/console/rfid"
	"github.com/flycamp/console/internal/services/console/session"
	"github.com/flycamp/console/internal/services/console/sound"
	"github.com/flycamp/console/internal/services/console/storage"
)

// Handlers exposes the kiosk HTTP surface over the session orchestrator.
type Handlers struct {
	sessions  *session.Manager
	players   storage.PlayerStore
	scanner   rfid.Scanner
	tokenFile rfid.TokenFile
	sounds    sound.Player
}

// NewHandlers wires the HTTP handlers over their collaborators.
func NewHandlers(sessions *session.Manager, players storage.PlayerStore, scanner rfid.Scanner, tokenFile rfid.TokenFile, sounds sound.Player) (*Handlers, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if players == nil {
		return nil, fmt.Errorf("player store is required")
	}
	if sounds == nil {
		sounds = sound.NopPlayer{}
	}
	return &Handlers{
		sessions:  sessions,
		players:   players,
		scanner:   scanner,
		tokenFile: tokenFile,
		sounds:    sounds,
	}, nil
}

// writeError maps a typed error onto its HTTP status and the kiosk's
// uniform failure envelope.
func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("request failed status=%d err=%v", status, err)
	}
	_ = httpx.WriteJSON(w, status, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

// handleIndex serves the embedded kiosk UI shell.
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	// The mux routes every unknown path here; only the root is the shell.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	_ = httpx.WriteHTML(w, http.StatusOK, indexHTML)
}

// handleScanRFID reads the tag on the reader and resolves it to a player.
func (h *Handlers) handleScanRFID(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)

	if h.scanner == nil {
		h.sounds.Play(sound.CueRFIDError)
		writeError(w, apperrors.E(apperrors.KindUnavailable, "rfid reader is not configured"))
		return
	}
	tokenID, err := h.scanner.Scan(ctx)
	if err != nil {
		h.sounds.Play(sound.CueRFIDError)
		writeError(w, err)
		return
	}

	player, err := h.players.GetPlayer(ctx, tokenID)
	if err != nil {
		h.sounds.Play(sound.CueRFIDError)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, apperrors.E(apperrors.KindNotFound,
				fmt.Sprintf("token %d is not registered", tokenID)))
			return
		}
		writeError(w, apperrors.Wrap(apperrors.KindStore, "look up player", err))
		return
	}

	h.sounds.Play(sound.CueRFIDSuccess)
	h.sounds.Play(sound.CueNamePopup)
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"name":     player.Name,
		"token_id": player.TokenID,
	})
}

type writeTokenRequest struct {
	TokenID int64 `json:"token_id"`
}

// handleWriteRFIDToken persists the scanned token for the game scripts.
func (h *Handlers) handleWriteRFIDToken(w http.ResponseWriter, r *http.Request) {
	var req writeTokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.KindInvalidInput, "invalid request body", err))
		return
	}
	if err := h.tokenFile.Write(req.TokenID); err != nil {
		writeError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

type connectionCheckRequest struct {
	GameNumber int `json:"game_number"`
}

// handleConnectionCheck runs the readiness probe sequence. The body's
// game_number is optional; absent or out of range, the last persisted
// selection decides the car step.
func (h *Handlers) handleConnectionCheck(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)

	var req connectionCheckRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		// An empty or malformed body is a check without a selection.
		req.GameNumber = 0
	}

	h.sounds.Play(sound.CueInitialising)
	report, err := h.sessions.CheckReadiness(ctx, req.GameNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, report)
}

type startGameRequest struct {
	GameNumber  int `json:"game_number"`
	LevelNumber int `json:"level_number"`
}

// handleStartGame validates the selection and launches its game script.
func (h *Handlers) handleStartGame(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)

	var req startGameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.KindInvalidInput, "invalid request body", err))
		return
	}

	h.sounds.Play(sound.CueButtonSelection)
	if err := h.sessions.StartGame(ctx, req.GameNumber, req.LevelNumber); err != nil {
		writeError(w, err)
		return
	}

	h.sounds.Play(sound.CueGameStart)
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("game %d level %d started", req.GameNumber, req.LevelNumber),
	})
}

// handleStartHueGame is the legacy fixed launch for the hue game. It runs
// the node and car prep inline and launches whatever the prep says.
func (h *Handlers) handleStartHueGame(w http.ResponseWriter, r *http.Request) {
	h.startLegacy(w, r, 2, 1)
}

// handleStartHoverGame is the legacy fixed launch for the hover game.
func (h *Handlers) handleStartHoverGame(w http.ResponseWriter, r *http.Request) {
	h.startLegacy(w, r, 1, 1)
}

func (h *Handlers) startLegacy(w http.ResponseWriter, r *http.Request, gameNumber, levelNumber int) {
	ctx := httpx.RequestContext(r)

	h.sounds.Play(sound.CueInitialising)
	steps, err := h.sessions.StartLegacyGame(ctx, gameNumber, levelNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	h.sounds.Play(sound.CueGameStart)
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("game %d level %d started", gameNumber, levelNumber),
		"steps":   steps,
	})
}

type submitScoreRequest struct {
	TokenID     int64 `json:"token_id"`
	GameNumber  int   `json:"game_number"`
	LevelNumber int   `json:"level_number"`
	Score       int64 `json:"score"`
}

// handleSubmitScore records a finished round.
func (h *Handlers) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)

	var req submitScoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.KindInvalidInput, "invalid request body", err))
		return
	}
	if req.TokenID <= 0 {
		writeError(w, apperrors.E(apperrors.KindInvalidInput, "token_id is required"))
		return
	}
	if req.GameNumber < 1 || req.GameNumber > 3 || req.LevelNumber < 1 || req.LevelNumber > 2 {
		writeError(w, apperrors.E(apperrors.KindInvalidInput,
			fmt.Sprintf("invalid game/level: G%d L%d", req.GameNumber, req.LevelNumber)))
		return
	}
	if req.Score < 0 {
		writeError(w, apperrors.E(apperrors.KindInvalidInput, "score must not be negative"))
		return
	}

	if err := h.sessions.SubmitScore(ctx, req.TokenID, req.GameNumber, req.LevelNumber, req.Score); err != nil {
		writeError(w, err)
		return
	}
	h.sounds.Play(sound.CueScoreSubmit)
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Score submitted and stats updated.",
	})
}

// handleLeaderboard returns the descending per-player best-score totals.
func (h *Handlers) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)

	entries, err := h.sessions.Leaderboard(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	board := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		board = append(board, map[string]any{
			"name":  entry.Name,
			"score": entry.Score,
		})
	}
	h.sounds.Play(sound.CueLeaderboard)
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"leaderboard": board,
	})
}

// handleGameDone polls and consumes the completion signal.
func (h *Handlers) handleGameDone(w http.ResponseWriter, _ *http.Request) {
	done, err := h.sessions.PollCompletion()
	if err != nil {
		writeError(w, err)
		return
	}
	if done {
		h.sounds.Play(sound.CueDroneHome)
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"done": done})
}
