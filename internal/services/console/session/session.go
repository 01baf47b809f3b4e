// Package session orchestrates the arcade game session lifecycle.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	apperrors "github.com/flycamp/console/internal/platform/errors"
	"github.com/flycamp/console/internal/services/console/launch"
	"github.com/flycamp/console/internal/services/console/readiness"
	"github.com/flycamp/console/internal/services/console/selection"
	"github.com/flycamp/console/internal/services/console/signal"
	"github.com/flycamp/console/internal/services/console/storage"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"
)

// State is the orchestrator's position in the session lifecycle.
type State string

const (
	StateIdle               State = "idle"
	StateChecking           State = "checking"
	StateReady              State = "ready"
	StateLaunched           State = "launched"
	StateAwaitingCompletion State = "awaiting_completion"
	StateScored             State = "scored"
)

// defaultCheckConcurrency bounds simultaneous readiness checks.
const defaultCheckConcurrency = 2

// Manager sequences readiness checks, launches, completion polling, and
// score submission for one kiosk. It is safe for concurrent HTTP use; the
// state machine tracks the single logical session while leaderboard reads
// and completion polls stay independent of it.
type Manager struct {
	checker    *readiness.Checker
	launcher   *launch.Launcher
	completion signal.Channel
	selections *selection.FileStore
	store      storage.Store

	checkSem *semaphore.Weighted
	now      func() time.Time

	mu        sync.Mutex
	state     State
	sessionID string
}

// NewManager wires the orchestrator over its collaborators.
// checkConcurrency bounds simultaneous readiness checks; values < 1 use
// the default.
func NewManager(checker *readiness.Checker, launcher *launch.Launcher, completion signal.Channel, selections *selection.FileStore, store storage.Store, checkConcurrency int) (*Manager, error) {
	if checker == nil {
		return nil, fmt.Errorf("readiness checker is required")
	}
	if launcher == nil {
		return nil, fmt.Errorf("launcher is required")
	}
	if completion == nil {
		return nil, fmt.Errorf("completion channel is required")
	}
	if selections == nil {
		return nil, fmt.Errorf("selection store is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if checkConcurrency < 1 {
		checkConcurrency = defaultCheckConcurrency
	}
	return &Manager{
		checker:    checker,
		launcher:   launcher,
		completion: completion,
		selections: selections,
		store:      store,
		checkSem:   semaphore.NewWeighted(int64(checkConcurrency)),
		now:        time.Now,
		state:      StateIdle,
	}, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionID returns the id of the session begun by the last selection.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// CheckReadiness runs the hardware probe sequence for a selection.
//
// A selection is the universal reset: whatever the current state, it moves
// to checking and a fresh session id is minted. When gameNumber is 0 the
// last persisted selection decides the car step's applicability; with no
// persisted selection the car step is skipped.
//
// The probe sequence blocks for up to the per-step timeouts; concurrent
// checks are bounded by the manager's semaphore so slow hardware cannot
// pile up workers, and unrelated requests (leaderboard, completion polls)
// are never held up.
func (m *Manager) CheckReadiness(ctx context.Context, gameNumber int) (readiness.Report, error) {
	if err := m.checkSem.Acquire(ctx, 1); err != nil {
		return readiness.Report{}, fmt.Errorf("acquire readiness slot: %w", err)
	}
	defer m.checkSem.Release(1)

	if gameNumber < 1 || gameNumber > 3 {
		gameNumber = 0
		if sel, err := m.selections.Load(); err == nil {
			gameNumber = sel.GameNumber
		}
	}

	sessionID := uuid.NewString()
	m.setState(StateChecking, sessionID)
	log.Printf("readiness check started session=%s game=%d", sessionID, gameNumber)

	report := m.checker.Check(ctx, gameNumber)

	if report.Success {
		m.setState(StateReady, sessionID)
	} else {
		m.setState(StateIdle, sessionID)
	}
	log.Printf("readiness check finished session=%s game=%d success=%t", sessionID, gameNumber, report.Success)
	return report, nil
}

// StartGame validates and launches the selected game.
//
// Selection and launch are decoupled events: an operator can re-check
// readiness without restarting a launch and vice versa, so StartGame does
// not require a prior passing check. On success the state moves through
// launched to awaiting_completion with no blocking wait.
func (m *Manager) StartGame(ctx context.Context, gameNumber, levelNumber int) error {
	_, span := otel.Tracer("console/session").Start(ctx, "session.start_game")
	defer span.End()
	span.SetAttributes(attribute.Int("game_number", gameNumber), attribute.Int("level_number", levelNumber))

	if err := m.launcher.Launch(gameNumber, levelNumber); err != nil {
		return err
	}

	m.mu.Lock()
	if m.sessionID == "" {
		m.sessionID = uuid.NewString()
	}
	// The launcher never blocks on the game process, so the launched
	// session is immediately awaiting its completion signal.
	m.state = StateAwaitingCompletion
	sessionID := m.sessionID
	m.mu.Unlock()

	log.Printf("session launched session=%s game=%d level=%d", sessionID, gameNumber, levelNumber)
	return nil
}

// StartLegacyGame runs the preparation scripts inline and then launches
// the fixed selection. Prep failures are logged and reported in the
// returned steps but never block the launch; the legacy endpoints predate
// the readiness report and always started the game.
func (m *Manager) StartLegacyGame(ctx context.Context, gameNumber, levelNumber int) ([]readiness.Step, error) {
	steps := m.checker.Prepare(ctx, gameNumber)
	for _, step := range steps {
		if !step.OK {
			log.Printf("legacy prep failed step=%s message=%s", step.Name, step.Message)
		}
	}
	if err := m.StartGame(ctx, gameNumber, levelNumber); err != nil {
		return steps, err
	}
	return steps, nil
}

// PollCompletion consumes the completion signal if present.
// The signal is one-shot: after a poll returns true, later polls return
// false until the game process writes it again.
func (m *Manager) PollCompletion() (bool, error) {
	done, err := m.completion.TakeIfSet()
	if err != nil {
		return false, apperrors.Wrap(apperrors.KindPersistence, "poll completion signal", err)
	}
	return done, nil
}

// SubmitScore records a finished round and settles the session.
//
// The external game process is the source of truth for "game over", so a
// score is accepted whether or not completion was ever polled. The store
// appends the play and reconciles the best score atomically; any store
// failure rolls the whole submission back and surfaces as a typed error.
func (m *Manager) SubmitScore(ctx context.Context, tokenID int64, gameNumber, levelNumber int, score int64) error {
	ctx, span := otel.Tracer("console/session").Start(ctx, "session.submit_score")
	defer span.End()
	span.SetAttributes(attribute.Int64("token_id", tokenID), attribute.Int("game_number", gameNumber))

	now := m.now()
	play := storage.GamePlay{
		TokenID:     tokenID,
		GameNumber:  gameNumber,
		LevelNumber: levelNumber,
		Score:       score,
		BeginAt:     now,
		EndAt:       now,
	}
	if err := m.store.SubmitScore(ctx, play); err != nil {
		return apperrors.Wrap(apperrors.KindStore, "submit score", err)
	}

	m.mu.Lock()
	// Scoring settles the session; the console is immediately ready for
	// the next player.
	m.state = StateIdle
	sessionID := m.sessionID
	m.mu.Unlock()

	log.Printf("score submitted session=%s token=%d game=%d level=%d score=%d", sessionID, tokenID, gameNumber, levelNumber, score)
	return nil
}

// Leaderboard returns the per-player best-score totals, highest first.
func (m *Manager) Leaderboard(ctx context.Context) ([]storage.LeaderboardEntry, error) {
	entries, err := m.store.Leaderboard(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStore, "load leaderboard", err)
	}
	return entries, nil
}

func (m *Manager) setState(state State, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.sessionID = sessionID
}
