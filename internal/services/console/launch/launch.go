// Package launch validates a game selection and starts the game script.
package launch

import (
	"fmt"
	"log"

	apperrors "github.com/flycamp/console/internal/platform/errors"
	"github.com/flycamp/console/internal/services/console/script"
	"github.com/flycamp/console/internal/services/console/selection"
	"github.com/flycamp/console/internal/services/console/signal"
)

// Game identifies one of the installed game scripts.
type Game string

const (
	GameHoverAndSeek Game = "hoverandseek"
	GameHuesTheBoss  Game = "huestheboss"
	GameColourChaos  Game = "colourchaos"
)

type pair struct {
	game  int
	level int
}

// routing maps every valid (game, level) selection to its script.
// (2,2) launching colour chaos is a legacy alias kept for old UI builds.
var routing = map[pair]Game{
	{1, 1}: GameHoverAndSeek,
	{1, 2}: GameHoverAndSeek,
	{2, 1}: GameHuesTheBoss,
	{2, 2}: GameColourChaos,
	{3, 1}: GameColourChaos,
	{3, 2}: GameColourChaos,
}

// Resolve maps a selection to its game script identity.
// Returns a typed invalid_selection error for any pair outside the table.
func Resolve(gameNumber, levelNumber int) (Game, error) {
	game, ok := routing[pair{gameNumber, levelNumber}]
	if !ok {
		return "", apperrors.E(apperrors.KindInvalidSelection,
			fmt.Sprintf("invalid game/level selection: G%d L%d", gameNumber, levelNumber))
	}
	return game, nil
}

// Launcher starts game scripts after persisting the session selection.
type Launcher struct {
	spawner    script.Spawner
	selections *selection.FileStore
	completion signal.Channel
	// scriptPaths maps each game to its installed script path.
	scriptPaths map[Game]string
}

// NewLauncher wires a launcher over its collaborators.
func NewLauncher(spawner script.Spawner, selections *selection.FileStore, completion signal.Channel, scriptPaths map[Game]string) (*Launcher, error) {
	if spawner == nil {
		return nil, fmt.Errorf("spawner is required")
	}
	if selections == nil {
		return nil, fmt.Errorf("selection store is required")
	}
	if completion == nil {
		return nil, fmt.Errorf("completion channel is required")
	}
	return &Launcher{
		spawner:     spawner,
		selections:  selections,
		completion:  completion,
		scriptPaths: scriptPaths,
	}, nil
}

// Launch validates the selection, clears any stale completion signal,
// persists the selection, and starts the game script detached.
//
// Validation happens before any side effect: an invalid pair leaves the
// persisted selection and the completion signal untouched. A selection
// persistence failure degrades (the game can run without meta information)
// and only logs; a spawn failure aborts and is returned.
func (l *Launcher) Launch(gameNumber, levelNumber int) error {
	game, err := Resolve(gameNumber, levelNumber)
	if err != nil {
		return err
	}
	path, ok := l.scriptPaths[game]
	if !ok || path == "" {
		return apperrors.E(apperrors.KindCollaboratorUnavailable,
			fmt.Sprintf("no script installed for %s", game))
	}

	if err := l.completion.Clear(); err != nil {
		log.Printf("launch could not clear stale completion signal err=%v", err)
	}

	if err := l.selections.Save(selection.Selection{GameNumber: gameNumber, LevelNumber: levelNumber}); err != nil {
		log.Printf("launch could not persist selection game=%d level=%d err=%v", gameNumber, levelNumber, err)
	}

	if err := l.spawner.Spawn(path); err != nil {
		return err
	}
	log.Printf("game launched game=%d level=%d script=%s", gameNumber, levelNumber, path)
	return nil
}
