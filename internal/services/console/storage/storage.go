// Package storage defines the persistence contracts for the console service.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a missing row.
var ErrNotFound = errors.New("not found")

// Player is a registered arcade player, keyed by RFID token id.
// Registration happens out of band; the console only reads and seeds rows.
type Player struct {
	TokenID int64
	Name    string
}

// GamePlay is one completed round. Rows are append-only.
type GamePlay struct {
	TokenID     int64
	GameNumber  int
	LevelNumber int
	Score       int64
	BeginAt     time.Time
	EndAt       time.Time
}

// PlayerBest is the highest score for one (token, game, level) triple.
type PlayerBest struct {
	TokenID      int64
	GameNumber   int
	LevelNumber  int
	HighestScore int64
	AchievedAt   time.Time
}

// LeaderboardEntry is one player's total across all their best scores.
type LeaderboardEntry struct {
	Name  string
	Score int64
}

// PlayerStore persists player registrations.
type PlayerStore interface {
	// GetPlayer returns the player registered with the token id.
	// Returns ErrNotFound when the token is not registered.
	GetPlayer(ctx context.Context, tokenID int64) (Player, error)
	// RegisterPlayer inserts or renames a player registration.
	RegisterPlayer(ctx context.Context, player Player) error
}

// ScoreStore persists plays and best scores.
type ScoreStore interface {
	// SubmitScore appends a GamePlay row and upserts the PlayerBest for the
	// same triple in a single transaction. The best score only moves up.
	SubmitScore(ctx context.Context, play GamePlay) error
	// Leaderboard returns per-player sums of best scores, highest first.
	// Players without a best score are absent.
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)
	// PlayerBest returns the stored best for a triple.
	// Returns ErrNotFound when no score was ever submitted for it.
	PlayerBest(ctx context.Context, tokenID int64, gameNumber, levelNumber int) (PlayerBest, error)
	// CountPlays returns the number of GamePlay rows for a triple.
	CountPlays(ctx context.Context, tokenID int64, gameNumber, levelNumber int) (int64, error)
}

// Store combines the console persistence surfaces behind one handle.
type Store interface {
	PlayerStore
	ScoreStore
	Close() error
}
