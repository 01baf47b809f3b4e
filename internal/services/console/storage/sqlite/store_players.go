package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/flycamp/console/internal/services/console/storage"
)

// GetPlayer returns the player registered with the token id.
// Returns storage.ErrNotFound when the token is not registered.
func (s *Store) GetPlayer(ctx context.Context, tokenID int64) (storage.Player, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Player{}, fmt.Errorf("storage is not configured")
	}
	if tokenID <= 0 {
		return storage.Player{}, fmt.Errorf("token id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT token_id, player_name FROM player_registrations WHERE token_id = ?`,
		tokenID,
	)
	var player storage.Player
	err := row.Scan(&player.TokenID, &player.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Player{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Player{}, fmt.Errorf("get player: %w", err)
	}
	return player, nil
}

// RegisterPlayer inserts or renames a player registration.
func (s *Store) RegisterPlayer(ctx context.Context, player storage.Player) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if player.TokenID <= 0 {
		return fmt.Errorf("token id is required")
	}
	player.Name = strings.TrimSpace(player.Name)
	if player.Name == "" {
		return fmt.Errorf("player name is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO player_registrations (token_id, player_name)
		 VALUES (?, ?)
		 ON CONFLICT (token_id) DO UPDATE SET player_name = excluded.player_name`,
		player.TokenID,
		player.Name,
	)
	if err != nil {
		return fmt.Errorf("register player: %w", err)
	}
	return nil
}
