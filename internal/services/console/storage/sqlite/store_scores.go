package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flycamp/console/internal/services/console/storage"
)

// SubmitScore appends a GamePlay row and upserts the PlayerBest for the same
// triple in one transaction. The upsert relies on the unique index over
// (token_id, game_number, level_number) plus a conditional update, so two
// near-simultaneous submissions can never create a second row or replace a
// higher score with a lower one.
func (s *Store) SubmitScore(ctx context.Context, play storage.GamePlay) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if play.TokenID <= 0 {
		return fmt.Errorf("token id is required")
	}
	if play.GameNumber <= 0 || play.LevelNumber <= 0 {
		return fmt.Errorf("game and level numbers are required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submit transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO game_plays (token_id, game_number, level_number, score, begin_timestamp, end_timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		play.TokenID,
		play.GameNumber,
		play.LevelNumber,
		play.Score,
		toUnixSeconds(play.BeginAt),
		toUnixSeconds(play.EndAt),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert game play: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO player_bests (token_id, game_number, level_number, highest_score, timestamp_achieved)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (token_id, game_number, level_number) DO UPDATE SET
		     highest_score = excluded.highest_score,
		     timestamp_achieved = excluded.timestamp_achieved
		 WHERE excluded.highest_score > player_bests.highest_score`,
		play.TokenID,
		play.GameNumber,
		play.LevelNumber,
		play.Score,
		toUnixSeconds(play.EndAt),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert player best: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submit transaction: %w", err)
	}
	return nil
}

// Leaderboard returns per-player sums of best scores, highest first.
func (s *Store) Leaderboard(ctx context.Context) ([]storage.LeaderboardEntry, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT pr.player_name, COALESCE(SUM(pb.highest_score), 0) AS total_score
		 FROM player_bests AS pb
		 JOIN player_registrations AS pr ON pb.token_id = pr.token_id
		 GROUP BY pr.player_name
		 ORDER BY total_score DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []storage.LeaderboardEntry
	for rows.Next() {
		var entry storage.LeaderboardEntry
		if err := rows.Scan(&entry.Name, &entry.Score); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// PlayerBest returns the stored best for a triple.
// Returns storage.ErrNotFound when no score was ever submitted for it.
func (s *Store) PlayerBest(ctx context.Context, tokenID int64, gameNumber, levelNumber int) (storage.PlayerBest, error) {
	if s == nil || s.sqlDB == nil {
		return storage.PlayerBest{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT token_id, game_number, level_number, highest_score, timestamp_achieved
		 FROM player_bests
		 WHERE token_id = ? AND game_number = ? AND level_number = ?`,
		tokenID, gameNumber, levelNumber,
	)
	var best storage.PlayerBest
	var achievedAt int64
	err := row.Scan(&best.TokenID, &best.GameNumber, &best.LevelNumber, &best.HighestScore, &achievedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.PlayerBest{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.PlayerBest{}, fmt.Errorf("get player best: %w", err)
	}
	best.AchievedAt = fromUnixSeconds(achievedAt)
	return best, nil
}

// CountPlays returns the number of GamePlay rows for a triple.
func (s *Store) CountPlays(ctx context.Context, tokenID int64, gameNumber, levelNumber int) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_plays WHERE token_id = ? AND game_number = ? AND level_number = ?`,
		tokenID, gameNumber, levelNumber,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count plays: %w", err)
	}
	return count, nil
}
