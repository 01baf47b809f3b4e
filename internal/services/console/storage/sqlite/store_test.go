package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/flycamp/console/internal/services/console/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenAppliesWriterPragmas(t *testing.T) {
	store := openTempStore(t)

	var journalMode string
	if err := store.sqlDB.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Fatalf("expected journal_mode wal, got %q", journalMode)
	}

	var busyTimeout int
	if err := store.sqlDB.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
		t.Fatalf("query busy_timeout: %v", err)
	}
	if busyTimeout != 5000 {
		t.Fatalf("expected busy_timeout 5000, got %d", busyTimeout)
	}
}

func TestGetPlayerNotRegistered(t *testing.T) {
	store := openTempStore(t)

	_, err := store.GetPlayer(context.Background(), 42)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegisterPlayerRoundTrip(t *testing.T) {
	store := openTempStore(t)

	if err := store.RegisterPlayer(context.Background(), storage.Player{TokenID: 7, Name: "Asha"}); err != nil {
		t.Fatalf("register player: %v", err)
	}
	player, err := store.GetPlayer(context.Background(), 7)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if player.Name != "Asha" {
		t.Fatalf("expected player name Asha, got %q", player.Name)
	}
}

func TestRegisterPlayerRenames(t *testing.T) {
	store := openTempStore(t)

	if err := store.RegisterPlayer(context.Background(), storage.Player{TokenID: 7, Name: "Asha"}); err != nil {
		t.Fatalf("register player: %v", err)
	}
	if err := store.RegisterPlayer(context.Background(), storage.Player{TokenID: 7, Name: "Asha K"}); err != nil {
		t.Fatalf("re-register player: %v", err)
	}
	player, err := store.GetPlayer(context.Background(), 7)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if player.Name != "Asha K" {
		t.Fatalf("expected renamed player, got %q", player.Name)
	}
}

func TestSubmitScoreKeepsFullHistoryAndMaxBest(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	scores := []int64{30, 80, 50, 80, 10}

	for _, score := range scores {
		play := storage.GamePlay{
			TokenID:     3,
			GameNumber:  1,
			LevelNumber: 2,
			Score:       score,
			BeginAt:     time.Now(),
			EndAt:       time.Now(),
		}
		if err := store.SubmitScore(ctx, play); err != nil {
			t.Fatalf("submit score %d: %v", score, err)
		}
	}

	count, err := store.CountPlays(ctx, 3, 1, 2)
	if err != nil {
		t.Fatalf("count plays: %v", err)
	}
	if count != int64(len(scores)) {
		t.Fatalf("expected %d plays, got %d", len(scores), count)
	}

	best, err := store.PlayerBest(ctx, 3, 1, 2)
	if err != nil {
		t.Fatalf("player best: %v", err)
	}
	if best.HighestScore != 80 {
		t.Fatalf("expected best 80, got %d", best.HighestScore)
	}
}

func TestSubmitScoreLowerScoreKeepsBestTimestamp(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	if err := store.SubmitScore(ctx, storage.GamePlay{TokenID: 5, GameNumber: 2, LevelNumber: 1, Score: 90, BeginAt: first, EndAt: first}); err != nil {
		t.Fatalf("submit first score: %v", err)
	}
	if err := store.SubmitScore(ctx, storage.GamePlay{TokenID: 5, GameNumber: 2, LevelNumber: 1, Score: 40, BeginAt: second, EndAt: second}); err != nil {
		t.Fatalf("submit second score: %v", err)
	}

	best, err := store.PlayerBest(ctx, 5, 2, 1)
	if err != nil {
		t.Fatalf("player best: %v", err)
	}
	if best.HighestScore != 90 {
		t.Fatalf("expected best 90, got %d", best.HighestScore)
	}
	if !best.AchievedAt.Equal(first) {
		t.Fatalf("expected original achievement time %v, got %v", first, best.AchievedAt)
	}
}

func TestSubmitScoreConcurrentSameTriple(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	now := time.Now()

	var wg sync.WaitGroup
	for _, score := range []int64{50, 60} {
		wg.Add(1)
		go func(score int64) {
			defer wg.Done()
			play := storage.GamePlay{TokenID: 9, GameNumber: 3, LevelNumber: 1, Score: score, BeginAt: now, EndAt: now}
			if err := store.SubmitScore(ctx, play); err != nil {
				t.Errorf("submit score %d: %v", score, err)
			}
		}(score)
	}
	wg.Wait()

	var rows int
	if err := store.sqlDB.QueryRow(
		"SELECT COUNT(*) FROM player_bests WHERE token_id = 9 AND game_number = 3 AND level_number = 1",
	).Scan(&rows); err != nil {
		t.Fatalf("count best rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected exactly one best row, got %d", rows)
	}

	best, err := store.PlayerBest(ctx, 9, 3, 1)
	if err != nil {
		t.Fatalf("player best: %v", err)
	}
	if best.HighestScore != 60 {
		t.Fatalf("expected best 60, got %d", best.HighestScore)
	}
}

func TestLeaderboardSumsAndOrders(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.RegisterPlayer(ctx, storage.Player{TokenID: 1, Name: "A"}); err != nil {
		t.Fatalf("register A: %v", err)
	}
	if err := store.RegisterPlayer(ctx, storage.Player{TokenID: 2, Name: "B"}); err != nil {
		t.Fatalf("register B: %v", err)
	}
	if err := store.RegisterPlayer(ctx, storage.Player{TokenID: 3, Name: "C"}); err != nil {
		t.Fatalf("register C: %v", err)
	}

	submissions := []storage.GamePlay{
		{TokenID: 1, GameNumber: 1, LevelNumber: 1, Score: 10, BeginAt: now, EndAt: now},
		{TokenID: 1, GameNumber: 2, LevelNumber: 1, Score: 5, BeginAt: now, EndAt: now},
		{TokenID: 2, GameNumber: 1, LevelNumber: 1, Score: 20, BeginAt: now, EndAt: now},
	}
	for _, play := range submissions {
		if err := store.SubmitScore(ctx, play); err != nil {
			t.Fatalf("submit score: %v", err)
		}
	}

	entries, err := store.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (C has no best), got %d", len(entries))
	}
	if entries[0].Name != "B" || entries[0].Score != 20 {
		t.Fatalf("expected B/20 first, got %s/%d", entries[0].Name, entries[0].Score)
	}
	if entries[1].Name != "A" || entries[1].Score != 15 {
		t.Fatalf("expected A/15 second, got %s/%d", entries[1].Name, entries[1].Score)
	}
}

func TestPlayerBestNotFound(t *testing.T) {
	store := openTempStore(t)

	_, err := store.PlayerBest(context.Background(), 1, 1, 1)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil && err != sql.ErrConnDone {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
