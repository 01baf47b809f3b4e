package launch

import (
	"path/filepath"
	"testing"

	apperrors "github.com/flycamp/console/internal/platform/errors"
	"github.com/flycamp/console/internal/services/console/selection"
	"github.com/flycamp/console/internal/services/console/signal"
)

type fakeSpawner struct {
	spawned []string
	err     error
}

func (f *fakeSpawner) Spawn(path string, _ ...string) error {
	if f.err != nil {
		return f.err
	}
	f.spawned = append(f.spawned, path)
	return nil
}

func TestResolveRoutingTable(t *testing.T) {
	cases := []struct {
		game, level int
		want        Game
	}{
		{1, 1, GameHoverAndSeek},
		{1, 2, GameHoverAndSeek},
		{2, 1, GameHuesTheBoss},
		{2, 2, GameColourChaos},
		{3, 1, GameColourChaos},
		{3, 2, GameColourChaos},
	}
	for _, tc := range cases {
		got, err := Resolve(tc.game, tc.level)
		if err != nil {
			t.Fatalf("resolve (%d,%d): %v", tc.game, tc.level, err)
		}
		if got != tc.want {
			t.Fatalf("resolve (%d,%d): expected %s, got %s", tc.game, tc.level, tc.want, got)
		}
	}
}

func TestResolveRejectsUnknownPairs(t *testing.T) {
	cases := []struct{ game, level int }{
		{0, 1}, {1, 3}, {2, 3}, {4, 1}, {3, 0}, {-1, -1},
	}
	for _, tc := range cases {
		_, err := Resolve(tc.game, tc.level)
		if apperrors.KindOf(err) != apperrors.KindInvalidSelection {
			t.Fatalf("resolve (%d,%d): expected invalid_selection, got %v", tc.game, tc.level, err)
		}
	}
}

func TestLaunchInvalidSelectionLeavesStateUntouched(t *testing.T) {
	fixture := newFixture(t)
	if err := fixture.completion.Set(); err != nil {
		t.Fatalf("set completion: %v", err)
	}
	if err := fixture.selections.Save(selection.Selection{GameNumber: 1, LevelNumber: 1}); err != nil {
		t.Fatalf("seed selection: %v", err)
	}

	err := fixture.launcher.Launch(7, 7)
	if apperrors.KindOf(err) != apperrors.KindInvalidSelection {
		t.Fatalf("expected invalid_selection, got %v", err)
	}

	// The stale completion signal must survive an invalid launch.
	taken, err := fixture.completion.TakeIfSet()
	if err != nil {
		t.Fatalf("take completion: %v", err)
	}
	if !taken {
		t.Fatal("expected completion signal preserved")
	}

	sel, err := fixture.selections.Load()
	if err != nil {
		t.Fatalf("load selection: %v", err)
	}
	if sel.GameNumber != 1 || sel.LevelNumber != 1 {
		t.Fatalf("expected selection unchanged, got %+v", sel)
	}
	if len(fixture.spawner.spawned) != 0 {
		t.Fatal("expected no spawn for invalid selection")
	}
}

func TestLaunchClearsStaleCompletionSignal(t *testing.T) {
	fixture := newFixture(t)
	if err := fixture.completion.Set(); err != nil {
		t.Fatalf("set completion: %v", err)
	}

	if err := fixture.launcher.Launch(1, 1); err != nil {
		t.Fatalf("launch: %v", err)
	}

	taken, err := fixture.completion.TakeIfSet()
	if err != nil {
		t.Fatalf("take completion: %v", err)
	}
	if taken {
		t.Fatal("expected stale completion signal cleared by launch")
	}
}

func TestLaunchPersistsSelectionAndSpawns(t *testing.T) {
	fixture := newFixture(t)

	if err := fixture.launcher.Launch(2, 1); err != nil {
		t.Fatalf("launch: %v", err)
	}

	sel, err := fixture.selections.Load()
	if err != nil {
		t.Fatalf("load selection: %v", err)
	}
	if sel.GameNumber != 2 || sel.LevelNumber != 1 {
		t.Fatalf("expected (2,1) persisted, got %+v", sel)
	}
	if len(fixture.spawner.spawned) != 1 || fixture.spawner.spawned[0] != "scripts/huestheboss.py" {
		t.Fatalf("expected hues script spawned, got %v", fixture.spawner.spawned)
	}
}

func TestLaunchSpawnFailureAborts(t *testing.T) {
	fixture := newFixture(t)
	fixture.spawner.err = apperrors.E(apperrors.KindSpawnFailed, "start failed")

	err := fixture.launcher.Launch(3, 1)
	if apperrors.KindOf(err) != apperrors.KindSpawnFailed {
		t.Fatalf("expected spawn_failed, got %v", err)
	}
}

func TestLaunchMissingScriptPathIsUnavailable(t *testing.T) {
	fixture := newFixture(t)
	fixture.launcher.scriptPaths = map[Game]string{}

	err := fixture.launcher.Launch(1, 1)
	if apperrors.KindOf(err) != apperrors.KindCollaboratorUnavailable {
		t.Fatalf("expected collaborator_unavailable, got %v", err)
	}
}

type fixture struct {
	launcher   *Launcher
	spawner    *fakeSpawner
	selections *selection.FileStore
	completion signal.Channel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	selections, err := selection.NewFileStore(filepath.Join(dir, "game_meta.json"))
	if err != nil {
		t.Fatalf("new selection store: %v", err)
	}
	completion, err := signal.NewFileMarker(filepath.Join(dir, "game_done.flag"))
	if err != nil {
		t.Fatalf("new completion marker: %v", err)
	}
	spawner := &fakeSpawner{}
	launcher, err := NewLauncher(spawner, selections, completion, map[Game]string{
		GameHoverAndSeek: "scripts/hoverandseek.py",
		GameHuesTheBoss:  "scripts/huestheboss.py",
		GameColourChaos:  "scripts/colourchaos.py",
	})
	if err != nil {
		t.Fatalf("new launcher: %v", err)
	}
	return &fixture{launcher: launcher, spawner: spawner, selections: selections, completion: completion}
}
