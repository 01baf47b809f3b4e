// Package console parses console command flags and starts the kiosk runtime.
package console

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	entrypoint "github.com/flycamp/console/internal/platform/cmd"
	"github.com/flycamp/console/internal/services/console/app"
	"github.com/flycamp/console/internal/services/console/launch"
	"github.com/flycamp/console/internal/services/console/readiness"
	"github.com/flycamp/console/internal/services/console/rfid"
	"github.com/flycamp/console/internal/services/console/script"
	"github.com/flycamp/console/internal/services/console/selection"
	"github.com/flycamp/console/internal/services/console/session"
	"github.com/flycamp/console/internal/services/console/signal"
	"github.com/flycamp/console/internal/services/console/sound"
	storagesqlite "github.com/flycamp/console/internal/services/console/storage/sqlite"
)

// Config holds console command configuration.
type Config struct {
	Port   int    `env:"FLYCAMP_CONSOLE_PORT" envDefault:"5000"`
	DBPath string `env:"FLYCAMP_CONSOLE_DB_PATH" envDefault:"data/console.db"`

	// Hand-off files shared with the game scripts.
	TokenFile      string `env:"FLYCAMP_RFID_TOKEN_FILE" envDefault:"rfid_token.txt"`
	SelectionFile  string `env:"FLYCAMP_SELECTION_FILE" envDefault:"game_meta.json"`
	CompletionFlag string `env:"FLYCAMP_COMPLETION_FLAG" envDefault:"game_done.flag"`

	// SoundDir holds the cue mp3 files; empty disables audio.
	SoundDir string `env:"FLYCAMP_SOUND_DIR"`

	// Interpreter runs every collaborator and game script.
	Interpreter string `env:"FLYCAMP_SCRIPT_INTERPRETER" envDefault:"python3"`

	RFIDScript  string `env:"FLYCAMP_RFID_SCRIPT" envDefault:"scripts/get_id.py"`
	NodesScript string `env:"FLYCAMP_NODES_SCRIPT" envDefault:"scripts/prepare_nodes.py"`
	CarScript   string `env:"FLYCAMP_CAR_SCRIPT" envDefault:"scripts/prepare_car.py"`
	DroneScript string `env:"FLYCAMP_DRONE_SCRIPT" envDefault:"scripts/drone_ready.py"`

	HoverScript string `env:"FLYCAMP_HOVER_SCRIPT" envDefault:"scripts/hoverandseek.py"`
	HuesScript  string `env:"FLYCAMP_HUES_SCRIPT" envDefault:"scripts/huestheboss.py"`
	ChaosScript string `env:"FLYCAMP_CHAOS_SCRIPT" envDefault:"scripts/colourchaos.py"`

	DroneURI             string        `env:"FLYCAMP_DRONE_URI" envDefault:"radio://0/80/2M/E7E7E7E7E7"`
	PrepareTimeout       time.Duration `env:"FLYCAMP_PREPARE_TIMEOUT" envDefault:"40s"`
	DronePositionTimeout time.Duration `env:"FLYCAMP_DRONE_POS_TIMEOUT" envDefault:"12s"`

	// CheckConcurrency bounds simultaneous readiness checks.
	CheckConcurrency int `env:"FLYCAMP_CHECK_CONCURRENCY" envDefault:"2"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The console HTTP port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The console SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the console kiosk service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceConsole, func(ctx context.Context) error {
		server, cleanup, err := build(cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		return server.Serve(ctx)
	})
}

// build assembles the console server from its configuration.
func build(cfg Config) (*app.Server, func(), error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := storagesqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open console store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Printf("close console store: %v", err)
		}
	}

	selections, err := selection.NewFileStore(cfg.SelectionFile)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	completion, err := signal.NewFileMarker(cfg.CompletionFlag)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	runner := script.ExecRunner{Interpreter: cfg.Interpreter}
	checker, err := readiness.NewChecker(runner, readiness.Config{
		NodesScript:          cfg.NodesScript,
		CarScript:            cfg.CarScript,
		DroneScript:          cfg.DroneScript,
		DroneURI:             cfg.DroneURI,
		PrepareTimeout:       cfg.PrepareTimeout,
		DronePositionTimeout: cfg.DronePositionTimeout,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	launcher, err := launch.NewLauncher(
		script.ExecSpawner{Interpreter: cfg.Interpreter},
		selections,
		completion,
		map[launch.Game]string{
			launch.GameHoverAndSeek: cfg.HoverScript,
			launch.GameHuesTheBoss:  cfg.HuesScript,
			launch.GameColourChaos:  cfg.ChaosScript,
		},
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	sessions, err := session.NewManager(checker, launcher, completion, selections, store, cfg.CheckConcurrency)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var sounds sound.Player = sound.NopPlayer{}
	if cfg.SoundDir != "" {
		sounds = sound.Mpg123Player{Dir: cfg.SoundDir}
	}

	handlers, err := app.NewHandlers(
		sessions,
		store,
		rfid.ScriptScanner{Runner: runner, Path: cfg.RFIDScript},
		rfid.TokenFile{Path: cfg.TokenFile},
		sounds,
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	server, err := app.New(cfg.Port, handlers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return server, cleanup, nil
}
