// Package sound plays the kiosk audio cues.
//
// Cues are a side effect, never part of a request's correctness contract:
// playback is asynchronous and failures only log.
package sound

import (
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Player plays a named audio cue without blocking the caller.
type Player interface {
	Play(name string)
}

// Mpg123Player shells out to mpg123 for each cue file under Dir.
type Mpg123Player struct {
	// Dir is the directory holding the cue mp3 files.
	Dir string
}

// Play starts playback of the cue in the background. A missing file or a
// failed player process is logged and otherwise ignored.
func (p Mpg123Player) Play(name string) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(p.Dir) == "" {
		return
	}
	path := filepath.Join(p.Dir, name)
	if _, err := os.Stat(path); err != nil {
		log.Printf("sound cue missing file=%s", path)
		return
	}
	go func() {
		if err := exec.Command("mpg123", "-q", path).Run(); err != nil {
			log.Printf("sound cue failed file=%s err=%v", path, err)
		}
	}()
}

// NopPlayer discards all cues. Used in tests and on kiosks without audio.
type NopPlayer struct{}

// Play does nothing.
func (NopPlayer) Play(string) {}
