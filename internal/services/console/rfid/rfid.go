// Package rfid wraps the RFID reader collaborator script and the token
// hand-off file used by the game scripts.
package rfid

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/flycamp/console/internal/platform/errors"
	"github.com/flycamp/console/internal/services/console/script"
)

const scanTimeout = 10 * time.Second

// tokenMarker prefixes the token id in the reader script's stdout.
const tokenMarker = "Token ID:"

// Scanner reads the token id from the tag currently on the reader.
type Scanner interface {
	Scan(ctx context.Context) (int64, error)
}

// ScriptScanner runs the reader collaborator script and parses its output.
type ScriptScanner struct {
	Runner script.Runner
	// Path is the reader script, e.g. get_id.py next to the console binary.
	Path string
}

// Scan invokes the reader script and extracts the token id. A script
// failure, a timeout, or output without a token marker all surface as
// typed errors so the caller can distinguish "no tag" from "no reader".
func (s ScriptScanner) Scan(ctx context.Context) (int64, error) {
	if s.Runner == nil {
		return 0, apperrors.E(apperrors.KindCollaboratorUnavailable, "rfid runner is not configured")
	}
	result, err := s.Runner.Run(ctx, s.Path, nil, scanTimeout)
	if err != nil {
		return 0, err
	}
	if !result.OK {
		return 0, apperrors.E(apperrors.KindUnavailable, "rfid reader script failed")
	}
	tokenID, ok := parseTokenID(result.Output)
	if !ok {
		return 0, apperrors.E(apperrors.KindNotFound, "no token id in reader output")
	}
	return tokenID, nil
}

func parseTokenID(output string) (int64, bool) {
	idx := strings.Index(output, tokenMarker)
	if idx == -1 {
		return 0, false
	}
	rest := strings.TrimSpace(output[idx+len(tokenMarker):])
	if newline := strings.IndexAny(rest, "\r\n"); newline != -1 {
		rest = strings.TrimSpace(rest[:newline])
	}
	tokenID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || tokenID <= 0 {
		return 0, false
	}
	return tokenID, true
}

// TokenFile persists the scanned token id for the game scripts to read.
type TokenFile struct {
	Path string
}

// Write stores the token id as plain text, overwriting any previous one.
func (f TokenFile) Write(tokenID int64) error {
	if strings.TrimSpace(f.Path) == "" {
		return apperrors.E(apperrors.KindPersistence, "token file path is required")
	}
	if tokenID <= 0 {
		return apperrors.E(apperrors.KindInvalidInput, "token id is required")
	}
	payload := []byte(fmt.Sprintf("%d", tokenID))
	if err := os.WriteFile(f.Path, payload, 0o644); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "write token file", err)
	}
	return nil
}
