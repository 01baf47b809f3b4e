// Package script executes the hardware collaborator scripts.
//
// Every readiness probe and game launch in this system is an external
// script. Probes run with a bounded wall-clock timeout and report their
// combined output; game scripts are spawned detached and never awaited.
package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/flycamp/console/internal/platform/errors"
)

// Result is the outcome of one bounded collaborator invocation.
type Result struct {
	OK     bool
	Output string
}

// Runner executes a collaborator script and waits for it within a timeout.
type Runner interface {
	Run(ctx context.Context, path string, args []string, timeout time.Duration) (Result, error)
}

// Spawner starts a game script detached from the console process.
// Ownership transfers to the OS process table; there is no handle to wait
// on and no kill capability.
type Spawner interface {
	Spawn(path string, args ...string) error
}

// ExecRunner runs collaborator scripts through an interpreter, matching how
// the hardware team ships them (python3 by default).
type ExecRunner struct {
	// Interpreter is the executable used to run scripts, e.g. "python3".
	// When empty the script path is executed directly.
	Interpreter string
}

// Run executes the script and returns its outcome.
//
// A missing script is a typed collaborator_unavailable error: "hardware
// check unavailable" must stay distinguishable from "hardware said no".
// Exceeding the timeout is a typed collaborator_timeout error carrying a
// message that names the timeout, not the raw process state.
func (r ExecRunner) Run(ctx context.Context, path string, args []string, timeout time.Duration) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, apperrors.E(apperrors.KindCollaboratorUnavailable, "script path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return Result{}, apperrors.Wrap(apperrors.KindCollaboratorUnavailable, fmt.Sprintf("script not found: %s", path), err)
	}
	if timeout <= 0 {
		timeout = 40 * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name, argv := r.command(path, args)
	cmd := exec.CommandContext(runCtx, name, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Result{}, apperrors.E(apperrors.KindCollaboratorTimeout, fmt.Sprintf("timeout after %s", timeout))
	}

	output := strings.TrimSpace(combineOutput(stdout.String(), stderr.String()))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit is a hardware rejection, not an execution failure.
			return Result{OK: false, Output: output}, nil
		}
		return Result{}, apperrors.Wrap(apperrors.KindCollaboratorUnavailable, fmt.Sprintf("run script %s", path), err)
	}
	return Result{OK: true, Output: output}, nil
}

func (r ExecRunner) command(path string, args []string) (string, []string) {
	if strings.TrimSpace(r.Interpreter) == "" {
		return path, args
	}
	return r.Interpreter, append([]string{path}, args...)
}

func combineOutput(stdout, stderr string) string {
	if stderr == "" {
		return stdout
	}
	if stdout == "" {
		return stderr
	}
	return stdout + "\n" + stderr
}

// ExecSpawner starts game scripts with inherited stdio and releases them.
type ExecSpawner struct {
	// Interpreter is the executable used to run scripts, e.g. "python3".
	Interpreter string
}

// Spawn starts the script detached. It returns a typed spawn_failed error
// when the process cannot be created; after a successful start the process
// is released and never awaited.
func (s ExecSpawner) Spawn(path string, args ...string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return apperrors.E(apperrors.KindSpawnFailed, "script path is required")
	}

	name := path
	argv := args
	if strings.TrimSpace(s.Interpreter) != "" {
		name = s.Interpreter
		argv = append([]string{path}, args...)
	}

	cmd := exec.Command(name, argv...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return apperrors.Wrap(apperrors.KindSpawnFailed, fmt.Sprintf("start %s", path), err)
	}
	// Reap the child in the background so it never turns into a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}
