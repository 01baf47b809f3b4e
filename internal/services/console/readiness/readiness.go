// Package readiness runs the pre-game hardware checks.
package readiness

import (
	"context"
	"fmt"
	"time"

	"github.com/flycamp/console/internal/services/console/script"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Step is the outcome of one readiness probe.
type Step struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Report aggregates the fixed probe sequence for one check invocation.
// Success is the AND over all steps; the full step list is always present
// so an operator can see which subsystem is unready.
type Report struct {
	Success    bool   `json:"success"`
	GameNumber int    `json:"game_number,omitempty"`
	Steps      []Step `json:"steps"`
}

// Step names, in the order they always run.
const (
	StepOperatorInput = "Joystick/Gesture"
	StepNodes         = "Nodes"
	StepCar           = "Car"
	StepDrone         = "Drone"
)

// carSkippedMessage reports the car probe as inapplicable outside game 2.
const carSkippedMessage = "Skipped (not required for this game)"

// Config holds the collaborator scripts and bounds for the probe sequence.
type Config struct {
	NodesScript string
	CarScript   string
	DroneScript string
	// DroneURI is the radio endpoint handed to the drone check.
	DroneURI string
	// PrepareTimeout bounds each preparation script invocation.
	PrepareTimeout time.Duration
	// DronePositionTimeout is the in-script wait the drone check is told to
	// apply before giving up on a position fix.
	DronePositionTimeout time.Duration
}

// Checker runs the four-step readiness sequence.
type Checker struct {
	runner script.Runner
	cfg    Config
}

// NewChecker returns a checker probing through runner.
func NewChecker(runner script.Runner, cfg Config) (*Checker, error) {
	if runner == nil {
		return nil, fmt.Errorf("script runner is required")
	}
	if cfg.PrepareTimeout <= 0 {
		cfg.PrepareTimeout = 40 * time.Second
	}
	if cfg.DronePositionTimeout <= 0 {
		cfg.DronePositionTimeout = 12 * time.Second
	}
	return &Checker{runner: runner, cfg: cfg}, nil
}

// Check runs all four probes in fixed order, never short-circuiting: a
// failed node prep still lets the drone check run so the report names every
// unready subsystem at once. gameNumber selects the car step's
// applicability; pass 0 when the game is unknown.
func (c *Checker) Check(ctx context.Context, gameNumber int) Report {
	ctx, span := otel.Tracer("console/readiness").Start(ctx, "readiness.check")
	defer span.End()
	span.SetAttributes(attribute.Int("game_number", gameNumber))

	steps := make([]Step, 0, 4)

	// Operator input hardware is not wired up yet; the step is a
	// placeholder so the report shape stays stable when it arrives.
	steps = append(steps, Step{Name: StepOperatorInput, OK: true, Message: "Simulated OK"})

	steps = append(steps, c.runProbe(ctx, StepNodes, c.cfg.NodesScript, nil))

	if gameNumber == 2 {
		steps = append(steps, c.runProbe(ctx, StepCar, c.cfg.CarScript, nil))
	} else {
		steps = append(steps, Step{Name: StepCar, OK: true, Message: carSkippedMessage})
	}

	steps = append(steps, c.runProbe(ctx, StepDrone, c.cfg.DroneScript, c.droneArgs()))

	success := true
	for _, step := range steps {
		if !step.OK {
			success = false
		}
	}
	span.SetAttributes(attribute.Bool("success", success))
	return Report{Success: success, GameNumber: gameNumber, Steps: steps}
}

// Prepare runs only the preparation scripts the legacy launch paths use:
// the node prep, plus the car prep for game 2. Unlike Check it carries no
// verdict; callers log the steps and proceed either way.
func (c *Checker) Prepare(ctx context.Context, gameNumber int) []Step {
	ctx, span := otel.Tracer("console/readiness").Start(ctx, "readiness.prepare")
	defer span.End()
	span.SetAttributes(attribute.Int("game_number", gameNumber))

	steps := []Step{c.runProbe(ctx, StepNodes, c.cfg.NodesScript, nil)}
	if gameNumber == 2 {
		steps = append(steps, c.runProbe(ctx, StepCar, c.cfg.CarScript, nil))
	}
	return steps
}

func (c *Checker) runProbe(ctx context.Context, name, path string, args []string) Step {
	result, err := c.runner.Run(ctx, path, args, c.cfg.PrepareTimeout)
	if err != nil {
		return Step{Name: name, OK: false, Message: err.Error()}
	}
	return Step{Name: name, OK: result.OK, Message: result.Output}
}

func (c *Checker) droneArgs() []string {
	return []string{
		"--uri", c.cfg.DroneURI,
		"--name", "drone",
		"--pos-timeout", fmt.Sprintf("%d", int(c.cfg.DronePositionTimeout.Seconds())),
		"--require-pos",
	}
}
