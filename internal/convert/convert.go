// Package convert runs one track-to-plan conversion: parse the track, keep the
// points inside a box, build the plan and write it out.
//
// Every failure comes back as a *StageError so callers can tell which step
// failed; ExitCode maps those to the process exit codes scripts rely on.
package convert

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/skypies/geo"

	"roverplan/internal/plan"
	"roverplan/internal/track"
	"roverplan/internal/tracklog"
)

type Stage int

const (
	StageArgs Stage = iota + 1
	StageParse
	StageBuild
	StageWrite
)

func (s Stage) String() string {
	switch s {
	case StageArgs:
		return "args"
	case StageParse:
		return "parse"
	case StageBuild:
		return "build"
	case StageWrite:
		return "write"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Exit codes.
const (
	ExitOK        = 0
	ExitUsage     = 1
	ExitInput     = 2
	ExitBuild     = 4
	ExitWriteFail = 5
)

type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ErrNoTrackPoints is returned (at StageParse) when the input is readable but
// holds no usable points.
var ErrNoTrackPoints = errors.New("no valid track points")

// ExitCode maps an error returned by Run (or Job.Validate) to an exit code.
// Errors that are not *StageError are treated as usage errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var se *StageError
	if !errors.As(err, &se) {
		return ExitUsage
	}
	switch se.Stage {
	case StageParse:
		return ExitInput
	case StageBuild:
		return ExitBuild
	case StageWrite:
		return ExitWriteFail
	default:
		return ExitUsage
	}
}

type Job struct {
	InputPath  string
	Stride     int
	CornerA    geo.Latlong
	CornerB    geo.Latlong
	OutputPath string
}

// Validate checks the job before any I/O. Corners are not range checked: a
// box that matches nothing is the graceful "no points in box" outcome.
func (j Job) Validate() error {
	if strings.TrimSpace(j.InputPath) == "" {
		return &StageError{StageArgs, errors.New("input path is empty")}
	}
	if strings.TrimSpace(j.OutputPath) == "" {
		return &StageError{StageArgs, errors.New("output path is empty")}
	}
	if j.Stride < 1 {
		return &StageError{StageArgs, fmt.Errorf("stride must be a positive integer, got %d", j.Stride)}
	}
	return nil
}

// Outcome describes a finished run.
type Outcome struct {
	Format   tracklog.Format
	Parsed   int
	Warnings int
	InBox    int
	Box      track.Box
	// NoPointsInBox is set when nothing survived the box filter. No plan is
	// built and no file is written; this is not an error.
	NoPointsInBox bool
	Waypoints     int
	Home          [3]float64
}

// Run executes job. Per-point warnings from the reader are printed to warn
// (which may be nil to discard them).
func Run(job Job, opts plan.Options, warn *log.Logger) (Outcome, error) {
	if warn == nil {
		warn = log.New(io.Discard, "", 0)
	}
	if err := job.Validate(); err != nil {
		return Outcome{}, err
	}

	res, format, err := tracklog.ParseFile(job.InputPath)
	if err != nil {
		return Outcome{}, &StageError{StageParse, err}
	}
	for _, w := range res.Warnings {
		warn.Printf("warning: %s", w)
	}
	out := Outcome{
		Format:   format,
		Parsed:   len(res.Points),
		Warnings: len(res.Warnings),
		Box:      track.NewBox(job.CornerA, job.CornerB),
	}
	if len(res.Points) == 0 {
		return out, &StageError{StageParse, fmt.Errorf("%w in %s", ErrNoTrackPoints, job.InputPath)}
	}

	inBox := res.Points.Within(out.Box)
	out.InBox = len(inBox)
	if len(inBox) == 0 {
		out.NoPointsInBox = true
		return out, nil
	}

	p, err := plan.Build(inBox, job.Stride, opts)
	if err != nil {
		return out, &StageError{StageBuild, err}
	}
	out.Waypoints = len(p.Mission.Items)
	out.Home = p.Mission.PlannedHomePosition

	if err := plan.Write(job.OutputPath, p); err != nil {
		return out, &StageError{StageWrite, err}
	}
	return out, nil
}
