// Package engine turns a clinic room program into a mixed-integer layout
// model, solves it and checks solved layouts against the layout rules.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/piwi3910/ClinicLayout/internal/mip"
	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

var (
	// ErrNoFeasibleLayout is returned when the solver proves the program
	// cannot be placed in the shell.
	ErrNoFeasibleLayout = errors.New("no feasible layout")
	// ErrNoSolution is returned when the solver stopped without a layout
	// or a proof of infeasibility, usually on timeout.
	ErrNoSolution = errors.New("solver found no layout")
	// ErrNoSolver is returned by New without a solver backend.
	ErrNoSolver = errors.New("no solver backend configured")
)

// Request is one layout job.
type Request struct {
	Shell   model.Shell
	Program []model.RoomRequest
	// ScalingParam overrides the treatment room count used for tier and
	// entry count selection when positive.
	ScalingParam int
	// MaxEntrances overrides the door slots per room when positive.
	MaxEntrances int
}

// Layouter builds and solves layout models.
type Layouter struct {
	settings model.LayoutSettings
	repo     *rules.Repository
	solver   mip.Solver
	logger   *slog.Logger
}

// New creates a Layouter. The settings are validated up front.
func New(settings model.LayoutSettings, repo *rules.Repository, solver mip.Solver) (*Layouter, error) {
	if solver == nil {
		return nil, ErrNoSolver
	}
	if repo == nil {
		return nil, errors.New("no rules repository")
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout settings: %w", err)
	}
	return &Layouter{
		settings: settings,
		repo:     repo,
		solver:   solver,
		logger:   slog.Default().With("component", "engine"),
	}, nil
}

// Settings returns the layouter's settings.
func (l *Layouter) Settings() model.LayoutSettings { return l.settings }

// ScalingParam returns the effective scaling parameter of a request.
func (l *Layouter) ScalingParam(req Request) int {
	switch {
	case req.ScalingParam > 0:
		return req.ScalingParam
	case l.settings.ScalingParam > 0:
		return l.settings.ScalingParam
	}
	return model.CountType(req.Program, rules.TreatmentRoom)
}

// Solve builds the model for req and solves it. A solved result is
// returned with a nil error; otherwise the result carries the status and
// the error wraps ErrNoFeasibleLayout or ErrNoSolution.
func (l *Layouter) Solve(ctx context.Context, req Request) (model.LayoutResult, error) {
	n := l.ScalingParam(req)
	result := model.LayoutResult{
		RunID:        uuid.New().String(),
		Shell:        req.Shell,
		Status:       model.StatusUnknown,
		ScalingParam: n,
	}

	instances := model.ExpandProgram(req.Program)
	asm := NewAssembler(l.repo, l.settings, l.logger)
	m, h, err := asm.Build(req.Shell, instances, n, req.MaxEntrances)
	if err != nil {
		return result, fmt.Errorf("building layout model: %w", err)
	}
	result.Variables = m.NumVars()
	result.Constraints = m.NumConstraints()

	if limit := l.settings.TimeLimit(); limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	start := time.Now()
	sol, err := l.solver.Solve(ctx, m)
	result.SolveTime = time.Since(start)
	result.Probes = sol.Probes
	if err != nil {
		return result, fmt.Errorf("solving layout model: %w", err)
	}

	l.logger.Info("layout solved",
		"run", result.RunID,
		"rooms", len(instances),
		"status", sol.Status.String(),
		"objective", sol.Objective,
		"probes", sol.Probes,
		"elapsed", result.SolveTime,
	)

	switch sol.Status {
	case mip.StatusInfeasible:
		result.Status = model.StatusInfeasible
		return result, fmt.Errorf("%d rooms in %s shell: %w", len(instances), req.Shell, ErrNoFeasibleLayout)
	case mip.StatusOptimal:
		result.Status = model.StatusOptimal
	case mip.StatusFeasible:
		result.Status = model.StatusFeasible
	default:
		return result, fmt.Errorf("%d rooms in %s shell after %s: %w", len(instances), req.Shell, result.SolveTime.Round(time.Millisecond), ErrNoSolution)
	}

	result.Objective = sol.Objective
	result.Rooms = l.decode(h, sol)
	return result, nil
}

// decode reads the solved placements and door positions.
func (l *Layouter) decode(h *Handles, sol mip.Solution) []model.RoomPlacement {
	rooms := make([]model.RoomPlacement, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		p := model.RoomPlacement{
			ID:   r.Instance.ID,
			Type: r.Instance.Type,
			X:    sol.Value(r.X),
			Y:    sol.Value(r.Y),
			W:    sol.Value(r.W),
			H:    sol.Value(r.H),
		}
		if rule, ok := l.repo.Get(r.Instance.Type); ok {
			p.Category = string(rule.Category)
		}
		for _, d := range r.Doors {
			door := model.Door{
				Active: sol.Bool(d.Active),
				X:      sol.Value(d.X),
				Y:      sol.Value(d.Y),
			}
			if door.Active {
				door.Side, _ = p.SideOf(door.X, door.Y)
			}
			p.Doors = append(p.Doors, door)
		}
		rooms = append(rooms, p)
	}
	return rooms
}
