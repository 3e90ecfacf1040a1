package mip

import (
	"context"
	"time"
)

// Status is the outcome of a solve.
type Status int

const (
	StatusUnknown    Status = iota // No solution and no proof of infeasibility
	StatusOptimal                  // Proven optimal
	StatusFeasible                 // Solution found, optimality not proven
	StatusInfeasible               // Proven infeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// HasSolution reports whether an assignment is available.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Solution is a solver result. Values is indexed by Var.Index and is nil
// unless Status.HasSolution().
type Solution struct {
	Status    Status
	Objective float64
	Values    []int
	Probes    int
	WallTime  time.Duration
}

// Value returns the assigned value of v.
func (s Solution) Value(v Var) int {
	if v.index >= len(s.Values) {
		return 0
	}
	return s.Values[v.index]
}

// Bool returns the assigned value of a boolean variable.
func (s Solution) Bool(v Var) bool {
	return s.Value(v) != 0
}

// Solver solves a Model. Implementations must honor ctx cancellation at
// least between internal probes.
type Solver interface {
	Solve(ctx context.Context, m *Model) (Solution, error)
}
