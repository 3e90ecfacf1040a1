// Package pbsolver solves mip models with the gophersat pseudo-boolean
// solver. Bounded integers are bit-encoded and the objective is minimized by
// binary search over an objective-bound constraint, one fresh feasibility
// probe per step.
package pbsolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/crillab/gophersat/solver"
	"github.com/piwi3910/ClinicLayout/internal/mip"
)

// Options controls a Solver.
type Options struct {
	TimeLimit      time.Duration // Wall-clock budget for the whole solve, 0 = none
	ObjectiveScale float64       // Float objective weights are multiplied by this and rounded
	MaxProbes      int           // Upper bound on feasibility probes, 0 = unlimited
}

// DefaultOptions returns options suited to clinic-sized models.
func DefaultOptions() Options {
	return Options{
		TimeLimit:      30 * time.Second,
		ObjectiveScale: 100,
		MaxProbes:      64,
	}
}

// Solver is a mip.Solver backed by gophersat.
type Solver struct {
	opts   Options
	logger *slog.Logger
}

var _ mip.Solver = (*Solver)(nil)

// New creates a Solver.
func New(opts Options) *Solver {
	if opts.ObjectiveScale <= 0 {
		opts.ObjectiveScale = DefaultOptions().ObjectiveScale
	}
	return &Solver{opts: opts, logger: slog.Default().With("component", "pbsolver")}
}

// Solve finds an optimal assignment for m. When the time limit or probe
// budget runs out after a solution was found, the best solution is returned
// with StatusFeasible. Only cancellation without any solution is reported as
// an error.
func (s *Solver) Solve(ctx context.Context, m *mip.Model) (mip.Solution, error) {
	start := time.Now()
	if s.opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TimeLimit)
		defer cancel()
	}

	enc, err := encode(m, s.opts.ObjectiveScale)
	if err != nil {
		return mip.Solution{Status: mip.StatusUnknown}, err
	}
	if enc.infeasible {
		s.logger.Debug("model infeasible before search", "reason", enc.reason)
		return mip.Solution{Status: mip.StatusInfeasible, WallTime: time.Since(start)}, nil
	}

	res := mip.Solution{Status: mip.StatusUnknown}
	finish := func() (mip.Solution, error) {
		res.WallTime = time.Since(start)
		return res, nil
	}

	// First probe: plain feasibility.
	model, status, err := s.probe(ctx, enc, nil)
	res.Probes++
	if err != nil {
		if errors.Is(err, context.Canceled) {
			res.WallTime = time.Since(start)
			return res, err
		}
		return finish()
	}
	if status == solver.Unsat {
		res.Status = mip.StatusInfeasible
		return finish()
	}

	best := model
	bestVal := enc.objectiveValue(model)
	s.record(&res, enc, best, mip.StatusFeasible)

	if !enc.hasObjective() {
		res.Status = mip.StatusOptimal
		return finish()
	}

	lo, hi := enc.objLo, bestVal-1
	for lo <= hi {
		if s.opts.MaxProbes > 0 && res.Probes >= s.opts.MaxProbes {
			s.logger.Debug("probe budget exhausted", "probes", res.Probes, "best", bestVal)
			return finish()
		}
		mid := lo + (hi-lo)/2
		model, status, err = s.probe(ctx, enc, &mid)
		res.Probes++
		if err != nil {
			s.logger.Debug("search interrupted", "probes", res.Probes, "best", bestVal, "error", err)
			return finish()
		}
		s.logger.Debug("probe", "bound", mid, "status", status.String())
		if status == solver.Sat {
			best = model
			bestVal = enc.objectiveValue(model)
			s.record(&res, enc, best, mip.StatusFeasible)
			hi = bestVal - 1
		} else {
			lo = mid + 1
		}
	}

	res.Status = mip.StatusOptimal
	return finish()
}

func (s *Solver) record(res *mip.Solution, enc *encoding, model []bool, status mip.Status) {
	res.Values = enc.decode(model)
	res.Objective = enc.model.ObjectiveValue(res.Values)
	res.Status = status
}

type probeResult struct {
	status solver.Status
	model  []bool
}

// probe runs one feasibility solve, optionally with objective <= bound.
// gophersat cannot be interrupted, so a probe outliving ctx is abandoned and
// finishes in the background.
func (s *Solver) probe(ctx context.Context, enc *encoding, bound *int) ([]bool, solver.Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, solver.Indet, err
	}

	var constrs []solver.PBConstr
	if bound != nil {
		constrs = cloneConstrs(enc.constrs, enc.boundConstraint(*bound))
	} else {
		constrs = cloneConstrs(enc.constrs)
	}

	if enc.nbVars == 0 {
		// Nothing to decide; every constraint was checked during encoding
		// except the objective bound, which is a constant here.
		if bound != nil && enc.objOffset > *bound {
			return nil, solver.Unsat, nil
		}
		return []bool{}, solver.Sat, nil
	}

	done := make(chan probeResult, 1)
	go func() {
		pb := solver.ParsePBConstrs(constrs)
		sv := solver.New(pb)
		st := sv.Solve()
		var model []bool
		if st == solver.Sat {
			model = sv.Model()
		}
		done <- probeResult{status: st, model: model}
	}()

	return s.await(ctx, done, bound)
}

// await waits for a solver result. When ctx ends first the run is left
// running; its goroutine exits once gophersat returns.
func (s *Solver) await(ctx context.Context, done <-chan probeResult, bound *int) ([]bool, solver.Status, error) {
	select {
	case <-ctx.Done():
		attrs := []any{"error", ctx.Err()}
		if bound != nil {
			attrs = append(attrs, "bound", *bound)
		}
		s.logger.Warn("abandoned unfinished solver run; it keeps running in the background until it completes", attrs...)
		return nil, solver.Indet, ctx.Err()
	case r := <-done:
		return r.model, r.status, nil
	}
}
