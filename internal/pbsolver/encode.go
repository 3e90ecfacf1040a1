package pbsolver

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/crillab/gophersat/solver"
	"github.com/piwi3910/ClinicLayout/internal/mip"
)

// encoding maps a mip.Model onto pseudo-boolean constraints. Every bounded
// integer v in [lo, hi] becomes lo + sum(2^i * b_i) over fresh boolean
// variables b_i; a boolean maps to a single PB variable.
type encoding struct {
	model   *mip.Model
	first   []int // first PB variable (1-based) of each model variable
	nbits   []int
	nbVars  int
	constrs []solver.PBConstr

	// infeasible is set when a constraint without variables is violated or a
	// domain is empty.
	infeasible bool
	reason     string

	objLits    []int
	objWeights []int
	objOffset  int
	objLo      int
	objHi      int
}

func encode(m *mip.Model, objectiveScale float64) (*encoding, error) {
	vars := m.Vars()
	enc := &encoding{
		model: m,
		first: make([]int, len(vars)),
		nbits: make([]int, len(vars)),
	}

	next := 1
	var all []int
	for i, info := range vars {
		if info.Hi < info.Lo {
			enc.markInfeasible(fmt.Sprintf("empty domain for %s", info.Name))
			continue
		}
		width := info.Hi - info.Lo
		n := bits.Len(uint(width))
		enc.first[i] = next
		enc.nbits[i] = n
		for b := 0; b < n; b++ {
			all = append(all, next+b)
		}
		next += n
		if n > 0 && width != (1<<n)-1 {
			lits, weights, _ := enc.expand([]mip.Term{{Var: m.VarAt(i), Coef: 1}})
			enc.constrs = append(enc.constrs, solver.LtEq(lits, weights, width))
		}
	}
	enc.nbVars = next - 1

	// ParsePBConstrs sizes the problem from the literals it sees, including
	// those of trivially satisfied constraints, so one such constraint
	// registers every bit even when no other constraint mentions it.
	if len(all) > 0 {
		enc.constrs = append(enc.constrs, solver.PBConstr{Lits: all, AtLeast: 0})
	}

	for _, c := range m.Constraints() {
		if err := enc.addConstraint(c); err != nil {
			return nil, err
		}
	}

	if err := enc.encodeObjective(objectiveScale); err != nil {
		return nil, err
	}
	return enc, nil
}

func (enc *encoding) markInfeasible(reason string) {
	if !enc.infeasible {
		enc.infeasible = true
		enc.reason = reason
	}
}

// expand substitutes the bit encoding into terms and returns PB literals,
// weights and the constant contributed by the variables' lower bounds.
func (enc *encoding) expand(terms []mip.Term) (lits, weights []int, offset int) {
	vars := enc.model.Vars()
	for _, t := range terms {
		idx := t.Var.Index()
		offset += t.Coef * vars[idx].Lo
		for b := 0; b < enc.nbits[idx]; b++ {
			lits = append(lits, enc.first[idx]+b)
			weights = append(weights, t.Coef<<b)
		}
	}
	return lits, weights, offset
}

func (enc *encoding) addConstraint(c mip.Constraint) error {
	for _, t := range c.Terms {
		if t.Var.Index() < 0 || t.Var.Index() >= len(enc.first) {
			return fmt.Errorf("constraint %q references unknown variable %d", c.Name, t.Var.Index())
		}
	}
	lits, weights, offset := enc.expand(c.Terms)
	rhs := c.RHS - offset
	if len(lits) == 0 {
		if !holdsConstant(0, c.Sense, rhs) {
			enc.markInfeasible(fmt.Sprintf("constraint %q cannot hold", c.Name))
		}
		return nil
	}
	switch c.Sense {
	case mip.LessOrEqual:
		enc.constrs = append(enc.constrs, solver.LtEq(lits, weights, rhs))
	case mip.GreaterOrEqual:
		enc.constrs = append(enc.constrs, solver.GtEq(lits, weights, rhs))
	case mip.Equal:
		enc.constrs = append(enc.constrs, solver.Eq(lits, weights, rhs)...)
	default:
		return fmt.Errorf("constraint %q has unknown sense %d", c.Name, c.Sense)
	}
	return nil
}

func holdsConstant(lhs int, sense mip.Sense, rhs int) bool {
	switch sense {
	case mip.GreaterOrEqual:
		return lhs >= rhs
	case mip.Equal:
		return lhs == rhs
	default:
		return lhs <= rhs
	}
}

// encodeObjective scales float weights to integers and precomputes the
// objective's bit expansion and its reachable range. Maximization is
// handled by negation so the search always minimizes.
func (enc *encoding) encodeObjective(scale float64) error {
	if scale <= 0 {
		scale = 1
	}
	var terms []mip.Term
	for _, t := range enc.model.Objective() {
		w := t.Weight
		if enc.model.IsMaximize() {
			w = -w
		}
		scaled := math.Round(w * scale)
		if math.Abs(scaled) > math.MaxInt32 {
			return fmt.Errorf("objective weight %g overflows after scaling by %g", t.Weight, scale)
		}
		if scaled != 0 {
			terms = append(terms, mip.Term{Var: t.Var, Coef: int(scaled)})
		}
	}
	enc.objLits, enc.objWeights, enc.objOffset = enc.expand(terms)
	enc.objLo, enc.objHi = enc.objOffset, enc.objOffset
	for _, w := range enc.objWeights {
		if w < 0 {
			enc.objLo += w
		} else {
			enc.objHi += w
		}
	}
	return nil
}

func (enc *encoding) hasObjective() bool {
	return len(enc.objLits) > 0
}

// boundConstraint returns objective <= bound as a fresh PB constraint.
func (enc *encoding) boundConstraint(bound int) solver.PBConstr {
	lits := append([]int(nil), enc.objLits...)
	weights := append([]int(nil), enc.objWeights...)
	return solver.LtEq(lits, weights, bound-enc.objOffset)
}

// objectiveValue evaluates the scaled objective on a PB model.
func (enc *encoding) objectiveValue(model []bool) int {
	total := enc.objOffset
	for i, lit := range enc.objLits {
		if litTrue(model, lit) {
			total += enc.objWeights[i]
		}
	}
	return total
}

// decode reads model variable values out of a PB assignment.
func (enc *encoding) decode(model []bool) []int {
	vars := enc.model.Vars()
	values := make([]int, len(vars))
	for i, info := range vars {
		v := info.Lo
		for b := 0; b < enc.nbits[i]; b++ {
			if litTrue(model, enc.first[i]+b) {
				v += 1 << b
			}
		}
		values[i] = v
	}
	return values
}

// litTrue reports whether the positive PB variable lit is true. Variables
// the solver never saw are false.
func litTrue(model []bool, lit int) bool {
	idx := lit - 1
	return idx >= 0 && idx < len(model) && model[idx]
}

// cloneConstrs deep-copies constraints; the solver takes ownership of the
// slices it is given.
func cloneConstrs(src []solver.PBConstr, extra ...solver.PBConstr) []solver.PBConstr {
	out := make([]solver.PBConstr, 0, len(src)+len(extra))
	for _, c := range append(src[:len(src):len(src)], extra...) {
		cp := solver.PBConstr{AtLeast: c.AtLeast}
		cp.Lits = append([]int(nil), c.Lits...)
		if c.Weights != nil {
			cp.Weights = append([]int(nil), c.Weights...)
		}
		out = append(out, cp)
	}
	return out
}
