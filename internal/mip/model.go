// Package mip provides a solver-neutral mixed-integer linear model: bounded
// integer and boolean variables, linear constraints over integer coefficients
// and a linear objective. Backends implement the Solver interface.
package mip

import (
	"fmt"
	"sort"
)

// VarKind distinguishes integer from boolean variables.
type VarKind int

const (
	KindInteger VarKind = iota
	KindBoolean
)

func (k VarKind) String() string {
	if k == KindBoolean {
		return "bool"
	}
	return "int"
}

// Var is a handle to a variable registered on a Model.
type Var struct {
	index int
}

// Index returns the variable's position in the model.
func (v Var) Index() int { return v.index }

// VarInfo describes a declared variable.
type VarInfo struct {
	Name string
	Lo   int
	Hi   int
	Kind VarKind
}

// Sense is the relation of a linear constraint.
type Sense int

const (
	LessOrEqual Sense = iota
	GreaterOrEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case GreaterOrEqual:
		return ">="
	case Equal:
		return "="
	default:
		return "<="
	}
}

// Term is one coefficient-variable product.
type Term struct {
	Var  Var
	Coef int
}

// Constraint is a normalized linear constraint: sum(Terms) Sense RHS.
// Terms are merged per variable and never carry a zero coefficient.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   int
}

// Holds reports whether the constraint is satisfied by values.
func (c Constraint) Holds(values []int) bool {
	lhs := 0
	for _, t := range c.Terms {
		lhs += t.Coef * values[t.Var.index]
	}
	switch c.Sense {
	case GreaterOrEqual:
		return lhs >= c.RHS
	case Equal:
		return lhs == c.RHS
	default:
		return lhs <= c.RHS
	}
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s: %d terms %s %d", c.Name, len(c.Terms), c.Sense, c.RHS)
}

// ObjectiveTerm is a weighted variable in the objective.
type ObjectiveTerm struct {
	Var    Var
	Weight float64
}

// Model is a mixed-integer linear program under construction.
// A Model is not safe for concurrent mutation.
type Model struct {
	name        string
	vars        []VarInfo
	byName      map[string]Var
	constraints []Constraint
	objective   []ObjectiveTerm
	objConst    float64
	maximize    bool
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{
		name:   name,
		byName: make(map[string]Var),
	}
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// NewIntVar declares an integer variable with domain [lo, hi].
// An empty domain (hi < lo) makes the model infeasible.
func (m *Model) NewIntVar(lo, hi int, name string) Var {
	return m.addVar(VarInfo{Name: name, Lo: lo, Hi: hi, Kind: KindInteger})
}

// NewBoolVar declares a 0/1 variable.
func (m *Model) NewBoolVar(name string) Var {
	return m.addVar(VarInfo{Name: name, Lo: 0, Hi: 1, Kind: KindBoolean})
}

func (m *Model) addVar(info VarInfo) Var {
	v := Var{index: len(m.vars)}
	m.vars = append(m.vars, info)
	if info.Name != "" {
		m.byName[info.Name] = v
	}
	return v
}

// Lookup returns the variable registered under name.
func (m *Model) Lookup(name string) (Var, bool) {
	v, ok := m.byName[name]
	return v, ok
}

// VarAt returns the handle of the variable at index.
func (m *Model) VarAt(index int) Var { return Var{index: index} }

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.vars) }

// VarInfo returns the declaration of v.
func (m *Model) VarInfo(v Var) VarInfo { return m.vars[v.index] }

// Vars returns all variable declarations in index order.
func (m *Model) Vars() []VarInfo { return m.vars }

// Constraints returns the normalized constraints.
func (m *Model) Constraints() []Constraint { return m.constraints }

// NumConstraints returns the number of constraints added so far.
func (m *Model) NumConstraints() int { return len(m.constraints) }

// Add records expr sense rhs. The expression constant is moved to the right
// hand side and duplicate variables are merged.
func (m *Model) Add(expr *LinearExpr, sense Sense, rhs int, name string) {
	terms := mergeTerms(expr.terms)
	m.constraints = append(m.constraints, Constraint{
		Name:  name,
		Terms: terms,
		Sense: sense,
		RHS:   rhs - expr.constant,
	})
}

// AddLessOrEqual records expr <= rhs.
func (m *Model) AddLessOrEqual(expr *LinearExpr, rhs int, name string) {
	m.Add(expr, LessOrEqual, rhs, name)
}

// AddGreaterOrEqual records expr >= rhs.
func (m *Model) AddGreaterOrEqual(expr *LinearExpr, rhs int, name string) {
	m.Add(expr, GreaterOrEqual, rhs, name)
}

// AddEquality records expr = rhs.
func (m *Model) AddEquality(expr *LinearExpr, rhs int, name string) {
	m.Add(expr, Equal, rhs, name)
}

// AddObjectiveTerm accumulates weight*v into the objective.
func (m *Model) AddObjectiveTerm(v Var, weight float64) {
	if weight == 0 {
		return
	}
	m.objective = append(m.objective, ObjectiveTerm{Var: v, Weight: weight})
}

// Minimize replaces the objective with expr and sets the sense to minimize.
func (m *Model) Minimize(expr *LinearExpr) {
	m.setObjective(expr)
	m.maximize = false
}

// Maximize replaces the objective with expr and sets the sense to maximize.
func (m *Model) Maximize(expr *LinearExpr) {
	m.setObjective(expr)
	m.maximize = true
}

func (m *Model) setObjective(expr *LinearExpr) {
	m.objective = m.objective[:0]
	for _, t := range mergeTerms(expr.terms) {
		m.objective = append(m.objective, ObjectiveTerm{Var: t.Var, Weight: float64(t.Coef)})
	}
	m.objConst = float64(expr.constant)
}

// IsMaximize reports the objective sense.
func (m *Model) IsMaximize() bool { return m.maximize }

// Objective returns the objective terms merged per variable.
func (m *Model) Objective() []ObjectiveTerm {
	merged := make(map[int]float64)
	for _, t := range m.objective {
		merged[t.Var.index] += t.Weight
	}
	out := make([]ObjectiveTerm, 0, len(merged))
	for idx, w := range merged {
		if w != 0 {
			out = append(out, ObjectiveTerm{Var: Var{index: idx}, Weight: w})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Var.index < out[j].Var.index })
	return out
}

// ObjectiveConstant returns the constant part of the objective.
func (m *Model) ObjectiveConstant() float64 { return m.objConst }

// ObjectiveValue evaluates the objective for an assignment.
func (m *Model) ObjectiveValue(values []int) float64 {
	total := m.objConst
	for _, t := range m.objective {
		total += t.Weight * float64(values[t.Var.index])
	}
	return total
}

// Check returns every constraint violated by values, plus a synthetic
// constraint for every variable outside its domain.
func (m *Model) Check(values []int) []Constraint {
	var violated []Constraint
	if len(values) != len(m.vars) {
		return []Constraint{{Name: fmt.Sprintf("assignment has %d values, model has %d vars", len(values), len(m.vars))}}
	}
	for i, info := range m.vars {
		if values[i] < info.Lo || values[i] > info.Hi {
			violated = append(violated, Constraint{
				Name:  "domain(" + info.Name + ")",
				Terms: []Term{{Var: Var{index: i}, Coef: 1}},
				Sense: LessOrEqual,
				RHS:   info.Hi,
			})
		}
	}
	for _, c := range m.constraints {
		if !c.Holds(values) {
			violated = append(violated, c)
		}
	}
	return violated
}

func mergeTerms(terms []Term) []Term {
	if len(terms) == 0 {
		return nil
	}
	order := make([]int, 0, len(terms))
	coef := make(map[int]int, len(terms))
	for _, t := range terms {
		if _, seen := coef[t.Var.index]; !seen {
			order = append(order, t.Var.index)
		}
		coef[t.Var.index] += t.Coef
	}
	out := make([]Term, 0, len(order))
	for _, idx := range order {
		if c := coef[idx]; c != 0 {
			out = append(out, Term{Var: Var{index: idx}, Coef: c})
		}
	}
	return out
}
