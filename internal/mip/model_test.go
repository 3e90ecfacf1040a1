package mip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNormalizesConstantAndMergesTerms(t *testing.T) {
	m := NewModel("test")
	x := m.NewIntVar(0, 10, "x")
	y := m.NewIntVar(0, 10, "y")

	// x + y + x - y + 5 <= 15  ->  2x <= 10
	e := NewLinearExpr().Add(x).Add(y).Add(x).Sub(y).AddConstant(5)
	m.AddLessOrEqual(e, 15, "c")

	require.Len(t, m.Constraints(), 1)
	c := m.Constraints()[0]
	assert.Equal(t, 10, c.RHS)
	require.Len(t, c.Terms, 1)
	assert.Equal(t, x, c.Terms[0].Var)
	assert.Equal(t, 2, c.Terms[0].Coef)
}

func TestCheckReportsViolations(t *testing.T) {
	m := NewModel("test")
	x := m.NewIntVar(0, 10, "x")
	b := m.NewBoolVar("b")
	m.AddGreaterOrEqual(NewLinearExpr().Add(x).AddTerm(b, 5), 7, "x+5b>=7")
	m.AddEquality(NewLinearExpr().Add(b), 1, "b=1")

	assert.Empty(t, m.Check([]int{2, 1}))

	violated := m.Check([]int{2, 0})
	require.Len(t, violated, 2)
	assert.Equal(t, "x+5b>=7", violated[0].Name)
	assert.Equal(t, "b=1", violated[1].Name)

	outOfDomain := m.Check([]int{11, 1})
	require.Len(t, outOfDomain, 1)
	assert.Equal(t, "domain(x)", outOfDomain[0].Name)
}

func TestObjectiveAccumulatesAndMerges(t *testing.T) {
	m := NewModel("test")
	x := m.NewIntVar(0, 10, "x")
	y := m.NewIntVar(0, 10, "y")
	m.AddObjectiveTerm(x, 0.5)
	m.AddObjectiveTerm(y, -1)
	m.AddObjectiveTerm(x, 1.5)
	m.AddObjectiveTerm(y, 0)

	obj := m.Objective()
	require.Len(t, obj, 2)
	assert.Equal(t, x, obj[0].Var)
	assert.InDelta(t, 2.0, obj[0].Weight, 1e-9)
	assert.InDelta(t, -1.0, obj[1].Weight, 1e-9)
	assert.InDelta(t, 2*4-3.0, m.ObjectiveValue([]int{4, 3}), 1e-9)
	assert.False(t, m.IsMaximize())
}

func TestMaximizeReplacesObjective(t *testing.T) {
	m := NewModel("test")
	x := m.NewIntVar(0, 10, "x")
	y := m.NewIntVar(0, 10, "y")
	m.AddObjectiveTerm(y, 3)
	m.Maximize(NewLinearExpr().Add(x).AddConstant(1))

	assert.True(t, m.IsMaximize())
	obj := m.Objective()
	require.Len(t, obj, 1)
	assert.Equal(t, x, obj[0].Var)
	assert.InDelta(t, 6.0, m.ObjectiveValue([]int{5, 9}), 1e-9)
}

func TestLookupAndExprEval(t *testing.T) {
	m := NewModel("test")
	x := m.NewIntVar(-5, 5, "x")
	y := m.NewIntVar(0, 3, "y")

	got, ok := m.Lookup("y")
	require.True(t, ok)
	assert.Equal(t, y, got)
	_, ok = m.Lookup("missing")
	assert.False(t, ok)

	e := Sum(x, y).AddTerm(y, 2).AddConstant(-1)
	assert.Equal(t, -2+3*3-1, e.Eval([]int{-2, 3}))

	clone := e.Clone().AddConstant(10)
	assert.Equal(t, -1, e.Constant())
	assert.Equal(t, 9, clone.Constant())
}

func TestStatusHasSolution(t *testing.T) {
	assert.True(t, StatusOptimal.HasSolution())
	assert.True(t, StatusFeasible.HasSolution())
	assert.False(t, StatusInfeasible.HasSolution())
	assert.False(t, StatusUnknown.HasSolution())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
}
