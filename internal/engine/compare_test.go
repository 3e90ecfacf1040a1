package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ClinicLayout/internal/mip"
	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

func TestBuildDefaultScenarios(t *testing.T) {
	base := model.DefaultLayoutSettings()
	scenarios := BuildDefaultScenarios(base)

	require.Len(t, scenarios, 4)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, base, scenarios[0].Settings)
	assert.Equal(t, model.ObjectiveCompact, scenarios[1].Settings.Objective)
	assert.True(t, scenarios[2].Settings.ExactCorridorEntry)
	assert.Equal(t, model.SoftEnforce, scenarios[3].Settings.SoftRules)
}

func TestBuildDefaultScenariosSkipsNoOps(t *testing.T) {
	base := model.DefaultLayoutSettings()
	base.Objective = model.ObjectiveCompact
	base.ExactCorridorEntry = true
	base.SoftRules = model.SoftEnforce

	scenarios := BuildDefaultScenarios(base)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "Generous Rooms", scenarios[1].Name)
}

func TestCompareScenariosRecordsPerScenarioOutcome(t *testing.T) {
	bad := testSettings()
	bad.Objective = "huge"
	scenarios := []ComparisonScenario{
		{Name: "ok", Settings: testSettings()},
		{Name: "invalid", Settings: bad},
	}
	solver := stubSolver{sol: mip.Solution{Status: mip.StatusInfeasible}}
	req := Request{Shell: model.Shell{Width: 100, Height: 100}, Program: program("A")}

	results := CompareScenarios(context.Background(), scenarios, req, rules.New(), solver)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, ErrNoFeasibleLayout)
	assert.Equal(t, model.StatusInfeasible, results[0].Result.Status)
	assert.ErrorContains(t, results[1].Err, "objective")
}

func TestCompareScenariosSolvesEachScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("solver integration test")
	}
	repo := rules.New(
		withDirect(minSizeRule("A", rules.CategoryClinical, 20, 20), "B", true),
		minSizeRule("B", rules.CategoryClinical, 20, 20),
	)
	base := testSettings()
	base.TimeLimitSeconds = 30
	scenarios := BuildDefaultScenarios(base)
	l := newTestLayouter(t, repo, base)

	req := Request{Shell: model.Shell{Width: 120, Height: 80}, Program: program("A", "B")}
	results := CompareScenarios(context.Background(), scenarios, req, repo, l.solver)
	require.Len(t, results, len(scenarios))
	for _, r := range results {
		require.NoError(t, r.Err, r.Scenario.Name)
		assert.Positive(t, r.Efficiency, r.Scenario.Name)
		assert.Zero(t, r.Violations, r.Scenario.Name)
	}
}
