package engine

import (
	"context"

	"github.com/piwi3910/ClinicLayout/internal/mip"
	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.LayoutSettings
}

// ComparisonResult holds the layout result and computed statistics for a
// single scenario.
type ComparisonResult struct {
	Scenario       ComparisonScenario
	Result         model.LayoutResult
	Err            error
	Efficiency     float64
	ActiveDoors    int
	Violations     int
	SoftViolations int
}

// CompareScenarios solves the same request under each scenario, one after
// another, and returns the results in scenario order. A failing scenario
// records its error and does not stop the others.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, req Request, repo *rules.Repository, solver mip.Solver) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))
	instances := model.ExpandProgram(req.Program)

	for _, scenario := range scenarios {
		cr := ComparisonResult{Scenario: scenario}
		l, err := New(scenario.Settings, repo, solver)
		if err != nil {
			cr.Err = err
			results = append(results, cr)
			continue
		}
		cr.Result, cr.Err = l.Solve(ctx, req)
		if cr.Result.Status.HasLayout() {
			cr.Efficiency = cr.Result.Efficiency()
			cr.ActiveDoors = cr.Result.ActiveDoors()
			for _, v := range Verify(cr.Result, instances, repo, scenario.Settings) {
				if v.Soft {
					cr.SoftViolations++
				} else {
					cr.Violations++
				}
			}
		}
		results = append(results, cr)
		if ctx.Err() != nil {
			break
		}
	}

	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(base model.LayoutSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	// Scenario: the other size objective
	alt := base
	if base.Objective == model.ObjectiveCompact {
		alt.Objective = model.ObjectiveGenerous
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Generous Rooms",
			Settings: alt,
		})
	} else {
		alt.Objective = model.ObjectiveCompact
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Compact Rooms",
			Settings: alt,
		})
	}

	// Scenario: doors on the corridor edge
	if !base.ExactCorridorEntry {
		exact := base
		exact.ExactCorridorEntry = true
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Exact Corridor Entry",
			Settings: exact,
		})
	}

	// Scenario: soft rules become hard
	if base.SoftRules != model.SoftEnforce {
		strict := base
		strict.SoftRules = model.SoftEnforce
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Soft Rules Enforced",
			Settings: strict,
		})
	}

	return scenarios
}
