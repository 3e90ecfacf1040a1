package engine

import (
	"fmt"

	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

// Severity grades a program issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// circulationAllowance is the share of the shell reserved for walls and
// circulation in the area estimate, in percent.
const circulationAllowance = 15

// ProgramIssue is one finding about a room program.
type ProgramIssue struct {
	Severity Severity `json:"severity"`
	Type     string   `json:"type,omitempty"`
	Message  string   `json:"message"`
}

// ProgramReport summarizes a program check.
type ProgramReport struct {
	Instances    []model.RoomInstance `json:"instances"`
	ScalingParam int                  `json:"scaling_param"`
	Issues       []ProgramIssue       `json:"issues"`
	Estimate     model.AreaEstimate   `json:"estimate"`
}

// HasErrors reports whether any issue blocks a solve.
func (r ProgramReport) HasErrors() bool {
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of issues with severity s.
func (r ProgramReport) Count(s Severity) int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == s {
			n++
		}
	}
	return n
}

// ValidateProgram checks a program against the rules before a solve: it
// expands instances, checks counts and layout orientation, and estimates
// whether the minimum room footprints can fit the shell.
func ValidateProgram(program []model.RoomRequest, shell model.Shell, repo *rules.Repository, settings model.LayoutSettings) ProgramReport {
	report := ProgramReport{Instances: model.ExpandProgram(program)}
	add := func(s Severity, typ, format string, args ...any) {
		report.Issues = append(report.Issues, ProgramIssue{Severity: s, Type: typ, Message: fmt.Sprintf(format, args...)})
	}

	if !shell.Valid() {
		add(SeverityError, "", "shell %s must have positive width and height", shell)
	}
	if len(program) == 0 {
		add(SeverityError, "", "program has no rooms")
	}

	report.ScalingParam = settings.ScalingParam
	if report.ScalingParam <= 0 {
		report.ScalingParam = model.CountType(program, rules.TreatmentRoom)
	}

	counts := make(map[string]int)
	var order []string
	for _, req := range program {
		if req.Count <= 0 {
			add(SeverityError, req.Type, "count must be positive, got %d", req.Count)
			continue
		}
		if _, seen := counts[req.Type]; !seen {
			order = append(order, req.Type)
		}
		counts[req.Type] += req.Count
	}

	for _, typ := range order {
		n := counts[typ]
		if rules.Target(typ).IsGroup() {
			add(SeverityInfo, typ, "room type shares its name with a group tag; rules targeting %s resolve to the group", typ)
		}
		rule, ok := repo.Get(typ)
		if !ok {
			add(SeverityWarning, typ, "no rules for room type; it is placed without size or adjacency constraints")
			continue
		}
		if fixed, ok := rule.FixedCount(); ok {
			if n < fixed.Min {
				add(SeverityWarning, typ, "count %d below the minimum of %d", n, fixed.Min)
			}
			if fixed.Max != nil && n > *fixed.Max {
				add(SeverityWarning, typ, "count %d above the maximum of %d", n, *fixed.Max)
			}
		}
		if settings.Layout != "" {
			if hint, ok := rule.Orientation[rules.Layout(settings.Layout)]; ok && !hint.Allowed {
				add(SeverityWarning, typ, "room is not allowed in a %s layout", settings.Layout)
			}
		}
	}

	for _, typ := range repo.Types() {
		if counts[typ] > 0 {
			continue
		}
		rule, _ := repo.Get(typ)
		if rule.Existence.Trigger != rules.TriggerAlways {
			continue
		}
		if fixed, ok := rule.FixedCount(); ok && fixed.Min > 0 {
			add(SeverityInfo, typ, "room is always required but missing from the program")
		}
	}

	footprints := NewGeometrySelector(repo).Footprints(program, report.ScalingParam)
	report.Estimate = model.CalculateAreaEstimate(footprints, shell, circulationAllowance)
	switch {
	case report.Estimate.RoomArea > shell.Area():
		add(SeverityError, "", "minimum room area %d sq in exceeds the shell area %d sq in", report.Estimate.RoomArea, shell.Area())
	case !report.Estimate.Fits:
		add(SeverityWarning, "", "minimum room area plus %d%% circulation uses %.0f%% of the shell", circulationAllowance, report.Estimate.Utilization)
	}
	return report
}
