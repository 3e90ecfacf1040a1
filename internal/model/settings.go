package model

import (
	"errors"
	"fmt"
	"time"
)

// ObjectiveMode selects the room size term of the layout objective.
type ObjectiveMode string

const (
	ObjectiveGenerous ObjectiveMode = "generous" // Reward larger rooms
	ObjectiveCompact  ObjectiveMode = "compact"  // Reward smaller rooms
	ObjectiveNone     ObjectiveMode = "none"     // Penalties only
)

// SoftRulePolicy decides how rules marked hard: false are emitted.
type SoftRulePolicy string

const (
	SoftRelax   SoftRulePolicy = "relax"   // Penalized violation indicator
	SoftEnforce SoftRulePolicy = "enforce" // Treated as hard
	SoftSkip    SoftRulePolicy = "skip"    // Not emitted
)

// LayoutSettings holds the layout engine configuration. Lengths are inches.
type LayoutSettings struct {
	WallThickness         int `json:"wall_thickness" toml:"wall_thickness"`
	MinOverlap            int `json:"min_overlap" toml:"min_overlap"`                         // Shared wall length for direct adjacency
	MinSeparation         int `json:"min_separation" toml:"min_separation"`                   // Gap for separation rules
	VisibilityGap         int `json:"visibility_gap" toml:"visibility_gap"`                   // Gap for hidden-from rules
	MaxVisibilityDistance int `json:"max_visibility_distance" toml:"max_visibility_distance"` // Cap for visible-from rules
	MaxEntrances          int `json:"max_entrances" toml:"max_entrances"`                     // Door slots per room

	Objective       ObjectiveMode  `json:"objective" toml:"objective"`
	SoftRules       SoftRulePolicy `json:"soft_rules" toml:"soft_rules"`
	SoftRulePenalty float64        `json:"soft_rule_penalty" toml:"soft_rule_penalty"`

	BigM             int `json:"big_m" toml:"big_m"`                           // 0 = derived from the shell
	TimeLimitSeconds int `json:"time_limit_seconds" toml:"time_limit_seconds"` // 0 = no limit
	ScalingParam     int `json:"scaling_param" toml:"scaling_param"`           // 0 = treatment room count

	ExactCorridorEntry bool   `json:"exact_corridor_entry" toml:"exact_corridor_entry"`
	EnforceEntryCounts bool   `json:"enforce_entry_counts" toml:"enforce_entry_counts"`
	CenterBias         bool   `json:"center_bias" toml:"center_bias"`
	Layout             string `json:"layout,omitempty" toml:"layout"` // NARROW, THREE_LAYER_CAKE or H_LAYOUT
}

func DefaultLayoutSettings() LayoutSettings {
	return LayoutSettings{
		WallThickness:         12,
		MinOverlap:            24,
		MinSeparation:         180,
		VisibilityGap:         180,
		MaxVisibilityDistance: 120,
		MaxEntrances:          2,
		Objective:             ObjectiveGenerous,
		SoftRules:             SoftRelax,
		SoftRulePenalty:       500,
		BigM:                  0,
		TimeLimitSeconds:      30,
		ExactCorridorEntry:    false,
		EnforceEntryCounts:    true,
		CenterBias:            false,
	}
}

// TimeLimit returns the solver wall-clock budget.
func (s LayoutSettings) TimeLimit() time.Duration {
	return time.Duration(s.TimeLimitSeconds) * time.Second
}

// DeriveBigM returns the big-M constant for a shell: BigM when set, else
// 2*(W+H) plus the largest rule constant.
func (s LayoutSettings) DeriveBigM(shell Shell) int {
	if s.BigM > 0 {
		return s.BigM
	}
	m := 2 * (shell.Width + shell.Height)
	extra := 0
	for _, c := range []int{s.WallThickness, s.MinOverlap, s.MinSeparation, s.VisibilityGap, s.MaxVisibilityDistance} {
		if c > extra {
			extra = c
		}
	}
	return m + extra
}

// Validate reports every invalid field.
func (s LayoutSettings) Validate() error {
	var errs []error
	nonNegative := []struct {
		name string
		v    int
	}{
		{"wall_thickness", s.WallThickness},
		{"min_overlap", s.MinOverlap},
		{"min_separation", s.MinSeparation},
		{"visibility_gap", s.VisibilityGap},
		{"max_visibility_distance", s.MaxVisibilityDistance},
		{"big_m", s.BigM},
		{"time_limit_seconds", s.TimeLimitSeconds},
		{"scaling_param", s.ScalingParam},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", f.name, f.v))
		}
	}
	if s.MaxEntrances < 1 {
		errs = append(errs, fmt.Errorf("max_entrances must be at least 1, got %d", s.MaxEntrances))
	}
	switch s.Objective {
	case ObjectiveGenerous, ObjectiveCompact, ObjectiveNone:
	default:
		errs = append(errs, fmt.Errorf("unknown objective %q", s.Objective))
	}
	switch s.SoftRules {
	case SoftRelax, SoftEnforce, SoftSkip:
	default:
		errs = append(errs, fmt.Errorf("unknown soft rule policy %q", s.SoftRules))
	}
	if s.SoftRulePenalty < 0 {
		errs = append(errs, errors.New("soft_rule_penalty must not be negative"))
	}
	switch s.Layout {
	case "", "NARROW", "THREE_LAYER_CAKE", "H_LAYOUT":
	default:
		errs = append(errs, fmt.Errorf("unknown layout %q", s.Layout))
	}
	return errors.Join(errs...)
}
