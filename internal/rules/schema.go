// Package rules holds the declarative room rule table the layout engine
// compiles into constraints.
//
// Only part of a RoomRule is enforced by the solver: geometry tiers, entry
// rules and counts, direct adjacency, separation, proximity and visibility.
// Orientation hints, circulation and layout cohesion are advisory and only
// surface in program validation and reports. Center bias is an opt-in
// objective term.
package rules

import "strings"

// Category is the coarse zone a room belongs to.
type Category string

const (
	CategoryClinical Category = "CLINICAL"
	CategoryPublic   Category = "PUBLIC"
	CategoryPrivate  Category = "PRIVATE"
)

// Target names either a concrete room type or a group tag. A group tag
// shadows a room type of the same name: a target of PRIVATE always means
// the PRIVATE group, never the PRIVATE room type.
type Target string

// Group tags a rule target may use instead of a room type.
const (
	GroupPatientFacing Target = "PATIENT_FACING"
	GroupClinical      Target = "CLINICAL"
	GroupPublic        Target = "PUBLIC"
	GroupPrivate       Target = "PRIVATE"
	GroupSupport       Target = "SUPPORT"
	GroupCorridors     Target = "CORRIDORS"
)

// ClinicalCorridor is the room type the corridor entry constraint ties
// doors to.
const ClinicalCorridor = "CLINICAL_CORRIDOR"

// TreatmentRoom is the room type whose count drives tier selection.
const TreatmentRoom = "TREATMENT_ROOM"

// IsGroup reports whether t is one of the group tags.
func (t Target) IsGroup() bool {
	switch t {
	case GroupPatientFacing, GroupClinical, GroupPublic, GroupPrivate, GroupSupport, GroupCorridors:
		return true
	}
	return false
}

// IsCorridorType reports whether a room type counts as circulation for the
// CORRIDORS group.
func IsCorridorType(roomType string) bool {
	return strings.Contains(roomType, "CORRIDOR") || strings.Contains(roomType, "HALLWAY")
}

// Condition gates when an adjacency rule applies.
type Condition string

const (
	ConditionNone          Condition = "NONE"
	ConditionAlways        Condition = "ALWAYS"
	ConditionIfPresent     Condition = "IF_PRESENT"
	ConditionIfAbsent      Condition = "IF_ABSENT"
	ConditionIfLayout      Condition = "IF_LAYOUT"
	ConditionIfThreshold   Condition = "IF_THRESHOLD"
	ConditionIfGreaterThan Condition = "IF_GREATER_THAN"
	ConditionPerNUnits     Condition = "PER_N_UNITS"
)

// Applies reports whether the layout engine emits constraints for a rule
// carrying this condition. Presence is implied by target resolution, so
// IF_PRESENT behaves like NONE. Conditions that need program context the
// engine does not model are not applied.
func (c Condition) Applies() bool {
	switch c {
	case "", ConditionNone, ConditionAlways, ConditionIfPresent:
		return true
	}
	return false
}

// Trigger says how a room comes to exist in a program.
type Trigger string

const (
	TriggerAlways    Trigger = "ALWAYS"
	TriggerUserInput Trigger = "USER_INPUT"
	TriggerDerived   Trigger = "DERIVED"
)

// CountDriver is the quantity a count rule scales with.
type CountDriver string

const (
	DriverFixed          CountDriver = "FIXED"
	DriverTreatmentRooms CountDriver = "TREATMENT_ROOMS"
	DriverBuildingSqft   CountDriver = "BUILDING_SQFT"
	DriverOccupancy      CountDriver = "OCCUPANCY"
)

// Fallback names the policy for rooms with no matching tier.
type Fallback string

const (
	FallbackError          Fallback = "ERROR"
	FallbackMinimum        Fallback = "MINIMUM"
	FallbackNearestMatch   Fallback = "NEAREST_MATCH"
	FallbackUserOverride   Fallback = "USER_OVERRIDE"
	FallbackIdealThenMin   Fallback = "IDEAL_THEN_MIN"
	FallbackExpandLongAxis Fallback = "EXPAND_LONG_AXIS"
	FallbackAreaFirst      Fallback = "AREA_FIRST"
)

// Layout is a building organization archetype.
type Layout string

const (
	LayoutNarrow         Layout = "NARROW"
	LayoutThreeLayerCake Layout = "THREE_LAYER_CAKE"
	LayoutH              Layout = "H_LAYOUT"
)

// EntryKind classifies an entry constraint.
type EntryKind string

const (
	EntryFrom              EntryKind = "ENTRY_FROM"
	EntryNotFrom           EntryKind = "ENTRY_NOT_FROM"
	EntryNear              EntryKind = "ENTRY_NEAR"
	EntryNotWithinDistance EntryKind = "ENTRY_NOT_WITHIN_DISTANCE"
	EntryOppositeEnds      EntryKind = "ENTRY_OPPOSITE_ENDS"
	SecondaryEntryAllowed  EntryKind = "SECONDARY_ENTRY_ALLOWED_TO"
)

// CirculationRole is advisory.
type CirculationRole string

const (
	RoleSpine       CirculationRole = "SPINE"
	RoleConnector   CirculationRole = "CONNECTOR"
	RoleDestination CirculationRole = "DESTINATION"
)

// RoomRule is the full rule record for one room type.
type RoomRule struct {
	Type         string                     `yaml:"type"`
	Category     Category                   `yaml:"category"`
	Description  string                     `yaml:"description,omitempty"`
	Existence    Existence                  `yaml:"existence"`
	Geometry     Geometry                   `yaml:"geometry"`
	Orientation  map[Layout]OrientationHint `yaml:"orientation,omitempty"`
	Access       Access                     `yaml:"access"`
	Adjacency    Adjacency                  `yaml:"adjacency"`
	Visibility   Visibility                 `yaml:"visibility"`
	Circulation  Circulation                `yaml:"circulation"`
	Optimization Optimization               `yaml:"optimization"`
}

// Existence describes when and how many of a room a program needs.
type Existence struct {
	Trigger    Trigger     `yaml:"trigger"`
	CountRules []CountRule `yaml:"count_rules,omitempty"`
}

// CountRule bounds the number of instances of a room type.
type CountRule struct {
	Driver    CountDriver `yaml:"driver"`
	Min       int         `yaml:"min"`
	Max       *int        `yaml:"max,omitempty"`
	Condition Condition   `yaml:"condition,omitempty"`
	Threshold *int        `yaml:"threshold,omitempty"`
}

// Geometry holds size tiers and fallback sizing rules.
type Geometry struct {
	Shape      string          `yaml:"shape"`
	Fallback   Fallback        `yaml:"fallback"`
	Tiers      []DimensionTier `yaml:"tiers,omitempty"`
	WidthRules *WidthRules     `yaml:"width_rules,omitempty"`
	DepthRules *DepthRules     `yaml:"depth_rules,omitempty"`
}

// DimensionTier is one size option, optionally scoped to a treatment room
// range. Every dimension is in inches and may be absent.
type DimensionTier struct {
	Label                    string    `yaml:"label"`
	TreatmentRoomsMin        *int      `yaml:"treatment_rooms_min,omitempty"`
	TreatmentRoomsMax        *int      `yaml:"treatment_rooms_max,omitempty"`
	Width                    *int      `yaml:"width,omitempty"`
	Length                   *int      `yaml:"length,omitempty"`
	AreaSqIn                 *int      `yaml:"area_sq_in,omitempty"`
	LongAxisVariable         bool      `yaml:"long_axis_variable,omitempty"`
	LongAxisIncrementPerDoor *int      `yaml:"long_axis_increment_per_door,omitempty"`
	AspectRatio              []float64 `yaml:"aspect_ratio,omitempty"`
}

// Ranged reports whether the tier declares a treatment room range.
func (t DimensionTier) Ranged() bool {
	return t.TreatmentRoomsMin != nil || t.TreatmentRoomsMax != nil
}

// Matches reports whether n falls in the tier's declared range. Unranged
// tiers never match.
func (t DimensionTier) Matches(n int) bool {
	return inRange(t.TreatmentRoomsMin, t.TreatmentRoomsMax, n)
}

// WidthRules bound a room's width when tiers leave it open.
type WidthRules struct {
	Min   *int `yaml:"min,omitempty"`
	Ideal *int `yaml:"ideal,omitempty"`
	Max   *int `yaml:"max,omitempty"`
}

// DepthRules give minimum depths per entry strategy.
type DepthRules struct {
	DualEntryMin    *int `yaml:"dual_entry_min,omitempty"`
	SideToeEntryMin *int `yaml:"side_toe_entry_min,omitempty"`
	ToeEntryMin     *int `yaml:"toe_entry_min,omitempty"`
}

// Deepest returns the largest declared minimum depth.
func (d DepthRules) Deepest() (int, bool) {
	best, ok := 0, false
	for _, v := range []*int{d.DualEntryMin, d.SideToeEntryMin, d.ToeEntryMin} {
		if v != nil && (!ok || *v > best) {
			best, ok = *v, true
		}
	}
	return best, ok
}

// OrientationHint is advisory placement guidance for one layout.
type OrientationHint struct {
	Allowed           bool   `yaml:"allowed"`
	LongAxis          string `yaml:"long_axis,omitempty"`
	Placement         string `yaml:"placement,omitempty"`
	ConnectsCorridors bool   `yaml:"connects_corridors,omitempty"`
}

// Access groups door requirements.
type Access struct {
	EntryCounts []EntryCountRule `yaml:"entry_counts,omitempty"`
	Entries     []EntryRule      `yaml:"entries,omitempty"`
	ADA         *ADA             `yaml:"ada,omitempty"`
}

// EntryCountRule bounds the number of doors, optionally per treatment room
// range.
type EntryCountRule struct {
	TreatmentRoomsMin *int `yaml:"treatment_rooms_min,omitempty"`
	TreatmentRoomsMax *int `yaml:"treatment_rooms_max,omitempty"`
	Min               int  `yaml:"min"`
	Max               *int `yaml:"max,omitempty"`
}

// Matches uses the same range semantics as DimensionTier; an unranged rule
// matches every n.
func (r EntryCountRule) Matches(n int) bool {
	if r.TreatmentRoomsMin == nil && r.TreatmentRoomsMax == nil {
		return true
	}
	return inRange(r.TreatmentRoomsMin, r.TreatmentRoomsMax, n)
}

// EntryRule constrains where a room's doors lead.
type EntryRule struct {
	Kind        EntryKind `yaml:"kind"`
	Target      Target    `yaml:"target,omitempty"`
	MaxDistance *int      `yaml:"max_distance,omitempty"`
	Hard        bool      `yaml:"hard"`
}

// ADA holds accessibility minimums.
type ADA struct {
	MinClearWidth   int `yaml:"min_clear_width"`
	RequiredEntries int `yaml:"required_entries"`
}

// Adjacency groups the pairwise placement rules.
type Adjacency struct {
	Direct     []DirectRule     `yaml:"direct,omitempty"`
	Proximity  []ProximityRule  `yaml:"proximity,omitempty"`
	Separation []SeparationRule `yaml:"separation,omitempty"`
}

// DirectRule requires a shared wall with the target.
type DirectRule struct {
	Target    Target    `yaml:"target"`
	Condition Condition `yaml:"condition,omitempty"`
	Hard      bool      `yaml:"hard"`
}

// ProximityRule pulls a room toward its target; Weight scales the
// objective penalty, MaxDistance caps the Manhattan distance.
type ProximityRule struct {
	Target      Target  `yaml:"target"`
	MaxDistance *int    `yaml:"max_distance,omitempty"`
	Weight      float64 `yaml:"weight"`
}

// SeparationRule keeps a room away from its target.
type SeparationRule struct {
	Target Target `yaml:"target"`
	Hard   bool   `yaml:"hard"`
}

// Visibility lists line-of-sight proxies.
type Visibility struct {
	HiddenFrom  []VisibilityRule `yaml:"hidden_from,omitempty"`
	VisibleFrom []VisibilityRule `yaml:"visible_from,omitempty"`
}

// VisibilityRule is one hidden-from or visible-from requirement.
type VisibilityRule struct {
	Target Target `yaml:"target"`
	Hard   bool   `yaml:"hard"`
}

// Circulation is advisory.
type Circulation struct {
	Role                 CirculationRole `yaml:"role,omitempty"`
	MustConnect          []Target        `yaml:"must_connect,omitempty"`
	MustNotTerminateInto []Target        `yaml:"must_not_terminate_into,omitempty"`
}

// Optimization holds objective hints.
type Optimization struct {
	CenterBias     *CenterBias     `yaml:"center_bias,omitempty"`
	LayoutCohesion *LayoutCohesion `yaml:"layout_cohesion,omitempty"`
}

// CenterBias pulls a room toward the shell center.
type CenterBias struct {
	Reference string  `yaml:"reference,omitempty"`
	Weight    float64 `yaml:"weight"`
}

// LayoutCohesion is advisory.
type LayoutCohesion struct {
	SameCategoryBonus float64 `yaml:"same_category_bonus"`
}

// EntryCountsFor returns the first entry count rule matching n.
func (r RoomRule) EntryCountsFor(n int) (EntryCountRule, bool) {
	for _, c := range r.Access.EntryCounts {
		if c.Matches(n) {
			return c, true
		}
	}
	return EntryCountRule{}, false
}

// FixedCount returns the FIXED count rule, if any.
func (r RoomRule) FixedCount() (CountRule, bool) {
	for _, c := range r.Existence.CountRules {
		if c.Driver == DriverFixed {
			return c, true
		}
	}
	return CountRule{}, false
}

func inRange(lo, hi *int, n int) bool {
	switch {
	case lo != nil && hi != nil:
		return *lo <= n && n <= *hi
	case lo != nil:
		return n >= *lo
	case hi != nil:
		return n <= *hi
	}
	return false
}
