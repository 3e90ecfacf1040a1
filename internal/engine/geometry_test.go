package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

func bounds(minW, minH, maxW, maxH int) Bounds {
	opt := func(v int) *int {
		if v == 0 {
			return nil
		}
		return intp(v)
	}
	return Bounds{MinW: opt(minW), MinH: opt(minH), MaxW: opt(maxW), MaxH: opt(maxH)}
}

func TestSelectBoundsFromDefaultRules(t *testing.T) {
	geo := NewGeometrySelector(rules.MustDefault())

	tests := []struct {
		name string
		typ  string
		n    int
		want Bounds
	}{
		{"compact sterilization", "STERILIZATION", 6, bounds(110, 152, 110, 152)},
		{"enhanced sterilization", "STERILIZATION", 12, bounds(110, 184, 110, 184)},
		{"elite sterilization", "STERILIZATION", 20, bounds(110, 268, 110, 268)},
		// Below every range: all tiers are candidates.
		{"sterilization out of range", "STERILIZATION", 3, bounds(110, 152, 110, 268)},
		{"generic consult tiers", "CONSULT", 6, bounds(96, 96, 156, 120)},
		{"treatment room width and depth rules", rules.TreatmentRoom, 6, bounds(97, 132, 108, 0)},
		{"corridor width only", rules.ClinicalCorridor, 6, bounds(60, 0, 60, 0)},
		{"lab without dimensions", "LAB", 6, Bounds{}},
		{"unknown type", "MYSTERY", 6, Bounds{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geo.SelectBounds(model.NewRoomInstance(tt.typ, 0), tt.n)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectBoundsIsDeterministic(t *testing.T) {
	geo := NewGeometrySelector(rules.MustDefault())
	inst := model.NewRoomInstance("STERILIZATION", 0)
	first := geo.SelectBounds(inst, 12)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, geo.SelectBounds(inst, 12))
	}
}

func TestTierBoundsTieKeepsFirstLargest(t *testing.T) {
	geo := rules.Geometry{Tiers: []rules.DimensionTier{
		{Label: "a", Width: intp(100), Length: intp(120), AreaSqIn: intp(10)},
		{Label: "b", Width: intp(100), Length: intp(120), AreaSqIn: intp(10)},
		{Label: "c", Width: intp(100), Length: intp(90)},
	}}
	got := TierBounds(geo, 1)
	assert.Equal(t, bounds(100, 90, 100, 120), got)
}

func TestTierBoundsMissingValuesScoreZero(t *testing.T) {
	geo := rules.Geometry{Tiers: []rules.DimensionTier{
		{Label: "long", Length: intp(300)},
		{Label: "wide", Width: intp(50)},
	}}
	got := TierBounds(geo, 1)
	// "wide" wins on width, so only its width becomes a maximum.
	assert.Equal(t, bounds(50, 300, 50, 0), got)
}

func TestFootprintsAggregateProgramLines(t *testing.T) {
	geo := NewGeometrySelector(rules.MustDefault())
	fp := geo.Footprints([]model.RoomRequest{
		{Type: rules.TreatmentRoom, Count: 3},
		{Type: "LAB", Count: 1},
		{Type: rules.TreatmentRoom, Count: 2},
	}, 5)

	assert.Equal(t, []model.Footprint{
		{Type: rules.TreatmentRoom, MinW: 97, MinH: 132, Count: 5},
		{Type: "LAB", MinW: 1, MinH: 1, Count: 1},
	}, fp)
}
