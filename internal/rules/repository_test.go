package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestDefaultRepositoryLoadsEmbeddedTable(t *testing.T) {
	repo, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 52, repo.Len())

	types := repo.Types()
	assert.True(t, strings.Compare(types[0], types[len(types)-1]) < 0, "types are sorted")

	corridor, ok := repo.Get(ClinicalCorridor)
	require.True(t, ok)
	assert.Equal(t, CategoryClinical, corridor.Category)
	assert.Equal(t, RoleSpine, corridor.Circulation.Role)
	require.Len(t, corridor.Geometry.Tiers, 1)
	require.NotNil(t, corridor.Geometry.Tiers[0].Width)
	assert.Equal(t, 60, *corridor.Geometry.Tiers[0].Width)
	assert.Nil(t, corridor.Geometry.Tiers[0].Length)

	hard := 0
	for _, d := range corridor.Adjacency.Direct {
		if d.Hard {
			hard++
		}
	}
	assert.Equal(t, 4, hard)
	require.Len(t, corridor.Visibility.HiddenFrom, 1)
	assert.Equal(t, GroupPatientFacing, corridor.Visibility.HiddenFrom[0].Target)
}

func TestTreatmentRoomUsesWidthAndDepthRules(t *testing.T) {
	rule, ok := MustDefault().Get(TreatmentRoom)
	require.True(t, ok)
	assert.Empty(t, rule.Geometry.Tiers)
	require.NotNil(t, rule.Geometry.WidthRules)
	assert.Equal(t, 97, *rule.Geometry.WidthRules.Min)
	assert.Equal(t, 108, *rule.Geometry.WidthRules.Max)
	require.NotNil(t, rule.Geometry.DepthRules)
	deepest, ok := rule.Geometry.DepthRules.Deepest()
	require.True(t, ok)
	assert.Equal(t, 132, deepest)

	require.Len(t, rule.Access.Entries, 1)
	assert.Equal(t, EntryFrom, rule.Access.Entries[0].Kind)
	assert.Equal(t, Target(ClinicalCorridor), rule.Access.Entries[0].Target)
}

func TestEntryCountsForUsesRanges(t *testing.T) {
	rule, ok := MustDefault().Get("STERILIZATION")
	require.True(t, ok)

	c, ok := rule.EntryCountsFor(6)
	require.True(t, ok)
	assert.Equal(t, 1, c.Min)
	require.NotNil(t, c.Max)
	assert.Equal(t, 1, *c.Max)

	c, ok = rule.EntryCountsFor(12)
	require.True(t, ok)
	assert.Equal(t, 2, c.Min)

	_, ok = rule.EntryCountsFor(3)
	assert.False(t, ok)
}

func TestTierMatches(t *testing.T) {
	tests := []struct {
		name string
		tier DimensionTier
		n    int
		want bool
	}{
		{"both bounds inside", DimensionTier{TreatmentRoomsMin: intp(5), TreatmentRoomsMax: intp(8)}, 8, true},
		{"both bounds outside", DimensionTier{TreatmentRoomsMin: intp(5), TreatmentRoomsMax: intp(8)}, 9, false},
		{"min only", DimensionTier{TreatmentRoomsMin: intp(9)}, 40, true},
		{"max only", DimensionTier{TreatmentRoomsMax: intp(6)}, 7, false},
		{"unranged", DimensionTier{}, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tier.Matches(tt.n))
		})
	}
}

func TestTargetGroupsAndConditions(t *testing.T) {
	assert.True(t, GroupCorridors.IsGroup())
	assert.True(t, GroupPatientFacing.IsGroup())
	assert.False(t, Target("ADMIN").IsGroup())
	assert.False(t, Target(TreatmentRoom).IsGroup())

	assert.True(t, IsCorridorType("CROSSOVER_HALLWAY"))
	assert.True(t, IsCorridorType(ClinicalCorridor))
	assert.False(t, IsCorridorType("LAB"))

	assert.True(t, ConditionIfPresent.Applies())
	assert.True(t, Condition("").Applies())
	assert.False(t, ConditionIfAbsent.Applies())
	assert.False(t, ConditionIfThreshold.Applies())
}

func TestWithOverridesReplacesByType(t *testing.T) {
	base := MustDefault()
	doc := `
rooms:
  - type: LAB
    category: CLINICAL
    geometry:
      shape: RECTANGULAR
      fallback: MINIMUM
      tiers:
        - {label: big_lab, width: 120, length: 144}
  - type: PANTRY
    category: PRIVATE
    geometry: {shape: RECTANGULAR, fallback: MINIMUM}
`
	repo, err := base.WithOverrides(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, base.Len()+1, repo.Len())

	lab, ok := repo.Get("LAB")
	require.True(t, ok)
	require.Len(t, lab.Geometry.Tiers, 1)
	assert.Equal(t, "big_lab", lab.Geometry.Tiers[0].Label)
	assert.True(t, repo.Has("PANTRY"))

	// the base repository is untouched
	orig, _ := base.Get("LAB")
	assert.Equal(t, "default_lab", orig.Geometry.Tiers[0].Label)
	assert.False(t, base.Has("PANTRY"))
}

func TestLoadRejectsInvalidRecords(t *testing.T) {
	_, err := Load(strings.NewReader(`
rooms:
  - type: A
    category: OUTDOOR
  - type: B
    category: CLINICAL
    geometry:
      tiers:
        - {label: bad, treatment_rooms_min: 9, treatment_rooms_max: 2}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
	assert.Contains(t, err.Error(), "empty treatment room range")
}

func TestLoadRejectsDuplicatesAndUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("rooms:\n  - {type: A, category: PUBLIC}\n  - {type: A, category: PUBLIC}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate room type A")

	_, err = Load(strings.NewReader("rooms:\n  - {type: A, category: PUBLIC, colour: red}\n"))
	require.Error(t, err)
}

func TestOmittedHardDefaultsToTrue(t *testing.T) {
	repo, err := Load(strings.NewReader(`
rooms:
  - type: A
    category: CLINICAL
    access:
      entries:
        - {kind: ENTRY_FROM, target: B}
    adjacency:
      direct: [{target: B}]
      separation: [{target: C}]
    visibility:
      hidden_from: [{target: C}]
      visible_from: [{target: B, hard: false}]
  - {type: B, category: CLINICAL}
  - {type: C, category: PUBLIC}
`))
	require.NoError(t, err)
	a, ok := repo.Get("A")
	require.True(t, ok)

	require.Len(t, a.Access.Entries, 1)
	assert.True(t, a.Access.Entries[0].Hard)
	require.Len(t, a.Adjacency.Direct, 1)
	assert.True(t, a.Adjacency.Direct[0].Hard)
	require.Len(t, a.Adjacency.Separation, 1)
	assert.True(t, a.Adjacency.Separation[0].Hard)
	require.Len(t, a.Visibility.HiddenFrom, 1)
	assert.True(t, a.Visibility.HiddenFrom[0].Hard)
	require.Len(t, a.Visibility.VisibleFrom, 1)
	assert.False(t, a.Visibility.VisibleFrom[0].Hard, "explicit hard: false is kept")
}

func TestRuleRecordsRejectUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader(`
rooms:
  - type: A
    category: CLINICAL
    adjacency:
      direct: [{target: B, hardness: 1}]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hardness")
}

func TestByCategory(t *testing.T) {
	repo := New(
		RoomRule{Type: "B", Category: CategoryPublic},
		RoomRule{Type: "A", Category: CategoryPublic},
		RoomRule{Type: "C", Category: CategoryClinical},
	)
	assert.Equal(t, []string{"A", "B"}, repo.ByCategory(CategoryPublic))
	assert.Equal(t, []string{"A", "B", "C"}, repo.Types())
}
