package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

func issueFor(r ProgramReport, typ string) (ProgramIssue, bool) {
	for _, is := range r.Issues {
		if is.Type == typ {
			return is, true
		}
	}
	return ProgramIssue{}, false
}

func TestValidateProgramHappyPath(t *testing.T) {
	repo := rules.MustDefault()
	prog := []model.RoomRequest{
		{Type: rules.TreatmentRoom, Count: 6},
		{Type: "STERILIZATION", Count: 1},
		{Type: rules.ClinicalCorridor, Count: 1},
	}
	report := ValidateProgram(prog, model.Shell{Width: 1200, Height: 960}, repo, model.DefaultLayoutSettings())

	assert.False(t, report.HasErrors(), "%+v", report.Issues)
	assert.Len(t, report.Instances, 8)
	assert.Equal(t, 6, report.ScalingParam)
	assert.True(t, report.Estimate.Fits)
	assert.Zero(t, report.Count(SeverityWarning))
	assert.Positive(t, report.Count(SeverityInfo), "always-required rooms are listed")
}

func TestValidateProgramFlagsCountsAndTypes(t *testing.T) {
	repo := rules.MustDefault()
	prog := []model.RoomRequest{
		{Type: "STERILIZATION", Count: 2},
		{Type: "HOT_TUB", Count: 1},
		{Type: "LAB", Count: 0},
	}
	report := ValidateProgram(prog, model.Shell{Width: 2000, Height: 2000}, repo, model.DefaultLayoutSettings())

	is, ok := issueFor(report, "STERILIZATION")
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, is.Severity)
	assert.Contains(t, is.Message, "maximum of 1")

	is, ok = issueFor(report, "HOT_TUB")
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, is.Severity)

	is, ok = issueFor(report, "LAB")
	require.True(t, ok)
	assert.Equal(t, SeverityError, is.Severity)
	assert.True(t, report.HasErrors())
}

func TestValidateProgramNotesGroupShadowedType(t *testing.T) {
	repo := rules.MustDefault()
	require.True(t, repo.Has(string(rules.GroupPrivate)))
	prog := []model.RoomRequest{{Type: string(rules.GroupPrivate), Count: 1}}
	report := ValidateProgram(prog, model.Shell{Width: 1200, Height: 960}, repo, model.DefaultLayoutSettings())

	is, ok := issueFor(report, "PRIVATE")
	require.True(t, ok)
	assert.Equal(t, SeverityInfo, is.Severity)
	assert.Contains(t, is.Message, "group tag")

	res := NewResolver(report.Instances, repo)
	assert.Equal(t, report.Instances, res.Resolve(rules.GroupPrivate), "the group holds the room through its category")
}

func TestValidateProgramAreaPrecheck(t *testing.T) {
	repo := rules.MustDefault()
	prog := []model.RoomRequest{{Type: rules.TreatmentRoom, Count: 10}}

	// 10 rooms of at least 97x132 need 128040 sq in.
	report := ValidateProgram(prog, model.Shell{Width: 300, Height: 300}, repo, model.DefaultLayoutSettings())
	assert.True(t, report.HasErrors())
	assert.False(t, report.Estimate.Fits)

	// Fits raw but not with circulation.
	report = ValidateProgram(prog, model.Shell{Width: 400, Height: 330}, repo, model.DefaultLayoutSettings())
	assert.False(t, report.HasErrors(), "%+v", report.Issues)
	assert.Equal(t, 1, report.Count(SeverityWarning))
}

func TestValidateProgramInvalidShellAndEmptyProgram(t *testing.T) {
	report := ValidateProgram(nil, model.Shell{}, rules.New(), model.DefaultLayoutSettings())
	assert.Equal(t, 2, report.Count(SeverityError))
}

func TestValidateProgramLayoutOrientation(t *testing.T) {
	r := minSizeRule("WING", rules.CategoryPrivate, 10, 10)
	r.Orientation = map[rules.Layout]rules.OrientationHint{
		rules.LayoutNarrow: {Allowed: false},
		rules.LayoutH:      {Allowed: true},
	}
	repo := rules.New(r)
	s := model.DefaultLayoutSettings()

	s.Layout = string(rules.LayoutNarrow)
	report := ValidateProgram(program("WING"), model.Shell{Width: 500, Height: 500}, repo, s)
	is, ok := issueFor(report, "WING")
	require.True(t, ok)
	assert.Contains(t, is.Message, "NARROW")

	s.Layout = string(rules.LayoutH)
	report = ValidateProgram(program("WING"), model.Shell{Width: 500, Height: 500}, repo, s)
	_, ok = issueFor(report, "WING")
	assert.False(t, ok)
}
