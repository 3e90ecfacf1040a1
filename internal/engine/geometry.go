package engine

import (
	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

// Bounds are optional size limits for one room. A nil field is left to the
// shell.
type Bounds struct {
	MinW, MinH, MaxW, MaxH *int
}

// GeometrySelector picks size bounds from a room type's dimension tiers.
type GeometrySelector struct {
	repo *rules.Repository
}

func NewGeometrySelector(repo *rules.Repository) GeometrySelector {
	return GeometrySelector{repo: repo}
}

// SelectBounds returns the bounds for an instance at scaling parameter n,
// the treatment room count. Unknown room types get no bounds.
func (g GeometrySelector) SelectBounds(inst model.RoomInstance, n int) Bounds {
	rule, ok := g.repo.Get(inst.Type)
	if !ok {
		return Bounds{}
	}
	return TierBounds(rule.Geometry, n)
}

// TierBounds implements tier selection for one geometry record:
//
//   - candidates are the tiers whose range contains n, else the unranged
//     tiers, else every tier;
//   - minimums are the smallest declared width and length over candidates;
//   - maximums come from the single candidate with the largest
//     (width, length, area), missing values scoring 0;
//   - width and depth rules fill bounds the tiers leave open.
func TierBounds(geo rules.Geometry, n int) Bounds {
	var b Bounds
	candidates := tierCandidates(geo.Tiers, n)

	for _, t := range candidates {
		if t.Width != nil && (b.MinW == nil || *t.Width < *b.MinW) {
			b.MinW = intp(*t.Width)
		}
		if t.Length != nil && (b.MinH == nil || *t.Length < *b.MinH) {
			b.MinH = intp(*t.Length)
		}
	}

	if top, ok := largestTier(candidates); ok {
		if top.Width != nil {
			b.MaxW = intp(*top.Width)
		}
		if top.Length != nil {
			b.MaxH = intp(*top.Length)
		}
	}

	if wr := geo.WidthRules; wr != nil {
		if b.MinW == nil && wr.Min != nil {
			b.MinW = intp(*wr.Min)
		}
		if b.MaxW == nil && wr.Max != nil {
			b.MaxW = intp(*wr.Max)
		}
	}
	if dr := geo.DepthRules; dr != nil && b.MinH == nil {
		if deepest, ok := dr.Deepest(); ok {
			b.MinH = intp(deepest)
		}
	}
	return b
}

func tierCandidates(tiers []rules.DimensionTier, n int) []rules.DimensionTier {
	var matching, generic []rules.DimensionTier
	for _, t := range tiers {
		switch {
		case !t.Ranged():
			generic = append(generic, t)
		case t.Matches(n):
			matching = append(matching, t)
		}
	}
	switch {
	case len(matching) > 0:
		return matching
	case len(generic) > 0:
		return generic
	}
	return tiers
}

// largestTier returns the first tier with the highest lexicographic
// (width, length, area) score.
func largestTier(tiers []rules.DimensionTier) (rules.DimensionTier, bool) {
	if len(tiers) == 0 {
		return rules.DimensionTier{}, false
	}
	best := tiers[0]
	bestScore := tierScore(best)
	for _, t := range tiers[1:] {
		s := tierScore(t)
		if greater(s, bestScore) {
			best, bestScore = t, s
		}
	}
	return best, true
}

func tierScore(t rules.DimensionTier) [3]int {
	return [3]int{deref(t.Width), deref(t.Length), deref(t.AreaSqIn)}
}

func greater(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func intp(v int) *int { return &v }

// Footprints returns the minimum footprint of every room type in program,
// falling back to 1x1 when a bound is open.
func (g GeometrySelector) Footprints(program []model.RoomRequest, n int) []model.Footprint {
	counts := make(map[string]int)
	var order []string
	for _, req := range program {
		if _, seen := counts[req.Type]; !seen {
			order = append(order, req.Type)
		}
		counts[req.Type] += req.Count
	}
	out := make([]model.Footprint, 0, len(order))
	for _, typ := range order {
		b := g.SelectBounds(model.RoomInstance{Type: typ}, n)
		out = append(out, model.Footprint{
			Type:  typ,
			MinW:  max(deref(b.MinW), 1),
			MinH:  max(deref(b.MinH), 1),
			Count: counts[typ],
		})
	}
	return out
}
