package engine

import (
	"fmt"

	"github.com/piwi3910/ClinicLayout/internal/mip"
	"github.com/piwi3910/ClinicLayout/internal/model"
)

// guard makes a constraint conditional: it binds only while every on
// selector is 1 and every off indicator is 0. Each relaxation is by big-M.
type guard struct {
	on  []mip.Var
	off []mip.Var
}

func when(sel ...mip.Var) guard { return guard{on: sel} }

func (g guard) unless(v *mip.Var) guard {
	if v == nil {
		return g
	}
	return guard{on: g.on, off: append(append([]mip.Var(nil), g.off...), *v)}
}

// le adds expr <= rhs under g.
func (b *builder) le(expr *mip.LinearExpr, rhs int, g guard, name string) {
	e := expr.Clone()
	for _, v := range g.on {
		e.AddTerm(v, b.bigM)
	}
	for _, v := range g.off {
		e.AddTerm(v, -b.bigM)
	}
	b.m.AddLessOrEqual(e, rhs+b.bigM*len(g.on), name)
	b.count++
}

// ge adds expr >= rhs under g.
func (b *builder) ge(expr *mip.LinearExpr, rhs int, g guard, name string) {
	e := expr.Clone()
	for _, v := range g.on {
		e.AddTerm(v, -b.bigM)
	}
	for _, v := range g.off {
		e.AddTerm(v, b.bigM)
	}
	b.m.AddGreaterOrEqual(e, rhs-b.bigM*len(g.on), name)
	b.count++
}

// eq adds expr = rhs under g as a pair of inequalities.
func (b *builder) eq(expr *mip.LinearExpr, rhs int, g guard, name string) {
	b.le(expr, rhs, g, name+"_le")
	b.ge(expr, rhs, g, name+"_ge")
}

func diff(plus []mip.Var, minus ...mip.Var) *mip.LinearExpr {
	e := mip.Sum(plus...)
	for _, v := range minus {
		e.Sub(v)
	}
	return e
}

func vars(v ...mip.Var) []mip.Var { return v }

// softIndicator returns a penalized violation variable for relaxed rules
// and nil otherwise.
func (b *builder) softIndicator(mode softMode, kind string, a, c model.RoomInstance) *mip.Var {
	if mode != modeRelax {
		return nil
	}
	v := b.m.NewBoolVar(fmt.Sprintf("soft_%s_%s_%s", kind, a.ID, c.ID))
	b.m.AddObjectiveTerm(v, b.s.SoftRulePenalty)
	b.h.Soft = append(b.h.Soft, SoftVar{Var: v, Kind: kind, A: a.ID, B: c.ID})
	return &v
}

// atLeastOne adds sum(sel) (+ relax) >= 1.
func (b *builder) atLeastOne(sel []mip.Var, relax *mip.Var, name string) {
	e := mip.Sum(sel...)
	if relax != nil {
		e.Add(*relax)
	}
	b.m.AddGreaterOrEqual(e, 1, name)
	b.count++
}

// addShellBounds keeps every room inside the shell with positive size.
func (b *builder) addShellBounds() {
	for _, r := range b.h.Rooms {
		id := r.Instance.ID
		b.m.AddLessOrEqual(mip.Sum(r.X, r.W), b.shell.Width, "shell_x_"+id)
		b.m.AddLessOrEqual(mip.Sum(r.Y, r.H), b.shell.Height, "shell_y_"+id)
		b.m.AddGreaterOrEqual(mip.Sum(r.W), 1, "min_w_"+id)
		b.m.AddGreaterOrEqual(mip.Sum(r.H), 1, "min_h_"+id)
		b.count += 4
	}
}

// addDoorPerimeter puts every active door on exactly one edge of its room,
// within that edge's span.
func (b *builder) addDoorPerimeter() {
	for _, r := range b.h.Rooms {
		for k, d := range r.Doors {
			p := fmt.Sprintf("door_%s_%d", r.Instance.ID, k)
			left := b.m.NewBoolVar(p + "_left")
			right := b.m.NewBoolVar(p + "_right")
			top := b.m.NewBoolVar(p + "_top")
			bottom := b.m.NewBoolVar(p + "_bottom")

			sides := mip.Sum(left, right, top, bottom).Sub(d.Active)
			b.m.AddEquality(sides, 0, p+"_side")
			b.count++

			b.eq(diff(vars(d.X), r.X), 0, when(left), p+"_on_left")
			b.spanY(d, r, 0, when(left), p+"_left")

			b.eq(diff(vars(d.X), r.X, r.W), 0, when(right), p+"_on_right")
			b.spanY(d, r, 0, when(right), p+"_right")

			b.eq(diff(vars(d.Y), r.Y), 0, when(top), p+"_on_top")
			b.spanX(d, r, 0, when(top), p+"_top")

			b.eq(diff(vars(d.Y), r.Y, r.H), 0, when(bottom), p+"_on_bottom")
			b.spanX(d, r, 0, when(bottom), p+"_bottom")
		}
	}
}

// spanY keeps a door's y within [y-grow, y+h+grow] of r.
func (b *builder) spanY(d DoorVars, r *RoomVars, grow int, g guard, name string) {
	b.ge(diff(vars(d.Y), r.Y), -grow, g, name+"_span_lo")
	b.le(diff(vars(d.Y), r.Y, r.H), grow, g, name+"_span_hi")
}

// spanX keeps a door's x within [x-grow, x+w+grow] of r.
func (b *builder) spanX(d DoorVars, r *RoomVars, grow int, g guard, name string) {
	b.ge(diff(vars(d.X), r.X), -grow, g, name+"_span_lo")
	b.le(diff(vars(d.X), r.X, r.W), grow, g, name+"_span_hi")
}

// separate adds the four-way disjunction "i and j are at least gap apart on
// some side". With gap 0 this is plain non-overlap.
func (b *builder) separate(i, j *RoomVars, gap int, relax *mip.Var, prefix string) {
	left := b.m.NewBoolVar(prefix + "_left")
	right := b.m.NewBoolVar(prefix + "_right")
	above := b.m.NewBoolVar(prefix + "_above")
	below := b.m.NewBoolVar(prefix + "_below")

	b.le(diff(vars(i.X, i.W), j.X), -gap, when(left).unless(relax), prefix+"_left")
	b.le(diff(vars(j.X, j.W), i.X), -gap, when(right).unless(relax), prefix+"_right")
	b.le(diff(vars(i.Y, i.H), j.Y), -gap, when(above).unless(relax), prefix+"_above")
	b.le(diff(vars(j.Y, j.H), i.Y), -gap, when(below).unless(relax), prefix+"_below")
	b.atLeastOne(vars(left, right, above, below), relax, prefix+"_any")
}

// addNonOverlap separates every unordered pair of rooms.
func (b *builder) addNonOverlap() {
	rooms := b.h.Rooms
	for a := 0; a < len(rooms); a++ {
		for c := a + 1; c < len(rooms); c++ {
			b.separate(rooms[a], rooms[c], 0, nil, fmt.Sprintf("nooverlap_%s_%s", rooms[a].Instance.ID, rooms[c].Instance.ID))
		}
	}
}

// addCorridorEntry ties the doors of rooms entered from the corridor to the
// corridor's bounding band grown by the wall thickness. In exact mode an
// active door lies on an edge of that band.
func (b *builder) addCorridorEntry(rs ruleSet) {
	if rs.corridor == nil {
		return
	}
	c, ok := b.h.Room(rs.corridor.ID)
	if !ok {
		return
	}
	wall := b.s.WallThickness
	for _, t := range rs.tied {
		mode := ruleMode(t.Hard, b.s.SoftRules)
		if mode == modeSkip {
			continue
		}
		r, _ := b.h.Room(t.Room.ID)
		relax := b.softIndicator(mode, "entry", t.Room, *rs.corridor)
		for k, d := range r.Doors {
			p := fmt.Sprintf("corridor_%s_%d", r.Instance.ID, k)
			if !b.s.ExactCorridorEntry {
				g := when(d.Active).unless(relax)
				b.spanX(d, c, wall, g, p)
				b.spanY(d, c, wall, g, p)
				continue
			}

			left := b.m.NewBoolVar(p + "_left")
			right := b.m.NewBoolVar(p + "_right")
			top := b.m.NewBoolVar(p + "_top")
			bottom := b.m.NewBoolVar(p + "_bottom")
			edges := mip.Sum(left, right, top, bottom)
			b.m.AddLessOrEqual(edges.Clone().Sub(d.Active), 0, p+"_edge_max")
			if relax != nil {
				edges.Add(*relax)
			}
			b.m.AddGreaterOrEqual(edges.Sub(d.Active), 0, p+"_edge_min")
			b.count += 2

			b.eq(diff(vars(d.X), c.X), -wall, when(left), p+"_on_left")
			b.spanY(d, c, wall, when(left), p+"_left")
			b.eq(diff(vars(d.X), c.X, c.W), wall, when(right), p+"_on_right")
			b.spanY(d, c, wall, when(right), p+"_right")
			b.eq(diff(vars(d.Y), c.Y), -wall, when(top), p+"_on_top")
			b.spanX(d, c, wall, when(top), p+"_top")
			b.eq(diff(vars(d.Y), c.Y, c.H), wall, when(bottom), p+"_on_bottom")
			b.spanX(d, c, wall, when(bottom), p+"_bottom")
		}
	}
}

// addEntryCounts bounds the number of active doors per room by the entry
// count rule matching the scaling parameter.
func (b *builder) addEntryCounts() {
	for _, r := range b.h.Rooms {
		rule, ok := b.repo.Get(r.Instance.Type)
		if !ok || len(r.Doors) == 0 {
			continue
		}
		ec, ok := rule.EntryCountsFor(b.n)
		if !ok {
			continue
		}
		active := make([]mip.Var, len(r.Doors))
		for k, d := range r.Doors {
			active[k] = d.Active
		}
		if lo := min(ec.Min, len(active)); lo > 0 {
			b.m.AddGreaterOrEqual(mip.Sum(active...), lo, "entries_min_"+r.Instance.ID)
			b.count++
		}
		if ec.Max != nil && *ec.Max < len(active) {
			b.m.AddLessOrEqual(mip.Sum(active...), *ec.Max, "entries_max_"+r.Instance.ID)
			b.count++
		}
	}
}

// addDirect makes two rooms share a wall: on the selected side their facing
// edges are exactly one wall thickness apart and the shared segment is at
// least MinOverlap long.
func (b *builder) addDirect(p rulePair, relax *mip.Var) {
	r, _ := b.h.Room(p.A.ID)
	t, _ := b.h.Room(p.B.ID)
	prefix := fmt.Sprintf("direct_%s_%s", p.A.ID, p.B.ID)
	wall, ov := b.s.WallThickness, b.s.MinOverlap

	rLeft := b.m.NewBoolVar(prefix + "_r_left")
	tLeft := b.m.NewBoolVar(prefix + "_t_left")
	rAbove := b.m.NewBoolVar(prefix + "_r_above")
	tAbove := b.m.NewBoolVar(prefix + "_t_above")

	horizontal := func(a, c *RoomVars, sel mip.Var, name string) {
		g := when(sel).unless(relax)
		b.eq(diff(vars(a.X, a.W), c.X), -wall, g, name+"_gap")
		b.le(diff(vars(a.Y), c.Y, c.H), -ov, g, name+"_overlap_a")
		b.le(diff(vars(c.Y), a.Y, a.H), -ov, g, name+"_overlap_c")
		b.ge(mip.Sum(a.H), ov, g, name+"_span_a")
		b.ge(mip.Sum(c.H), ov, g, name+"_span_c")
	}
	vertical := func(a, c *RoomVars, sel mip.Var, name string) {
		g := when(sel).unless(relax)
		b.eq(diff(vars(a.Y, a.H), c.Y), -wall, g, name+"_gap")
		b.le(diff(vars(a.X), c.X, c.W), -ov, g, name+"_overlap_a")
		b.le(diff(vars(c.X), a.X, a.W), -ov, g, name+"_overlap_c")
		b.ge(mip.Sum(a.W), ov, g, name+"_span_a")
		b.ge(mip.Sum(c.W), ov, g, name+"_span_c")
	}

	horizontal(r, t, rLeft, prefix+"_r_left")
	horizontal(t, r, tLeft, prefix+"_t_left")
	vertical(r, t, rAbove, prefix+"_r_above")
	vertical(t, r, tAbove, prefix+"_t_above")
	b.atLeastOne(vars(rLeft, tLeft, rAbove, tAbove), relax, prefix+"_any")
}

// addDistance links d to the Manhattan distance between the rooms' origin
// corners and returns it.
func (b *builder) addDistance(p rulePair, prefix string) mip.Var {
	r, _ := b.h.Room(p.A.ID)
	t, _ := b.h.Room(p.B.ID)
	dx := b.m.NewIntVar(0, b.shell.Width, prefix+"_dx")
	dy := b.m.NewIntVar(0, b.shell.Height, prefix+"_dy")
	d := b.m.NewIntVar(0, b.shell.Width+b.shell.Height, prefix+"_d")

	b.m.AddGreaterOrEqual(diff(vars(dx, t.X), r.X), 0, prefix+"_dx_pos")
	b.m.AddGreaterOrEqual(diff(vars(dx, r.X), t.X), 0, prefix+"_dx_neg")
	b.m.AddGreaterOrEqual(diff(vars(dy, t.Y), r.Y), 0, prefix+"_dy_pos")
	b.m.AddGreaterOrEqual(diff(vars(dy, r.Y), t.Y), 0, prefix+"_dy_neg")
	b.m.AddEquality(diff(vars(d), dx, dy), 0, prefix+"_d")
	b.count += 5
	return d
}

// addAdjacencyRules emits direct, separation and proximity pairs. Direct
// and separation pairs are hard under every soft rule policy.
func (b *builder) addAdjacencyRules(rs ruleSet) {
	for _, p := range rs.direct {
		b.addDirect(p, nil)
	}
	for _, p := range rs.separation {
		i, _ := b.h.Room(p.A.ID)
		j, _ := b.h.Room(p.B.ID)
		b.separate(i, j, b.s.MinSeparation, nil, fmt.Sprintf("separation_%s_%s", p.A.ID, p.B.ID))
	}
	for k, p := range rs.proximity {
		prefix := fmt.Sprintf("proximity_%d_%s_%s", k, p.A.ID, p.B.ID)
		d := b.addDistance(p, prefix)
		if p.Cap != nil {
			b.m.AddLessOrEqual(mip.Sum(d), *p.Cap, prefix+"_cap")
			b.count++
		}
		if p.Weight > 0 {
			b.m.AddObjectiveTerm(d, p.Weight)
		}
	}
}

// addVisibilityRules emits hidden-from pairs as separations with the
// visibility gap and visible-from pairs as capped distances.
func (b *builder) addVisibilityRules(rs ruleSet) {
	for _, p := range rs.hidden {
		mode := ruleMode(p.Hard, b.s.SoftRules)
		if mode == modeSkip {
			continue
		}
		i, _ := b.h.Room(p.A.ID)
		j, _ := b.h.Room(p.B.ID)
		relax := b.softIndicator(mode, "hidden", p.A, p.B)
		b.separate(i, j, b.s.VisibilityGap, relax, fmt.Sprintf("hidden_%s_%s", p.A.ID, p.B.ID))
	}
	for _, p := range rs.visible {
		mode := ruleMode(p.Hard, b.s.SoftRules)
		if mode == modeSkip {
			continue
		}
		prefix := fmt.Sprintf("visible_%s_%s", p.A.ID, p.B.ID)
		d := b.addDistance(p, prefix)
		relax := b.softIndicator(mode, "visible", p.A, p.B)
		b.le(mip.Sum(d), b.s.MaxVisibilityDistance, guard{}.unless(relax), prefix+"_cap")
	}
}

// addSizeMin applies the minimum tier bounds.
func (b *builder) addSizeMin() {
	for _, r := range b.h.Rooms {
		bounds := b.geo.SelectBounds(r.Instance, b.n)
		if bounds.MinW != nil {
			b.m.AddGreaterOrEqual(mip.Sum(r.W), *bounds.MinW, "size_min_w_"+r.Instance.ID)
			b.count++
		}
		if bounds.MinH != nil {
			b.m.AddGreaterOrEqual(mip.Sum(r.H), *bounds.MinH, "size_min_h_"+r.Instance.ID)
			b.count++
		}
	}
}

// addSizeMax applies the maximum tier bounds.
func (b *builder) addSizeMax() {
	for _, r := range b.h.Rooms {
		bounds := b.geo.SelectBounds(r.Instance, b.n)
		if bounds.MaxW != nil {
			b.m.AddLessOrEqual(mip.Sum(r.W), *bounds.MaxW, "size_max_w_"+r.Instance.ID)
			b.count++
		}
		if bounds.MaxH != nil {
			b.m.AddLessOrEqual(mip.Sum(r.H), *bounds.MaxH, "size_max_h_"+r.Instance.ID)
			b.count++
		}
	}
}

// addCenterBias penalizes each biased room's doubled center offset from
// the shell center: weight * (|2x+w-W| + |2y+h-H|).
func (b *builder) addCenterBias() {
	W, H := b.shell.Width, b.shell.Height
	for _, r := range b.h.Rooms {
		rule, ok := b.repo.Get(r.Instance.Type)
		if !ok || rule.Optimization.CenterBias == nil || rule.Optimization.CenterBias.Weight <= 0 {
			continue
		}
		weight := rule.Optimization.CenterBias.Weight
		id := r.Instance.ID
		cx := b.m.NewIntVar(0, W, "center_x_"+id)
		cy := b.m.NewIntVar(0, H, "center_y_"+id)

		b.m.AddGreaterOrEqual(mip.NewLinearExpr().Add(cx).AddTerm(r.X, -2).Sub(r.W), -W, "center_x_pos_"+id)
		b.m.AddGreaterOrEqual(mip.NewLinearExpr().Add(cx).AddTerm(r.X, 2).Add(r.W), W, "center_x_neg_"+id)
		b.m.AddGreaterOrEqual(mip.NewLinearExpr().Add(cy).AddTerm(r.Y, -2).Sub(r.H), -H, "center_y_pos_"+id)
		b.m.AddGreaterOrEqual(mip.NewLinearExpr().Add(cy).AddTerm(r.Y, 2).Add(r.H), H, "center_y_neg_"+id)
		b.count += 4

		b.m.AddObjectiveTerm(cx, weight)
		b.m.AddObjectiveTerm(cy, weight)
	}
}

// addSizeObjective adds the room size term selected by the objective mode.
func (b *builder) addSizeObjective() {
	var weight float64
	switch b.s.Objective {
	case model.ObjectiveGenerous:
		weight = -1
	case model.ObjectiveCompact:
		weight = 1
	default:
		return
	}
	for _, r := range b.h.Rooms {
		b.m.AddObjectiveTerm(r.W, weight)
		b.m.AddObjectiveTerm(r.H, weight)
	}
}
