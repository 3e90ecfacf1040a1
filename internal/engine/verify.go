package engine

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

// Violation kinds reported by Verify.
const (
	ViolationMissing    = "missing"
	ViolationShell      = "shell"
	ViolationOverlap    = "overlap"
	ViolationDoor       = "door"
	ViolationCorridor   = "corridor_entry"
	ViolationEntryCount = "entry_count"
	ViolationDirect     = "direct"
	ViolationSeparation = "separation"
	ViolationHidden     = "hidden"
	ViolationVisible    = "visible"
	ViolationProximity  = "proximity"
	ViolationSize       = "size"
)

// Violation is one broken layout property. Soft violations come from rules
// marked hard: false and may be accepted under the relax policy.
type Violation struct {
	Kind   string   `json:"kind"`
	Rooms  []string `json:"rooms"`
	Detail string   `json:"detail"`
	Soft   bool     `json:"soft,omitempty"`
}

func (v Violation) String() string {
	s := fmt.Sprintf("%s [%s]: %s", v.Kind, strings.Join(v.Rooms, ", "), v.Detail)
	if v.Soft {
		s += " (soft)"
	}
	return s
}

// Verify re-checks a solved layout against the geometric properties the
// model encodes. It returns nil for a compliant layout and for results
// without placements.
func Verify(result model.LayoutResult, instances []model.RoomInstance, repo *rules.Repository, settings model.LayoutSettings) []Violation {
	if !result.Status.HasLayout() {
		return nil
	}
	v := &verifier{
		result:   result,
		settings: settings,
		rooms:    make(map[string]model.RoomPlacement, len(result.Rooms)),
	}
	for _, p := range result.Rooms {
		v.rooms[p.ID] = p
	}

	var present []model.RoomInstance
	for _, inst := range instances {
		if _, ok := v.rooms[inst.ID]; !ok {
			v.add(ViolationMissing, "room has no placement", false, inst.ID)
			continue
		}
		present = append(present, inst)
	}

	v.checkShell()
	v.checkOverlap()
	v.checkDoors()
	if settings.EnforceEntryCounts {
		v.checkEntryCounts(present, repo, result.ScalingParam)
	}
	v.checkSizes(present, repo, result.ScalingParam)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	rs := collectRules(present, repo, NewResolver(present, repo), quiet)
	v.checkCorridor(rs)
	v.checkPairs(rs)
	return v.out
}

type verifier struct {
	result   model.LayoutResult
	settings model.LayoutSettings
	rooms    map[string]model.RoomPlacement
	out      []Violation
}

func (v *verifier) add(kind, detail string, soft bool, ids ...string) {
	v.out = append(v.out, Violation{Kind: kind, Rooms: ids, Detail: detail, Soft: soft})
}

func (v *verifier) checkShell() {
	shell := v.result.Shell
	for _, p := range v.result.Rooms {
		if p.W < 1 || p.H < 1 {
			v.add(ViolationShell, fmt.Sprintf("degenerate size %dx%d", p.W, p.H), false, p.ID)
		}
		if p.X < 0 || p.Y < 0 || p.Right() > shell.Width || p.Bottom() > shell.Height {
			v.add(ViolationShell, fmt.Sprintf("rectangle (%d,%d %dx%d) leaves the %s shell", p.X, p.Y, p.W, p.H, shell), false, p.ID)
		}
	}
}

func (v *verifier) checkOverlap() {
	rooms := v.result.Rooms
	for i := 0; i < len(rooms); i++ {
		for j := i + 1; j < len(rooms); j++ {
			if gap := Clearance(rooms[i], rooms[j]); gap < 0 {
				v.add(ViolationOverlap, "rectangles overlap", false, rooms[i].ID, rooms[j].ID)
			}
		}
	}
}

func (v *verifier) checkDoors() {
	for _, p := range v.result.Rooms {
		for k, d := range p.Doors {
			if !d.Active {
				continue
			}
			if _, ok := p.SideOf(d.X, d.Y); !ok {
				v.add(ViolationDoor, fmt.Sprintf("door %d at (%d,%d) is not on the room perimeter", k, d.X, d.Y), false, p.ID)
			}
		}
	}
}

func (v *verifier) checkEntryCounts(instances []model.RoomInstance, repo *rules.Repository, n int) {
	for _, inst := range instances {
		rule, ok := repo.Get(inst.Type)
		if !ok {
			continue
		}
		ec, ok := rule.EntryCountsFor(n)
		if !ok {
			continue
		}
		p := v.rooms[inst.ID]
		active := len(p.ActiveDoors())
		if lo := min(ec.Min, len(p.Doors)); active < lo {
			v.add(ViolationEntryCount, fmt.Sprintf("%d active doors, need at least %d", active, lo), false, p.ID)
		}
		if ec.Max != nil && active > *ec.Max {
			v.add(ViolationEntryCount, fmt.Sprintf("%d active doors, allowed at most %d", active, *ec.Max), false, p.ID)
		}
	}
}

func (v *verifier) checkSizes(instances []model.RoomInstance, repo *rules.Repository, n int) {
	geo := NewGeometrySelector(repo)
	for _, inst := range instances {
		b := geo.SelectBounds(inst, n)
		p := v.rooms[inst.ID]
		check := func(bound *int, got int, below bool, what string) {
			if bound == nil {
				return
			}
			if (below && got < *bound) || (!below && got > *bound) {
				v.add(ViolationSize, fmt.Sprintf("%s %d outside bound %d", what, got, *bound), false, p.ID)
			}
		}
		check(b.MinW, p.W, true, "width")
		check(b.MinH, p.H, true, "height")
		check(b.MaxW, p.W, false, "width")
		check(b.MaxH, p.H, false, "height")
	}
}

// checkCorridor verifies that active doors of corridor-entered rooms lie in
// the corridor band, or on its edge in exact mode.
func (v *verifier) checkCorridor(rs ruleSet) {
	if rs.corridor == nil {
		return
	}
	c := v.rooms[rs.corridor.ID]
	wall := v.settings.WallThickness
	left, right := c.X-wall, c.Right()+wall
	top, bottom := c.Y-wall, c.Bottom()+wall
	for _, t := range rs.tied {
		p := v.rooms[t.Room.ID]
		for k, d := range p.Doors {
			if !d.Active {
				continue
			}
			inBand := d.X >= left && d.X <= right && d.Y >= top && d.Y <= bottom
			onEdge := d.X == left || d.X == right || d.Y == top || d.Y == bottom
			switch {
			case !inBand:
				v.add(ViolationCorridor, fmt.Sprintf("door %d at (%d,%d) does not reach the corridor", k, d.X, d.Y), !t.Hard, p.ID, c.ID)
			case v.settings.ExactCorridorEntry && !onEdge:
				v.add(ViolationCorridor, fmt.Sprintf("door %d at (%d,%d) is not on the corridor edge", k, d.X, d.Y), !t.Hard, p.ID, c.ID)
			}
		}
	}
}

func (v *verifier) checkPairs(rs ruleSet) {
	s := v.settings
	for _, pr := range rs.direct {
		a, b := v.rooms[pr.A.ID], v.rooms[pr.B.ID]
		if !SharesWall(a, b, s.WallThickness, s.MinOverlap) {
			v.add(ViolationDirect, fmt.Sprintf("no shared wall of thickness %d with overlap %d", s.WallThickness, s.MinOverlap), !pr.Hard, a.ID, b.ID)
		}
	}
	for _, pr := range rs.separation {
		a, b := v.rooms[pr.A.ID], v.rooms[pr.B.ID]
		if gap := Clearance(a, b); gap < s.MinSeparation {
			v.add(ViolationSeparation, fmt.Sprintf("clearance %d below %d", gap, s.MinSeparation), !pr.Hard, a.ID, b.ID)
		}
	}
	for _, pr := range rs.hidden {
		a, b := v.rooms[pr.A.ID], v.rooms[pr.B.ID]
		if gap := Clearance(a, b); gap < s.VisibilityGap {
			v.add(ViolationHidden, fmt.Sprintf("clearance %d below %d", gap, s.VisibilityGap), !pr.Hard, a.ID, b.ID)
		}
	}
	for _, pr := range rs.visible {
		a, b := v.rooms[pr.A.ID], v.rooms[pr.B.ID]
		if d := CornerDistance(a, b); d > s.MaxVisibilityDistance {
			v.add(ViolationVisible, fmt.Sprintf("distance %d above %d", d, s.MaxVisibilityDistance), !pr.Hard, a.ID, b.ID)
		}
	}
	for _, pr := range rs.proximity {
		if pr.Cap == nil {
			continue
		}
		a, b := v.rooms[pr.A.ID], v.rooms[pr.B.ID]
		if d := CornerDistance(a, b); d > *pr.Cap {
			v.add(ViolationProximity, fmt.Sprintf("distance %d above %d", d, *pr.Cap), false, a.ID, b.ID)
		}
	}
}

// Clearance returns the largest axis gap between two rectangles. It is
// negative when they overlap and 0 when they touch.
func Clearance(a, b model.RoomPlacement) int {
	return max(b.X-a.Right(), a.X-b.Right(), b.Y-a.Bottom(), a.Y-b.Bottom())
}

// SharesWall reports whether a and b face each other across exactly one
// wall thickness with at least minOverlap of common edge.
func SharesWall(a, b model.RoomPlacement, wall, minOverlap int) bool {
	yOverlap := min(a.Bottom(), b.Bottom()) - max(a.Y, b.Y)
	xOverlap := min(a.Right(), b.Right()) - max(a.X, b.X)
	horizontal := b.X-a.Right() == wall || a.X-b.Right() == wall
	vertical := b.Y-a.Bottom() == wall || a.Y-b.Bottom() == wall
	return (horizontal && yOverlap >= minOverlap) || (vertical && xOverlap >= minOverlap)
}

// CornerDistance is the Manhattan distance between the origin corners of
// two rooms, the distance the proximity and visibility rules bound.
func CornerDistance(a, b model.RoomPlacement) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
