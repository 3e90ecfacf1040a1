package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/ClinicLayout/internal/model"
)

// point is a drawing coordinate in inches.
type point struct {
	X, Y float64
}

// segment represents a line segment between two points, used for chaining
// disconnected LINE entities into closed outlines.
type segment struct {
	start point
	end   point
}

// ShellImport holds the result of reading a building outline.
type ShellImport struct {
	Shell    model.Shell
	Errors   []string
	Warnings []string
}

// ImportShellDXF reads a building shell from a DXF drawing in inches. The
// largest closed outline (LWPOLYLINE or chain of LINEs) gives the shell as
// its bounding box.
func ImportShellDXF(path string) ShellImport {
	result := ShellImport{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines [][]point
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylineToOutline(e)
			if len(outline) >= 3 {
				outlines = append(outlines, outline)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: point{X: e.Start[0], Y: e.Start[1]},
				end:   point{X: e.End[0], Y: e.End[1]},
			})

		default:
			// Unsupported entity types are silently skipped
		}
	}

	outlines = append(outlines, chainSegments(segments, 0.01)...)
	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed outline found in DXF file")
		return result
	}

	// Largest first for a stable choice.
	sort.SliceStable(outlines, func(i, j int) bool {
		return outlineArea(outlines[i]) > outlineArea(outlines[j])
	})
	if len(outlines) > 1 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Found %d closed outlines, using the largest", len(outlines)))
	}

	outline := normalizeOutline(outlines[0])
	lo, hi := boundingBox(outline)
	width, height := hi.X-lo.X, hi.Y-lo.Y
	if width < 1 || height < 1 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Outline is degenerate (%.2f x %.2f in)", width, height))
		return result
	}
	if !isRectangle(outline, width*height) {
		result.Warnings = append(result.Warnings, "Outline is not rectangular, using its bounding box")
	}

	result.Shell = model.Shell{Width: int(math.Round(width)), Height: int(math.Round(height))}
	return result
}

// lwPolylineToOutline converts a DXF LWPOLYLINE entity to an outline.
// Shell walls are straight, so bulges are ignored.
func lwPolylineToOutline(lw *entity.LwPolyline) []point {
	outline := make([]point, 0, len(lw.Vertices))
	for _, v := range lw.Vertices {
		outline = append(outline, point{X: v[0], Y: v[1]})
	}
	return outline
}

// chainSegments connects individual segments into closed outlines.
// tolerance is the maximum distance between endpoints to consider them connected.
func chainSegments(segs []segment, tolerance float64) [][]point {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var outlines [][]point

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []point{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		// Only closed chains describe a shell.
		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, chain[:len(chain)-1])
		}
	}

	return outlines
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b point, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}

// outlineArea computes the absolute area of a polygon using the shoelace formula.
func outlineArea(o []point) float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X * o[j].Y
		area -= o[j].X * o[i].Y
	}
	return math.Abs(area) / 2
}

func boundingBox(o []point) (lo, hi point) {
	if len(o) == 0 {
		return point{}, point{}
	}
	lo, hi = o[0], o[0]
	for _, p := range o[1:] {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// normalizeOutline translates the outline so its bounding box starts at (0, 0).
func normalizeOutline(o []point) []point {
	lo, _ := boundingBox(o)
	out := make([]point, len(o))
	for i, p := range o {
		out[i] = point{X: p.X - lo.X, Y: p.Y - lo.Y}
	}
	return out
}

// isRectangle reports whether an outline fills its bounding box.
func isRectangle(o []point, boxArea float64) bool {
	return math.Abs(outlineArea(o)-boxArea) <= 0.01*boxArea
}
