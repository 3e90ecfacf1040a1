package model

import "math"

// Footprint is the minimum size of one room type in a program.
type Footprint struct {
	Type  string `json:"type"`
	MinW  int    `json:"min_w"`
	MinH  int    `json:"min_h"`
	Count int    `json:"count"`
}

// AreaEstimate holds the results of an area budget pre-check.
type AreaEstimate struct {
	RoomArea           int     `json:"room_area"`           // Sum of minimum room areas (sq in)
	RoomAreaSqFt       float64 `json:"room_area_sq_ft"`     // Same in square feet
	ShellArea          int     `json:"shell_area"`          // Shell area (sq in)
	CirculationPercent float64 `json:"circulation_percent"` // Allowance for walls and circulation (e.g., 15 for 15%)
	RequiredArea       float64 `json:"required_area"`       // Room area plus allowance
	Utilization        float64 `json:"utilization"`         // Required area as a percentage of the shell
	Fits               bool    `json:"fits"`
}

// sqInPerSqFt is the number of square inches in one square foot.
const sqInPerSqFt = 144.0

// CalculateAreaEstimate checks whether a program's minimum footprints can
// fit in a shell. It is a quick necessary condition, not a proof of
// feasibility.
func CalculateAreaEstimate(footprints []Footprint, shell Shell, circulationPercent float64) AreaEstimate {
	var roomArea int
	for _, f := range footprints {
		w, h := max(f.MinW, 1), max(f.MinH, 1)
		roomArea += w * h * f.Count
	}

	required := float64(roomArea) * (1.0 + circulationPercent/100.0)
	est := AreaEstimate{
		RoomArea:           roomArea,
		RoomAreaSqFt:       math.Round(float64(roomArea)/sqInPerSqFt*10) / 10,
		ShellArea:          shell.Area(),
		CirculationPercent: circulationPercent,
		RequiredArea:       required,
	}
	if est.ShellArea <= 0 {
		return est
	}
	est.Utilization = required / float64(est.ShellArea) * 100.0
	est.Fits = required <= float64(est.ShellArea)
	return est
}
