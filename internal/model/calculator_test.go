package model

import (
	"math"
	"testing"
)

func TestCalculateAreaEstimate(t *testing.T) {
	footprints := []Footprint{
		{Type: "TREATMENT_ROOM", MinW: 97, MinH: 132, Count: 4},
		{Type: "STERILIZATION", MinW: 110, MinH: 152, Count: 1},
		{Type: "LAB", Count: 1}, // unsized rooms count as 1x1
	}
	est := CalculateAreaEstimate(footprints, Shell{Width: 720, Height: 480}, 20)

	wantRooms := 97*132*4 + 110*152 + 1
	if est.RoomArea != wantRooms {
		t.Errorf("expected room area %d, got %d", wantRooms, est.RoomArea)
	}
	if math.Abs(est.RequiredArea-float64(wantRooms)*1.2) > 1e-6 {
		t.Errorf("unexpected required area %f", est.RequiredArea)
	}
	if !est.Fits {
		t.Error("expected program to fit")
	}
	if est.Utilization <= 0 || est.Utilization >= 100 {
		t.Errorf("unexpected utilization %f", est.Utilization)
	}
}

func TestCalculateAreaEstimateTooSmall(t *testing.T) {
	est := CalculateAreaEstimate([]Footprint{{MinW: 200, MinH: 200, Count: 3}}, Shell{Width: 300, Height: 300}, 0)
	if est.Fits {
		t.Error("120000 sq in of rooms cannot fit in 90000")
	}
}

func TestCalculateAreaEstimateZeroShell(t *testing.T) {
	est := CalculateAreaEstimate([]Footprint{{MinW: 10, MinH: 10, Count: 1}}, Shell{}, 10)
	if est.Fits || est.Utilization != 0 {
		t.Errorf("zero shell should not fit: %+v", est)
	}
	if est.RoomArea != 100 {
		t.Errorf("expected 100, got %d", est.RoomArea)
	}
}
