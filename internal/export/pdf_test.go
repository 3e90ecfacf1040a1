package export

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piwi3910/ClinicLayout/internal/model"
)

// buildTestResult creates a small solved clinic for testing.
func buildTestResult() model.LayoutResult {
	return model.LayoutResult{
		RunID:  "run-1",
		Shell:  model.Shell{Width: 720, Height: 480},
		Status: model.StatusOptimal,
		Rooms: []model.RoomPlacement{
			{
				ID: "TREATMENT_ROOM__0", Type: "TREATMENT_ROOM", Category: "CLINICAL",
				X: 0, Y: 0, W: 120, H: 132,
				Doors: []model.Door{{Active: true, X: 120, Y: 60, Side: model.SideRight}, {Active: false}},
			},
			{
				ID: "CLINICAL_CORRIDOR__0", Type: "CLINICAL_CORRIDOR", Category: "CLINICAL",
				X: 120, Y: 0, W: 60, H: 480,
				Doors: []model.Door{{Active: true, X: 150, Y: 480, Side: model.SideBottom}},
			},
			{
				ID: "CHECK_IN__0", Type: "CHECK_IN", Category: "PUBLIC",
				X: 180, Y: 0, W: 144, H: 96,
				Doors: []model.Door{{Active: true, X: 180, Y: 40, Side: model.SideLeft}},
			},
			{
				ID: "STAFF_LOUNGE__0", Type: "STAFF_LOUNGE", Category: "PRIVATE",
				X: 180, Y: 300, W: 150, H: 150,
			},
		},
		SolveTime:    1500 * time.Millisecond,
		Objective:    -1234,
		Variables:    120,
		Constraints:  400,
		ScalingParam: 1,
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.pdf")

	err := ExportPDF(path, "Smile Dental", buildTestResult(), model.DefaultLayoutSettings())
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:5]) != "%PDF-" {
		t.Errorf("expected a PDF header, got %q", data[:5])
	}
}

func TestExportPDF_NoLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	result := buildTestResult()
	result.Status = model.StatusInfeasible
	if err := ExportPDF(path, "x", result, model.DefaultLayoutSettings()); err != ErrNoLayout {
		t.Fatalf("expected ErrNoLayout, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file to be written")
	}
}

func TestExportPDF_ManyRoomsSpansPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.pdf")

	// More rooms than fit on one schedule page.
	rooms := make([]model.RoomPlacement, 60)
	for i := range rooms {
		rooms[i] = model.RoomPlacement{
			ID:       model.InstanceID("TREATMENT_ROOM", i),
			Type:     "TREATMENT_ROOM",
			Category: "CLINICAL",
			X:        (i % 10) * 100,
			Y:        (i / 10) * 100,
			W:        96,
			H:        96,
		}
	}
	result := model.LayoutResult{
		Shell:  model.Shell{Width: 1000, Height: 600},
		Status: model.StatusFeasible,
		Rooms:  rooms,
	}

	if err := ExportPDF(path, "Large clinic", result, model.DefaultLayoutSettings()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("PDF file missing or empty: %v", err)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{50, 50, 8},
		{30, 25, 7},
		{10, 15, 6},
	}
	for _, tt := range tests {
		got := labelFontSize(tt.w, tt.h)
		if got != tt.want {
			t.Errorf("labelFontSize(%v, %v) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestScheduleOrder(t *testing.T) {
	rooms := ScheduleOrder(buildTestResult().Rooms)
	want := []string{"CLINICAL_CORRIDOR__0", "TREATMENT_ROOM__0", "STAFF_LOUNGE__0", "CHECK_IN__0"}
	// CLINICAL < PRIVATE < PUBLIC
	for i, id := range want {
		if rooms[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, rooms[i].ID, id)
		}
	}
}

func TestScheduleRow(t *testing.T) {
	row := ScheduleRow(buildTestResult().Rooms[0])
	want := []string{"Treatment Room 1", "CLINICAL", "0'0\"", "0'0\"", "10'0\" x 11'0\"", "110.0", "1", "right"}
	if len(row) != len(want) {
		t.Fatalf("expected %d cells, got %d", len(want), len(row))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d: got %q, want %q", i, row[i], want[i])
		}
	}

	if got := ScheduleRow(buildTestResult().Rooms[3])[7]; got != "-" {
		t.Errorf("expected '-' for a room without doors, got %q", got)
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0'0\""},
		{114, "9'6\""},
		{720, "60'0\""},
		{-18, "-1'6\""},
	}
	for _, tt := range tests {
		if got := FeetInches(tt.in); got != tt.want {
			t.Errorf("FeetInches(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := SquareFeet(144 * 50); got != 50 {
		t.Errorf("SquareFeet = %v, want 50", got)
	}

	labels := map[string]string{
		"TREATMENT_ROOM__2": "Treatment Room 3",
		"LAB__0":            "Lab 1",
		"not-an-id":         "not-an-id",
	}
	for id, want := range labels {
		if got := RoomLabel(id); got != want {
			t.Errorf("RoomLabel(%q) = %q, want %q", id, got, want)
		}
	}
}

func ExampleFeetInches() {
	fmt.Println(FeetInches(126))
	// Output: 10'6"
}
