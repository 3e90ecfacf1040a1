package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/ClinicLayout/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildTestResult()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportLabels_NoLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	if err := ExportLabels(path, model.LayoutResult{Status: model.StatusUnknown}); err == nil {
		t.Fatal("expected error for empty result, got nil")
	}
	if err := ExportLabels(path, model.LayoutResult{Status: model.StatusOptimal}); err == nil {
		t.Fatal("expected error for result with no rooms, got nil")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestResult())

	if len(labels) != 4 {
		t.Fatalf("expected 4 labels, got %d", len(labels))
	}

	// Schedule order puts the corridor first.
	if labels[0].RoomID != "CLINICAL_CORRIDOR__0" {
		t.Errorf("expected corridor first, got %q", labels[0].RoomID)
	}
	tr := labels[1]
	if tr.Name != "Treatment Room 1" || tr.Type != "TREATMENT_ROOM" {
		t.Errorf("unexpected label %+v", tr)
	}
	if tr.Width != 120 || tr.Height != 132 {
		t.Errorf("wrong dimensions: got %dx%d, want 120x132", tr.Width, tr.Height)
	}
	if tr.Doors != 1 {
		t.Errorf("expected 1 active door, got %d", tr.Doors)
	}
	if tr.RunID != "run-1" {
		t.Errorf("expected run id, got %q", tr.RunID)
	}
}

func TestLabelInfo_JSONKeys(t *testing.T) {
	data, err := json.Marshal(CollectLabelInfos(buildTestResult())[0])
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	for _, key := range []string{"room", "name", "category", "x_in", "y_in", "width_in", "height_in", "doors"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

func TestExportLabels_ManyRooms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many_labels.pdf")

	// 35 rooms span two label pages.
	rooms := make([]model.RoomPlacement, 35)
	for i := range rooms {
		rooms[i] = model.RoomPlacement{
			ID:       model.InstanceID("TREATMENT_ROOM", i),
			Type:     "TREATMENT_ROOM",
			Category: "CLINICAL",
			X:        i * 110,
			W:        100,
			H:        120,
		}
	}
	result := model.LayoutResult{
		Shell:  model.Shell{Width: 4000, Height: 200},
		Status: model.StatusFeasible,
		Rooms:  rooms,
	}

	if err := ExportLabels(path, result); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("PDF file missing or empty: %v", err)
	}
}
