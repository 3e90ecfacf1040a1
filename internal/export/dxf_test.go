package export

import (
	"path/filepath"
	"testing"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/ClinicLayout/internal/importer"
	"github.com/piwi3910/ClinicLayout/internal/model"
)

func TestExportDXF_Entities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.dxf")

	if err := ExportDXF(path, buildTestResult()); err != nil {
		t.Fatalf("ExportDXF returned error: %v", err)
	}

	d, err := dxf.Open(path)
	if err != nil {
		t.Fatalf("cannot reopen DXF: %v", err)
	}
	var polylines, circles, texts int
	for _, e := range d.Entities() {
		switch e.(type) {
		case *entity.LwPolyline:
			polylines++
		case *entity.Circle:
			circles++
		case *entity.Text:
			texts++
		}
	}
	if polylines != 5 {
		t.Errorf("expected shell plus 4 rooms, got %d polylines", polylines)
	}
	if circles != 3 {
		t.Errorf("expected 3 door markers, got %d", circles)
	}
	if texts != 4 {
		t.Errorf("expected 4 labels, got %d", texts)
	}
}

func TestExportDXF_ShellRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.dxf")
	result := buildTestResult()

	if err := ExportDXF(path, result); err != nil {
		t.Fatalf("ExportDXF returned error: %v", err)
	}

	imported := importer.ImportShellDXF(path)
	if len(imported.Errors) > 0 {
		t.Fatalf("unexpected import errors: %v", imported.Errors)
	}
	if imported.Shell != result.Shell {
		t.Errorf("expected shell %v, got %v", result.Shell, imported.Shell)
	}
}

func TestExportDXF_NoLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.dxf")
	if err := ExportDXF(path, model.LayoutResult{Status: model.StatusInfeasible}); err != ErrNoLayout {
		t.Errorf("expected ErrNoLayout, got %v", err)
	}
}
