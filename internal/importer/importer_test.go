package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"

	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

func newTestImporter() *Importer {
	return New(rules.MustDefault())
}

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Category,Space,Qty\nCLINICAL,Operatory,6\nCLINICAL,Steri,1\n", ','},
		{"semicolon", "Category;Space;Qty\nCLINICAL;Operatory;6\nCLINICAL;Steri;1\n", ';'},
		{"tab", "Category\tSpace\tQty\nCLINICAL\tOperatory\t6\nCLINICAL\tSteri\t1\n", '\t'},
		{"pipe", "Category|Space|Qty\nCLINICAL|Operatory|6\nCLINICAL|Steri|1\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("expected %q delimiter, got %q", tt.want, got)
			}
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"Category", "Space", "Qty", "Size", "# of People", "Comments"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Category: 0, Space: 1, Quantity: 2, Size: 3, People: 4, Comments: 5}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_CaseInsensitiveAliases(t *testing.T) {
	row := []string{" NOTES ", "Room Type", "count"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Comments != 0 || mapping.Space != 1 || mapping.Quantity != 2 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.Category != -1 || mapping.Size != -1 {
		t.Errorf("expected missing columns at -1, got %+v", mapping)
	}
}

func TestDetectColumns_NoSpaceColumn(t *testing.T) {
	_, isHeader := DetectColumns([]string{"Category", "Qty", "Size"})
	if isHeader {
		t.Error("a row without a space column is not a header")
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_Program(t *testing.T) {
	data := "Category,Space,Qty,Size,# of People,Comments\n" +
		"CLINICAL,,,,,\n" +
		",Operatory,6,9'6\"x10'0\",2,\n" +
		",Steri,1,,,pass-through\n" +
		"PUBLIC,Waiting,1,,12,\n"
	result := newTestImporter().ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) > 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
	if len(result.Rooms) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(result.Rooms))
	}

	ops := result.Rooms[0]
	if ops.Type != rules.TreatmentRoom || ops.Count != 6 || ops.Label != "Operatory" {
		t.Errorf("unexpected operatory line %+v", ops)
	}
	if ops.WidthHint != 114 || ops.HeightHint != 120 {
		t.Errorf("expected size hint 114x120, got %dx%d", ops.WidthHint, ops.HeightHint)
	}
	if ops.Notes != "people: 2" {
		t.Errorf("expected people note, got '%s'", ops.Notes)
	}

	steri := result.Rooms[1]
	if steri.Type != "STERILIZATION" || steri.Count != 1 {
		t.Errorf("unexpected sterilization line %+v", steri)
	}
	if steri.WidthHint != -1 || steri.HeightHint != -1 {
		t.Errorf("expected no size hint, got %dx%d", steri.WidthHint, steri.HeightHint)
	}
	if steri.Notes != "pass-through" {
		t.Errorf("expected comment note, got '%s'", steri.Notes)
	}

	if result.Rooms[2].Type != "PATIENT_LOUNGE" {
		t.Errorf("expected PATIENT_LOUNGE, got %s", result.Rooms[2].Type)
	}
}

func TestImportCSVFromReader_Metadata(t *testing.T) {
	data := "Client,Smile Dental\n" +
		"Date: 2026-03-02\n" +
		"Project Type,ortho\n" +
		"Project Size,60' x 40'\n" +
		"\n" +
		"Space,Qty\n" +
		"Treatment Room,4\n"
	result := newTestImporter().ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	meta := result.Metadata
	if meta.Client != "Smile Dental" {
		t.Errorf("expected client 'Smile Dental', got '%s'", meta.Client)
	}
	if meta.Date != "2026-03-02" {
		t.Errorf("expected date, got '%s'", meta.Date)
	}
	if meta.ProjectType != "ORTHO" {
		t.Errorf("expected project type ORTHO, got '%s'", meta.ProjectType)
	}
	if result.Shell != (model.Shell{Width: 720, Height: 480}) {
		t.Errorf("expected 720x480 shell, got %v", result.Shell)
	}
	if len(result.Rooms) != 1 || result.Rooms[0].Count != 4 {
		t.Errorf("unexpected rooms %+v", result.Rooms)
	}
}

func TestImportCSVFromReader_UnreadableProjectSize(t *testing.T) {
	data := "Project Size,TBD\nSpace\nLab\n"
	result := newTestImporter().ImportCSVFromReader(strings.NewReader(data), ',')

	if result.Shell.Valid() {
		t.Errorf("expected no shell, got %v", result.Shell)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "TBD") {
		t.Errorf("expected a project size warning, got %v", result.Warnings)
	}
	if len(result.Rooms) != 1 || result.Rooms[0].Count != 1 {
		t.Errorf("expected one LAB with default quantity, got %+v", result.Rooms)
	}
}

func TestImportCSVFromReader_UnknownSpace(t *testing.T) {
	data := "Space,Qty\nHot Tub,1\nLab,1\n"
	result := newTestImporter().ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rooms) != 1 {
		t.Fatalf("expected 1 room, got %d", len(result.Rooms))
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "Unknown space 'Hot Tub'") {
		t.Errorf("expected unknown space warning, got %v", result.Warnings)
	}
	if !strings.HasPrefix(result.Warnings[0], "Line 2") {
		t.Errorf("expected warning on line 2, got '%s'", result.Warnings[0])
	}
}

func TestImportCSVFromReader_InvalidQuantity(t *testing.T) {
	tests := []struct {
		qty     string
		wantErr string
	}{
		{"two", "Invalid quantity 'two'"},
		{"0", "positive whole number"},
		{"-3", "positive whole number"},
		{"1.5", "positive whole number"},
	}
	for _, tt := range tests {
		t.Run(tt.qty, func(t *testing.T) {
			data := "Space,Qty\nLab," + tt.qty + "\nConsult,2\n"
			result := newTestImporter().ImportCSVFromReader(strings.NewReader(data), ',')

			if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, result.Errors)
			}
			if len(result.Rooms) != 1 || result.Rooms[0].Type != "CONSULT" {
				t.Errorf("expected the valid row to survive, got %+v", result.Rooms)
			}
		})
	}
}

func TestImportCSVFromReader_WholeFloatQuantity(t *testing.T) {
	data := "Space,Qty\nOperatory,8.0\n"
	result := newTestImporter().ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rooms) != 1 || result.Rooms[0].Count != 8 {
		t.Errorf("expected 8 operatories, got %+v (errors: %v)", result.Rooms, result.Errors)
	}
}

func TestImportCSVFromReader_CategoryMismatch(t *testing.T) {
	data := "Category,Space\nPUBLIC,Check In\n,Lab\nSTORAGE,Mechanical\n"
	result := newTestImporter().ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rooms) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(result.Rooms))
	}
	// LAB inherits the PUBLIC heading; unknown headings never conflict.
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], "listed under PUBLIC but is a CLINICAL room") {
		t.Errorf("unexpected warning '%s'", result.Warnings[0])
	}
}

func TestImportCSVFromReader_BadSize(t *testing.T) {
	data := "Space,Size\nConsult,roomy\n"
	result := newTestImporter().ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rooms) != 1 {
		t.Fatalf("expected the room to be kept, got %d", len(result.Rooms))
	}
	if result.Rooms[0].WidthHint != -1 {
		t.Errorf("expected no size hint, got %d", result.Rooms[0].WidthHint)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "Cannot read size 'roomy'") {
		t.Errorf("expected size warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_NilRepositoryAcceptsAnyName(t *testing.T) {
	data := "Space,Qty\nHot Tub,2\nPano,1\n"
	result := New(nil).ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(result.Rooms))
	}
	if result.Rooms[0].Type != "HOT_TUB" || result.Rooms[1].Type != "IMAGING" {
		t.Errorf("unexpected types %s, %s", result.Rooms[0].Type, result.Rooms[1].Type)
	}
}

func TestImportCSVFromReader_MissingSpaceColumn(t *testing.T) {
	data := "Category,Qty\nCLINICAL,3\n"
	result := newTestImporter().ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Space") {
		t.Errorf("expected missing column error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_OnlyHeaders(t *testing.T) {
	result := newTestImporter().ImportCSVFromReader(strings.NewReader("Space,Qty\n"), ',')

	if len(result.Errors) != 1 || result.Errors[0] != "No program rows found" {
		t.Errorf("expected no rows error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := newTestImporter().ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.csv")
	content := "Space;Qty\nOperatory;6\nSteri;1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result := newTestImporter().ImportCSV(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rooms) != 2 {
		t.Errorf("expected 2 rooms, got %d", len(result.Rooms))
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected semicolon delimiter warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := newTestImporter().ImportCSV("/nonexistent/program.csv")
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := newTestImporter().ImportCSV(path)
	if len(result.Errors) != 1 || result.Errors[0] != "File is empty" {
		t.Errorf("expected empty file error, got %v", result.Errors)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

// createTestExcel writes rows to the first sheet of a new workbook.
func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	writeRows(t, f, "Sheet1", rows)

	path := filepath.Join(t.TempDir(), "program.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save test Excel file: %v", err)
	}
	return path
}

func writeRows(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("bad cell coordinates: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				t.Fatalf("failed to set cell %s: %v", cell, err)
			}
		}
	}
}

func TestImportExcel_Program(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Client", "Bright Smiles"},
		{"Project Size", "720x480"},
		{},
		{"Category", "Space", "Qty", "Size"},
		{"CLINICAL", "Operatory", 6, "9x11"},
		{"", "Lab", 1},
	})

	result := newTestImporter().ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Metadata.Client != "Bright Smiles" {
		t.Errorf("expected client, got '%s'", result.Metadata.Client)
	}
	if result.Shell != (model.Shell{Width: 720, Height: 480}) {
		t.Errorf("expected 720x480 shell, got %v", result.Shell)
	}
	if len(result.Rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(result.Rooms))
	}
	if result.Rooms[0].Count != 6 || result.Rooms[0].WidthHint != 9 || result.Rooms[0].HeightHint != 11 {
		t.Errorf("unexpected operatory line %+v", result.Rooms[0])
	}
	if result.Rooms[1].Type != "LAB" {
		t.Errorf("expected LAB, got %s", result.Rooms[1].Type)
	}
}

func TestImportExcel_PicksProgramSheet(t *testing.T) {
	f := excelize.NewFile()
	writeRows(t, f, "Sheet1", [][]interface{}{{"Cover page"}})
	if _, err := f.NewSheet("Program"); err != nil {
		t.Fatal(err)
	}
	writeRows(t, f, "Program", [][]interface{}{
		{"Space", "Quantity"},
		{"Consult", 2},
	})
	path := filepath.Join(t.TempDir(), "multi.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	result := newTestImporter().ImportExcel(path)
	if len(result.Rooms) != 1 || result.Rooms[0].Count != 2 {
		t.Fatalf("expected 2 consults, got %+v (errors: %v)", result.Rooms, result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], `"Program"`) {
		t.Errorf("expected sheet warning, got %v", result.Warnings)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := newTestImporter().ImportExcel("/nonexistent/program.xlsx")
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── Size Parsing Tests ────────────────────────────────────

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		w, h  float64
	}{
		{"9x9", 9, 9},
		{"9'x12'", 9, 12},
		{`56"x56"`, 56, 56},
		{`9'6"x10'0"`, 114, 120},
		{"9 ft 6 in x 10 ft 0 in", 114, 120},
		{"110*152", 110, 152},
		{"", -1, -1},
		{"large", -1, -1},
		{"9x9x9", -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			w, h := ParseSize(tt.input)
			if w != tt.w || h != tt.h {
				t.Errorf("ParseSize(%q) = (%v, %v), want (%v, %v)", tt.input, w, h, tt.w, tt.h)
			}
		})
	}
}

func TestParseShell(t *testing.T) {
	tests := []struct {
		input string
		want  model.Shell
		ok    bool
	}{
		{"720x480", model.Shell{Width: 720, Height: 480}, true},
		{"60' x 40'", model.Shell{Width: 720, Height: 480}, true},
		{"60 FT X 40 FT", model.Shell{Width: 720, Height: 480}, true},
		{`60'6"x40'0"`, model.Shell{Width: 726, Height: 480}, true},
		{"about 900 by 600", model.Shell{Width: 900, Height: 600}, true},
		{"2400", model.Shell{Width: 2400, Height: 2400}, true},
		{"", model.Shell{}, false},
		{"TBD", model.Shell{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseShell(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseShell(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalizeSpace(t *testing.T) {
	tests := map[string]string{
		"Treatment Room":     "TREATMENT_ROOM",
		"  doctor's office ": "DOCTORS_OFFICE",
		"Ship/Rec":           "SHIP_REC",
		"X-Ray":              "X_RAY",
		"Dr. Office":         "DR_OFFICE",
	}
	for in, want := range tests {
		if got := NormalizeSpace(in); got != want {
			t.Errorf("NormalizeSpace(%q) = %q, want %q", in, got, want)
		}
	}
}

// ─── DXF Shell Tests ───────────────────────────────────────

func TestImportShellDXF_Polyline(t *testing.T) {
	d := dxf.NewDrawing()
	if _, err := d.LwPolyline(true,
		[]float64{100, 50}, []float64{820, 50}, []float64{820, 530}, []float64{100, 530},
	); err != nil {
		t.Fatal(err)
	}
	// A smaller outline inside the shell, e.g. a column.
	if _, err := d.LwPolyline(true,
		[]float64{300, 200}, []float64{312, 200}, []float64{312, 212}, []float64{300, 212},
	); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "shell.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	result := ImportShellDXF(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Shell != (model.Shell{Width: 720, Height: 480}) {
		t.Errorf("expected 720x480 shell, got %v", result.Shell)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "using the largest") {
		t.Errorf("expected multiple outline warning, got %v", result.Warnings)
	}
}

func TestImportShellDXF_FileNotFound(t *testing.T) {
	result := ImportShellDXF("/nonexistent/shell.dxf")
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestChainSegments(t *testing.T) {
	// An L-shaped outline drawn as shuffled, partly reversed lines.
	segs := []segment{
		{point{0, 0}, point{600, 0}},
		{point{600, 240}, point{600, 0}},
		{point{300, 480}, point{0, 480}},
		{point{600, 240}, point{300, 240}},
		{point{0, 480}, point{0, 0}},
		{point{300, 240}, point{300, 480.005}},
		{point{900, 900}, point{950, 950}}, // open stray line
	}
	outlines := chainSegments(segs, 0.01)
	if len(outlines) != 1 {
		t.Fatalf("expected 1 closed outline, got %d", len(outlines))
	}
	o := outlines[0]
	if len(o) != 6 {
		t.Errorf("expected 6 corners, got %d", len(o))
	}

	area := outlineArea(o)
	if area < 215999 || area > 216001 {
		t.Errorf("expected area 216000, got %f", area)
	}
	lo, hi := boundingBox(o)
	if lo != (point{0, 0}) || hi.X != 600 || hi.Y < 480 {
		t.Errorf("unexpected bounding box %v %v", lo, hi)
	}
	if isRectangle(o, (hi.X-lo.X)*(hi.Y-lo.Y)) {
		t.Error("an L-shaped outline is not a rectangle")
	}
}

func TestNormalizeOutline(t *testing.T) {
	o := normalizeOutline([]point{{10, 20}, {30, 20}, {30, 50}, {10, 50}})
	if o[0] != (point{0, 0}) || o[2] != (point{20, 30}) {
		t.Errorf("unexpected normalized outline %v", o)
	}
	if !isRectangle(o, 20*30) {
		t.Error("expected a rectangle")
	}
}
