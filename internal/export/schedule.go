package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/ClinicLayout/internal/model"
)

// Sheet names of the room schedule workbook.
const (
	ScheduleSheet = "Schedule"
	SummarySheet  = "Summary"
)

// ScheduleHeaders are the columns of the room schedule sheet.
var ScheduleHeaders = []string{"Room", "Type", "Category", "X (in)", "Y (in)", "Width (in)", "Depth (in)", "Area (sq ft)", "Doors", "Door Sides"}

// ExportSchedule writes the room schedule to an Excel workbook: one row per
// room in schedule order, plus a summary sheet with solve statistics.
func ExportSchedule(path string, result model.LayoutResult) error {
	if !result.Status.HasLayout() || len(result.Rooms) == 0 {
		return ErrNoLayout
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ScheduleSheet); err != nil {
		return err
	}
	if err := writeScheduleSheet(f, result); err != nil {
		return fmt.Errorf("writing schedule: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	if err := writeSummarySheet(f, result); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	return f.SaveAs(path)
}

func writeScheduleSheet(f *excelize.File, result model.LayoutResult) error {
	header := make([]interface{}, len(ScheduleHeaders))
	for i, h := range ScheduleHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(ScheduleSheet, "A1", &header); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(ScheduleHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(ScheduleSheet, "A1", lastCol+"1", style); err != nil {
		return err
	}

	for i, p := range ScheduleOrder(result.Rooms) {
		cells := ScheduleRow(p)
		row := []interface{}{
			cells[0], p.Type, p.Category,
			p.X, p.Y, p.W, p.H,
			SquareFeet(p.Area()),
			len(p.ActiveDoors()),
			cells[7],
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ScheduleSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(ScheduleSheet, "A", "C", 22); err != nil {
		return err
	}
	return f.SetColWidth(ScheduleSheet, "D", lastCol, 12)
}

func writeSummarySheet(f *excelize.File, result model.LayoutResult) error {
	rows := [][]interface{}{
		{"Run", result.RunID},
		{"Status", string(result.Status)},
		{"Shell (in)", result.Shell.String()},
		{"Shell (sq ft)", SquareFeet(result.ShellArea())},
		{"Room Area (sq ft)", SquareFeet(result.UsedArea())},
		{"Efficiency (%)", result.Efficiency()},
		{"Rooms", len(result.Rooms)},
		{"Doors", result.ActiveDoors()},
		{"Treatment Rooms", result.ScalingParam},
		{"Objective", result.Objective},
		{"Solve Time (s)", result.SolveTime.Seconds()},
		{"Variables", result.Variables},
		{"Constraints", result.Constraints},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 22)
}
