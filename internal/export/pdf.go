// Package export writes solved clinic layouts to PDF floorplans, DXF
// drawings, Excel room schedules and QR-coded room signage.
package export

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/ClinicLayout/internal/model"
)

// ErrNoLayout is returned when a result has no placed rooms to export.
var ErrNoLayout = errors.New("no layout to export")

// categoryColor represents an RGB fill for a room category.
type categoryColor struct {
	R, G, B int
}

// categoryColors follow the usual plan convention: clinical blue, public
// green, private orange.
var categoryColors = map[string]categoryColor{
	"CLINICAL": {R: 144, G: 202, B: 249},
	"PUBLIC":   {R: 165, G: 214, B: 167},
	"PRIVATE":  {R: 255, G: 204, B: 128},
}

var defaultColor = categoryColor{R: 224, G: 224, B: 224}

func colorFor(category string) categoryColor {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return defaultColor
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 14.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	doorRadius   = 1.2
)

// ExportPDF generates a floorplan document: the plan drawn to scale on the
// first page, followed by a room schedule with solve statistics.
func ExportPDF(path, title string, result model.LayoutResult, settings model.LayoutSettings) error {
	if !result.Status.HasLayout() || len(result.Rooms) == 0 {
		return ErrNoLayout
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(title, true)

	pdf.AddPage()
	renderPlanPage(pdf, title, result)

	pdf.AddPage()
	renderSchedulePage(pdf, result, settings)

	return pdf.OutputFileAndClose(path)
}

// renderPlanPage draws the shell and every room on the current page.
func renderPlanPage(pdf *fpdf.Fpdf, title string, result model.LayoutResult) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	heading := fmt.Sprintf("%s (%s x %s)", title, FeetInches(result.Shell.Width), FeetInches(result.Shell.Height))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, heading, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Rooms: %d | Doors: %d | Room area: %.0f sq ft | Shell: %.0f sq ft | Efficiency: %.1f%%",
		len(result.Rooms), result.ActiveDoors(), SquareFeet(result.UsedArea()), SquareFeet(result.ShellArea()), result.Efficiency())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	shellW, shellH := float64(result.Shell.Width), float64(result.Shell.Height)
	scale := math.Min(drawWidth/shellW, drawHeight/shellH)
	canvasW, canvasH := shellW*scale, shellH*scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Shell
	pdf.SetFillColor(250, 250, 250)
	pdf.SetDrawColor(40, 40, 40)
	pdf.SetLineWidth(0.8)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for _, p := range result.Rooms {
		col := colorFor(p.Category)
		px := offsetX + float64(p.X)*scale
		py := offsetY + float64(p.Y)*scale
		pw := float64(p.W) * scale
		ph := float64(p.H) * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 12 && ph > 7 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := RoomLabel(p.ID)
			dims := fmt.Sprintf("%sx%s", FeetInches(p.W), FeetInches(p.H))
			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)

			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			if ph > 12 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}

		pdf.SetFillColor(200, 30, 30)
		for _, d := range p.ActiveDoors() {
			pdf.Circle(offsetX+float64(d.X)*scale, offsetY+float64(d.Y)*scale, doorRadius, "F")
		}
	}

	drawDimensionAnnotations(pdf, result.Shell, offsetX, offsetY, canvasW, canvasH)
	drawCategoryLegend(pdf, offsetY+canvasH+6)
}

// drawDimensionAnnotations adds width and height labels outside the shell.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, shell model.Shell, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := FeetInches(shell.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := FeetInches(shell.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawCategoryLegend renders one swatch per category plus the door marker.
func drawCategoryLegend(pdf *fpdf.Fpdf, y float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	x := marginLeft

	for _, name := range []string{"CLINICAL", "PUBLIC", "PRIVATE"} {
		col := categoryColors[name]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(x, y+0.5, 3, 3, "F")
		pdf.SetXY(x+4, y)
		pdf.CellFormat(25, 4, name, "", 0, "L", false, 0, "")
		x += 30
	}

	pdf.SetFillColor(200, 30, 30)
	pdf.Circle(x+1.5, y+2, doorRadius, "F")
	pdf.SetXY(x+4, y)
	pdf.CellFormat(25, 4, "Door", "", 0, "L", false, 0, "")
}

// renderSchedulePage draws the room schedule and statistics.
func renderSchedulePage(pdf *fpdf.Fpdf, result model.LayoutResult, settings model.LayoutSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Room Schedule", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	summaryItems := []struct {
		label string
		value string
	}{
		{"Status", string(result.Status)},
		{"Objective", fmt.Sprintf("%.1f", result.Objective)},
		{"Solve Time", result.SolveTime.Round(time.Millisecond).String()},
		{"Model Size", fmt.Sprintf("%d variables, %d constraints", result.Variables, result.Constraints)},
		{"Treatment Rooms", fmt.Sprintf("%d", result.ScalingParam)},
		{"Efficiency", fmt.Sprintf("%.1f%%", result.Efficiency())},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(45, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 6
	}
	y += 4

	colWidths := []float64{55, 25, 28, 28, 40, 30, 25, 36}
	headers := []string{"Room", "Category", "X", "Y", "Size", "Area (sq ft)", "Doors", "Door Sides"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 8)
	for i, p := range ScheduleOrder(result.Rooms) {
		// Continue on a fresh page when the table runs out of room.
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}
		row := ScheduleRow(p)
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 5, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 5
	}

	y += 6
	if y > pageHeight-marginBottom-40 {
		pdf.AddPage()
		y = marginTop
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Layout Settings", "", 0, "L", false, 0, "")
	y += 8

	settingsItems := []struct {
		label string
		value string
	}{
		{"Wall Thickness", fmt.Sprintf("%d in", settings.WallThickness)},
		{"Min Shared Wall", fmt.Sprintf("%d in", settings.MinOverlap)},
		{"Min Separation", fmt.Sprintf("%d in", settings.MinSeparation)},
		{"Doors per Room", fmt.Sprintf("%d", settings.MaxEntrances)},
		{"Objective", string(settings.Objective)},
		{"Soft Rules", string(settings.SoftRules)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(45, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by ClinicLayout - Run "+result.RunID, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}

// ScheduleOrder returns the rooms sorted by category then instance ID.
func ScheduleOrder(rooms []model.RoomPlacement) []model.RoomPlacement {
	out := make([]model.RoomPlacement, len(rooms))
	copy(out, rooms)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ScheduleRow formats one room as schedule cells: room, category, x, y,
// size, area, door count and door sides.
func ScheduleRow(p model.RoomPlacement) []string {
	doors := p.ActiveDoors()
	sides := make([]string, 0, len(doors))
	for _, d := range doors {
		if d.Side != "" {
			sides = append(sides, string(d.Side))
		}
	}
	sideList := "-"
	if len(sides) > 0 {
		sideList = strings.Join(sides, ", ")
	}
	return []string{
		RoomLabel(p.ID),
		p.Category,
		FeetInches(p.X),
		FeetInches(p.Y),
		fmt.Sprintf("%s x %s", FeetInches(p.W), FeetInches(p.H)),
		fmt.Sprintf("%.1f", SquareFeet(p.Area())),
		fmt.Sprintf("%d", len(doors)),
		sideList,
	}
}
