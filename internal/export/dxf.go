package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/ClinicLayout/internal/model"
)

// DXF layer names. Rooms go on the layer of their category.
const (
	LayerShell  = "SHELL"
	LayerDoors  = "DOORS"
	LayerLabels = "LABELS"
)

var layerColors = map[string]color.ColorNumber{
	LayerShell:  color.White,
	"CLINICAL":  color.Blue,
	"PUBLIC":    color.Green,
	"PRIVATE":   color.Yellow,
	LayerDoors:  color.Red,
	LayerLabels: color.Cyan,
}

// dxfTextHeight is the label text height in inches.
const dxfTextHeight = 6.0

// ExportDXF writes the layout as a DXF drawing in inches. The shell and
// rooms are closed polylines, doors are small circles and every room is
// labeled at its center. DXF Y grows upward, so the plan is mirrored about
// the shell's horizontal axis.
func ExportDXF(path string, result model.LayoutResult) error {
	if !result.Status.HasLayout() || len(result.Rooms) == 0 {
		return ErrNoLayout
	}

	d := dxf.NewDrawing()
	layers := []string{LayerShell, "CLINICAL", "PUBLIC", "PRIVATE", LayerDoors, LayerLabels}
	for _, name := range layers {
		if _, err := d.AddLayer(name, layerColors[name], dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("adding layer %s: %w", name, err)
		}
	}

	flip := func(y int) float64 { return float64(result.Shell.Height - y) }
	rect := func(x, y, w, h int) error {
		_, err := d.LwPolyline(true,
			[]float64{float64(x), flip(y)},
			[]float64{float64(x + w), flip(y)},
			[]float64{float64(x + w), flip(y + h)},
			[]float64{float64(x), flip(y + h)},
		)
		return err
	}

	if err := d.ChangeLayer(LayerShell); err != nil {
		return err
	}
	if err := rect(0, 0, result.Shell.Width, result.Shell.Height); err != nil {
		return fmt.Errorf("drawing shell: %w", err)
	}

	for _, p := range result.Rooms {
		layer := p.Category
		if _, ok := layerColors[layer]; !ok || layer == LayerShell {
			layer = LayerShell
		}
		if err := d.ChangeLayer(layer); err != nil {
			return err
		}
		if err := rect(p.X, p.Y, p.W, p.H); err != nil {
			return fmt.Errorf("drawing room %s: %w", p.ID, err)
		}
	}

	if err := d.ChangeLayer(LayerDoors); err != nil {
		return err
	}
	for _, p := range result.Rooms {
		for _, door := range p.ActiveDoors() {
			if _, err := d.Circle(float64(door.X), flip(door.Y), 0, dxfTextHeight/2); err != nil {
				return fmt.Errorf("drawing door of %s: %w", p.ID, err)
			}
		}
	}

	if err := d.ChangeLayer(LayerLabels); err != nil {
		return err
	}
	for _, p := range result.Rooms {
		cx := float64(p.X) + float64(p.W)/2
		cy := flip(p.Y) - float64(p.H)/2
		if _, err := d.Text(RoomLabel(p.ID), cx, cy, 0, dxfTextHeight); err != nil {
			return fmt.Errorf("labeling room %s: %w", p.ID, err)
		}
	}

	return d.SaveAs(path)
}
