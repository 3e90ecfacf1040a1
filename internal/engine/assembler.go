package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/piwi3910/ClinicLayout/internal/mip"
	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

// DoorVars are the variables of one door slot.
type DoorVars struct {
	X, Y   mip.Var
	Active mip.Var
}

// RoomVars are the variables of one room instance.
type RoomVars struct {
	Instance   model.RoomInstance
	X, Y, W, H mip.Var
	Doors      []DoorVars
}

// SoftVar is the violation indicator of one relaxed rule.
type SoftVar struct {
	Var  mip.Var
	Kind string // direct, separation, hidden, visible or entry
	A, B string
}

// Handles expose the variables of a built model.
type Handles struct {
	Rooms []*RoomVars
	Soft  []SoftVar
	// Stats counts constraints added per builder.
	Stats map[string]int

	byID map[string]*RoomVars
}

// Room returns the variables of the instance with id.
func (h *Handles) Room(id string) (*RoomVars, bool) {
	r, ok := h.byID[id]
	return r, ok
}

// Assembler turns a room program into a mip.Model.
type Assembler struct {
	repo     *rules.Repository
	settings model.LayoutSettings
	geo      GeometrySelector
	logger   *slog.Logger
}

// NewAssembler creates an Assembler. A nil logger uses slog.Default.
func NewAssembler(repo *rules.Repository, settings model.LayoutSettings, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		repo:     repo,
		settings: settings,
		geo:      NewGeometrySelector(repo),
		logger:   logger.With("component", "assembler"),
	}
}

// Build creates a fresh model for instances inside shell. n is the scaling
// parameter and maxEntrances the number of door slots per room; values
// below 1 fall back to the settings.
func (a *Assembler) Build(shell model.Shell, instances []model.RoomInstance, n, maxEntrances int) (*mip.Model, *Handles, error) {
	m := mip.NewModel("clinic_layout")
	h, err := a.BuildInto(m, shell, instances, n, maxEntrances)
	if err != nil {
		return nil, nil, err
	}
	return m, h, nil
}

// BuildInto adds the layout to an empty model. Building twice onto one
// model is an error.
func (a *Assembler) BuildInto(m *mip.Model, shell model.Shell, instances []model.RoomInstance, n, maxEntrances int) (*Handles, error) {
	if m.NumVars() > 0 || m.NumConstraints() > 0 {
		return nil, errors.New("model is not empty")
	}
	if !shell.Valid() {
		return nil, fmt.Errorf("invalid shell %s", shell)
	}
	if maxEntrances < 1 {
		maxEntrances = a.settings.MaxEntrances
	}
	if maxEntrances < 1 {
		maxEntrances = 1
	}

	h := &Handles{
		Stats: make(map[string]int),
		byID:  make(map[string]*RoomVars, len(instances)),
	}
	for _, inst := range instances {
		if _, dup := h.byID[inst.ID]; dup {
			return nil, fmt.Errorf("duplicate room instance %s", inst.ID)
		}
		r := &RoomVars{
			Instance: inst,
			X:        m.NewIntVar(0, shell.Width, "x_"+inst.ID),
			Y:        m.NewIntVar(0, shell.Height, "y_"+inst.ID),
			W:        m.NewIntVar(1, shell.Width, "w_"+inst.ID),
			H:        m.NewIntVar(1, shell.Height, "h_"+inst.ID),
		}
		for k := 0; k < maxEntrances; k++ {
			r.Doors = append(r.Doors, DoorVars{
				X:      m.NewIntVar(0, shell.Width, fmt.Sprintf("door_x_%s_%d", inst.ID, k)),
				Y:      m.NewIntVar(0, shell.Height, fmt.Sprintf("door_y_%s_%d", inst.ID, k)),
				Active: m.NewBoolVar(fmt.Sprintf("door_active_%s_%d", inst.ID, k)),
			})
		}
		h.Rooms = append(h.Rooms, r)
		h.byID[inst.ID] = r
	}

	res := NewResolver(instances, a.repo)
	rs := collectRules(instances, a.repo, res, a.logger)
	b := &builder{
		m:     m,
		h:     h,
		shell: shell,
		s:     a.settings,
		bigM:  a.settings.DeriveBigM(shell),
		n:     n,
		repo:  a.repo,
		geo:   a.geo,
	}

	steps := []struct {
		name string
		fn   func()
		on   bool
	}{
		{"shell", b.addShellBounds, true},
		{"door_perimeter", b.addDoorPerimeter, true},
		{"non_overlap", b.addNonOverlap, true},
		{"corridor_entry", func() { b.addCorridorEntry(rs) }, true},
		{"entry_counts", b.addEntryCounts, a.settings.EnforceEntryCounts},
		{"adjacency", func() { b.addAdjacencyRules(rs) }, true},
		{"visibility", func() { b.addVisibilityRules(rs) }, true},
		{"size_min", b.addSizeMin, true},
		{"size_max", b.addSizeMax, true},
		{"center_bias", b.addCenterBias, a.settings.CenterBias},
		{"size_objective", b.addSizeObjective, true},
	}
	for _, step := range steps {
		if !step.on {
			continue
		}
		before := b.count
		step.fn()
		h.Stats[step.name] = b.count - before
	}

	a.logger.Debug("model built",
		"rooms", len(instances),
		"variables", m.NumVars(),
		"constraints", m.NumConstraints(),
		"soft_rules", len(h.Soft),
		"skipped_rules", rs.skipped,
		"big_m", b.bigM,
		"stats", h.Stats,
	)
	return h, nil
}

// builder carries the state shared by the constraint builders of one build.
type builder struct {
	m     *mip.Model
	h     *Handles
	shell model.Shell
	s     model.LayoutSettings
	bigM  int
	n     int
	repo  *rules.Repository
	geo   GeometrySelector
	count int
}
