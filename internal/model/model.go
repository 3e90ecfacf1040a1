package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Shell is the rectangular building footprint rooms are placed in.
type Shell struct {
	Width  int `json:"width" toml:"width"`   // inches
	Height int `json:"height" toml:"height"` // inches
}

// Area returns the shell area in square inches.
func (s Shell) Area() int { return s.Width * s.Height }

// Valid reports whether both dimensions are positive.
func (s Shell) Valid() bool { return s.Width > 0 && s.Height > 0 }

func (s Shell) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// RoomRequest is one line of a clinic program: a room type and how many.
type RoomRequest struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Count int    `json:"count"`
	Label string `json:"label,omitempty"` // Name as written in the source program
	Notes string `json:"notes,omitempty"`

	// Requested size from the program sheet, -1 when not given.
	WidthHint  int `json:"width_hint,omitempty"`
	HeightHint int `json:"height_hint,omitempty"`
}

func NewRoomRequest(roomType string, count int) RoomRequest {
	return RoomRequest{
		ID:    uuid.New().String()[:8],
		Type:  roomType,
		Count: count,
	}
}

// RoomInstance is one concrete room of a program. Instances of a type share
// its rule record but own independent variables.
type RoomInstance struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// instanceSep joins room type and ordinal in an instance ID.
const instanceSep = "__"

// InstanceID returns the identifier of the idx-th room of a type.
func InstanceID(roomType string, idx int) string {
	return roomType + instanceSep + strconv.Itoa(idx)
}

// NewRoomInstance builds the idx-th instance of a room type.
func NewRoomInstance(roomType string, idx int) RoomInstance {
	return RoomInstance{ID: InstanceID(roomType, idx), Type: roomType, Index: idx}
}

// ParseInstanceID splits an ID produced by InstanceID.
func ParseInstanceID(id string) (roomType string, idx int, err error) {
	i := strings.LastIndex(id, instanceSep)
	if i <= 0 {
		return "", 0, fmt.Errorf("instance id %q: missing %q separator", id, instanceSep)
	}
	idx, err = strconv.Atoi(id[i+len(instanceSep):])
	if err != nil || idx < 0 {
		return "", 0, fmt.Errorf("instance id %q: bad ordinal", id)
	}
	return id[:i], idx, nil
}

// ExpandProgram turns program lines into instances, in program order. Lines
// of the same type continue the ordinal sequence.
func ExpandProgram(program []RoomRequest) []RoomInstance {
	next := make(map[string]int)
	var out []RoomInstance
	for _, req := range program {
		for i := 0; i < req.Count; i++ {
			out = append(out, NewRoomInstance(req.Type, next[req.Type]))
			next[req.Type]++
		}
	}
	return out
}

// CountType returns how many rooms of a type the program requests.
func CountType(program []RoomRequest, roomType string) int {
	n := 0
	for _, req := range program {
		if req.Type == roomType {
			n += req.Count
		}
	}
	return n
}

// Side is a room edge.
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// Door is one door slot of a placed room. Inactive slots carry no
// geometric meaning.
type Door struct {
	Active bool `json:"active"`
	X      int  `json:"x"`
	Y      int  `json:"y"`
	Side   Side `json:"side,omitempty"`
}

// RoomPlacement is a solved room rectangle. Y grows downward from the
// shell's top edge.
type RoomPlacement struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Category string `json:"category"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	W        int    `json:"w"`
	H        int    `json:"h"`
	Doors    []Door `json:"doors"`
}

// Area returns the room area in square inches.
func (p RoomPlacement) Area() int { return p.W * p.H }

// Right returns the x coordinate of the right edge.
func (p RoomPlacement) Right() int { return p.X + p.W }

// Bottom returns the y coordinate of the bottom edge.
func (p RoomPlacement) Bottom() int { return p.Y + p.H }

// ActiveDoors returns the doors in use.
func (p RoomPlacement) ActiveDoors() []Door {
	var out []Door
	for _, d := range p.Doors {
		if d.Active {
			out = append(out, d)
		}
	}
	return out
}

// SideOf returns the edge a point lies on, preferring left, right, top,
// bottom at corners. ok is false when the point is on no edge.
func (p RoomPlacement) SideOf(x, y int) (Side, bool) {
	inY := y >= p.Y && y <= p.Bottom()
	inX := x >= p.X && x <= p.Right()
	switch {
	case x == p.X && inY:
		return SideLeft, true
	case x == p.Right() && inY:
		return SideRight, true
	case y == p.Y && inX:
		return SideTop, true
	case y == p.Bottom() && inX:
		return SideBottom, true
	}
	return "", false
}

// LayoutStatus reports how a solve ended.
type LayoutStatus string

const (
	StatusOptimal    LayoutStatus = "optimal"
	StatusFeasible   LayoutStatus = "feasible"
	StatusInfeasible LayoutStatus = "infeasible"
	StatusUnknown    LayoutStatus = "unknown"
)

// HasLayout reports whether rooms were placed.
func (s LayoutStatus) HasLayout() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// LayoutResult holds a full solve outcome.
type LayoutResult struct {
	RunID        string          `json:"run_id"`
	Shell        Shell           `json:"shell"`
	Status       LayoutStatus    `json:"status"`
	Objective    float64         `json:"objective"`
	Rooms        []RoomPlacement `json:"rooms"`
	SolveTime    time.Duration   `json:"solve_time"`
	Probes       int             `json:"probes"`
	Variables    int             `json:"variables"`
	Constraints  int             `json:"constraints"`
	ScalingParam int             `json:"scaling_param"`
}

// UsedArea returns the total area covered by rooms.
func (r LayoutResult) UsedArea() int {
	total := 0
	for _, p := range r.Rooms {
		total += p.Area()
	}
	return total
}

// ShellArea returns the shell area.
func (r LayoutResult) ShellArea() int { return r.Shell.Area() }

// Efficiency returns the percentage of the shell covered by rooms.
func (r LayoutResult) Efficiency() float64 {
	sa := r.ShellArea()
	if sa == 0 {
		return 0
	}
	return float64(r.UsedArea()) / float64(sa) * 100.0
}

// RoomByID returns the placement with the given instance ID.
func (r LayoutResult) RoomByID(id string) (RoomPlacement, bool) {
	for _, p := range r.Rooms {
		if p.ID == id {
			return p, true
		}
	}
	return RoomPlacement{}, false
}

// ActiveDoors counts the doors in use across all rooms.
func (r LayoutResult) ActiveDoors() int {
	n := 0
	for _, p := range r.Rooms {
		n += len(p.ActiveDoors())
	}
	return n
}

// ProgramMetadata is the header block of an imported program.
type ProgramMetadata struct {
	Client      string `json:"client,omitempty"`
	Date        string `json:"date,omitempty"`
	ProjectType string `json:"project_type,omitempty"`
	ProjectSize string `json:"project_size,omitempty"`
}

// Project ties everything together for save/load.
type Project struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Metadata ProgramMetadata `json:"metadata"`
	Shell    Shell           `json:"shell"`
	Program  []RoomRequest   `json:"program"`
	Settings LayoutSettings  `json:"settings"`
	Result   *LayoutResult   `json:"result,omitempty"`
}

func NewProject() Project {
	return Project{
		ID:       uuid.New().String(),
		Name:     "Untitled",
		Program:  []RoomRequest{},
		Settings: DefaultLayoutSettings(),
	}
}

// TreatmentRooms returns the number of treatment rooms in the program.
func (p Project) TreatmentRooms() int {
	return CountType(p.Program, "TREATMENT_ROOM")
}
