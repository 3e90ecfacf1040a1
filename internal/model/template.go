package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProgramTemplate represents a reusable room program with its shell and
// settings but not solve results.
type ProgramTemplate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	Shell       Shell          `json:"shell"`
	Program     []RoomRequest  `json:"program"`
	Settings    LayoutSettings `json:"settings"`
}

// NewProgramTemplate creates a new template from the given project data.
// It copies the program and settings but intentionally excludes results.
func NewProgramTemplate(name, description string, shell Shell, program []RoomRequest, settings LayoutSettings) ProgramTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return ProgramTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Shell:       shell,
		Program:     copyProgram(program),
		Settings:    settings,
	}
}

// Validate reports every reason the template cannot seed a solve.
func (t ProgramTemplate) Validate() error {
	var errs []error
	if t.Name == "" {
		errs = append(errs, errors.New("template name is empty"))
	}
	if !t.Shell.Valid() {
		errs = append(errs, fmt.Errorf("shell %s must have positive width and height", t.Shell))
	}
	if len(ExpandProgram(t.Program)) == 0 {
		errs = append(errs, errors.New("program has no rooms"))
	}
	if err := t.Settings.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("settings: %w", err))
	}
	return errors.Join(errs...)
}

// ToProject creates a new Project from this template.
// Program lines get fresh IDs so they are independent of the template.
func (t ProgramTemplate) ToProject(projectName string) Project {
	program := make([]RoomRequest, len(t.Program))
	for i, r := range t.Program {
		program[i] = NewRoomRequest(r.Type, r.Count)
		program[i].Label = r.Label
		program[i].Notes = r.Notes
		program[i].WidthHint = r.WidthHint
		program[i].HeightHint = r.HeightHint
	}

	p := NewProject()
	p.Name = projectName
	p.Shell = t.Shell
	p.Program = program
	p.Settings = t.Settings
	return p
}

// TemplateStore holds a collection of program templates.
type TemplateStore struct {
	Templates []ProgramTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []ProgramTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t ProgramTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Put stores t under its name. A template with the same name is replaced
// in place, keeping its ID and creation time. Put reports whether one was
// replaced.
func (ts *TemplateStore) Put(t ProgramTemplate) bool {
	if old := ts.FindByName(t.Name); old != nil {
		t.ID, t.CreatedAt = old.ID, old.CreatedAt
		t.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		*old = t
		return true
	}
	ts.Add(t)
	return false
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *ProgramTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *ProgramTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names lists template names in store order.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

func copyProgram(program []RoomRequest) []RoomRequest {
	if program == nil {
		return []RoomRequest{}
	}
	cp := make([]RoomRequest, len(program))
	copy(cp, program)
	return cp
}
