// Package project persists clinic projects, program templates, backups
// and the application config.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/ClinicLayout/internal/model"
)

// FileExtension is the suffix of saved project files.
const FileExtension = ".clinic"

// SaveProject writes a project to path as indented JSON.
func SaveProject(path string, p model.Project) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadProject reads a project written by SaveProject. Settings left out
// of the file take their default values.
func LoadProject(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, err
	}
	p := model.Project{Settings: model.DefaultLayoutSettings()}
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project %s: %w", path, err)
	}
	if p.ID == "" {
		return model.Project{}, fmt.Errorf("invalid project file %s: missing id", path)
	}
	if p.Program == nil {
		p.Program = []model.RoomRequest{}
	}
	if err := p.Settings.Validate(); err != nil {
		return model.Project{}, fmt.Errorf("invalid project settings in %s: %w", path, err)
	}
	return p, nil
}
