package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/ClinicLayout/internal/model"
)

// ErrTemplateNotFound is returned when no template has the requested name.
var ErrTemplateNotFound = errors.New("template not found")

// TemplatesPath returns the template store of cfg: templates_path when
// set, else templates.json in the default config directory.
func TemplatesPath(cfg model.AppConfig) string {
	if cfg.TemplatesPath != "" {
		return cfg.TemplatesPath
	}
	return filepath.Join(DefaultConfigDir(), "templates.json")
}

// SaveTemplates writes the store as JSON. Template names must be unique.
// The file is replaced atomically.
func SaveTemplates(path string, store model.TemplateStore) error {
	seen := make(map[string]bool, len(store.Templates))
	for _, t := range store.Templates {
		if seen[t.Name] {
			return fmt.Errorf("duplicate template name %q", t.Name)
		}
		seen[t.Name] = true
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// LoadTemplates reads a template store. A missing file is an empty store;
// an unreadable one is a *LoadError.
func LoadTemplates(path string) (model.TemplateStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewTemplateStore(), nil
		}
		return model.TemplateStore{}, err
	}
	var store model.TemplateStore
	if err := json.Unmarshal(data, &store); err != nil {
		return model.TemplateStore{}, &LoadError{Path: path, Err: err}
	}
	if store.Templates == nil {
		store.Templates = []model.ProgramTemplate{}
	}
	return store, nil
}

// SaveTemplate validates t and stores it by name in the store at path,
// replacing a template of the same name. It reports whether one was
// replaced.
func SaveTemplate(path string, t model.ProgramTemplate) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, fmt.Errorf("template %q: %w", t.Name, err)
	}
	store, err := LoadTemplates(path)
	if err != nil {
		return false, err
	}
	replaced := store.Put(t)
	return replaced, SaveTemplates(path, store)
}

// LoadTemplate returns the template called name from the store at path.
func LoadTemplate(path, name string) (model.ProgramTemplate, error) {
	store, err := LoadTemplates(path)
	if err != nil {
		return model.ProgramTemplate{}, err
	}
	t := store.FindByName(name)
	if t == nil {
		return model.ProgramTemplate{}, fmt.Errorf("%q: %w", name, ErrTemplateNotFound)
	}
	return *t, nil
}

// DeleteTemplate removes the template called name from the store at path.
func DeleteTemplate(path, name string) error {
	store, err := LoadTemplates(path)
	if err != nil {
		return err
	}
	t := store.FindByName(name)
	if t == nil {
		return fmt.Errorf("%q: %w", name, ErrTemplateNotFound)
	}
	store.Remove(t.ID)
	return SaveTemplates(path, store)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
