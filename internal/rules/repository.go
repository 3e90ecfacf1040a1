package rules

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/rooms.yaml
var embeddedRooms []byte

// document is the on-disk layout of a rule file.
type document struct {
	Rooms []RoomRule `yaml:"rooms"`
}

// Repository is a read-only table of room rules keyed by room type.
// It is safe for concurrent use once built.
type Repository struct {
	rules map[string]RoomRule
	order []string
}

// New builds a repository from rule records. A later record for the same
// room type replaces an earlier one.
func New(records ...RoomRule) *Repository {
	r := &Repository{rules: make(map[string]RoomRule, len(records))}
	for _, rec := range records {
		r.put(rec)
	}
	return r
}

func (r *Repository) put(rec RoomRule) {
	if _, exists := r.rules[rec.Type]; !exists {
		r.order = append(r.order, rec.Type)
	}
	r.rules[rec.Type] = rec
}

var (
	defaultOnce sync.Once
	defaultRepo *Repository
	defaultErr  error
)

// Default returns the repository built from the embedded rule table.
func Default() (*Repository, error) {
	defaultOnce.Do(func() {
		defaultRepo, defaultErr = Load(bytes.NewReader(embeddedRooms))
	})
	return defaultRepo, defaultErr
}

// MustDefault is Default for callers that cannot proceed without rules.
func MustDefault() *Repository {
	repo, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded room rules: %v", err))
	}
	return repo
}

// Load parses a rule document and validates every record.
func Load(rd io.Reader) (*Repository, error) {
	records, err := decode(rd)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if seen[rec.Type] {
			return nil, fmt.Errorf("duplicate room type %s", rec.Type)
		}
		seen[rec.Type] = true
	}
	return New(records...), nil
}

// LoadFile reads a rule document from disk.
func LoadFile(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()
	repo, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load rules %s: %w", path, err)
	}
	return repo, nil
}

func decode(rd io.Reader) ([]RoomRule, error) {
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	var errs []error
	for i, rec := range doc.Rooms {
		if err := rec.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("room %d: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return doc.Rooms, nil
}

// Validate checks the fields the layout engine depends on.
func (r RoomRule) Validate() error {
	var errs []error
	if r.Type == "" {
		errs = append(errs, errors.New("missing type"))
	}
	switch r.Category {
	case CategoryClinical, CategoryPublic, CategoryPrivate:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown category %q", r.Type, r.Category))
	}
	for _, t := range r.Geometry.Tiers {
		if t.TreatmentRoomsMin != nil && t.TreatmentRoomsMax != nil && *t.TreatmentRoomsMin > *t.TreatmentRoomsMax {
			errs = append(errs, fmt.Errorf("%s: tier %s has an empty treatment room range", r.Type, t.Label))
		}
		if (t.Width != nil && *t.Width <= 0) || (t.Length != nil && *t.Length <= 0) {
			errs = append(errs, fmt.Errorf("%s: tier %s has a non-positive dimension", r.Type, t.Label))
		}
	}
	for _, c := range r.Access.EntryCounts {
		if c.Min < 0 || (c.Max != nil && *c.Max < c.Min) {
			errs = append(errs, fmt.Errorf("%s: invalid entry count range", r.Type))
		}
	}
	for _, p := range r.Adjacency.Proximity {
		if p.Weight < 0 {
			errs = append(errs, fmt.Errorf("%s: negative proximity weight for %s", r.Type, p.Target))
		}
	}
	return errors.Join(errs...)
}

// WithOverrides returns a copy of r where every record in the override
// document replaces the embedded record of the same room type. Types not
// yet known are added.
func (r *Repository) WithOverrides(rd io.Reader) (*Repository, error) {
	records, err := decode(rd)
	if err != nil {
		return nil, fmt.Errorf("overrides: %w", err)
	}
	out := &Repository{
		rules: make(map[string]RoomRule, len(r.rules)+len(records)),
		order: append([]string(nil), r.order...),
	}
	for k, v := range r.rules {
		out.rules[k] = v
	}
	for _, rec := range records {
		out.put(rec)
	}
	return out, nil
}

// WithOverridesFile applies the override document at path.
func (r *Repository) WithOverridesFile(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open overrides: %w", err)
	}
	defer f.Close()
	return r.WithOverrides(f)
}

// Get returns the rule for a room type.
func (r *Repository) Get(roomType string) (RoomRule, bool) {
	rec, ok := r.rules[roomType]
	return rec, ok
}

// Has reports whether the room type is known.
func (r *Repository) Has(roomType string) bool {
	_, ok := r.rules[roomType]
	return ok
}

// Types returns every known room type in sorted order.
func (r *Repository) Types() []string {
	out := append([]string(nil), r.order...)
	sort.Strings(out)
	return out
}

// Len returns the number of room types.
func (r *Repository) Len() int { return len(r.rules) }

// ByCategory returns the room types of one category, sorted.
func (r *Repository) ByCategory(c Category) []string {
	var out []string
	for _, t := range r.Types() {
		if r.rules[t].Category == c {
			out = append(out, t)
		}
	}
	return out
}
