// Package profiles provides named cleanup presets. A profile narrows a
// scan to a family of files (by name pattern, type group, age, idle time
// or size) and may override the scoring weights and thresholds for that
// family. Built-in presets cover the common cleanup chores; users can add
// or replace presets with YAML files.
package profiles

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mesaifali/trashdoctor/pkg/models"
)

// Weights overrides the scoring weights for files matched by a profile.
// Nil fields keep the configured value.
type Weights struct {
	Age  *float64 `yaml:"age,omitempty"`
	Idle *float64 `yaml:"idle,omitempty"`
	Size *float64 `yaml:"size,omitempty"`
}

// Thresholds overrides the suggestion thresholds for files matched by a
// profile. Nil fields keep the configured value.
type Thresholds struct {
	Keep    *float64 `yaml:"keep,omitempty"`
	Archive *float64 `yaml:"archive,omitempty"`
}

// Profile is one named cleanup preset.
type Profile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Patterns    []string `yaml:"patterns,omitempty"`    // base-name globs, any may match
	TypeGroups  []string `yaml:"type_groups,omitempty"` // file type groups, any may match
	MinAgeDays  int      `yaml:"min_age_days,omitempty"`
	MinIdleDays int      `yaml:"min_idle_days,omitempty"`
	MinSize     int64    `yaml:"min_size,omitempty"`

	Weights    *Weights    `yaml:"weights,omitempty"`
	Thresholds *Thresholds `yaml:"thresholds,omitempty"`
}

// Validate checks a profile for structural problems.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile has no name")
	}
	for _, pattern := range p.Patterns {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("profile %s: bad pattern %q: %w", p.Name, pattern, err)
		}
	}
	if p.MinAgeDays < 0 || p.MinIdleDays < 0 || p.MinSize < 0 {
		return fmt.Errorf("profile %s: negative constraint", p.Name)
	}
	return nil
}

// Matches reports whether a scanned file falls under this profile. Name
// patterns and type groups are alternatives within their criterion; all
// present criteria must hold.
func (p *Profile) Matches(entry models.FileEntry, sig models.Signal) bool {
	if entry.IsDir {
		return false
	}
	if len(p.Patterns) > 0 && !p.matchesPattern(filepath.Base(entry.Path)) {
		return false
	}
	if len(p.TypeGroups) > 0 && !p.matchesGroup(entry.Path) {
		return false
	}
	if sig.AgeDays < p.MinAgeDays {
		return false
	}
	if sig.IdleDays < p.MinIdleDays {
		return false
	}
	if entry.Size < p.MinSize {
		return false
	}
	return true
}

func (p *Profile) matchesPattern(base string) bool {
	base = strings.ToLower(base)
	for _, pattern := range p.Patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (p *Profile) matchesGroup(path string) bool {
	group := models.TypeGroup(path)
	for _, want := range p.TypeGroups {
		if group == want {
			return true
		}
	}
	return false
}

// Registry holds the known profiles by name.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry creates a registry preloaded with the built-in presets.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]*Profile)}
	for _, p := range builtIn() {
		r.profiles[p.Name] = p
	}
	return r
}

// Add registers a profile, replacing any existing one with the same name.
func (r *Registry) Add(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.profiles[p.Name] = p
	return nil
}

// Get returns the named profile.
func (r *Registry) Get(name string) (*Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}
	return p, nil
}

// Names returns all profile names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ptr(v float64) *float64 { return &v }

// builtIn returns the shipped presets.
func builtIn() []*Profile {
	return []*Profile{
		{
			Name:        "old-downloads",
			Description: "Large files sitting in downloads for over a month",
			MinAgeDays:  30,
			MinSize:     100 << 20,
		},
		{
			Name:        "temp-files",
			Description: "Temporary and cache leftovers of any age",
			Patterns:    []string{"*.tmp", "*.temp", "*.cache", "~*", "*.swp"},
			MinAgeDays:  1,
			Thresholds:  &Thresholds{Keep: ptr(0.10), Archive: ptr(0.40)},
		},
		{
			Name:        "old-media",
			Description: "Videos and images untouched for three months",
			TypeGroups:  []string{"video", "image"},
			MinIdleDays: 90,
			MinSize:     50 << 20,
		},
		{
			Name:        "huge-files",
			Description: "Anything over a gigabyte",
			MinSize:     1 << 30,
			Weights:     &Weights{Size: ptr(0.60), Age: ptr(0.15), Idle: ptr(0.25)},
		},
		{
			Name:        "old-archives",
			Description: "Compressed archives not opened in two months",
			TypeGroups:  []string{"archive"},
			MinIdleDays: 60,
		},
		{
			Name:        "stale-documents",
			Description: "Documents untouched for half a year",
			TypeGroups:  []string{"document"},
			MinIdleDays: 180,
		},
		{
			Name:        "log-files",
			Description: "Log files older than a week",
			Patterns:    []string{"*.log", "*.log.*", "*.out"},
			MinAgeDays:  7,
			Thresholds:  &Thresholds{Keep: ptr(0.10), Archive: ptr(0.50)},
		},
		{
			Name:        "backup-files",
			Description: "Editor and tool backup copies older than two weeks",
			Patterns:    []string{"*.bak", "*.backup", "*.old", "*.orig", "*~"},
			MinAgeDays:  14,
		},
	}
}
