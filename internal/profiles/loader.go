package profiles

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader reads user profiles from YAML files.
type Loader struct {
	profilesPath string
}

// NewLoader creates a loader rooted at profilesPath.
func NewLoader(profilesPath string) *Loader {
	return &Loader{profilesPath: profilesPath}
}

// profileFile is the YAML document layout.
type profileFile struct {
	Profiles []*Profile `yaml:"profiles"`
}

// Load returns a registry of the built-in presets with the user's YAML
// profiles merged on top. A missing profiles directory is not an error.
func (l *Loader) Load() (*Registry, error) {
	registry := NewRegistry()

	if l.profilesPath == "" {
		return registry, nil
	}
	if _, err := os.Stat(l.profilesPath); os.IsNotExist(err) {
		return registry, nil
	}

	err := filepath.Walk(l.profilesPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || (filepath.Ext(path) != ".yaml" && filepath.Ext(path) != ".yml") {
			return nil
		}
		if err := l.loadFile(path, registry); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nil
	})

	return registry, err
}

func (l *Loader) loadFile(path string, registry *Registry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	for _, p := range file.Profiles {
		if err := registry.Add(p); err != nil {
			return err
		}
	}
	return nil
}
