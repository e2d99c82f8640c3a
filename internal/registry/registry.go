// Package registry holds the static catalog of named agent personas.
// The catalog is read-only reference data: loaded once, never mutated.
package registry

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"visionboard/internal/types"
)

// ErrPersonaNotFound is returned by Resolve for an unknown persona name.
var ErrPersonaNotFound = fmt.Errorf("persona not found")

// Family is an agent family: catalog metadata plus the member personas.
type Family struct {
	Organization string          `yaml:"organization"`
	Headquarters string          `yaml:"headquarters"`
	Creed        string          `yaml:"creed"`
	Motto        string          `yaml:"motto"`
	Members      []types.Persona `yaml:"members"`
}

// Registry resolves persona names to catalog entries.
type Registry struct {
	family Family
}

// New returns a registry over the given family.
func New(family Family) *Registry {
	return &Registry{family: family}
}

// Default returns a registry over the built-in family.
func Default() *Registry {
	return New(DefaultFamily())
}

// LoadFamilyFile reads an agent family from a YAML file.
func LoadFamilyFile(path string) (Family, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Family{}, fmt.Errorf("failed to read family file: %w", err)
	}
	var family Family
	if err := yaml.Unmarshal(data, &family); err != nil {
		return Family{}, fmt.Errorf("failed to parse family file: %w", err)
	}
	if len(family.Members) == 0 {
		return Family{}, fmt.Errorf("family file %s defines no members", path)
	}
	for i, m := range family.Members {
		if m.Name == "" {
			return Family{}, fmt.Errorf("family member %d has no name", i)
		}
		switch m.Engine {
		case types.EngineGemini, types.EngineOpenAI:
		default:
			return Family{}, fmt.Errorf("family member %q has unknown engine %q", m.Name, m.Engine)
		}
	}
	return family, nil
}

// Family returns the catalog.
func (r *Registry) Family() Family {
	return r.family
}

// Members returns the persona list in catalog order.
func (r *Registry) Members() []types.Persona {
	return r.family.Members
}

// Resolve looks up a persona by display name, case-insensitively.
func (r *Registry) Resolve(name string) (types.Persona, error) {
	for _, m := range r.family.Members {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return types.Persona{}, fmt.Errorf("%w: %s", ErrPersonaNotFound, name)
}
