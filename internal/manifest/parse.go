package manifest

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/timesharingos/clannad/internal/platform"
)

// Validate checks the manifest for errors.
func Validate(m *Manifest) error { return validate(m) }

// Save validates and writes a manifest to disk atomically.
func Save(path string, m *Manifest) error {
	if err := validate(m); err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Load reads and validates an environment.yaml file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the project manifest path
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates environment.yaml content.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest YAML: %w", err)
	}
	if err := validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func validate(m *Manifest) error {
	if m.Version != 1 {
		return fmt.Errorf("unsupported manifest version: %d (expected 1)", m.Version)
	}
	if m.Name == "" {
		return fmt.Errorf("manifest: name is required")
	}
	if m.Catalog.Source == "" {
		return fmt.Errorf("manifest: catalog.source is required")
	}
	if len(m.Environments) == 0 {
		return fmt.Errorf("manifest: at least one environment is required")
	}

	for plat, env := range m.Environments {
		if _, err := platform.Parse(plat); err != nil {
			return fmt.Errorf("manifest: environments.%s: %w", plat, err)
		}
		if err := validateEnvironment(plat, env); err != nil {
			return err
		}
	}

	return nil
}

func validateEnvironment(plat string, env Environment) error {
	if len(env.Packages) == 0 {
		return fmt.Errorf("manifest: environments.%s: packages is required", plat)
	}

	seen := make(map[string]bool, len(env.Packages))
	for i, spec := range env.Packages {
		pkg := ParsePackage(spec)
		if pkg.Name == "" {
			return fmt.Errorf("manifest: environments.%s.packages[%d]: name is required", plat, i)
		}
		if seen[pkg.Name] {
			return fmt.Errorf("manifest: environments.%s: duplicate package %q", plat, pkg.Name)
		}
		seen[pkg.Name] = true
		if pkg.Constraint != "" {
			if _, err := semverConstraint(pkg.Constraint); err != nil {
				return fmt.Errorf("manifest: environments.%s.packages[%d] (%s): invalid constraint %q: %w",
					plat, i, pkg.Name, pkg.Constraint, err)
			}
		}
	}

	for j, h := range env.Hooks {
		if len(h.Cmd) == 0 {
			return fmt.Errorf("manifest: environments.%s.hooks[%d].cmd is required", plat, j)
		}
	}

	return nil
}

// FilterPackages returns packages matching --only / --skip flags.
func FilterPackages(pkgs []Package, only, skip []string) []Package {
	if len(only) == 0 && len(skip) == 0 {
		return pkgs
	}
	onlySet := toSet(only)
	skipSet := toSet(skip)

	var result []Package
	for _, p := range pkgs {
		if len(onlySet) > 0 && !onlySet[p.Name] {
			continue
		}
		if skipSet[p.Name] {
			continue
		}
		result = append(result, p)
	}
	return result
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
