package manifest

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Manifest represents the top-level environment.yaml descriptor.
type Manifest struct {
	Version      int                    `yaml:"version"`
	Name         string                 `yaml:"name"`
	Description  string                 `yaml:"description,omitempty"`
	Catalog      Catalog                `yaml:"catalog"`
	Environments map[string]Environment `yaml:"environments"`
}

// Catalog names the external package source that environments resolve
// against. Source is a flake-style reference (e.g. github:NixOS/nixpkgs);
// Ref is the branch or channel to follow. The lock file pins Ref to an
// immutable revision.
type Catalog struct {
	Source string `yaml:"source"`
	Ref    string `yaml:"ref,omitempty"`
}

// Environment is the package set for one target platform.
type Environment struct {
	Packages []string `yaml:"packages"`
	Hooks    []Hook   `yaml:"hooks,omitempty"`
}

// Hook defines a command run when the environment is entered.
type Hook struct {
	Name    string   `yaml:"name,omitempty"`
	WorkDir string   `yaml:"workdir,omitempty"`
	Cmd     []string `yaml:"cmd"`
}

// Package is a parsed package entry: a catalog attribute name plus an
// optional semver constraint ("cargo@^1.75").
type Package struct {
	Name       string
	Constraint string
}

// Spec returns the manifest entry form of the package.
func (p Package) Spec() string {
	if p.Constraint == "" {
		return p.Name
	}
	return p.Name + "@" + p.Constraint
}

// ParsePackage splits a package entry into name and constraint.
func ParsePackage(spec string) Package {
	name, constraint, ok := strings.Cut(spec, "@")
	if !ok {
		return Package{Name: spec}
	}
	return Package{Name: name, Constraint: constraint}
}

// Matches reports whether a resolved version satisfies the package
// constraint. Packages without a constraint match any version. Versions that
// do not parse as semver never match a constrained package.
func (p Package) Matches(version string) bool {
	if p.Constraint == "" {
		return true
	}
	c, err := semver.NewConstraint(p.Constraint)
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return false
	}
	return c.Check(v)
}

func semverConstraint(s string) (*semver.Constraints, error) {
	return semver.NewConstraint(s)
}

// PackagesFor returns the parsed package list for a platform, in manifest order.
func (m *Manifest) PackagesFor(plat string) ([]Package, bool) {
	env, ok := m.Environments[plat]
	if !ok {
		return nil, false
	}
	pkgs := make([]Package, 0, len(env.Packages))
	for _, spec := range env.Packages {
		pkgs = append(pkgs, ParsePackage(spec))
	}
	return pkgs, true
}

// Platforms returns the platform keys present in the manifest.
func (m *Manifest) Platforms() []string {
	keys := make([]string, 0, len(m.Environments))
	for k := range m.Environments {
		keys = append(keys, k)
	}
	return keys
}

// EffectiveRef returns the catalog ref, defaulting to "nixpkgs-unstable".
func (c Catalog) EffectiveRef() string {
	if c.Ref != "" {
		return c.Ref
	}
	return "nixpkgs-unstable"
}
