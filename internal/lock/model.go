package lock

// File represents environment.lock.yaml.
type File struct {
	Version      int                     `yaml:"version"`
	Name         string                  `yaml:"name"`
	GeneratedAt  string                  `yaml:"generated_at"`
	ToolVersion  string                  `yaml:"tool_version"`
	Catalog      Catalog                 `yaml:"catalog"`
	Environments map[string]*Environment `yaml:"environments"`
}

// Catalog records the pinned catalog source: the followed ref plus the
// immutable revision it resolved to at pin time.
type Catalog struct {
	Source string `yaml:"source"`
	Ref    string `yaml:"ref,omitempty"`
	Rev    string `yaml:"rev"`
}

// Environment holds the pinned packages for one platform.
type Environment struct {
	Packages map[string]*Package `yaml:"packages"`
}

// Package records the resolved state of a single package.
type Package struct {
	Version   string `yaml:"version,omitempty"`
	StorePath string `yaml:"store_path,omitempty"`
}

// PackageFor returns the pinned package entry for a platform, if present.
func (f *File) PackageFor(plat, name string) (*Package, bool) {
	env, ok := f.Environments[plat]
	if !ok || env == nil {
		return nil, false
	}
	p, ok := env.Packages[name]
	return p, ok
}
