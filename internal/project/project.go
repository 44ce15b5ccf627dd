package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/timesharingos/clannad/internal/lock"
	"github.com/timesharingos/clannad/internal/manifest"
	"github.com/timesharingos/clannad/internal/platform"
)

// ManifestName is the descriptor file name within a project directory.
const ManifestName = "environment.yaml"

// LockName is the lock file name within a project directory.
const LockName = "environment.lock.yaml"

// StateDirName is the per-project state directory materialized by sync.
const StateDirName = ".clannad"

// Context holds the resolved paths and loaded config for a project.
type Context struct {
	Dir          string
	ManifestPath string
	LockPath     string
	Manifest     *manifest.Manifest
	Lock         *lock.File // may be nil
}

// Load resolves project paths and loads the manifest (and lock if present).
func Load(dir string) (*Context, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project dir: %w", err)
	}

	manifestPath := filepath.Join(dir, ManifestName)
	lockPath := filepath.Join(dir, LockName)

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Dir:          dir,
		ManifestPath: manifestPath,
		LockPath:     lockPath,
		Manifest:     m,
	}

	if _, statErr := os.Stat(lockPath); statErr == nil {
		lf, err := lock.Load(lockPath)
		if err != nil {
			return nil, err
		}
		ctx.Lock = lf
	}

	return ctx, nil
}

// StateDir returns the project's .clannad directory.
func (c *Context) StateDir() string {
	return filepath.Join(c.Dir, StateDirName)
}

// ProfileDir returns the directory binaries are linked into by sync.
func (c *Context) ProfileDir() string {
	return filepath.Join(c.StateDir(), "profile")
}

// BinDir returns the profile's bin directory, the PATH entry added on
// activation.
func (c *Context) BinDir() string {
	return filepath.Join(c.ProfileDir(), "bin")
}

// Platform resolves the target platform: an explicit request must exist in
// the manifest; otherwise the host platform is used if the manifest supports
// it. The error names the supported platforms.
func (c *Context) Platform(requested string) (string, error) {
	if requested != "" {
		if _, ok := c.Manifest.Environments[requested]; !ok {
			return "", fmt.Errorf("no environment for platform %q (supported: %s)",
				requested, strings.Join(sortedPlatforms(c.Manifest), ", "))
		}
		return requested, nil
	}

	host, err := platform.Current()
	if err != nil {
		return "", err
	}
	if _, ok := c.Manifest.Environments[host.String()]; !ok {
		return "", fmt.Errorf("no environment for host platform %q (supported: %s)",
			host, strings.Join(sortedPlatforms(c.Manifest), ", "))
	}
	return host.String(), nil
}

func sortedPlatforms(m *manifest.Manifest) []string {
	keys := m.Platforms()
	sort.Strings(keys)
	return keys
}
