package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultBin is the external package-manager binary driven by clannad.
const DefaultBin = "nix"

// Tool invokes the external package-manager CLI. Bin may be overridden via
// user configuration (and by tests, which substitute a stub executable).
type Tool struct {
	Bin string
}

// New returns a Tool for the given binary, defaulting to "nix".
func New(bin string) Tool {
	if bin == "" {
		bin = DefaultBin
	}
	return Tool{Bin: bin}
}

// IsInstalled returns true if the tool is available on the system PATH.
func (t Tool) IsInstalled() bool {
	_, err := exec.LookPath(t.Bin)
	return err == nil
}

// Version returns the tool's version string.
func (t Tool) Version() (string, error) {
	out, err := t.outputQuiet("--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// FlakesEnabled reports whether the flake command set is available.
func (t Tool) FlakesEnabled() bool {
	return t.runQuiet("flake", "--help") == nil
}

// FlakeRef builds a flake reference for the catalog source pinned to the
// given ref or revision, e.g. "github:NixOS/nixpkgs/nixos-24.05".
func FlakeRef(source, ref string) string {
	if ref == "" {
		return source
	}
	return source + "/" + ref
}

// attrPath builds the package attribute path for a platform,
// e.g. "github:NixOS/nixpkgs/abc123#legacyPackages.x86_64-linux.cargo".
func attrPath(flakeRef, plat, name string) string {
	return fmt.Sprintf("%s#legacyPackages.%s.%s", flakeRef, plat, name)
}

// flakeMetadata is the subset of `nix flake metadata --json` output we read.
type flakeMetadata struct {
	Revision string `json:"revision"`
	Locked   struct {
		Rev string `json:"rev"`
	} `json:"locked"`
}

// ResolveRev resolves a catalog ref to the immutable revision it currently
// points at.
func (t Tool) ResolveRev(source, ref string) (string, error) {
	out, err := t.outputQuiet("flake", "metadata", "--json", FlakeRef(source, ref))
	if err != nil {
		return "", fmt.Errorf("resolving catalog %s: %w", FlakeRef(source, ref), err)
	}
	var meta flakeMetadata
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		return "", fmt.Errorf("parsing catalog metadata: %w", err)
	}
	rev := meta.Revision
	if rev == "" {
		rev = meta.Locked.Rev
	}
	if rev == "" {
		return "", fmt.Errorf("catalog %s: no revision in metadata", FlakeRef(source, ref))
	}
	return rev, nil
}

// Exists reports whether the package attribute resolves against the catalog.
func (t Tool) Exists(flakeRef, plat, name string) bool {
	err := t.runQuiet("eval", "--raw", attrPath(flakeRef, plat, name)+".name")
	return err == nil
}

// PackageVersion returns the version of a package in the catalog. Packages
// without a version attribute yield an empty string and no error.
func (t Tool) PackageVersion(flakeRef, plat, name string) (string, error) {
	out, err := t.outputQuiet("eval", "--raw", attrPath(flakeRef, plat, name)+".version")
	if err != nil {
		if isExitError(err) {
			return "", nil
		}
		return "", fmt.Errorf("querying version of %s: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}

// Realize builds (or substitutes) a package and returns its store path.
// Build output is passed through to stderr so long builds remain visible.
func (t Tool) Realize(flakeRef, plat, name string) (string, error) {
	out, err := t.output("build", "--no-link", "--print-out-paths", attrPath(flakeRef, plat, name))
	if err != nil {
		return "", fmt.Errorf("realizing %s: %w", name, err)
	}
	// Multi-output packages print one path per line; the first is the
	// default output.
	paths := strings.Fields(out)
	if len(paths) == 0 {
		return "", fmt.Errorf("realizing %s: no store path reported", name)
	}
	return paths[0], nil
}

// output executes the tool and returns its stdout, passing stderr through.
func (t Tool) output(args ...string) (string, error) {
	log.Debug().Str("bin", t.Bin).Strs("args", args).Msg("exec catalog tool")
	cmd := exec.Command(t.Bin, args...) //nolint:gosec // args are built from manifest fields
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w", t.Bin, strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}

// runQuiet executes the tool without printing stdout. Stderr is captured and
// included in the error message on failure.
func (t Tool) runQuiet(args ...string) error {
	log.Debug().Str("bin", t.Bin).Strs("args", args).Msg("exec catalog tool")
	cmd := exec.Command(t.Bin, args...) //nolint:gosec // args are built from manifest fields
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", t.Bin, strings.Join(args, " "), err, stderr.String())
	}
	return nil
}

// outputQuiet executes the tool and returns its stdout without printing to
// the console.
func (t Tool) outputQuiet(args ...string) (string, error) {
	log.Debug().Str("bin", t.Bin).Strs("args", args).Msg("exec catalog tool")
	cmd := exec.Command(t.Bin, args...) //nolint:gosec // args are built from manifest fields
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", t.Bin, strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
