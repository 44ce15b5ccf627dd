// Package shell activates a materialized environment: it computes the
// adjusted process environment (profile bin dir on PATH plus an activation
// marker) and spawns subshells or single commands inside it.
package shell

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/timesharingos/clannad/internal/manifest"
)

// EnvMarker names the variable set in activated shells. Its value is the
// environment name; nested activation is refused when it is already set.
const EnvMarker = "CLANNAD_ENV"

// Environ returns the process environment with binDir prepended to PATH and
// the activation marker set to name.
func Environ(binDir, name string) []string {
	env := os.Environ()
	out := make([]string, 0, len(env)+2)
	pathSet := false
	for _, kv := range env {
		switch {
		case hasKey(kv, "PATH"):
			out = append(out, "PATH="+binDir+string(os.PathListSeparator)+kv[len("PATH="):])
			pathSet = true
		case hasKey(kv, EnvMarker):
			// replaced below
		default:
			out = append(out, kv)
		}
	}
	if !pathSet {
		out = append(out, "PATH="+binDir)
	}
	out = append(out, EnvMarker+"="+name)
	return out
}

func hasKey(kv, key string) bool {
	return len(kv) > len(key) && kv[len(key)] == '=' && kv[:len(key)] == key
}

// IsActive reports whether the calling process already runs inside an
// activated environment.
func IsActive() bool {
	return os.Getenv(EnvMarker) != ""
}

// Enter spawns an interactive $SHELL with the environment activated.
// It blocks until the subshell exits.
func Enter(dir, binDir, name string) error {
	sh := os.Getenv("SHELL")
	if sh == "" {
		sh = "/bin/sh"
	}
	cmd := exec.Command(sh) //nolint:gosec // $SHELL is the user's own shell
	cmd.Dir = dir
	cmd.Env = Environ(binDir, name)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Run executes a single command with the environment activated.
func Run(dir, binDir, name string, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("no command specified")
	}
	// exec.Command resolves bare names against the parent PATH, which does
	// not include the profile yet; prefer the profile's binary explicitly.
	cmd := exec.Command(resolveBin(binDir, argv[0]), argv[1:]...) //nolint:gosec // command comes from the user's own invocation
	cmd.Dir = dir
	cmd.Env = Environ(binDir, name)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// RunHooks executes environment hooks in order with the environment
// activated. Hooks run without shell expansion.
func RunHooks(dir, binDir, name string, hooks []manifest.Hook) error {
	for _, h := range hooks {
		workDir := dir
		if h.WorkDir != "" {
			workDir = filepath.Join(dir, h.WorkDir)
		}
		cmd := exec.Command(resolveBin(binDir, h.Cmd[0]), h.Cmd[1:]...) //nolint:gosec // hook commands come from the project manifest
		cmd.Dir = workDir
		cmd.Env = Environ(binDir, name)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			label := h.Name
			if label == "" {
				label = h.Cmd[0]
			}
			return fmt.Errorf("hook %q: %w", label, err)
		}
	}
	return nil
}

// Binaries lists the command names activation exposes: the entries of the
// profile bin directory, sorted. A missing bin directory yields an empty
// list.
func Binaries(binDir string) ([]string, error) {
	entries, err := os.ReadDir(binDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading bin dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// LookBin reports whether a named binary exists in the profile bin dir.
func LookBin(binDir, name string) bool {
	info, err := os.Stat(filepath.Join(binDir, name))
	return err == nil && !info.IsDir()
}

// resolveBin maps a bare command name to the profile's binary when one
// exists; anything else falls through to normal PATH lookup.
func resolveBin(binDir, name string) string {
	if !strings.ContainsRune(name, os.PathSeparator) && LookBin(binDir, name) {
		return filepath.Join(binDir, name)
	}
	return name
}
