package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/timesharingos/clannad/internal/lock"
	"github.com/timesharingos/clannad/internal/platform"
	"github.com/timesharingos/clannad/internal/project"
	"github.com/timesharingos/clannad/internal/testutil"
)

// setupProject creates a temp project whose manifest targets the host
// platform, plus a config dir pointing the catalog tool at a stub that knows
// the given package versions.
func setupProject(t *testing.T, catalog map[string]string, packages []string) (projDir, cfgDir string) {
	t.Helper()

	host, err := platform.Current()
	if err != nil {
		t.Skipf("host platform unsupported: %v", err)
	}

	type env struct {
		Packages []string `yaml:"packages"`
	}
	m := struct {
		Version      int            `yaml:"version"`
		Name         string         `yaml:"name"`
		Catalog      map[string]any `yaml:"catalog"`
		Environments map[string]env `yaml:"environments"`
	}{
		Version:      1,
		Name:         "test-env",
		Catalog:      map[string]any{"source": "github:NixOS/nixpkgs", "ref": "nixpkgs-unstable"},
		Environments: map[string]env{host.String(): {Packages: packages}},
	}

	projDir = t.TempDir()
	data, _ := yaml.Marshal(&m)
	if err := os.WriteFile(filepath.Join(projDir, project.ManifestName), data, 0o644); err != nil {
		t.Fatal(err)
	}

	stub := testutil.CreateCatalogStub(t, catalog)
	cfgDir = t.TempDir()
	writeToolConfig(t, cfgDir, stub)
	return projDir, cfgDir
}

// writeToolConfig points the user config's tool_bin at the given binary.
func writeToolConfig(t *testing.T, cfgDir, bin string) {
	t.Helper()
	cfg := "tool_bin: " + bin + "\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
}

// runCLI executes the root command with the given args and returns its
// combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRunSync_linksBinaries(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4", "cargo": "1.78.0"},
		[]string{"wget", "cargo"})

	out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "sync")
	if err != nil {
		t.Fatalf("sync failed: %v\n%s", err, out)
	}

	binDir := filepath.Join(projDir, project.StateDirName, "profile", "bin")
	for _, name := range []string{"wget", "cargo"} {
		if _, err := os.Stat(filepath.Join(binDir, name)); err != nil {
			t.Errorf("%s should be linked into the profile: %v", name, err)
		}
	}
}

func TestRunSync_idempotent(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4"}, []string{"wget"})

	for i := range 2 {
		out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "sync")
		if err != nil {
			t.Fatalf("sync #%d failed: %v\n%s", i+1, err, out)
		}
	}

	binDir := filepath.Join(projDir, project.StateDirName, "profile", "bin")
	if _, err := os.Stat(filepath.Join(binDir, "wget")); err != nil {
		t.Error("wget should still be linked after two syncs")
	}
}

func TestRunSync_onlyFilter(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4", "cargo": "1.78.0"},
		[]string{"wget", "cargo"})

	out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "sync", "--only", "wget")
	if err != nil {
		t.Fatalf("sync --only failed: %v\n%s", err, out)
	}

	binDir := filepath.Join(projDir, project.StateDirName, "profile", "bin")
	if _, err := os.Stat(filepath.Join(binDir, "wget")); err != nil {
		t.Error("wget should be linked")
	}
	if _, err := os.Stat(filepath.Join(binDir, "cargo")); err == nil {
		t.Error("cargo should NOT be linked with --only wget")
	}
}

func TestRunSync_updateLock(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4"}, []string{"wget"})

	out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "sync", "--update-lock")
	if err != nil {
		t.Fatalf("sync --update-lock failed: %v\n%s", err, out)
	}

	lf, err := lock.Load(filepath.Join(projDir, project.LockName))
	if err != nil {
		t.Fatalf("lock file not readable: %v", err)
	}
	if lf.Catalog.Rev != testutil.StubRev {
		t.Errorf("lock rev = %q, want %q", lf.Catalog.Rev, testutil.StubRev)
	}

	host, _ := platform.Current()
	p, ok := lf.PackageFor(host.String(), "wget")
	if !ok {
		t.Fatal("wget should be pinned")
	}
	if p.Version != "1.21.4" {
		t.Errorf("pinned version = %q", p.Version)
	}
	if p.StorePath == "" {
		t.Error("store path should be recorded after sync")
	}
}

func TestRunSync_lockFlagRequiresLockFile(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4"}, []string{"wget"})

	_, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "sync", "--lock")
	if err == nil {
		t.Fatal("sync --lock without a lock file should fail")
	}
}

func TestRunSync_unknownPackageFails(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4"}, []string{"wget", "no-such-tool"})

	_, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "sync")
	if err == nil {
		t.Fatal("sync should fail when a package cannot be realized")
	}
}
