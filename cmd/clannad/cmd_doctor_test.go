package main

import (
	"strings"
	"testing"
)

func TestRunDoctor_healthy(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4"}, []string{"wget"})

	out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "doctor")
	if err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, out)
	}
	for _, want := range []string{"catalog tool on PATH", "flake support", "catalog reachable"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "no lock file") {
		t.Errorf("doctor should suggest pinning:\n%s", out)
	}
}

func TestRunDoctor_missingTool(t *testing.T) {
	projDir, _ := setupProject(t,
		map[string]string{"wget": "1.21.4"}, []string{"wget"})

	// A config dir whose tool_bin points nowhere.
	cfgDir := t.TempDir()
	writeToolConfig(t, cfgDir, "definitely-not-a-real-binary")

	if _, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "doctor"); err == nil {
		t.Fatal("doctor should fail when the catalog tool is missing")
	}
}

func TestRunDoctor_outsideProject(t *testing.T) {
	_, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4"}, []string{"wget"})

	// Tool checks pass, project checks are skipped with a note.
	out, err := runCLI(t, "--dir", t.TempDir(), "--config-dir", cfgDir, "doctor")
	if err != nil {
		t.Fatalf("doctor outside a project should still pass tool checks: %v\n%s", err, out)
	}
	if !strings.Contains(out, "no environment here") {
		t.Errorf("doctor should note the missing environment:\n%s", out)
	}
}
