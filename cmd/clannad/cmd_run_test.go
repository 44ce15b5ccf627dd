package main

import (
	"testing"
)

func TestRunRun_profileBinary(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"cargo": "1.78.0"}, []string{"cargo"})

	if out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "sync"); err != nil {
		t.Fatalf("sync failed: %v\n%s", err, out)
	}

	if out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir,
		"run", "--", "cargo", "build"); err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
}

func TestRunRun_systemBinary(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4"}, []string{"wget"})

	// Commands outside the profile still resolve through PATH.
	if out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir,
		"run", "--", "true"); err != nil {
		t.Fatalf("run true failed: %v\n%s", err, out)
	}
}

func TestRunRun_failurePropagates(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4"}, []string{"wget"})

	if _, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir,
		"run", "--", "false"); err == nil {
		t.Fatal("run should propagate the command's failure")
	}
}

func TestRunRun_requiresProject(t *testing.T) {
	cfgDir := t.TempDir()
	if _, err := runCLI(t, "--dir", t.TempDir(), "--config-dir", cfgDir,
		"run", "--", "true"); err == nil {
		t.Fatal("run outside a project should fail")
	}
}
