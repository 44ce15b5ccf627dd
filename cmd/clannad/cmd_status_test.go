package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRunStatus_unpinned(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4"}, []string{"wget"})

	out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "status")
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "wget") {
		t.Errorf("output should list wget:\n%s", out)
	}
	if !strings.Contains(out, "not pinned") {
		t.Errorf("unpinned package should be flagged:\n%s", out)
	}
}

func TestRunStatus_afterPinAndSync(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4"}, []string{"wget"})

	if out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir,
		"sync", "--update-lock"); err != nil {
		t.Fatalf("sync failed: %v\n%s", err, out)
	}

	out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "status")
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1.21.4") {
		t.Errorf("pinned version missing:\n%s", out)
	}
	if strings.Contains(out, "not pinned") {
		t.Errorf("nothing should be unpinned:\n%s", out)
	}
}

func TestRunStatus_json(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4", "cargo": "1.78.0"},
		[]string{"wget", "cargo@^1.75"})

	out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "status", "--json")
	if err != nil {
		t.Fatalf("status --json failed: %v\n%s", err, out)
	}

	var report statusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if report.Name != "test-env" {
		t.Errorf("name = %q", report.Name)
	}
	if len(report.Packages) != 2 {
		t.Errorf("packages = %+v", report.Packages)
	}
	if report.Packages[1].Constraint != "^1.75" {
		t.Errorf("constraint = %q", report.Packages[1].Constraint)
	}
}

func TestRunStatus_removedFromManifest(t *testing.T) {
	projDir, cfgDir := setupProject(t,
		map[string]string{"wget": "1.21.4", "cargo": "1.78.0"},
		[]string{"wget", "cargo"})

	if out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "pin"); err != nil {
		t.Fatalf("pin failed: %v\n%s", err, out)
	}
	if out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "remove", "cargo"); err != nil {
		t.Fatalf("remove failed: %v\n%s", err, out)
	}

	out, err := runCLI(t, "--dir", projDir, "--config-dir", cfgDir, "status")
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "removed from manifest") {
		t.Errorf("lock-only package should be reported as removed:\n%s", out)
	}
}
