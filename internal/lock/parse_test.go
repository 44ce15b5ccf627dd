package lock

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_valid(t *testing.T) {
	data := []byte(`
version: 1
name: rust-dev
generated_at: "2024-05-01T12:00:00Z"
tool_version: 0.3.0
catalog:
  source: github:NixOS/nixpkgs
  ref: nixpkgs-unstable
  rev: abc123
environments:
  x86_64-linux:
    packages:
      cargo:
        version: 1.78.0
        store_path: /nix/store/xxx-cargo-1.78.0
      wget:
        version: 1.21.4
`)
	lf, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lf.Catalog.Rev != "abc123" {
		t.Errorf("rev = %q, want abc123", lf.Catalog.Rev)
	}
	p, ok := lf.PackageFor("x86_64-linux", "cargo")
	if !ok {
		t.Fatal("cargo should be pinned")
	}
	if p.Version != "1.78.0" {
		t.Errorf("cargo version = %q, want 1.78.0", p.Version)
	}
	if p.StorePath != "/nix/store/xxx-cargo-1.78.0" {
		t.Errorf("cargo store path = %q", p.StorePath)
	}
}

func TestPackageFor_missing(t *testing.T) {
	lf := &File{
		Environments: map[string]*Environment{
			"x86_64-linux": {Packages: map[string]*Package{"wget": {Version: "1.21"}}},
		},
	}
	if _, ok := lf.PackageFor("x86_64-linux", "cargo"); ok {
		t.Error("cargo should not be pinned")
	}
	if _, ok := lf.PackageFor("aarch64-darwin", "wget"); ok {
		t.Error("no aarch64-darwin environment expected")
	}
}

func TestSave_roundtrip(t *testing.T) {
	lf := &File{
		Version:     1,
		Name:        "rust-dev",
		GeneratedAt: "2024-05-01T12:00:00Z",
		ToolVersion: "0.3.0",
		Catalog:     Catalog{Source: "github:NixOS/nixpkgs", Ref: "nixpkgs-unstable", Rev: "abc123"},
		Environments: map[string]*Environment{
			"x86_64-linux": {Packages: map[string]*Package{
				"cargo": {Version: "1.78.0", StorePath: "/nix/store/xxx"},
			}},
		},
	}

	path := filepath.Join(t.TempDir(), "environment.lock.yaml")
	if err := Save(path, lf); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(lf, loaded); diff != "" {
		t.Errorf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_malformed(t *testing.T) {
	if _, err := Parse([]byte("{not yaml")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
