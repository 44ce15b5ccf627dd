// Package testutil provides helpers for command-level tests: a stub catalog
// tool executable that answers the subset of the nix CLI clannad drives,
// backed by a fixed package table and a deterministic fake store.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// StubRev is the immutable revision the stub catalog resolves every ref to.
const StubRev = "0123456789abcdef0123456789abcdef01234567"

// CreateCatalogStub writes an executable stub that mimics the catalog tool
// for the given package->version table and returns its path. Realized store
// paths are deterministic per package, so repeated syncs reproduce the same
// paths.
func CreateCatalogStub(t *testing.T, packages map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	store := filepath.Join(dir, "store")
	if err := os.MkdirAll(store, 0o755); err != nil {
		t.Fatal(err)
	}

	bin := filepath.Join(dir, "nix")
	if err := os.WriteFile(bin, []byte(stubScript(store, packages)), 0o755); err != nil { //nolint:gosec // test executable
		t.Fatal(err)
	}
	return bin
}

func stubScript(store string, packages map[string]string) string {
	names := make([]string, 0, len(packages))
	for name := range packages {
		names = append(names, name)
	}
	sort.Strings(names)

	var table strings.Builder
	for _, name := range names {
		fmt.Fprintf(&table, "%s) ver=%q ;;\n", name, packages[name])
	}

	return fmt.Sprintf(`#!/bin/sh
# Stub catalog tool for tests.
store=%q
rev=%q

lookup() {
    attr="$1"
    base="${attr#*#legacyPackages.}"
    plat="${base%%%%.*}"
    rest="${base#*.}"
    pkg="${rest%%%%.*}"
    leaf="${rest#*.}"
    case "$pkg" in
    %s*) echo "error: attribute '$pkg' missing" >&2; exit 1 ;;
    esac
}

case "$1" in
--version)
    echo "nix (Nix) 2.18.1"
    ;;
flake)
    case "$2" in
    --help) exit 0 ;;
    metadata) printf '{"revision":"%%s"}\n' "$rev" ;;
    *) exit 1 ;;
    esac
    ;;
eval)
    lookup "$3"
    case "$leaf" in
    name) printf '%%s' "$pkg" ;;
    version) printf '%%s' "$ver" ;;
    *) exit 1 ;;
    esac
    ;;
build)
    lookup "$4"
    out="$store/$pkg-$ver"
    mkdir -p "$out/bin"
    if [ ! -e "$out/bin/$pkg" ]; then
        printf '#!/bin/sh\necho "%%s %%s"\n' "$pkg" "$ver" > "$out/bin/$pkg"
        chmod +x "$out/bin/$pkg"
    fi
    echo "$out"
    ;;
*)
    exit 1
    ;;
esac
`, store, StubRev, table.String())
}
