package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readZip(t *testing.T, path string) map[string]*zip.File {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}
	return files
}

func TestWriter_roundtrip(t *testing.T) {
	root := testTree(t)

	entries, err := Scan(root, false)
	require.NoError(t, err)
	entries = Rebase(entries, filepath.Dir(root))

	zipPath := filepath.Join(t.TempDir(), "out.zip")
	w, err := Create(zipPath)
	require.NoError(t, err)
	require.NoError(t, w.AddAll(entries))
	require.NoError(t, w.Close())

	files := readZip(t, zipPath)

	// Directories carry a trailing slash.
	dir, ok := files["root/"]
	require.True(t, ok, "missing root/ entry: %v", keys(files))
	require.True(t, dir.Mode().IsDir())

	// Regular file content survives deflate.
	f, ok := files["root/a.txt"]
	require.True(t, ok)
	rc, err := f.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "aaa", string(data))

	// Symlinks are stored as symlink entries whose body is the target.
	link, ok := files["root/link-file"]
	require.True(t, ok)
	require.NotZero(t, link.Mode()&os.ModeSymlink)
	rc, err = link.Open()
	require.NoError(t, err)
	target, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "a.txt", string(target))

	// Preserved mode: no entry for sub's contents through link-dir.
	for name := range files {
		require.False(t, strings.HasPrefix(name, "root/link-dir/"),
			"link-dir must not be descended into: %s", name)
	}
}

func TestWriter_followedLinksBecomeFiles(t *testing.T) {
	root := testTree(t)
	require.NoError(t, os.Remove(filepath.Join(root, "broken")))

	entries, err := Scan(root, true)
	require.NoError(t, err)
	entries = Rebase(entries, filepath.Dir(root))

	zipPath := filepath.Join(t.TempDir(), "out.zip")
	w, err := Create(zipPath)
	require.NoError(t, err)
	require.NoError(t, w.AddAll(entries))
	require.NoError(t, w.Close())

	files := readZip(t, zipPath)

	link, ok := files["root/link-file"]
	require.True(t, ok)
	require.Zero(t, link.Mode()&os.ModeSymlink)

	rc, err := link.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "aaa", string(data))

	// The directory behind link-dir is archived under the link's name.
	_, ok = files["root/link-dir/b.txt"]
	require.True(t, ok, "expected link-dir contents: %v", keys(files))
}

func keys(m map[string]*zip.File) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
