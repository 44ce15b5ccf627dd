package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Writer produces a zip archive from scanned entries.
type Writer struct {
	f  *os.File
	zw *zip.Writer
}

// Create opens a zip archive for writing at path.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path) //nolint:gosec // path is the user-requested archive destination
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	return &Writer{f: f, zw: zip.NewWriter(f)}, nil
}

// Close finishes the archive and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.zw.Close(); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("finishing archive: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// Add writes one scanned entry, reading regular file content from disk.
func (w *Writer) Add(e Entry) error {
	switch e.Type {
	case TypeDir:
		return w.addDir(e.Name)
	case TypeSymlink:
		return w.addSymlink(e.Name, e.LinkTarget)
	default:
		return w.addFile(e.Name, e.Path)
	}
}

// AddAll writes all scanned entries in order.
func (w *Writer) AddAll(entries []Entry) error {
	for _, e := range entries {
		if err := w.Add(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) addDir(name string) error {
	hdr := &zip.FileHeader{
		Name:   filepath.ToSlash(name) + "/",
		Method: zip.Deflate,
	}
	hdr.SetMode(0o755 | os.ModeDir)
	if _, err := w.zw.CreateHeader(hdr); err != nil {
		return fmt.Errorf("archiving dir %s: %w", name, err)
	}
	return nil
}

func (w *Writer) addFile(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("archiving %s: %w", path, err)
	}

	hdr := &zip.FileHeader{
		Name:   filepath.ToSlash(name),
		Method: zip.Deflate,
	}
	hdr.SetMode(info.Mode().Perm())

	dst, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("archiving %s: %w", name, err)
	}

	src, err := os.Open(path) //nolint:gosec // path comes from the scan of a user-requested tree
	if err != nil {
		return fmt.Errorf("archiving %s: %w", path, err)
	}
	defer func() { _ = src.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("archiving %s: %w", path, err)
	}
	return nil
}

// addSymlink stores a symlink entry; the entry body is the link target, the
// convention zip tooling (including Go's archive/zip readers and Info-ZIP)
// uses for symlinks.
func (w *Writer) addSymlink(name, target string) error {
	hdr := &zip.FileHeader{
		Name:   filepath.ToSlash(name),
		Method: zip.Store,
	}
	hdr.SetMode(0o777 | os.ModeSymlink)

	dst, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("archiving link %s: %w", name, err)
	}
	if _, err := dst.Write([]byte(target)); err != nil {
		return fmt.Errorf("archiving link %s: %w", name, err)
	}
	return nil
}
