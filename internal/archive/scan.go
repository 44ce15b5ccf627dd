package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EntryType classifies a scanned filesystem entry.
type EntryType int

const (
	TypeRegular EntryType = iota
	TypeDir
	TypeSymlink
)

// Entry describes one filesystem object to archive. Name is the archive
// entry name, Path the filesystem location it is read from; they start out
// equal and diverge after Rebase. LinkTarget is set for symlink entries.
type Entry struct {
	Name       string
	Path       string
	Type       EntryType
	LinkTarget string
}

// Scan walks root breadth-first and returns the entries to archive.
//
// With follow=false, symlinks are preserved: they become TypeSymlink entries
// recording their target, including broken links, and are never descended
// into. With follow=true, symlinks are resolved: they are archived as the
// file or directory they point at, and a broken link is an error.
//
// A root that is itself a symlink yields exactly one entry.
func Scan(root string, follow bool) ([]Entry, error) {
	root = filepath.Clean(root)

	info, err := os.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return scanSymlinkRoot(root, follow)
	}

	var entries []Entry
	queue := []string{root}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		e, descend, err := classify(p, follow)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)

		if !descend {
			continue
		}
		children, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		for _, c := range children {
			queue = append(queue, filepath.Join(p, c.Name()))
		}
	}
	return entries, nil
}

// Rebase rewrites entry names relative to base. Entries outside base keep
// their scanned names.
func Rebase(entries []Entry, base string) []Entry {
	base = filepath.Clean(base)
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if rel, err := filepath.Rel(base, e.Path); err == nil && !strings.HasPrefix(rel, "..") {
			e.Name = rel
		}
		out[i] = e
	}
	return out
}

// scanSymlinkRoot handles a root path that is itself a symlink.
func scanSymlinkRoot(root string, follow bool) ([]Entry, error) {
	if !follow {
		target, err := os.Readlink(root)
		if err != nil {
			return nil, fmt.Errorf("reading link %s: %w", root, err)
		}
		return []Entry{{Name: root, Path: root, Type: TypeSymlink, LinkTarget: target}}, nil
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("following link %s: %w", root, err)
	}
	if info.IsDir() {
		return []Entry{{Name: root, Path: root, Type: TypeDir}}, nil
	}
	return []Entry{{Name: root, Path: root, Type: TypeRegular}}, nil
}

// classify builds the entry for a path and reports whether to descend into it.
func classify(p string, follow bool) (Entry, bool, error) {
	info, err := os.Lstat(p)
	if err != nil {
		return Entry{}, false, fmt.Errorf("scanning %s: %w", p, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if !follow {
			target, err := os.Readlink(p)
			if err != nil {
				return Entry{}, false, fmt.Errorf("reading link %s: %w", p, err)
			}
			return Entry{Name: p, Path: p, Type: TypeSymlink, LinkTarget: target}, false, nil
		}
		resolved, err := os.Stat(p)
		if err != nil {
			return Entry{}, false, fmt.Errorf("following link %s: %w", p, err)
		}
		if resolved.IsDir() {
			return Entry{Name: p, Path: p, Type: TypeDir}, true, nil
		}
		return Entry{Name: p, Path: p, Type: TypeRegular}, false, nil
	}

	if info.IsDir() {
		return Entry{Name: p, Path: p, Type: TypeDir}, true, nil
	}
	return Entry{Name: p, Path: p, Type: TypeRegular}, false, nil
}
