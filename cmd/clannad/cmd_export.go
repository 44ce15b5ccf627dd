package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/timesharingos/clannad/internal/archive"
	"github.com/timesharingos/clannad/internal/project"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <archive.zip> [path...]",
		Short: "Archive the environment definition into a zip file",
		Long: `Export writes a zip archive of the environment. Without extra paths it
archives the manifest, the lock file, and the state directory. Symlinks
are stored as symlink entries unless --follow resolves them to their
targets.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExport,
	}
	cmd.Flags().Bool("follow", false, "Resolve symlinks instead of preserving them")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	follow, _ := cmd.Flags().GetBool("follow")

	zipPath := args[0]
	paths := args[1:]

	ctx, err := project.Load(dir)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		paths = defaultExportPaths(ctx)
	} else {
		for i, p := range paths {
			if !filepath.IsAbs(p) {
				paths[i] = filepath.Join(ctx.Dir, p)
			}
		}
	}

	var entries []archive.Entry
	for _, p := range paths {
		scanned, err := archive.Scan(p, follow)
		if err != nil {
			return err
		}
		entries = append(entries, archive.Rebase(scanned, ctx.Dir)...)
	}

	w, err := archive.Create(zipPath)
	if err != nil {
		return err
	}
	if err := w.AddAll(entries); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), zipPath)
	return nil
}

// defaultExportPaths returns the manifest, the lock file when present, and
// the state directory when present.
func defaultExportPaths(ctx *project.Context) []string {
	paths := []string{ctx.ManifestPath}
	if ctx.Lock != nil {
		paths = append(paths, ctx.LockPath)
	}
	if _, err := os.Stat(ctx.StateDir()); err == nil {
		paths = append(paths, ctx.StateDir())
	}
	return paths
}
