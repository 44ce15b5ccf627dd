package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/timesharingos/clannad/internal/project"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the environment's state directory",
		Args:  cobra.NoArgs,
		RunE:  runClean,
	}
	cmd.Flags().Bool("force", false, "Confirm removal")
	return cmd
}

func runClean(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	force, _ := cmd.Flags().GetBool("force")

	// Only clean directories that actually hold an environment; this guards
	// against pointing --dir at the wrong place.
	if _, err := os.Stat(filepath.Join(dir, project.ManifestName)); err != nil {
		return fmt.Errorf("no %s in %s; refusing to clean", project.ManifestName, dir)
	}

	stateDir := filepath.Join(dir, project.StateDirName)
	if _, err := os.Stat(stateDir); os.IsNotExist(err) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing to clean.")
		return nil
	}

	if !force {
		return fmt.Errorf("this removes %s; re-run with --force", stateDir)
	}

	if err := os.RemoveAll(stateDir); err != nil {
		return fmt.Errorf("removing state dir: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", stateDir)
	return nil
}
