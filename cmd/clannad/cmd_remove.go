package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timesharingos/clannad/internal/manifest"
	"github.com/timesharingos/clannad/internal/project"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <package>...",
		Aliases: []string{"rm"},
		Short:   "Remove packages from the environment",
		Args:    cobra.MinimumNArgs(1),
		RunE:    runRemove,
	}
	cmd.Flags().String("platform", "", "Remove only from this platform (default: all platforms)")
	cmd.Flags().Bool("sync", false, "Sync the environment after removing")
	return cmd
}

func runRemove(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	plat, _ := cmd.Flags().GetString("platform")
	doSync, _ := cmd.Flags().GetBool("sync")

	ctx, err := project.Load(dir)
	if err != nil {
		return err
	}

	targets, err := targetPlatforms(ctx, plat)
	if err != nil {
		return err
	}

	for _, name := range args {
		// Constraints are irrelevant when removing; strip them if given.
		name = manifest.ParsePackage(name).Name

		removed := false
		for _, t := range targets {
			env := ctx.Manifest.Environments[t]
			kept := env.Packages[:0:0]
			for _, spec := range env.Packages {
				if manifest.ParsePackage(spec).Name == name {
					removed = true
					continue
				}
				kept = append(kept, spec)
			}
			env.Packages = kept
			ctx.Manifest.Environments[t] = env
		}
		if !removed {
			return fmt.Errorf("package %q is not in the environment", name)
		}
	}

	if err := manifest.Save(ctx.ManifestPath, ctx.Manifest); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range args {
		_, _ = fmt.Fprintf(out, "Removed %s\n", manifest.ParsePackage(name).Name)
	}

	if doSync {
		return syncAfterEdit(cmd, dir)
	}
	return nil
}
