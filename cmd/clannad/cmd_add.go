package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/timesharingos/clannad/internal/catalog"
	"github.com/timesharingos/clannad/internal/manifest"
	"github.com/timesharingos/clannad/internal/project"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [package...]",
		Short: "Add packages to the environment",
		Long: `Add package entries ("name" or "name@constraint") to the manifest.
Without arguments an interactive prompt collects them.`,
		RunE: runAdd,
	}
	cmd.Flags().String("platform", "", "Add only to this platform (default: all platforms)")
	cmd.Flags().Bool("check", false, "Verify packages exist in the catalog before adding")
	cmd.Flags().Bool("sync", false, "Sync the environment after adding")
	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	plat, _ := cmd.Flags().GetString("platform")
	check, _ := cmd.Flags().GetBool("check")
	doSync, _ := cmd.Flags().GetBool("sync")

	ctx, err := project.Load(dir)
	if err != nil {
		return err
	}

	targets, err := targetPlatforms(ctx, plat)
	if err != nil {
		return err
	}

	specs := args
	if len(specs) == 0 {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("no packages given and no TTY for the interactive prompt")
		}
		existing := make(map[string]bool)
		for _, t := range targets {
			pkgs, _ := ctx.Manifest.PackagesFor(t)
			for _, p := range pkgs {
				existing[p.Name] = true
			}
		}
		specs, err = interactiveAddPackages(existing)
		if err != nil {
			return err
		}
	}
	if len(specs) == 0 {
		return fmt.Errorf("no packages to add")
	}

	if check {
		tool, err := catalogTool(cmd)
		if err != nil {
			return err
		}
		cat := ctx.Manifest.Catalog
		flakeRef := catalog.FlakeRef(cat.Source, cat.EffectiveRef())
		for _, spec := range specs {
			pkg := manifest.ParsePackage(spec)
			for _, t := range targets {
				if !tool.Exists(flakeRef, t, pkg.Name) {
					return fmt.Errorf("package %q not found in catalog for %s", pkg.Name, t)
				}
			}
		}
	}

	for _, t := range targets {
		env := ctx.Manifest.Environments[t]
		for _, spec := range specs {
			pkg := manifest.ParsePackage(spec)
			if containsPackage(env.Packages, pkg.Name) {
				return fmt.Errorf("package %q is already in the %s environment", pkg.Name, t)
			}
			env.Packages = append(env.Packages, spec)
		}
		ctx.Manifest.Environments[t] = env
	}

	if err := manifest.Save(ctx.ManifestPath, ctx.Manifest); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, spec := range specs {
		_, _ = fmt.Fprintf(out, "Added %s\n", spec)
	}

	if doSync {
		return syncAfterEdit(cmd, dir)
	}
	return nil
}

// syncAfterEdit reloads the project and syncs the host platform, used by the
// manifest-editing commands' --sync flag.
func syncAfterEdit(cmd *cobra.Command, dir string) error {
	ctx, err := project.Load(dir)
	if err != nil {
		return err
	}
	target, err := ctx.Platform("")
	if err != nil {
		return err
	}
	pkgs, _ := ctx.Manifest.PackagesFor(target)

	tool, err := catalogTool(cmd)
	if err != nil {
		return err
	}
	if _, err := syncEnvironment(cmd, ctx, tool, target, pkgs, false, 4); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Sync complete.")
	return nil
}

// targetPlatforms resolves the platforms a manifest edit applies to: the
// requested one, or every platform in the manifest.
func targetPlatforms(ctx *project.Context, requested string) ([]string, error) {
	if requested == "" {
		plats := ctx.Manifest.Platforms()
		if len(plats) == 0 {
			return nil, fmt.Errorf("manifest defines no environments")
		}
		return plats, nil
	}
	resolved, err := ctx.Platform(requested)
	if err != nil {
		return nil, err
	}
	return []string{resolved}, nil
}

func containsPackage(specs []string, name string) bool {
	for _, s := range specs {
		if manifest.ParsePackage(s).Name == name {
			return true
		}
	}
	return false
}
