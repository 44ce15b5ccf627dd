package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/timesharingos/clannad/internal/catalog"
	"github.com/timesharingos/clannad/internal/lock"
	"github.com/timesharingos/clannad/internal/project"
)

func newPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin",
		Short: "Resolve the catalog to an immutable revision and write the lock file",
		Args:  cobra.NoArgs,
		RunE:  runPin,
	}
}

func runPin(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")

	ctx, err := project.Load(dir)
	if err != nil {
		return err
	}

	tool, err := catalogTool(cmd)
	if err != nil {
		return err
	}

	lf, err := buildLock(ctx, tool, version)
	if err != nil {
		return err
	}
	if err := lock.Save(ctx.LockPath, lf); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Pinned catalog %s to %s\n",
		ctx.Manifest.Catalog.Source, lf.Catalog.Rev)
	return nil
}

// buildLock resolves the catalog ref to its current revision and records the
// catalog version of every package, for every platform in the manifest.
// Packages whose resolved version violates their constraint fail the pin.
func buildLock(ctx *project.Context, tool catalog.Tool, toolVer string) (*lock.File, error) {
	cat := ctx.Manifest.Catalog

	rev, err := tool.ResolveRev(cat.Source, cat.EffectiveRef())
	if err != nil {
		return nil, err
	}
	flakeRef := catalog.FlakeRef(cat.Source, rev)

	lf := &lock.File{
		Version:     1,
		Name:        ctx.Manifest.Name,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		ToolVersion: toolVer,
		Catalog: lock.Catalog{
			Source: cat.Source,
			Ref:    cat.EffectiveRef(),
			Rev:    rev,
		},
		Environments: make(map[string]*lock.Environment),
	}

	for _, plat := range ctx.Manifest.Platforms() {
		pkgs, _ := ctx.Manifest.PackagesFor(plat)
		env := &lock.Environment{Packages: make(map[string]*lock.Package, len(pkgs))}

		for _, p := range pkgs {
			ver, err := tool.PackageVersion(flakeRef, plat, p.Name)
			if err != nil {
				return nil, err
			}
			if !p.Matches(ver) {
				return nil, fmt.Errorf("package %s: catalog version %q does not satisfy constraint %q",
					p.Name, ver, p.Constraint)
			}
			env.Packages[p.Name] = &lock.Package{Version: ver}
		}
		lf.Environments[plat] = env
	}

	return lf, nil
}

// writeLock pins and saves the lock file in one step.
func writeLock(ctx *project.Context, tool catalog.Tool, toolVer string) error {
	lf, err := buildLock(ctx, tool, toolVer)
	if err != nil {
		return err
	}
	return lock.Save(ctx.LockPath, lf)
}
