package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/timesharingos/clannad/internal/catalog"
	"github.com/timesharingos/clannad/internal/lock"
	"github.com/timesharingos/clannad/internal/manifest"
	"github.com/timesharingos/clannad/internal/project"
	"github.com/timesharingos/clannad/internal/ui"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Realize packages and link their binaries into the profile",
		RunE:  runSync,
	}
	cmd.Flags().String("platform", "", "Target platform (default: host platform)")
	cmd.Flags().StringSlice("only", nil, "Sync only these packages")
	cmd.Flags().StringSlice("skip", nil, "Skip these packages")
	cmd.Flags().Int("jobs", 4, "Number of parallel workers")
	cmd.Flags().Bool("lock", false, "Require the pinned catalog revision from the lock file")
	cmd.Flags().Bool("update-lock", false, "Update the lock file after sync")
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	plat, _ := cmd.Flags().GetString("platform")
	only, _ := cmd.Flags().GetStringSlice("only")
	skip, _ := cmd.Flags().GetStringSlice("skip")
	jobs, _ := cmd.Flags().GetInt("jobs")
	useLock, _ := cmd.Flags().GetBool("lock")
	updateLock, _ := cmd.Flags().GetBool("update-lock")

	if jobs < 1 {
		return fmt.Errorf("--jobs must be >= 1 (got %d)", jobs)
	}

	ctx, err := project.Load(dir)
	if err != nil {
		return err
	}

	target, err := ctx.Platform(plat)
	if err != nil {
		return err
	}

	pkgs, _ := ctx.Manifest.PackagesFor(target)
	pkgs = manifest.FilterPackages(pkgs, only, skip)

	if useLock && ctx.Lock == nil {
		return fmt.Errorf("--lock specified but no %s found", project.LockName)
	}

	tool, err := catalogTool(cmd)
	if err != nil {
		return err
	}

	realized, err := syncEnvironment(cmd, ctx, tool, target, pkgs, useLock, jobs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if updateLock {
		lf, err := buildLock(ctx, tool, version)
		if err != nil {
			return err
		}
		for name, sp := range realized {
			if p, ok := lf.PackageFor(target, name); ok {
				p.StorePath = sp
			}
		}
		if err := lock.Save(ctx.LockPath, lf); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "Lock file updated.")
	}

	_, _ = fmt.Fprintln(out, "Sync complete.")
	return nil
}

// syncEnvironment realizes the given packages in parallel and relinks the
// profile bin directory from the resulting store paths, preserving manifest
// order for link priority. It returns the store path realized per package.
func syncEnvironment(cmd *cobra.Command, ctx *project.Context, tool catalog.Tool, plat string, pkgs []manifest.Package, useLock bool, jobs int) (map[string]string, error) {
	flakeRef := resolvedFlakeRef(ctx, useLock)

	if useLock {
		for _, p := range pkgs {
			if _, ok := ctx.Lock.PackageFor(plat, p.Name); !ok {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s is not pinned in the lock file\n", p.Name)
			}
		}
	}

	if jobs < 1 {
		jobs = 1
	}
	progress := ui.NewProgress(cmd.ErrOrStderr(), len(pkgs))

	storePaths := make([]string, len(pkgs))
	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	errCh := make(chan error, len(pkgs))

	for i, p := range pkgs {
		wg.Add(1)
		go func(i int, p manifest.Package) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			progress.Log("Realizing %s ...", p.Name)
			sp, err := tool.Realize(flakeRef, plat, p.Name)
			if err != nil {
				progress.Failed(p.Name)
				errCh <- err
				return
			}
			storePaths[i] = sp
			progress.Done(fmt.Sprintf("%s @ %s", p.Name, filepath.Base(sp)))
		}(i, p)
	}

	wg.Wait()
	close(errCh)

	for e := range errCh {
		return nil, e
	}

	if err := linkProfile(ctx.BinDir(), storePaths); err != nil {
		return nil, err
	}

	realized := make(map[string]string, len(pkgs))
	for i, p := range pkgs {
		realized[p.Name] = storePaths[i]
	}
	return realized, nil
}

// resolvedFlakeRef returns the flake reference to realize against: the
// pinned revision when a lock exists, the floating catalog ref otherwise.
func resolvedFlakeRef(ctx *project.Context, useLock bool) string {
	cat := ctx.Manifest.Catalog
	if ctx.Lock != nil && (useLock || ctx.Lock.Catalog.Rev != "") {
		return catalog.FlakeRef(cat.Source, ctx.Lock.Catalog.Rev)
	}
	return catalog.FlakeRef(cat.Source, cat.EffectiveRef())
}

// linkProfile rebuilds the profile bin dir with symlinks to each store
// path's binaries. Earlier store paths win name conflicts.
func linkProfile(binDir string, storePaths []string) error {
	if err := os.RemoveAll(binDir); err != nil {
		return fmt.Errorf("clearing profile bin: %w", err)
	}
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating profile bin: %w", err)
	}

	for _, sp := range storePaths {
		if sp == "" {
			continue
		}
		srcBin := filepath.Join(sp, "bin")
		entries, err := os.ReadDir(srcBin)
		if err != nil {
			if os.IsNotExist(err) {
				// Library-only packages ship no binaries.
				continue
			}
			return fmt.Errorf("reading %s: %w", srcBin, err)
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			dst := filepath.Join(binDir, name)
			if _, err := os.Lstat(dst); err == nil {
				continue
			}
			if err := os.Symlink(filepath.Join(srcBin, name), dst); err != nil {
				return fmt.Errorf("linking %s: %w", name, err)
			}
		}
	}
	return nil
}
