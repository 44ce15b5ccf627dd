package main

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/timesharingos/clannad/internal/manifest"
	"github.com/timesharingos/clannad/internal/project"
	"github.com/timesharingos/clannad/internal/shell"
	"github.com/timesharingos/clannad/internal/ui"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that synced packages are runnable",
		Args:  cobra.NoArgs,
		RunE:  runVerify,
	}
	cmd.Flags().String("platform", "", "Target platform (default: host platform)")
	cmd.Flags().StringSlice("only", nil, "Verify only these packages")
	cmd.Flags().StringSlice("skip", nil, "Skip these packages")
	return cmd
}

func runVerify(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	plat, _ := cmd.Flags().GetString("platform")
	only, _ := cmd.Flags().GetStringSlice("only")
	skip, _ := cmd.Flags().GetStringSlice("skip")

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

	binDir := ctx.BinDir()
	env := shell.Environ(binDir, ctx.Manifest.Name)

	out := cmd.OutOrStdout()
	failures := 0
	for _, p := range pkgs {
		switch {
		case !shell.LookBin(binDir, p.Name):
			// Library packages and tools whose binary is named differently
			// cannot be probed by name.
			_, _ = fmt.Fprintf(out, "%s %s (no binary named %q in profile)\n",
				ui.Warn("skip"), p.Name, p.Name)
		case probeBinary(filepath.Join(binDir, p.Name), ctx.Dir, env):
			_, _ = fmt.Fprintf(out, "%s %s\n", ui.OK("ok"), p.Name)
		default:
			_, _ = fmt.Fprintf(out, "%s %s (--version failed)\n", ui.Fail("fail"), p.Name)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d package(s) failed verification", failures)
	}
	return nil
}

// probeBinary runs `bin --version` inside the activated environment and
// reports whether it exited successfully.
func probeBinary(bin, dir string, env []string) bool {
	cmd := exec.Command(bin, "--version") //nolint:gosec // bin is a path inside the project profile
	cmd.Dir = dir
	cmd.Env = env
	return cmd.Run() == nil
}
