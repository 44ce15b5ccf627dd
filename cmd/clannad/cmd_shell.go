package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timesharingos/clannad/internal/project"
	"github.com/timesharingos/clannad/internal/shell"
)

func newShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell inside the environment",
		Args:  cobra.NoArgs,
		RunE:  runShell,
	}
	cmd.Flags().String("platform", "", "Target platform (default: host platform)")
	cmd.Flags().Bool("no-hooks", false, "Skip environment hooks")
	return cmd
}

func runShell(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	plat, _ := cmd.Flags().GetString("platform")
	noHooks, _ := cmd.Flags().GetBool("no-hooks")

	if shell.IsActive() {
		return fmt.Errorf("already inside an activated environment (%s is set)", shell.EnvMarker)
	}

	ctx, err := project.Load(dir)
	if err != nil {
		return err
	}
	target, err := ctx.Platform(plat)
	if err != nil {
		return err
	}

	binDir := ctx.BinDir()
	name := ctx.Manifest.Name

	if !noHooks {
		env := ctx.Manifest.Environments[target]
		if err := shell.RunHooks(ctx.Dir, binDir, name, env.Hooks); err != nil {
			return err
		}
	}

	bins, err := shell.Binaries(binDir)
	if err != nil {
		return err
	}
	errOut := cmd.ErrOrStderr()
	if len(bins) == 0 {
		_, _ = fmt.Fprintln(errOut, "Profile is empty; run `clannad sync` first.")
	} else {
		_, _ = fmt.Fprintf(errOut, "Available: %s\n", strings.Join(bins, ", "))
	}
	_, _ = fmt.Fprintf(errOut, "Entering environment %s (exit the shell to leave)\n", name)
	return shell.Enter(ctx.Dir, binDir, name)
}
