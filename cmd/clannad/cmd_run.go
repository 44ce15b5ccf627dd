package main

import (
	"github.com/spf13/cobra"

	"github.com/timesharingos/clannad/internal/project"
	"github.com/timesharingos/clannad/internal/shell"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Run a single command inside the environment",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRun,
	}
	cmd.Flags().String("platform", "", "Target platform (default: host platform)")
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	plat, _ := cmd.Flags().GetString("platform")

	ctx, err := project.Load(dir)
	if err != nil {
		return err
	}
	if _, err := ctx.Platform(plat); err != nil {
		return err
	}

	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	return shell.Run(ctx.Dir, ctx.BinDir(), ctx.Manifest.Name, args)
}
