package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timesharingos/clannad/internal/platform"
	"github.com/timesharingos/clannad/internal/project"
	"github.com/timesharingos/clannad/internal/ui"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the tool installation and the current environment",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	out := cmd.OutOrStdout()

	tool, err := catalogTool(cmd)
	if err != nil {
		return err
	}

	failures := 0
	check := func(label string, ok bool, detail string) {
		mark := ui.OK("ok")
		if !ok {
			mark = ui.Fail("fail")
			failures++
		}
		if detail != "" {
			_, _ = fmt.Fprintf(out, "%s %s: %s\n", mark, label, detail)
			return
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", mark, label)
	}

	installed := tool.IsInstalled()
	check("catalog tool on PATH", installed, tool.Bin)
	if installed {
		ver, err := tool.Version()
		check("catalog tool version", err == nil, ver)
		check("flake support", tool.FlakesEnabled(), "")
	}

	host, err := platform.Current()
	check("host platform recognized", err == nil, host.String())

	ctx, err := project.Load(dir)
	if err != nil {
		_, _ = fmt.Fprintf(out, "%s no environment here (%v)\n", ui.Warn("note"), err)
		return doctorResult(failures)
	}

	_, plErr := ctx.Platform("")
	check("environment supports host platform", plErr == nil, "")

	if installed {
		cat := ctx.Manifest.Catalog
		rev, err := tool.ResolveRev(cat.Source, cat.EffectiveRef())
		check("catalog reachable", err == nil, rev)
	}

	if ctx.Lock == nil {
		_, _ = fmt.Fprintf(out, "%s no lock file (run `clannad pin`)\n", ui.Warn("note"))
	} else {
		check("lock matches catalog source", ctx.Lock.Catalog.Source == ctx.Manifest.Catalog.Source, "")
	}

	return doctorResult(failures)
}

func doctorResult(failures int) error {
	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	return nil
}
