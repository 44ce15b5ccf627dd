package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/timesharingos/clannad/internal/manifest"
	"github.com/timesharingos/clannad/internal/project"
	"github.com/timesharingos/clannad/internal/ui"
)

// packageStatus is one row of status output.
type packageStatus struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint,omitempty"`
	Pinned     string `json:"pinned,omitempty"`
	StorePath  string `json:"store_path,omitempty"`
	Installed  bool   `json:"installed"`
	Drift      string `json:"drift,omitempty"`
}

type statusReport struct {
	Name     string          `json:"name"`
	Platform string          `json:"platform"`
	Catalog  catalogStatus   `json:"catalog"`
	Packages []packageStatus `json:"packages"`
}

type catalogStatus struct {
	Source string `json:"source"`
	Ref    string `json:"ref"`
	Rev    string `json:"rev,omitempty"`
	Drift  string `json:"drift,omitempty"`
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show package state and lock drift",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
	cmd.Flags().String("platform", "", "Target platform (default: host platform)")
	cmd.Flags().Bool("json", false, "Output machine-readable JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	plat, _ := cmd.Flags().GetString("platform")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx, err := project.Load(dir)
	if err != nil {
		return err
	}
	target, err := ctx.Platform(plat)
	if err != nil {
		return err
	}

	report := buildStatus(ctx, target)

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	_, _ = fmt.Fprintf(out, "Environment: %s (%s)\n", report.Name, report.Platform)
	_, _ = fmt.Fprintf(out, "Catalog: %s/%s", report.Catalog.Source, report.Catalog.Ref)
	if report.Catalog.Rev != "" {
		_, _ = fmt.Fprintf(out, " @ %s", report.Catalog.Rev)
	}
	_, _ = fmt.Fprintln(out)
	if report.Catalog.Drift != "" {
		_, _ = fmt.Fprintf(out, "%s %s\n", ui.Warn("drift:"), report.Catalog.Drift)
	}
	_, _ = fmt.Fprintln(out)

	table := ui.NewTable(out, "PACKAGE", "CONSTRAINT", "PINNED", "INSTALLED", "DRIFT")
	for _, p := range report.Packages {
		table.Row(p.Name, orDash(p.Constraint), orDash(p.Pinned), yesNo(p.Installed), orDash(p.Drift))
	}
	return table.Flush()
}

// buildStatus assembles the status report for one platform, comparing the
// manifest against the lock file and the on-disk store paths.
func buildStatus(ctx *project.Context, plat string) statusReport {
	cat := ctx.Manifest.Catalog
	report := statusReport{
		Name:     ctx.Manifest.Name,
		Platform: plat,
		Catalog:  catalogStatus{Source: cat.Source, Ref: cat.EffectiveRef()},
	}

	if ctx.Lock != nil {
		report.Catalog.Rev = ctx.Lock.Catalog.Rev
		switch {
		case ctx.Lock.Catalog.Source != cat.Source:
			report.Catalog.Drift = fmt.Sprintf("lock pins source %s, manifest wants %s",
				ctx.Lock.Catalog.Source, cat.Source)
		case ctx.Lock.Catalog.Ref != cat.EffectiveRef():
			report.Catalog.Drift = fmt.Sprintf("lock follows ref %s, manifest wants %s",
				ctx.Lock.Catalog.Ref, cat.EffectiveRef())
		}
	}

	pkgs, _ := ctx.Manifest.PackagesFor(plat)
	seen := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		seen[p.Name] = true
		report.Packages = append(report.Packages, packageRow(ctx, plat, p))
	}

	// Lock entries for packages no longer in the manifest.
	if ctx.Lock != nil {
		if env, ok := ctx.Lock.Environments[plat]; ok && env != nil {
			var removed []string
			for name := range env.Packages {
				if !seen[name] {
					removed = append(removed, name)
				}
			}
			sort.Strings(removed)
			for _, name := range removed {
				lp := env.Packages[name]
				report.Packages = append(report.Packages, packageStatus{
					Name:      name,
					Pinned:    lp.Version,
					StorePath: lp.StorePath,
					Installed: storePathExists(lp.StorePath),
					Drift:     "removed from manifest",
				})
			}
		}
	}

	return report
}

func packageRow(ctx *project.Context, plat string, p manifest.Package) packageStatus {
	row := packageStatus{Name: p.Name, Constraint: p.Constraint}

	if ctx.Lock == nil {
		row.Drift = "not pinned"
		return row
	}
	lp, ok := ctx.Lock.PackageFor(plat, p.Name)
	if !ok {
		row.Drift = "not pinned"
		return row
	}

	row.Pinned = lp.Version
	row.StorePath = lp.StorePath
	row.Installed = storePathExists(lp.StorePath)
	if !p.Matches(lp.Version) {
		row.Drift = fmt.Sprintf("pinned %s violates %s", lp.Version, p.Constraint)
	}
	return row
}

func storePathExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
