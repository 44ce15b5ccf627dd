package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/timesharingos/clannad/internal/manifest"
	"github.com/timesharingos/clannad/internal/project"
	"github.com/timesharingos/clannad/internal/ui"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a manifest against the schema and structural rules",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")

	path := filepath.Join(dir, project.ManifestName)
	if len(args) == 1 {
		path = args[0]
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-requested manifest path
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	out := cmd.OutOrStdout()

	result, err := manifest.ValidateSchema(data)
	if err != nil {
		return err
	}
	if !result.Valid {
		for _, issue := range result.Issues {
			_, _ = fmt.Fprintf(out, "%s %s: %s\n", ui.Fail("schema"), issue.Path, issue.Message)
		}
		return fmt.Errorf("%s: %d schema violation(s)", path, len(result.Issues))
	}

	if _, err := manifest.Parse(data); err != nil {
		_, _ = fmt.Fprintf(out, "%s %v\n", ui.Fail("manifest"), err)
		return fmt.Errorf("%s: invalid manifest", path)
	}

	_, _ = fmt.Fprintf(out, "%s %s is valid\n", ui.OK("ok"), path)
	return nil
}
