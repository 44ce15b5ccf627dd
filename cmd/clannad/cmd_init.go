package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/timesharingos/clannad/internal/config"
	"github.com/timesharingos/clannad/internal/manifest"
	"github.com/timesharingos/clannad/internal/platform"
	"github.com/timesharingos/clannad/internal/project"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Create a new environment interactively or from a manifest",
		Args:  cobra.ExactArgs(1),
		RunE:  runInit,
	}
	cmd.Flags().String("from", "", "Import manifest from a local file")
	cmd.Flags().String("platform", "", "Target platform triple (default: host platform)")
	cmd.Flags().StringSlice("package", nil, "Package entries (skips the interactive prompt)")
	cmd.Flags().Bool("force", false, "Overwrite an existing environment")
	cmd.Flags().Bool("no-envrc", false, "Skip .envrc generation")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	name := args[0]
	dir, _ := cmd.Flags().GetString("dir")
	from, _ := cmd.Flags().GetString("from")
	plat, _ := cmd.Flags().GetString("platform")
	packages, _ := cmd.Flags().GetStringSlice("package")
	force, _ := cmd.Flags().GetBool("force")
	noEnvrc, _ := cmd.Flags().GetBool("no-envrc")

	if filepath.IsAbs(name) || strings.Contains(filepath.Clean(name), "..") {
		return fmt.Errorf("invalid environment name %q: must be a simple directory name (no absolute paths or ..)", name)
	}

	projDir := filepath.Join(dir, name)
	manifestPath := filepath.Join(projDir, project.ManifestName)

	if _, err := os.Stat(manifestPath); err == nil && !force {
		return fmt.Errorf("environment %q already exists (use --force to overwrite)", name)
	}

	// Build manifest data before creating the directory to avoid leaving
	// empty dirs on error.
	var data []byte
	switch {
	case from != "":
		src, err := os.ReadFile(from) //nolint:gosec // user-provided --from path
		if err != nil {
			return fmt.Errorf("reading --from source: %w", err)
		}
		if _, err := manifest.Parse(src); err != nil {
			return fmt.Errorf("invalid manifest from %s: %w", from, err)
		}
		data = src
	default:
		m, err := buildInitManifest(cmd, name, plat, packages)
		if err != nil {
			return err
		}
		data, err = marshalManifest(m)
		if err != nil {
			return fmt.Errorf("building manifest: %w", err)
		}
	}

	if err := os.MkdirAll(projDir, 0o755); err != nil {
		return fmt.Errorf("creating environment directory: %w", err)
	}

	if err := os.WriteFile(manifestPath, data, 0o644); err != nil { //nolint:gosec // manifest file needs to be readable
		return fmt.Errorf("writing manifest: %w", err)
	}

	gitignorePath := filepath.Join(projDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte(project.StateDirName+"/\n"), 0o644); err != nil { //nolint:gosec // .gitignore needs to be readable
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if !noEnvrc {
		envrcPath := filepath.Join(projDir, ".envrc")
		if err := os.WriteFile(envrcPath, []byte(generateEnvrc()), 0o644); err != nil { //nolint:gosec // .envrc needs to be readable
			return fmt.Errorf("writing .envrc: %w", err)
		}
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Environment %q created at %s\n", name, projDir)
	return nil
}

// buildInitManifest assembles a fresh manifest from flags, config defaults,
// and (when no --package flags are given) the interactive prompt.
func buildInitManifest(cmd *cobra.Command, name, plat string, packages []string) (*manifest.Manifest, error) {
	if plat == "" {
		host, err := platform.Current()
		if err != nil {
			return nil, err
		}
		plat = host.String()
	} else if _, err := platform.Parse(plat); err != nil {
		return nil, err
	}

	if len(packages) == 0 {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, fmt.Errorf("interactive init requires a TTY; use --from or --package")
		}
		var err error
		packages, err = interactiveAddPackages(nil)
		if err != nil {
			return nil, fmt.Errorf("interactive setup: %w", err)
		}
	}
	if len(packages) == 0 {
		return nil, fmt.Errorf("an environment needs at least one package")
	}

	cfg, err := loadUserConfig(cmd)
	if err != nil {
		return nil, err
	}

	return &manifest.Manifest{
		Version: 1,
		Name:    name,
		Catalog: manifest.Catalog{
			Source: cfg.GetString(config.KeyCatalogSource),
			Ref:    cfg.GetString(config.KeyCatalogRef),
		},
		Environments: map[string]manifest.Environment{
			plat: {Packages: packages},
		},
	}, nil
}

func marshalManifest(m *manifest.Manifest) ([]byte, error) {
	if err := manifest.Validate(m); err != nil {
		return nil, err
	}
	return yaml.Marshal(m)
}

// generateEnvrc creates direnv integration: keep the profile in sync and put
// its bin dir on PATH.
func generateEnvrc() string {
	return "watch_file " + project.ManifestName + "\n" +
		"clannad sync\n" +
		"PATH_add " + project.StateDirName + "/profile/bin\n"
}
