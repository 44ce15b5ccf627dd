package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/timesharingos/clannad/internal/catalog"
	"github.com/timesharingos/clannad/internal/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clannad",
		Short:   "Declarative, pinned development environments",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
				Level(level).With().Timestamp().Logger()
		},
	}

	cmd.PersistentFlags().String("dir", ".", "Project directory containing environment.yaml")
	cmd.PersistentFlags().String("config-dir", "", "Configuration directory (default: $CLANNAD_CONFIG_DIR or ~/.config/clannad)")
	cmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	cmd.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newRemoveCmd(),
		newValidateCmd(),
		newPinCmd(),
		newSyncCmd(),
		newShellCmd(),
		newRunCmd(),
		newStatusCmd(),
		newVerifyCmd(),
		newDoctorCmd(),
		newExportCmd(),
		newCleanCmd(),
	)

	return cmd
}

// loadUserConfig resolves the config dir from flags/env and loads config.yaml.
func loadUserConfig(cmd *cobra.Command) (*viper.Viper, error) {
	flagDir, _ := cmd.Flags().GetString("config-dir")
	dir, err := config.ResolveDir(flagDir)
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

// catalogTool builds the external tool adapter from user configuration.
func catalogTool(cmd *cobra.Command) (catalog.Tool, error) {
	cfg, err := loadUserConfig(cmd)
	if err != nil {
		return catalog.Tool{}, err
	}
	return catalog.New(cfg.GetString(config.KeyToolBin)), nil
}
