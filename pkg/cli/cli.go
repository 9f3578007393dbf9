package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/logdeck/logdeck/pkg/config"
	"github.com/logdeck/logdeck/pkg/logging"
	"github.com/logdeck/logdeck/pkg/pprof"
	"github.com/logdeck/logdeck/pkg/tui"
	"github.com/logdeck/logdeck/pkg/types"
)

func NewRootCommand(cli *types.CLI, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "logdeck",
		Short:   "logdeck - browse ingested flight logs from the terminal",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cli.PprofPath != "" {
				return pprof.Setup(cli.PprofPath)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cli.PprofPath != "" {
				pprof.Stop(cli.PprofPath)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			RunRootCommand(cli, version)
			return nil
		},
	}

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse logs interactively (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			RunRootCommand(cli, version)
			return nil
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&cli.ConfigPath, "config", "", "Path to config file (default: ~/.logdeck/logdeck.yml)")
	rootCmd.PersistentFlags().StringVar(&cli.LogPath, "log", "", "Path to log file (default: ~/.logdeck/logdeck.log)")
	rootCmd.PersistentFlags().StringVar(&cli.URL, "url", "", "API endpoint, overrides the config (e.g. http://127.0.0.1:5000)")
	rootCmd.PersistentFlags().StringVar(&cli.PprofPath, "pprof-path", "", "Write CPU and memory profiles into this directory")

	// Add subcommands
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(newServeCommand(cli, version))
	rootCmd.AddCommand(newIngestCommand(cli, version))
	rootCmd.AddCommand(newLogsCommand(cli, version))
	rootCmd.AddCommand(newTablesCommand(cli, version))
	rootCmd.AddCommand(newShowCommand(cli, version))

	return rootCmd
}

// setup initializes file logging and loads the configuration. Every
// subcommand goes through it before doing real work.
func setup(cli *types.CLI, version string) (*config.Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user home directory")
	}
	home = filepath.Join(home, ".logdeck")

	if err := logging.InitLogFile(cli, version); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}

	cfg, err := config.Load(cli, home)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunRootCommand starts the interactive browser.
func RunRootCommand(cli *types.CLI, version string) {
	cfg, err := setup(cli, version)
	if err != nil {
		fmt.Println(err.Error())
		log.Fatal().Stack().Err(err).Send()
	}

	app := tui.NewApp(cfg, version)
	app.ApplyCLIParameters(cli)

	if runErr := app.Run(); runErr != nil {
		fmt.Println(runErr.Error())
		log.Fatal().Stack().Err(runErr).Send()
	}
}
