package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logdeck/logdeck/pkg/ingest"
	"github.com/logdeck/logdeck/pkg/types"
)

func newIngestCommand(cli *types.CLI, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <logfile>...",
		Short: "Parse flight log files into the SQLite database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cli, version)
			if err != nil {
				return err
			}

			dbPath := cfg.Server.Database
			if cli.Ingest.Database != "" {
				dbPath = cli.Ingest.Database
			}

			for _, path := range args {
				logID, tables, err := ingest.IngestFile(cmd.Context(), dbPath, path)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %d tables ingested as log %s\n", path, tables, logID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cli.Ingest.Database, "db", "", "SQLite database path (default from config)")

	return cmd
}
