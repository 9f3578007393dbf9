package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/logdeck/logdeck/pkg/api"
	"github.com/logdeck/logdeck/pkg/config"
	"github.com/logdeck/logdeck/pkg/types"
)

// newAPIClient builds the API client for one-shot commands, with the
// --url flag taking precedence over the config.
func newAPIClient(cli *types.CLI, cfg *config.Config) *api.Client {
	url := cfg.API.URL
	if cli.URL != "" {
		url = cli.URL
	}
	return api.NewClient(url, time.Duration(cfg.API.TimeoutSeconds)*time.Second)
}

func newLogsCommand(cli *types.CLI, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "List available log identifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cli, version)
			if err != nil {
				return err
			}

			ids, err := newAPIClient(cli, cfg).FetchLogIDs(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func newTablesCommand(cli *types.CLI, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "tables <logID>",
		Short: "List the tables of one log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cli, version)
			if err != nil {
				return err
			}

			tables, err := newAPIClient(cli, cfg).FetchTables(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Println(t.RawName)
			}
			return nil
		},
	}
}
