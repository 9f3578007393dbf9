package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/logdeck/logdeck/pkg/server"
	"github.com/logdeck/logdeck/pkg/types"
)

func newServeCommand(cli *types.CLI, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ingested database over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cli, version)
			if err != nil {
				return err
			}

			opts := server.Options{
				Listen:      cfg.Server.Listen,
				Database:    cfg.Server.Database,
				WebDir:      cfg.Server.WebDir,
				OpenBrowser: cfg.Server.OpenBrowser,
			}
			if cli.Serve.Listen != "" {
				opts.Listen = cli.Serve.Listen
			}
			if cli.Serve.Database != "" {
				opts.Database = cli.Serve.Database
			}
			if cli.Serve.WebDir != "" {
				opts.WebDir = cli.Serve.WebDir
			}
			if cli.Serve.NoBrowser {
				opts.OpenBrowser = false
			}

			srv, err := server.New(opts)
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&cli.Serve.Listen, "listen", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&cli.Serve.Database, "db", "", "SQLite database path (default from config)")
	cmd.Flags().StringVar(&cli.Serve.WebDir, "web-dir", "", "Directory with static web assets to serve at /")
	cmd.Flags().BoolVar(&cli.Serve.NoBrowser, "no-browser", false, "Do not open the browser after startup")

	return cmd
}
