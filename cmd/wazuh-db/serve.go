package main

import (
	"github.com/spf13/cobra"

	"github.com/qrow2022/wazuh/internal/server"
	"github.com/qrow2022/wazuh/internal/store"
	"github.com/qrow2022/wazuh/internal/wdb"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		Long: `Run the daemon on the configured unix socket until interrupted.

Requests are length-prefixed frames carrying one command line each; the
matching response is written back in the same framing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager := store.NewManager(cfg.DataDir, &store.Options{Logger: logger})
			dispatcher := wdb.NewDispatcher(
				wdb.DefaultRegistry(),
				store.NewResolver(manager),
				&wdb.Options{Logger: logger},
			)
			srv := server.New(cfg.SocketPath, dispatcher, &server.Options{
				Logger:         logger,
				MaxRequestSize: cfg.MaxRequestSize,
			})
			return srv.ListenAndServe(cmd.Context())
		},
	}
}
