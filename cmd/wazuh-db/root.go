package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/qrow2022/wazuh/internal/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wazuh-db",
		Short: "Agent database daemon",
		Long: `wazuh-db serves the per-agent databases of a monitored fleet.

Each agent's data lives in its own SQLite database. External callers send
line commands ("agent 003 getos") over a local unix socket and receive
"ok ..." or "err ..." responses.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level, err := cfg.SlogLevel()
			if err != nil {
				return err
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./wdb.yaml)")
	rootCmd.PersistentFlags().String("socket-path", "", "unix socket to listen on")
	rootCmd.PersistentFlags().String("data-dir", "", "root directory for agent databases")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Int("max-request-size", 0, "maximum request frame size in bytes")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewAgentCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
