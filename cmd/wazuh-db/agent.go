package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qrow2022/wazuh/internal/store"
	"github.com/qrow2022/wazuh/internal/wdb"
)

// NewAgentCommand creates the agent command group for managing per-agent
// databases.
func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agent databases",
	}
	cmd.AddCommand(newAgentCreateCommand())
	cmd.AddCommand(newAgentRemoveCommand())
	cmd.AddCommand(newAgentListCommand())
	return cmd
}

func newAgentCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <id>",
		Short: "Create and migrate a database for an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := wdb.ValidateAgentID(id); err != nil {
				return err
			}
			manager := store.NewManager(cfg.DataDir, &store.Options{Logger: logger})
			db, err := manager.Create(cmd.Context(), id)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "created database for agent %s\n", id)
			return nil
		},
	}
}

func newAgentRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an agent's database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := wdb.ValidateAgentID(id); err != nil {
				return err
			}
			manager := store.NewManager(cfg.DataDir, &store.Options{Logger: logger})
			if err := manager.Remove(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed database for agent %s\n", id)
			return nil
		},
	}
}

func newAgentListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List agents with a database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager := store.NewManager(cfg.DataDir, &store.Options{Logger: logger})
			ids, err := manager.List()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
