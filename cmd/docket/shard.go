package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/docket-db/docket/internal/cli/ui"
	"github.com/docket-db/docket/metadata"
	"github.com/docket-db/docket/schema"
)

var shardCmd = &cobra.Command{
	Use:   "shard [document]",
	Short: "Shard collections on their declared shard keys",
	Long: `Enable sharding on the databases of shard-mapped document types and shard
their collections. A missing shard key index is created and the command is
retried, so a fresh collection shards without manual preparation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runManager(func(ctx context.Context, m *schema.Manager, registry *metadata.Registry) error {
			if len(args) == 1 {
				if err := resolveDocument(registry, args[0]); err != nil {
					return err
				}
				if err := m.EnsureDocumentSharding(ctx, args[0], nil); err != nil {
					return err
				}
				ui.Success(os.Stdout, "ensured sharding for %s", args[0])
				return nil
			}

			if err := m.EnsureSharding(ctx, nil); err != nil {
				return err
			}
			ui.Success(os.Stdout, "ensured sharding for all document types")
			return nil
		})
	},
}
