package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docket-db/docket/internal/cli/ui"
	"github.com/docket-db/docket/metadata"
	"github.com/docket-db/docket/schema"
)

var databasesDropYes bool

var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "Manage mapped databases",
	Long:  "Drop the databases holding mapped collections",
}

var databasesDropCmd = &cobra.Command{
	Use:   "drop [document]",
	Short: "Drop mapped databases",
	Long:  "Drop the database of every mapped document type, or the database of a single one. This removes every collection in those databases, mapped or not.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runManager(func(ctx context.Context, m *schema.Manager, registry *metadata.Registry) error {
			if len(args) == 1 {
				if err := resolveDocument(registry, args[0]); err != nil {
					return err
				}
				if !databasesDropYes {
					ok, err := ui.Confirm(fmt.Sprintf("Drop the entire database holding %s?", args[0]))
					if err != nil {
						return err
					}
					if !ok {
						ui.Warn(os.Stdout, "aborted")
						return nil
					}
				}
				if err := m.DropDocumentDatabase(ctx, args[0]); err != nil {
					return err
				}
				ui.Success(os.Stdout, "dropped database for %s", args[0])
				return nil
			}

			if !databasesDropYes {
				ok, err := ui.Confirm("Drop every database holding mapped collections?")
				if err != nil {
					return err
				}
				if !ok {
					ui.Warn(os.Stdout, "aborted")
					return nil
				}
			}
			if err := m.DropDatabases(ctx); err != nil {
				return err
			}
			ui.Success(os.Stdout, "dropped all mapped databases")
			return nil
		})
	},
}

func init() {
	databasesDropCmd.Flags().BoolVarP(&databasesDropYes, "yes", "y", false, "skip the confirmation prompt")

	databasesCmd.AddCommand(databasesDropCmd)
}
