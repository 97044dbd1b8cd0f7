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

var collectionsDropYes bool

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage mapped collections",
	Long:  "Create and drop the collections of mapped document types",
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create [document]",
	Short: "Create mapped collections",
	Long:  "Create the collection of every mapped document type, carrying capped settings and validators",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runManager(func(ctx context.Context, m *schema.Manager, registry *metadata.Registry) error {
			if len(args) == 1 {
				if err := resolveDocument(registry, args[0]); err != nil {
					return err
				}
				if err := m.CreateDocumentCollection(ctx, args[0]); err != nil {
					return err
				}
				ui.Success(os.Stdout, "created collection for %s", args[0])
				return nil
			}

			if err := m.CreateCollections(ctx); err != nil {
				return err
			}
			ui.Success(os.Stdout, "created collections for all document types")
			return nil
		})
	},
}

var collectionsDropCmd = &cobra.Command{
	Use:   "drop [document]",
	Short: "Drop mapped collections",
	Long:  "Drop the collection of every mapped document type, or a single one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runManager(func(ctx context.Context, m *schema.Manager, registry *metadata.Registry) error {
			if len(args) == 1 {
				if err := resolveDocument(registry, args[0]); err != nil {
					return err
				}
				if !collectionsDropYes {
					ok, err := ui.Confirm(fmt.Sprintf("Drop the collection mapped to %s?", args[0]))
					if err != nil {
						return err
					}
					if !ok {
						ui.Warn(os.Stdout, "aborted")
						return nil
					}
				}
				if err := m.DropDocumentCollection(ctx, args[0]); err != nil {
					return err
				}
				ui.Success(os.Stdout, "dropped collection for %s", args[0])
				return nil
			}

			if !collectionsDropYes {
				ok, err := ui.Confirm("Drop the collections of all mapped document types?")
				if err != nil {
					return err
				}
				if !ok {
					ui.Warn(os.Stdout, "aborted")
					return nil
				}
			}
			if err := m.DropCollections(ctx); err != nil {
				return err
			}
			ui.Success(os.Stdout, "dropped all mapped collections")
			return nil
		})
	},
}

func init() {
	collectionsDropCmd.Flags().BoolVarP(&collectionsDropYes, "yes", "y", false, "skip the confirmation prompt")

	collectionsCmd.AddCommand(collectionsCreateCmd)
	collectionsCmd.AddCommand(collectionsDropCmd)
}
