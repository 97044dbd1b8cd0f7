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

var (
	indexTimeoutMS int64
	indexDeleteYes bool
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Manage collection indexes",
	Long:  "Create, reconcile, plan and drop the indexes declared in document mappings",
}

var indexesEnsureCmd = &cobra.Command{
	Use:   "ensure [document]",
	Short: "Create missing indexes",
	Long:  "Create every resolved index not already on the server, leaving existing indexes alone",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runManager(func(ctx context.Context, m *schema.Manager, registry *metadata.Registry) error {
			if len(args) == 1 {
				if err := resolveDocument(registry, args[0]); err != nil {
					return err
				}
				if err := m.EnsureDocumentIndexes(ctx, args[0], indexTimeoutMS); err != nil {
					return err
				}
				ui.Success(os.Stdout, "ensured indexes for %s", args[0])
				return nil
			}

			if err := m.EnsureIndexes(ctx, indexTimeoutMS); err != nil {
				return err
			}
			ui.Success(os.Stdout, "ensured indexes for all document types")
			return nil
		})
	},
}

var indexesUpdateCmd = &cobra.Command{
	Use:   "update [document]",
	Short: "Reconcile live indexes with the mappings",
	Long:  "Drop indexes that no longer match a declaration, then create what is missing",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runManager(func(ctx context.Context, m *schema.Manager, registry *metadata.Registry) error {
			if len(args) == 1 {
				if err := resolveDocument(registry, args[0]); err != nil {
					return err
				}
				if err := m.UpdateDocumentIndexes(ctx, args[0], indexTimeoutMS); err != nil {
					return err
				}
				ui.Success(os.Stdout, "updated indexes for %s", args[0])
				return nil
			}

			if err := m.UpdateIndexes(ctx, indexTimeoutMS); err != nil {
				return err
			}
			ui.Success(os.Stdout, "updated indexes for all document types")
			return nil
		})
	},
}

var indexesDeleteCmd = &cobra.Command{
	Use:   "delete [document]",
	Short: "Drop all indexes",
	Long:  "Drop every index of the mapped collections, the _id index excepted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runManager(func(ctx context.Context, m *schema.Manager, registry *metadata.Registry) error {
			if len(args) == 1 {
				if err := resolveDocument(registry, args[0]); err != nil {
					return err
				}
				if !indexDeleteYes {
					ok, err := ui.Confirm(fmt.Sprintf("Drop all indexes of the collection mapped to %s?", args[0]))
					if err != nil {
						return err
					}
					if !ok {
						ui.Warn(os.Stdout, "aborted")
						return nil
					}
				}
				if err := m.DeleteDocumentIndexes(ctx, args[0]); err != nil {
					return err
				}
				ui.Success(os.Stdout, "dropped indexes for %s", args[0])
				return nil
			}

			if !indexDeleteYes {
				ok, err := ui.Confirm("Drop all indexes of every mapped collection?")
				if err != nil {
					return err
				}
				if !ok {
					ui.Warn(os.Stdout, "aborted")
					return nil
				}
			}
			if err := m.DeleteIndexes(ctx); err != nil {
				return err
			}
			ui.Success(os.Stdout, "dropped indexes for all document types")
			return nil
		})
	},
}

var indexesPlanCmd = &cobra.Command{
	Use:   "plan [document]",
	Short: "Show what update would change",
	Long:  "Compute the index changes update would apply, without touching the deployment",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runManager(func(ctx context.Context, m *schema.Manager, registry *metadata.Registry) error {
			var plans []schema.IndexPlan
			if len(args) == 1 {
				if err := resolveDocument(registry, args[0]); err != nil {
					return err
				}
				plan, err := m.PlanDocumentIndexes(ctx, args[0])
				if err != nil {
					return err
				}
				plans = []schema.IndexPlan{plan}
			} else {
				var err error
				plans, err = m.PlanIndexes(ctx)
				if err != nil {
					return err
				}
			}

			ui.RenderPlans(os.Stdout, plans, nil)
			return nil
		})
	},
}

func init() {
	indexesEnsureCmd.Flags().Int64Var(&indexTimeoutMS, "timeout", 0, "per-index creation timeout in milliseconds")
	indexesUpdateCmd.Flags().Int64Var(&indexTimeoutMS, "timeout", 0, "per-index creation timeout in milliseconds")
	indexesDeleteCmd.Flags().BoolVarP(&indexDeleteYes, "yes", "y", false, "skip the confirmation prompt")

	indexesCmd.AddCommand(indexesEnsureCmd)
	indexesCmd.AddCommand(indexesUpdateCmd)
	indexesCmd.AddCommand(indexesDeleteCmd)
	indexesCmd.AddCommand(indexesPlanCmd)
}
