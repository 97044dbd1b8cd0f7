package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docket-db/docket/database"
	"github.com/docket-db/docket/internal/cli/config"
	"github.com/docket-db/docket/internal/cli/ui"
	"github.com/docket-db/docket/metadata"
	"github.com/docket-db/docket/schema"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

var (
	flagVerbose  bool
	flagURI      string
	flagDatabase string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docket",
		Short: "MongoDB schema management for mapped documents",
		Long: `Docket keeps MongoDB collections, indexes and sharding in line with
declared document mappings. It resolves the full index set of every mapped
document type, compares it against the live deployment and applies the
difference.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagURI, "uri", "", "MongoDB connection string (overrides config and MONGODB_URI)")
	rootCmd.PersistentFlags().StringVar(&flagDatabase, "database", "", "default database for documents that do not name one")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(indexesCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(databasesCmd)
	rootCmd.AddCommand(shardCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runManager loads configuration and mappings, connects, runs fn and
// disconnects.
func runManager(fn func(ctx context.Context, m *schema.Manager, registry *metadata.Registry) error) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The config file supplies the index build timeout when the flag is
	// absent.
	if indexTimeoutMS == 0 {
		indexTimeoutMS = cfg.Indexes.TimeoutMS
	}

	registry := metadata.NewRegistry()
	for _, path := range cfg.Mappings {
		classes, err := metadata.LoadFile(path)
		if err != nil {
			return err
		}
		for _, class := range classes {
			if err := registry.Register(class); err != nil {
				return err
			}
		}
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	uri := cfg.URI()
	if flagURI != "" {
		uri = flagURI
	}

	client, err := database.Connect(ctx, uri)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	defaultDatabase := cfg.MongoDB.Database
	if flagDatabase != "" {
		defaultDatabase = flagDatabase
	}

	m := schema.NewManager(registry, client, &schema.ManagerOptions{
		Logger:          logger,
		DefaultDatabase: defaultDatabase,
		AdminDatabase:   cfg.MongoDB.AdminDatabase,
	})

	return fn(ctx, m, registry)
}

// newLogger builds the CLI logger. Debug detail is opt-in; by default the
// command output is the only reporting channel.
func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

// resolveDocument validates a document name argument against the registry.
func resolveDocument(registry *metadata.Registry, name string) error {
	if registry.Exists(name) {
		return nil
	}

	msg := fmt.Sprintf("unknown document type %q", name)
	if suggestions := ui.Suggest(name, registry.List()); len(suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(suggestions, ", "))
	}
	return errors.New(msg)
}
