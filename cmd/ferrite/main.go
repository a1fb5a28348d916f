package main

import (
	"fmt"
	"os"

	"github.com/ferritedb/ferrite/pkg/index"
	"github.com/ferritedb/ferrite/pkg/kvstore"
	"github.com/ferritedb/ferrite/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ferrite",
	Short: "Ferrite - an embedded per-index search engine core",
	Long: `Ferrite is the operator CLI for a single-node, embedded search
index core built on bbolt. It opens an index, applies a schema, submits
document and synonym updates from YAML or JSON files, and reports stats.

It does not add a query/ranking engine or a network surface; those live
above this core.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"ferrite version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("data-dir", "ferrite-data", "Directory holding the bbolt database file")
	rootCmd.PersistentFlags().String("index", "", "Index name (required by most commands)")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(synonymsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(getCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

// dbPath returns the bbolt file backing --data-dir, creating the
// directory if needed.
func dbPath(cmd *cobra.Command) (string, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("create data dir %q: %w", dataDir, err)
	}
	return dataDir + "/ferrite.db", nil
}

func indexName(cmd *cobra.Command) (string, error) {
	name, _ := cmd.Flags().GetString("index")
	if name == "" {
		return "", fmt.Errorf("--index is required")
	}
	return name, nil
}

// openStore opens the store backing --data-dir.
func openStore(cmd *cobra.Command) (*kvstore.Store, error) {
	path, err := dbPath(cmd)
	if err != nil {
		return nil, err
	}
	return kvstore.Open(path)
}

// openExistingIndex opens store and an already-schema'd index by name,
// for commands that operate on an index without changing its schema.
func openExistingIndex(cmd *cobra.Command) (*kvstore.Store, *index.Index, error) {
	name, err := indexName(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}
	ix, err := index.Open(store, name, nil, index.WorkerConfig{})
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("open index %q: %w", name, err)
	}
	return store, ix, nil
}
