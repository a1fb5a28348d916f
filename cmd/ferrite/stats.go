package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ferritedb/ferrite/pkg/index"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show an index's word, synonym, document and queue counts",
	Long: `Stats reports a point-in-time snapshot of an index's size.

Example:
  ferrite stats --index products`,
	RunE: runStats,
}

var statusCmd = &cobra.Command{
	Use:   "status <update-id>",
	Short: "Show the outcome of a submitted update",
	Long: `Status looks up a previously submitted update by its ID. With
--wait, it blocks until the update finishes instead of reporting
"pending" immediately.

Example:
  ferrite status --index products 42
  ferrite status --index products --wait --timeout 30s 42`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

var getCmd = &cobra.Command{
	Use:   "get <external-id>",
	Short: "Print a document's stored fields by external id",
	Long: `Get reconstructs one document's stored field bytes by the
external identifier it was added with.

Example:
  ferrite get --index products sku-123`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	statusCmd.Flags().Bool("wait", false, "Block until the update finishes")
	statusCmd.Flags().Duration("timeout", 30*time.Second, "Maximum time to wait with --wait")
}

func runStats(cmd *cobra.Command, args []string) error {
	store, ix, err := openExistingIndex(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer ix.Close()

	s, err := ix.Stats()
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}

	fmt.Printf("Index: %s\n", ix.Name())
	fmt.Printf("  words:       %d\n", s.Words)
	fmt.Printf("  synonyms:    %d\n", s.Synonyms)
	fmt.Printf("  documents:   %d\n", s.Documents)
	fmt.Printf("  queue depth: %d\n", s.QueueDepth)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid update id %q: %w", args[0], err)
	}

	store, ix, err := openExistingIndex(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer ix.Close()

	wait, _ := cmd.Flags().GetBool("wait")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	var status *index.UpdateStatus
	if wait {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		status, err = ix.UpdateStatusBlocking(ctx, id)
		if err != nil {
			return fmt.Errorf("wait for update %d: %w", id, err)
		}
	} else {
		status, err = ix.UpdateStatus(id)
		if err != nil {
			return fmt.Errorf("read update status %d: %w", id, err)
		}
	}

	if status == nil {
		fmt.Printf("update %d: pending\n", id)
		return nil
	}

	if status.Result.Err != "" {
		fmt.Printf("update %d: failed: %s\n", id, status.Result.Err)
		return nil
	}
	fmt.Printf("✓ update %d: %s applied in %s (%s since enqueue)\n",
		id, status.Type, status.Duration.Apply, status.Duration.Total)
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	store, ix, err := openExistingIndex(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer ix.Close()

	fields, err := ix.Document(args[0])
	if err != nil {
		return fmt.Errorf("get document %q: %w", args[0], err)
	}

	if len(fields) == 0 {
		fmt.Printf("document %q: no stored fields\n", args[0])
		return nil
	}
	for name, value := range fields {
		fmt.Printf("%s: %s\n", name, value)
	}
	return nil
}
