package main

import (
	"fmt"
	"os"

	"github.com/ferritedb/ferrite/pkg/index"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Add or delete documents",
}

var documentsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Submit a batch of documents for addition",
	Long: `Add reads a YAML file describing one or more documents and submits
them as a single queued update. Re-adding a document with the same id
upserts it.

Example:
  ferrite documents add --index products -f documents.yaml`,
	RunE: runDocumentsAdd,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Submit a batch of documents for deletion",
	Long: `Delete reads a YAML file listing document ids and submits their
removal as a single queued update.

Example:
  ferrite documents delete --index products -f deletions.yaml`,
	RunE: runDocumentsDelete,
}

func init() {
	documentsAddCmd.Flags().StringP("file", "f", "", "YAML file describing documents to add (required)")
	_ = documentsAddCmd.MarkFlagRequired("file")

	documentsDeleteCmd.Flags().StringP("file", "f", "", "YAML file listing document ids to delete (required)")
	_ = documentsDeleteCmd.MarkFlagRequired("file")

	documentsCmd.AddCommand(documentsAddCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
}

// documentsAddFile is the on-disk shape of a documents-addition batch.
type documentsAddFile struct {
	Documents []documentSpec `yaml:"documents"`
}

type documentSpec struct {
	ID       string                   `yaml:"id"`
	Fields   map[string]string        `yaml:"fields,omitempty"`
	Ranked   map[string]float64       `yaml:"ranked,omitempty"`
	Postings map[string][]postingSpec `yaml:"postings,omitempty"`
}

type postingSpec struct {
	Term      string `yaml:"term"`
	WordIndex uint16 `yaml:"wordIndex"`
}

// documentsDeleteFile is the on-disk shape of a documents-deletion batch.
type documentsDeleteFile struct {
	IDs []string `yaml:"ids"`
}

func runDocumentsAdd(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read documents file: %w", err)
	}

	var df documentsAddFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return fmt.Errorf("parse documents file: %w", err)
	}

	store, ix, err := openExistingIndex(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer ix.Close()

	builder := ix.NewDocumentsAddition()
	for _, d := range df.Documents {
		delta := index.DocumentDelta{
			ExternalID: d.ID,
			Fields:     make(map[string][]byte, len(d.Fields)),
			Ranked:     d.Ranked,
		}
		for name, value := range d.Fields {
			delta.Fields[name] = []byte(value)
		}
		if len(d.Postings) > 0 {
			delta.Postings = make(map[string][]index.TermOccurrence, len(d.Postings))
			for attr, postings := range d.Postings {
				occs := make([]index.TermOccurrence, len(postings))
				for i, p := range postings {
					occs[i] = index.TermOccurrence{Term: p.Term, WordIndex: p.WordIndex}
				}
				delta.Postings[attr] = occs
			}
		}
		builder.AddDocument(delta)
	}

	id, err := builder.Submit()
	if err != nil {
		return fmt.Errorf("submit documents addition: %w", err)
	}

	fmt.Printf("✓ Documents addition submitted: %d document(s) (update ID: %d)\n", len(df.Documents), id)
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read deletions file: %w", err)
	}

	var df documentsDeleteFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return fmt.Errorf("parse deletions file: %w", err)
	}

	store, ix, err := openExistingIndex(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer ix.Close()

	builder := ix.NewDocumentsDeletion()
	for _, id := range df.IDs {
		builder.AddDocument(id)
	}

	id, err := builder.Submit()
	if err != nil {
		return fmt.Errorf("submit documents deletion: %w", err)
	}

	fmt.Printf("✓ Documents deletion submitted: %d document(s) (update ID: %d)\n", len(df.IDs), id)
	return nil
}
