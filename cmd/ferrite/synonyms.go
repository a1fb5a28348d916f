package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var synonymsCmd = &cobra.Command{
	Use:   "synonyms",
	Short: "Add or delete synonym entries",
}

var synonymsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Submit a batch of synonym entries for addition",
	Long: `Add reads a YAML file mapping words to their alternatives and
submits them as a single queued update. Adding a word that already has
alternatives merges into the existing set.

Example:
  ferrite synonyms add --index products -f synonyms.yaml`,
	RunE: runSynonymsAdd,
}

var synonymsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Submit a batch of synonym removals",
	Long: `Delete reads a YAML file of words and optional specific
alternatives to remove. A word with no alternatives listed has its
entire synonym entry removed; otherwise only the listed alternatives
are removed.

Example:
  ferrite synonyms delete --index products -f removals.yaml`,
	RunE: runSynonymsDelete,
}

func init() {
	synonymsAddCmd.Flags().StringP("file", "f", "", "YAML file describing synonyms to add (required)")
	_ = synonymsAddCmd.MarkFlagRequired("file")

	synonymsDeleteCmd.Flags().StringP("file", "f", "", "YAML file describing synonyms to remove (required)")
	_ = synonymsDeleteCmd.MarkFlagRequired("file")

	synonymsCmd.AddCommand(synonymsAddCmd)
	synonymsCmd.AddCommand(synonymsDeleteCmd)
}

// synonymsAddFile is the on-disk shape of a synonyms-addition batch.
type synonymsAddFile struct {
	Synonyms []synonymSpec `yaml:"synonyms"`
}

type synonymSpec struct {
	Word         string   `yaml:"word"`
	Alternatives []string `yaml:"alternatives"`
}

// synonymsDeleteFile is the on-disk shape of a synonyms-deletion batch.
type synonymsDeleteFile struct {
	Words        []string            `yaml:"words,omitempty"`
	Alternatives map[string][]string `yaml:"alternatives,omitempty"`
}

func runSynonymsAdd(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read synonyms file: %w", err)
	}

	var sf synonymsAddFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse synonyms file: %w", err)
	}

	store, ix, err := openExistingIndex(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer ix.Close()

	builder := ix.NewSynonymsAddition()
	for _, s := range sf.Synonyms {
		builder.AddSynonym(s.Word, s.Alternatives...)
	}

	id, err := builder.Submit()
	if err != nil {
		return fmt.Errorf("submit synonyms addition: %w", err)
	}

	fmt.Printf("✓ Synonyms addition submitted: %d word(s) (update ID: %d)\n", len(sf.Synonyms), id)
	return nil
}

func runSynonymsDelete(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read removals file: %w", err)
	}

	var sf synonymsDeleteFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse removals file: %w", err)
	}

	store, ix, err := openExistingIndex(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer ix.Close()

	builder := ix.NewSynonymsDeletion()
	for _, w := range sf.Words {
		builder.RemoveWord(w)
	}
	for w, alts := range sf.Alternatives {
		builder.RemoveAlternatives(w, alts...)
	}

	id, err := builder.Submit()
	if err != nil {
		return fmt.Errorf("submit synonyms deletion: %w", err)
	}

	fmt.Printf("✓ Synonyms deletion submitted (update ID: %d)\n", id)
	return nil
}
