package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>",
		Short: "Extract requirements from a free-text document",
		Long: `Reads a text file, extracts candidate requirements using the LLM,
and stores them in the Parsed state for later acceptance. Passages that
cannot be parsed become Silence placeholders.`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	return withDeps(func(d *Deps) error {
		sol, err := resolveSolution(cmd.Context(), d)
		if err != nil {
			return err
		}

		fmt.Printf("Ingesting %s...\n", args[0])

		result, err := d.Ingest.HandleIngest(cmd.Context(), sol.ID, args[0], globalUser)
		if err != nil {
			return fmt.Errorf("ingesting file: %w", err)
		}

		fmt.Printf("Extracted %d requirements (%d silences) from %s\n",
			len(result.Requirements), result.SilenceCount, result.Batch.SourceFile)

		for i := range result.Requirements {
			v := &result.Requirements[i]
			fmt.Printf("  %-8s [%s] %s\n", v.Requirement.ReqID, v.Requirement.ReqType, v.Version.Name)
		}
		return nil
	})
}
