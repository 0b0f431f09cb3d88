package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cathedral-app/cathedral/internal/application/handlers"
)

func newImportCmd() *cobra.Command {
	var (
		format string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import requirements from a structured file",
		Long: `Imports requirements from a JSON or CSV document. Each valid row
becomes a new Proposed requirement; invalid rows are reported without
aborting the rest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				sol, err := resolveSolution(cmd.Context(), d)
				if err != nil {
					return err
				}

				result, err := d.Ingest.HandleImport(cmd.Context(), sol.ID, args[0], globalUser, handlers.ImportOptions{
					Format: format,
					DryRun: dryRun,
				})
				if err != nil {
					return fmt.Errorf("importing file: %w", err)
				}

				if dryRun {
					fmt.Printf("Dry run: %d rows valid, %d invalid\n", result.Imported, len(result.Errors))
				} else {
					fmt.Printf("Imported %d requirements\n", result.Imported)
				}
				for _, importErr := range result.Errors {
					fmt.Printf("  error: %s\n", importErr.Error())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "File format (json, csv); inferred from extension when omitted")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate without saving")
	return cmd
}
