package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a solution's requirements",
		Long:  "Writes the current versions of a solution's requirements to stdout or a file, as JSON or CSV.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(format) {
				return fmt.Errorf("invalid format %q, valid formats: %v", format, validFormats)
			}

			return withDeps(func(d *Deps) error {
				sol, err := resolveSolution(cmd.Context(), d)
				if err != nil {
					return err
				}

				out := os.Stdout
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("creating output file: %w", err)
					}
					defer f.Close()
					out = f
				}

				count, err := d.Ingest.HandleExport(cmd.Context(), out, sol.ID, format)
				if err != nil {
					return fmt.Errorf("exporting requirements: %w", err)
				}

				if output != "" {
					fmt.Printf("Exported %d requirements to %s\n", count, output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format (json, csv)")
	cmd.Flags().StringVarP(&output, "output", "O", "", "Output file (default stdout)")
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}
