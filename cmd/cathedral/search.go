package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		reqType string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search requirements semantically",
		Long:  "Searches the solution's requirements by meaning, not keywords. Results are ranked by similarity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				sol, err := resolveSolution(cmd.Context(), d)
				if err != nil {
					return err
				}

				hits, err := d.Requirements.HandleSearch(cmd.Context(), sol.ID, args[0], reqType, limit)
				if err != nil {
					return fmt.Errorf("searching requirements: %w", err)
				}

				if len(hits) == 0 {
					fmt.Println("No matching requirements found.")
					return nil
				}

				fmt.Printf("Found %d matching requirements:\n\n", len(hits))
				for _, hit := range hits {
					fmt.Printf("  %.3f  %s  [%s] %s\n", hit.Score, hit.Doc.ReqID, hit.Doc.ReqType, hit.Doc.Name)
					if hit.Doc.Statement != "" {
						fmt.Printf("         %s\n", hit.Doc.Statement)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&reqType, "type", "t", "", "Filter by requirement type")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultSearchLimit, "Maximum number of results")
	return cmd
}
