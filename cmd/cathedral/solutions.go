package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newSolutionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solutions",
		Short: "Manage solutions within an organization",
	}

	cmd.AddCommand(
		newSolutionsCreateCmd(),
		newSolutionsListCmd(),
		newSolutionsDeleteCmd(),
		newSolutionsStatsCmd(),
	)
	return cmd
}

func requireOrg() error {
	if globalOrg == "" {
		return errors.New("organization is required (use --org flag)")
	}
	return nil
}

func newSolutionsCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrg(); err != nil {
				return err
			}
			return withDeps(func(d *Deps) error {
				sol, err := d.Solutions.HandleCreateSolution(cmd.Context(), globalOrg, args[0], description)
				if err != nil {
					return fmt.Errorf("creating solution: %w", err)
				}
				fmt.Printf("Created solution: %s (slug: %s)\n", sol.Name, sol.Slug)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Solution description")
	return cmd
}

func newSolutionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List an organization's solutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrg(); err != nil {
				return err
			}
			return withDeps(func(d *Deps) error {
				sols, err := d.Solutions.HandleListSolutions(cmd.Context(), globalOrg)
				if err != nil {
					return fmt.Errorf("listing solutions: %w", err)
				}
				if len(sols) == 0 {
					fmt.Println("No solutions found.")
					return nil
				}
				for _, sol := range sols {
					fmt.Printf("%s\t%s\n", sol.Slug, sol.Name)
				}
				return nil
			})
		},
	}
}

func newSolutionsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a solution and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrg(); err != nil {
				return err
			}
			if !force {
				return errors.New("deleting a solution removes all its requirements; re-run with --force")
			}
			return withDeps(func(d *Deps) error {
				if err := d.Solutions.HandleDeleteSolution(cmd.Context(), globalOrg, args[0]); err != nil {
					return fmt.Errorf("deleting solution: %w", err)
				}
				fmt.Printf("Deleted solution: %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Confirm deletion")
	return cmd
}

func newSolutionsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <slug>",
		Short: "Show counts for a solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrg(); err != nil {
				return err
			}
			return withDeps(func(d *Deps) error {
				stats, err := d.Solutions.HandleStats(cmd.Context(), globalOrg, args[0])
				if err != nil {
					return fmt.Errorf("loading stats: %w", err)
				}
				fmt.Printf("Solution: %s\n", stats.Solution.Name)
				fmt.Printf("  Requirements: %d\n", stats.Requirements)
				fmt.Printf("  Relations:    %d\n", stats.Relations)
				return nil
			})
		},
	}
}
