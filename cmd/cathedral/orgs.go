package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOrgsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orgs",
		Short: "Manage organizations",
	}

	cmd.AddCommand(newOrgsCreateCmd(), newOrgsListCmd())
	return cmd
}

func newOrgsCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				org, err := d.Solutions.HandleCreateOrganization(cmd.Context(), args[0], description)
				if err != nil {
					return fmt.Errorf("creating organization: %w", err)
				}
				fmt.Printf("Created organization: %s (slug: %s)\n", org.Name, org.Slug)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Organization description")
	return cmd
}

func newOrgsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				orgs, err := d.Solutions.HandleListOrganizations(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing organizations: %w", err)
				}
				if len(orgs) == 0 {
					fmt.Println("No organizations found.")
					return nil
				}
				for _, org := range orgs {
					fmt.Printf("%s\t%s\n", org.Slug, org.Name)
				}
				return nil
			})
		},
	}
}
