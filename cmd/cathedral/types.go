package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the requirement type catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			sections := map[entities.PEGSSection]string{
				entities.SectionProject:     "Project",
				entities.SectionEnvironment: "Environment",
				entities.SectionGoals:       "Goals",
				entities.SectionSystem:      "System",
			}

			var current entities.PEGSSection
			for _, spec := range entities.TypeCatalog {
				if spec.Section != current {
					current = spec.Section
					fmt.Printf("\n%s (%s)\n", sections[current], current)
				}
				marker := " "
				if spec.Meta {
					marker = "*"
				}
				fmt.Printf("  %-5s %s %-20s %s\n", spec.Prefix, marker, spec.Type, spec.Description)
			}
			fmt.Println("\n* meta-requirement (characterizes other requirements)")
			return nil
		},
	}
}
