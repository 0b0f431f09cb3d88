package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRelationsCmd() *cobra.Command {
	var typeStr string

	cmd := &cobra.Command{
		Use:   "relations <req-id>",
		Short: "List a requirement's relations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				view, err := resolveRequirement(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}

				result, err := d.Relations.HandleList(cmd.Context(), view.Requirement.ID, typeStr)
				if err != nil {
					return fmt.Errorf("listing relations: %w", err)
				}

				if len(result.Relations) == 0 {
					fmt.Println("No relations found.")
					return nil
				}

				fmt.Printf("Relations of %s:\n\n", view.Requirement.ReqID)
				for i := range result.Relations {
					info := &result.Relations[i]
					leftID, rightID := info.Relation.LeftID, info.Relation.RightID
					if info.Left != nil {
						leftID = info.Left.Requirement.ReqID
					}
					if info.Right != nil {
						rightID = info.Right.Requirement.ReqID
					}
					fmt.Printf("%s -[%s]-> %s\n", leftID, info.Relation.Type, rightID)
					fmt.Printf("  ID: %s\n", info.Relation.ID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeStr, "type", "t", "", "Filter by relation type")
	return cmd
}
