package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRelateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relate <left-req-id> <type> <right-req-id>",
		Short: "Create a typed relation between two requirements",
		Long: `Creates a directed relation between two requirements of the same
solution.

Valid relation types:
  - belongs, characterizes, constrains, excepts, repeats, explains

Type constraints:
  - characterizes: left must be a meta-requirement (justification, glossary_term)
  - constrains:    left must be a constraint
  - excepts:       left must be a behavior (functional_behavior, use_case, user_story, epic)
  - repeats:       both endpoints must share a type

Examples:
  cathedral relate G.2.1 belongs G.1.4 -o acme -s shop
  cathedral relate E.3.2 constrains S.2.9 -o acme -s shop`,
		Args: cobra.ExactArgs(3),
		RunE: runRelate,
	}

	cmd.AddCommand(newRelateDeleteCmd())
	return cmd
}

func runRelate(cmd *cobra.Command, args []string) error {
	return withDeps(func(d *Deps) error {
		left, err := resolveRequirement(cmd.Context(), d, args[0])
		if err != nil {
			return err
		}
		right, err := resolveRequirement(cmd.Context(), d, args[2])
		if err != nil {
			return err
		}

		rel, err := d.Relations.HandleLink(cmd.Context(), left.Requirement.ID, args[1], right.Requirement.ID, globalUser)
		if err != nil {
			return fmt.Errorf("creating relation: %w", err)
		}

		fmt.Printf("Created relation: %s\n", rel.ID)
		fmt.Printf("  %s -[%s]-> %s\n", left.Requirement.ReqID, rel.Type, right.Requirement.ReqID)
		return nil
	})
}

func newRelateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <relation-id>",
		Short: "Delete a relation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				if err := d.Relations.HandleUnlink(cmd.Context(), args[0], globalUser); err != nil {
					return fmt.Errorf("deleting relation: %w", err)
				}
				fmt.Printf("Deleted relation: %s\n", args[0])
				return nil
			})
		},
	}
}
