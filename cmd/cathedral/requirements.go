package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cathedral-app/cathedral/internal/application/handlers"
	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/services"
)

func newCreateCmd() *cobra.Command {
	var input handlers.RequirementInput
	var interest, influence int

	cmd := &cobra.Command{
		Use:   "create <type> <name>",
		Short: "Create a new requirement",
		Long: `Creates a new requirement of the given type in the selected solution.
The requirement starts in the Proposed state and receives the next
available reqId for its type prefix.

Examples:
  cathedral create goal "Fast checkout" --statement "Checkout shall take under a minute." -o acme -s shop
  cathedral create constraint "Data residency" --statement "Data stays in the EU." --category business -o acme -s shop`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Name = args[1]
			if cmd.Flags().Changed("interest") {
				input.Interest = &interest
			}
			if cmd.Flags().Changed("influence") {
				input.Influence = &influence
			}
			return withDeps(func(d *Deps) error {
				sol, err := resolveSolution(cmd.Context(), d)
				if err != nil {
					return err
				}
				view, err := d.Requirements.HandleCreate(cmd.Context(), sol.ID, args[0], input, globalUser)
				if err != nil {
					return fmt.Errorf("creating requirement: %w", err)
				}
				fmt.Printf("Created %s: %s\n", view.Requirement.ReqID, view.Version.Name)
				displayView(view)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&input.Statement, "statement", "", "Requirement statement")
	cmd.Flags().StringVar(&input.Priority, "priority", "", "MoSCoW priority (MUST/SHOULD/COULD/WONT)")
	cmd.Flags().StringVar(&input.ConstraintCategory, "category", "", "Constraint category (business/engineering/physics)")
	cmd.Flags().StringVar(&input.PrimaryActor, "actor", "", "Primary actor (scenario types)")
	cmd.Flags().StringVar(&input.Outcome, "outcome", "", "Desired outcome (scenario types)")
	cmd.Flags().StringVar(&input.Precondition, "precondition", "", "Precondition (scenario types)")
	cmd.Flags().StringVar(&input.MainSuccessScenario, "scenario", "", "Main success scenario (scenario types)")
	cmd.Flags().StringVar(&input.Email, "email", "", "Email (person type)")
	cmd.Flags().StringVar(&input.Segmentation, "segmentation", "", "Stakeholder segmentation")
	cmd.Flags().IntVar(&interest, "interest", 0, "Stakeholder interest (0-100)")
	cmd.Flags().IntVar(&influence, "influence", 0, "Stakeholder influence (0-100)")

	return cmd
}

func newGetCmd() *cobra.Command {
	var asOfStr string

	cmd := &cobra.Command{
		Use:   "get <req-id>",
		Short: "Show a requirement",
		Long:  "Shows a requirement's current version, or the version effective at --as-of (RFC 3339).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				view, err := resolveRequirement(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}
				if asOfStr != "" {
					asOf, err := time.Parse(time.RFC3339, asOfStr)
					if err != nil {
						return fmt.Errorf("parsing --as-of: %w", err)
					}
					view, err = d.Requirements.HandleGet(cmd.Context(), view.Requirement.ID, asOf)
					if err != nil {
						return err
					}
				}
				displayView(view)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&asOfStr, "as-of", "", "Point in time to resolve (RFC 3339)")
	return cmd
}

func newListCmd() *cobra.Command {
	var (
		typeStr string
		limit   int
		offset  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a solution's requirements",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				sol, err := resolveSolution(cmd.Context(), d)
				if err != nil {
					return err
				}
				result, err := d.Requirements.HandleList(cmd.Context(), sol.ID, typeStr, limit, offset)
				if err != nil {
					return fmt.Errorf("listing requirements: %w", err)
				}
				if len(result.Requirements) == 0 {
					fmt.Println("No requirements found.")
					return nil
				}
				fmt.Printf("Showing %d of %d requirements:\n\n", len(result.Requirements), result.Total)
				for i := range result.Requirements {
					v := &result.Requirements[i]
					fmt.Printf("%-8s [%s] %-10s %s\n", v.Requirement.ReqID, v.Requirement.ReqType, v.Version.WorkflowState, v.Version.Name)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeStr, "type", "t", "", "Filter by requirement type")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of requirements to display")
	cmd.Flags().IntVar(&offset, "offset", 0, "Pagination offset")
	return cmd
}

func newEditCmd() *cobra.Command {
	var (
		name      string
		statement string
		baseStr   string
	)

	cmd := &cobra.Command{
		Use:   "edit <req-id>",
		Short: "Edit a requirement",
		Long: `Appends a new version with the given changes. Omitted fields keep
their current value. Editing an active requirement sends it back to review.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				view, err := resolveRequirement(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}

				input := handlers.EditInput{Base: view.Version.EffectiveFrom}
				if baseStr != "" {
					base, err := time.Parse(time.RFC3339, baseStr)
					if err != nil {
						return fmt.Errorf("parsing --base: %w", err)
					}
					input.Base = base
				}
				if cmd.Flags().Changed("name") {
					input.Name = &name
				}
				if cmd.Flags().Changed("statement") {
					input.Statement = &statement
				}
				if input.Name == nil && input.Statement == nil {
					return fmt.Errorf("nothing to change (use --name or --statement)")
				}

				updated, err := d.Requirements.HandleEdit(cmd.Context(), view.Requirement.ID, input, globalUser)
				if err != nil {
					return fmt.Errorf("editing requirement: %w", err)
				}
				fmt.Printf("Updated %s\n", updated.Requirement.ReqID)
				displayView(updated)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&statement, "statement", "", "New statement")
	cmd.Flags().StringVar(&baseStr, "base", "", "Effective-from of the version this edit is based on (RFC 3339)")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <req-id>",
		Short: "Show a requirement's version history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				view, err := resolveRequirement(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}
				versions, err := d.Requirements.HandleHistory(cmd.Context(), view.Requirement.ID)
				if err != nil {
					return fmt.Errorf("loading history: %w", err)
				}
				fmt.Printf("History of %s (%d versions):\n\n", view.Requirement.ReqID, len(versions))
				for i := range versions {
					v := &versions[i]
					marker := ""
					if v.IsDeleted {
						marker = " (removed)"
					}
					fmt.Printf("%s  %-10s  by %s%s\n", v.EffectiveFrom.Format(time.RFC3339), v.WorkflowState, v.ModifiedBy, marker)
					fmt.Printf("  %s\n", v.Name)
				}
				return nil
			})
		},
	}
}

func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <req-id>",
		Short: "Show a requirement's audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				view, err := resolveRequirement(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}
				entries, err := d.Requirements.HandleAuditLog(cmd.Context(), view.Requirement.ID)
				if err != nil {
					return fmt.Errorf("loading audit log: %w", err)
				}
				if len(entries) == 0 {
					fmt.Println("No audit entries found.")
					return nil
				}
				for i := range entries {
					e := &entries[i]
					fmt.Printf("%s  %-22s  %s\n", e.CreatedAt.Format(time.RFC3339), e.Action, e.Actor)
				}
				return nil
			})
		},
	}
}

func displayView(view *services.RequirementView) {
	fmt.Printf("%s [%s] %s\n", view.Requirement.ReqID, view.Requirement.ReqType, view.Version.Name)
	fmt.Printf("  State: %s\n", view.Version.WorkflowState)
	if view.Version.Statement != "" {
		fmt.Printf("  Statement: %s\n", view.Version.Statement)
	}
	displayDetails(&view.Version)
	fmt.Printf("  Modified by %s at %s\n", view.Version.ModifiedBy, view.Version.EffectiveFrom.Format(time.RFC3339))
}

func displayDetails(v *entities.RequirementVersion) {
	switch {
	case v.Behavior != nil:
		fmt.Printf("  Priority: %s\n", v.Behavior.Priority)
	case v.Scenario != nil:
		if v.Scenario.PrimaryActor != "" {
			fmt.Printf("  Actor: %s\n", v.Scenario.PrimaryActor)
		}
		if v.Scenario.Outcome != "" {
			fmt.Printf("  Outcome: %s\n", v.Scenario.Outcome)
		}
	case v.Constraint != nil:
		fmt.Printf("  Category: %s\n", v.Constraint.Category)
	case v.Stakeholder != nil:
		fmt.Printf("  Interest/Influence: %d/%d\n", v.Stakeholder.Interest, v.Stakeholder.Influence)
	case v.Person != nil && v.Person.Email != "":
		fmt.Printf("  Email: %s\n", v.Person.Email)
	}
}
