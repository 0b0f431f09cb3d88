package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
)

func newSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <req-id>",
		Short: "Submit a requirement for review",
		Args:  cobra.ExactArgs(1),
		RunE:  workflowRunE("submitting requirement", func(d *Deps) transitionFunc { return d.Review.HandleSubmit }),
	}
}

func newAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <req-id>",
		Short: "Accept a parsed requirement as proposed",
		Args:  cobra.ExactArgs(1),
		RunE:  workflowRunE("accepting requirement", func(d *Deps) transitionFunc { return d.Review.HandleAccept }),
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <req-id>",
		Short: "Restore a removed requirement as proposed",
		Args:  cobra.ExactArgs(1),
		RunE:  workflowRunE("restoring requirement", func(d *Deps) transitionFunc { return d.Review.HandleRestore }),
	}
}

type transitionFunc = func(ctx context.Context, requirementID, actor string) (*entities.RequirementVersion, error)

func workflowRunE(action string, pick func(*Deps) transitionFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withDeps(func(d *Deps) error {
			view, err := resolveRequirement(cmd.Context(), d, args[0])
			if err != nil {
				return err
			}
			version, err := pick(d)(cmd.Context(), view.Requirement.ID, globalUser)
			if err != nil {
				return fmt.Errorf("%s: %w", action, err)
			}
			fmt.Printf("%s is now %s\n", view.Requirement.ReqID, version.WorkflowState)
			return nil
		})
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <req-id>",
		Short: "Remove a requirement (soft delete)",
		Long:  "Removes a requirement by appending a tombstone version. History is preserved and the requirement can be restored.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				view, err := resolveRequirement(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}
				if err := d.Review.HandleRemove(cmd.Context(), view.Requirement.ID, globalUser); err != nil {
					return fmt.Errorf("removing requirement: %w", err)
				}
				fmt.Printf("Removed %s\n", view.Requirement.ReqID)
				return nil
			})
		},
	}
}

func newApproveCmd() *cobra.Command {
	var comments string

	cmd := &cobra.Command{
		Use:   "approve <req-id>",
		Short: "Endorse a requirement under review",
		Long:  "Records an approval for the endorsement category. When every required category is approved, the requirement activates.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				view, err := resolveRequirement(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}
				if err := d.Review.HandleApprove(cmd.Context(), view.Requirement.ID, string(entities.CategoryEndorsement), globalUser, comments); err != nil {
					return fmt.Errorf("approving requirement: %w", err)
				}
				fmt.Printf("Approved %s\n", view.Requirement.ReqID)
				return printStatus(cmd, d, view.Requirement.ID)
			})
		},
	}

	cmd.Flags().StringVarP(&comments, "comments", "c", "", "Review comments")
	return cmd
}

func newRejectCmd() *cobra.Command {
	var comments string

	cmd := &cobra.Command{
		Use:   "reject <req-id>",
		Short: "Reject a requirement under review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				view, err := resolveRequirement(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}
				if err := d.Review.HandleReject(cmd.Context(), view.Requirement.ID, string(entities.CategoryEndorsement), globalUser, comments); err != nil {
					return fmt.Errorf("rejecting requirement: %w", err)
				}
				fmt.Printf("Rejected %s\n", view.Requirement.ReqID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&comments, "comments", "c", "", "Review comments")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <req-id>",
		Short: "Show a requirement's review status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				view, err := resolveRequirement(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("%s [%s] %s\n", view.Requirement.ReqID, view.Version.WorkflowState, view.Version.Name)
				return printStatus(cmd, d, view.Requirement.ID)
			})
		},
	}
}

func printStatus(cmd *cobra.Command, d *Deps, requirementID string) error {
	state, err := d.Review.HandleStatus(cmd.Context(), requirementID)
	if err != nil {
		return fmt.Errorf("loading review status: %w", err)
	}
	fmt.Printf("Review: %s\n", state.Overall)
	for _, item := range state.Items {
		kind := "manual"
		if item.IsAutomated {
			kind = "auto"
		}
		fmt.Printf("  %-22s %-9s (%s)\n", item.Category, item.Status, kind)
	}
	return nil
}

func newChecksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checks <req-id>",
		Short: "Run automated quality checks",
		Long:  "Runs the automated quality checks against a requirement under review and records the findings as endorsements.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				view, err := resolveRequirement(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}
				if err := d.Review.HandleRunChecks(cmd.Context(), view.Requirement.ID); err != nil {
					return fmt.Errorf("running checks: %w", err)
				}
				fmt.Printf("Checks recorded for %s\n", view.Requirement.ReqID)
				return printStatus(cmd, d, view.Requirement.ID)
			})
		},
	}
}
