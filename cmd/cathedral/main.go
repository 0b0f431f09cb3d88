// Package main provides the entry point for the cathedral CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version        = "0.1.0-dev"
	globalOrg      string
	globalSolution string
	globalUser     string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "cathedral",
		Short:   "A versioned requirements repository with review workflow and semantic search",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&globalOrg, "org", "o", "", "Organization to operate on")
	rootCmd.PersistentFlags().StringVarP(&globalSolution, "solution", "s", "", "Solution to operate on")
	rootCmd.PersistentFlags().StringVarP(&globalUser, "user", "u", defaultUser(), "Acting user recorded on changes")

	rootCmd.AddCommand(
		newInitCmd(),
		newOrgsCmd(),
		newSolutionsCmd(),
		newCreateCmd(),
		newGetCmd(),
		newListCmd(),
		newEditCmd(),
		newHistoryCmd(),
		newAuditCmd(),
		newSubmitCmd(),
		newAcceptCmd(),
		newApproveCmd(),
		newRejectCmd(),
		newStatusCmd(),
		newChecksCmd(),
		newRemoveCmd(),
		newRestoreCmd(),
		newRelateCmd(),
		newRelationsCmd(),
		newIngestCmd(),
		newImportCmd(),
		newExportCmd(),
		newSearchCmd(),
		newTypesCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}

func defaultUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}
