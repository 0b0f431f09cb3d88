package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cathedral-app/cathedral/internal/infrastructure/config"
	embedder "github.com/cathedral-app/cathedral/internal/infrastructure/embedder/openai"
	"github.com/cathedral-app/cathedral/internal/infrastructure/relationaldb/sqlite"
	"github.com/cathedral-app/cathedral/internal/infrastructure/vectordb/qdrant"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new cathedral repository",
		Long:  "Creates a .cathedral directory with default configuration, the SQLite database, and the Qdrant collection.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if config.Exists(cwd) {
		return fmt.Errorf("cathedral already initialized in %s", cwd)
	}

	if err := config.WriteDefault(cwd); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	fmt.Printf("Created %s\n", config.ConfigFilePath(cwd))

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := sqlite.NewRepository(config.SQLiteConfig{Path: cfg.DatabasePath(cwd)})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	fmt.Printf("Created database: %s\n", cfg.DatabasePath(cwd))

	vectorDB, err := qdrant.NewRepository(cfg.Qdrant)
	if err != nil {
		return fmt.Errorf("connecting to qdrant: %w", err)
	}
	defer vectorDB.Close()

	if err := vectorDB.EnsureCollection(ctx, embedder.Dimensions(cfg.Embedder)); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	fmt.Printf("Created Qdrant collection: %s\n", cfg.Qdrant.Collection)
	fmt.Println("Cathedral initialized successfully!")

	return nil
}
