package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cathedral-app/cathedral/internal/application/handlers"
	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/services"
	"github.com/cathedral-app/cathedral/internal/infrastructure/config"
	embedder "github.com/cathedral-app/cathedral/internal/infrastructure/embedder/openai"
	llm "github.com/cathedral-app/cathedral/internal/infrastructure/llm/openai"
	"github.com/cathedral-app/cathedral/internal/infrastructure/logger"
	"github.com/cathedral-app/cathedral/internal/infrastructure/metrics"
	"github.com/cathedral-app/cathedral/internal/infrastructure/relationaldb/sqlite"
	"github.com/cathedral-app/cathedral/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands. Only handlers are
// exposed; services and repositories stay internal.
type Deps struct {
	Config       *config.Config
	Requirements *handlers.RequirementHandler
	Review       *handlers.ReviewHandler
	Relations    *handlers.RelationHandler
	Solutions    *handlers.SolutionHandler
	Ingest       *handlers.IngestHandler
}

// appMetrics is registered once; withDeps may run more than once in tests.
var appMetrics = metrics.New(prometheus.DefaultRegisterer)

// withDeps loads config and builds dependencies, then calls the provided
// function. It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	relationalDB, err := sqlite.NewRepository(config.SQLiteConfig{Path: cfg.DatabasePath(cwd)})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer relationalDB.Close()

	if err := relationalDB.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	vectorDB, err := qdrant.NewRepository(cfg.Qdrant)
	if err != nil {
		return fmt.Errorf("creating qdrant repository: %w", err)
	}
	defer vectorDB.Close()

	emb, err := embedder.NewEmbedder(cfg.Embedder)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return fmt.Errorf("creating llm client: %w", err)
	}

	versionService := services.NewVersionService(relationalDB)
	requirementService := services.NewRequirementService(versionService, relationalDB, vectorDB, emb)
	workflowService := services.NewWorkflowService(versionService, relationalDB, vectorDB)
	reviewService := services.NewReviewService(versionService, relationalDB)
	relationService := services.NewRelationService(relationalDB)
	solutionService := services.NewSolutionService(relationalDB, vectorDB)
	ingestService := services.NewIngestService(llmClient, emb, vectorDB, relationalDB, versionService)
	importService := services.NewImportService(requirementService)
	exportService := services.NewExportService(requirementService)
	checkRunner := services.NewCheckRunner(llmClient, versionService, reviewService, relationalDB)

	deps := &Deps{
		Config:       cfg,
		Requirements: handlers.NewRequirementHandler(requirementService, log, appMetrics),
		Review:       handlers.NewReviewHandler(workflowService, reviewService, checkRunner, log, appMetrics),
		Relations:    handlers.NewRelationHandler(relationService, requirementService, log, appMetrics),
		Solutions:    handlers.NewSolutionHandler(solutionService, requirementService, relationService, log),
		Ingest:       handlers.NewIngestHandler(ingestService, importService, exportService, log, appMetrics),
	}

	return fn(deps)
}

// resolveSolution maps the --org/--solution flags to a solution record.
func resolveSolution(ctx context.Context, d *Deps) (*entities.Solution, error) {
	if globalOrg == "" {
		return nil, errors.New("organization is required (use --org flag)")
	}
	if globalSolution == "" {
		return nil, errors.New("solution is required (use --solution flag)")
	}
	return d.Solutions.HandleFindSolution(ctx, globalOrg, globalSolution)
}

// resolveRequirement maps a human-facing reqId (e.g. "G.3.7") to its
// current view within the flag-selected solution.
func resolveRequirement(ctx context.Context, d *Deps, reqID string) (*services.RequirementView, error) {
	sol, err := resolveSolution(ctx, d)
	if err != nil {
		return nil, err
	}
	return d.Requirements.HandleGetByReqID(ctx, sol.ID, reqID)
}
