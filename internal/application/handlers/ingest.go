package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cathedral-app/cathedral/internal/domain/services"
	"github.com/cathedral-app/cathedral/internal/infrastructure/logger"
	"github.com/cathedral-app/cathedral/internal/infrastructure/metrics"
	"github.com/cathedral-app/cathedral/internal/infrastructure/parsers"
)

// IngestHandler handles free-text ingestion and structured import/export.
type IngestHandler struct {
	ingest  *services.IngestService
	imports *services.ImportService
	exports *services.ExportService
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(ingest *services.IngestService, imports *services.ImportService, exports *services.ExportService, log *logger.Logger, m *metrics.Metrics) *IngestHandler {
	return &IngestHandler{
		ingest:  ingest,
		imports: imports,
		exports: exports,
		log:     log,
		metrics: m,
	}
}

// HandleIngest reads a free-text file and extracts candidate requirements
// into the parsed state.
func (h *IngestHandler) HandleIngest(ctx context.Context, solutionID, filePath, submittedBy string) (*services.IngestResult, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("accessing file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", absPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	start := time.Now()
	result, err := h.ingest.Ingest(ctx, solutionID, string(data), filepath.Base(absPath), submittedBy)
	h.log.LogOperation("ingest", time.Since(start), err)
	h.metrics.RecordOperation("ingest", statusOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	h.metrics.RecordIngestBatch()

	h.log.Info().
		Str("file", filepath.Base(absPath)).
		Int("requirements", len(result.Requirements)).
		Int("silences", result.SilenceCount).
		Msg("ingestion completed")
	return result, nil
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format string // "json", "csv", or "" for by-extension
	DryRun bool   // validate without saving
}

// HandleImport imports structured requirements from a file.
func (h *IngestHandler) HandleImport(ctx context.Context, solutionID, filePath, createdBy string, opts ImportOptions) (*services.ImportResult, error) {
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}
	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	rows, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	if len(rows) == 0 {
		return &services.ImportResult{}, nil
	}

	start := time.Now()
	result, err := h.imports.Import(ctx, solutionID, rows, createdBy, services.ImportOptions{DryRun: opts.DryRun})
	h.log.LogOperation("import", time.Since(start), err)
	h.metrics.RecordOperation("import", statusOf(err), time.Since(start))
	return result, err
}

// HandleExport writes a solution's current requirements to w in the given
// format ("json" or "csv") and returns how many were written.
func (h *IngestHandler) HandleExport(ctx context.Context, w io.Writer, solutionID, format string) (int, error) {
	switch services.ExportFormat(format) {
	case services.ExportJSON, services.ExportCSV:
	default:
		return 0, fmt.Errorf("unsupported export format: %s (valid: json, csv)", format)
	}
	return h.exports.Export(ctx, w, solutionID, services.ExportFormat(format))
}
