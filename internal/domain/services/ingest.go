package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/ports"
)

const (
	// DefaultChunkSize is the default size for text chunks.
	DefaultChunkSize = 2000
	// DefaultChunkOverlap is the default overlap between chunks.
	DefaultChunkOverlap = 200
)

// IngestResult contains the outcome of one ingestion run.
type IngestResult struct {
	Batch        entities.ParsedBatch `json:"batch"`
	Requirements []RequirementView    `json:"requirements"`
	SilenceCount int                  `json:"silence_count"`
}

// IngestService turns free text into candidate requirements. Extracted
// candidates enter the workflow in the Parsed state, tied to their batch
// through the follows reference; unparsable passages become Silence
// placeholders, born rejected.
type IngestService struct {
	llm      ports.LLMClient
	embedder ports.Embedder
	vectorDB ports.VectorDB
	db       ports.RelationalDB
	versions *VersionService
}

// NewIngestService creates a new ingest service.
func NewIngestService(llm ports.LLMClient, embedder ports.Embedder, vectorDB ports.VectorDB, db ports.RelationalDB, versions *VersionService) *IngestService {
	return &IngestService{
		llm:      llm,
		embedder: embedder,
		vectorDB: vectorDB,
		db:       db,
		versions: versions,
	}
}

// Ingest extracts candidate requirements from text and stores them as a
// parsed batch.
//
// LLM calls in loop are intentional - LLMs have token limits, so text must
// be chunked and each chunk processed separately.
func (s *IngestService) Ingest(ctx context.Context, solutionID, text, sourceFile, submittedBy string) (*IngestResult, error) {
	sol, err := s.db.FindSolutionByID(ctx, solutionID)
	if err != nil {
		return nil, fmt.Errorf("finding solution: %w", err)
	}
	if sol == nil {
		return nil, &entities.NotFoundError{Kind: "solution", ID: solutionID}
	}

	chunks := ChunkText(text, DefaultChunkSize, DefaultChunkOverlap)
	var candidates []ports.CandidateRequirement
	for i, chunk := range chunks {
		extracted, err := s.llm.ExtractRequirements(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("extracting requirements from chunk %d: %w", i, err)
		}
		candidates = append(candidates, extracted...)
	}
	if len(candidates) == 0 {
		return &IngestResult{}, nil
	}

	batch := entities.ParsedBatch{
		ID:          uuid.New().String(),
		SolutionID:  solutionID,
		SourceFile:  sourceFile,
		SubmittedBy: submittedBy,
		CreatedAt:   timeNow(),
	}
	if err := s.db.SaveParsedBatch(ctx, &batch); err != nil {
		return nil, fmt.Errorf("saving parsed batch: %w", err)
	}

	result := &IngestResult{Batch: batch}
	docs := make([]entities.RequirementDoc, 0, len(candidates))
	texts := make([]string, 0, len(candidates))

	for _, cand := range candidates {
		reqType := cand.ReqType
		if !reqType.IsValid() {
			reqType = entities.TypeSilence
		}
		spec, _ := entities.SpecFor(reqType)
		seq, err := s.db.NextReqSequence(ctx, solutionID, spec.Prefix)
		if err != nil {
			return nil, fmt.Errorf("assigning reqId: %w", err)
		}
		req := &entities.Requirement{
			ID:           uuid.New().String(),
			SolutionID:   solutionID,
			ReqType:      reqType,
			ReqID:        entities.FormatReqID(reqType, seq),
			FollowsID:    batch.ID,
			CreatedBy:    submittedBy,
			CreationDate: timeNow(),
		}
		if err := s.db.SaveRequirement(ctx, req); err != nil {
			return nil, fmt.Errorf("saving candidate %s: %w", req.ReqID, err)
		}

		state := entities.WorkflowParsed
		if reqType == entities.TypeSilence {
			state = entities.WorkflowRejected
			result.SilenceCount++
		}
		name := cand.Name
		if name == "" {
			name = truncate(cand.Statement, 60)
		}
		patch := entities.VersionPatch{Name: &name, Statement: &cand.Statement}
		version, err := s.versions.AppendFirst(ctx, req, patch, state, submittedBy)
		if err != nil {
			return nil, fmt.Errorf("saving candidate version %s: %w", req.ReqID, err)
		}

		result.Requirements = append(result.Requirements, RequirementView{Requirement: *req, Version: *version})
		docs = append(docs, entities.RequirementDoc{
			ID:         req.ID,
			SolutionID: solutionID,
			ReqType:    reqType,
			ReqID:      req.ReqID,
			Name:       version.Name,
			Statement:  version.Statement,
		})
		texts = append(texts, version.Name+"\n"+version.Statement)
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("generating embeddings: %w", err)
	}
	for i := range docs {
		docs[i].Embedding = embeddings[i]
	}
	if err := s.vectorDB.SaveBatch(ctx, docs); err != nil {
		return nil, fmt.Errorf("indexing candidates: %w", err)
	}

	if err := s.db.LogAction(ctx, "ingest.completed", "", submittedBy, map[string]any{
		"batch":      batch.ID,
		"candidates": len(result.Requirements),
		"silence":    result.SilenceCount,
	}); err != nil {
		return nil, fmt.Errorf("logging ingest: %w", err)
	}
	return result, nil
}

// ChunkText splits text into chunks of roughly chunkSize characters,
// breaking on paragraph boundaries with the given overlap carried between
// consecutive chunks.
func ChunkText(text string, chunkSize, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	paragraphs := strings.Split(text, "\n\n")

	var current strings.Builder
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if current.Len()+len(para)+2 > chunkSize && current.Len() > 0 {
			chunks = append(chunks, current.String())

			tail := overlapText(current.String(), overlap)
			current.Reset()
			current.WriteString(tail)
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	if len(chunks) == 0 && len(text) > 0 {
		chunks = append(chunks, text)
	}
	return chunks
}

// overlapText returns the last n characters of text, snapped to a word
// boundary.
func overlapText(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	tail := text[len(text)-n:]
	if idx := strings.IndexAny(tail, " \n"); idx >= 0 {
		tail = tail[idx+1:]
	}
	return tail
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
