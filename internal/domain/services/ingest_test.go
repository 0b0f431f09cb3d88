package services

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/mocks"
	"github.com/cathedral-app/cathedral/internal/domain/ports"
)

func newIngestFixture(t *testing.T) (*IngestService, *mocks.LLMClient, *mocks.RelationalDB, *mocks.VectorDB, *entities.Solution) {
	t.Helper()
	stepClock(t)
	db := mocks.NewRelationalDB()
	vectorDB := &mocks.VectorDB{}
	embedder := &mocks.Embedder{EmbeddingResult: []float32{0.5, 0.5}}
	llm := &mocks.LLMClient{}
	versions := NewVersionService(db)
	svc := NewIngestService(llm, embedder, vectorDB, db, versions)
	return svc, llm, db, vectorDB, seedSolution(t, db)
}

func TestIngestService_Ingest(t *testing.T) {
	svc, llm, db, vectorDB, sol := newIngestFixture(t)
	llm.Candidates = []ports.CandidateRequirement{
		{ReqType: entities.TypeGoal, Name: "Faster support", Statement: "Support must answer within two hours.", Confidence: 0.9},
		{ReqType: entities.TypeSilence, Statement: "lorem ipsum gibberish", Confidence: 0.1},
	}

	result, err := svc.Ingest(t.Context(), sol.ID, "Support must answer within two hours.\n\nlorem ipsum gibberish", "notes.md", "alice")
	require.NoError(t, err)

	require.Len(t, result.Requirements, 2)
	assert.Equal(t, 1, result.SilenceCount)
	assert.Equal(t, "notes.md", result.Batch.SourceFile)
	assert.Equal(t, "alice", result.Batch.SubmittedBy)

	goal := result.Requirements[0]
	assert.Equal(t, entities.WorkflowParsed, goal.Version.WorkflowState, "candidates enter the pipeline as Parsed")
	assert.Equal(t, result.Batch.ID, goal.Requirement.FollowsID, "candidates trace back to their batch")
	assert.Equal(t, "G.1.1", goal.Requirement.ReqID)

	silence := result.Requirements[1]
	assert.Equal(t, entities.WorkflowRejected, silence.Version.WorkflowState, "silences are born rejected")
	assert.Equal(t, entities.TypeSilence, silence.Requirement.ReqType)
	assert.Equal(t, "lorem ipsum gibberish", silence.Version.Name, "a missing name falls back to the statement")

	assert.Equal(t, 1, vectorDB.SaveBatchCallCount)
	assert.Len(t, vectorDB.SaveBatchLastDocs, 2)
	for _, doc := range vectorDB.SaveBatchLastDocs {
		assert.NotEmpty(t, doc.Embedding)
	}

	batch, err := db.FindParsedBatch(t.Context(), result.Batch.ID)
	require.NoError(t, err)
	require.NotNil(t, batch)
}

func TestIngestService_Ingest_UnknownTypeBecomesSilence(t *testing.T) {
	svc, llm, _, _, sol := newIngestFixture(t)
	llm.Candidates = []ports.CandidateRequirement{
		{ReqType: "wish", Name: "Teleportation", Statement: "Users teleport to the office."},
	}

	result, err := svc.Ingest(t.Context(), sol.ID, "Users teleport to the office.", "", "alice")
	require.NoError(t, err)
	require.Len(t, result.Requirements, 1)
	assert.Equal(t, entities.TypeSilence, result.Requirements[0].Requirement.ReqType)
	assert.Equal(t, 1, result.SilenceCount)
}

func TestIngestService_Ingest_NoCandidates(t *testing.T) {
	svc, _, db, vectorDB, sol := newIngestFixture(t)

	result, err := svc.Ingest(t.Context(), sol.ID, "nothing useful", "", "alice")
	require.NoError(t, err)
	assert.Empty(t, result.Requirements)
	assert.Empty(t, db.Batches, "no batch is recorded when nothing was extracted")
	assert.Zero(t, vectorDB.SaveBatchCallCount)
}

func TestIngestService_Ingest_ExtractionError(t *testing.T) {
	svc, llm, db, _, sol := newIngestFixture(t)
	llm.ExtractErr = errors.New("model overloaded")

	_, err := svc.Ingest(t.Context(), sol.ID, "some text", "", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Empty(t, db.Requirements)
}

func TestIngestService_Ingest_UnknownSolution(t *testing.T) {
	svc, _, _, _, _ := newIngestFixture(t)

	_, err := svc.Ingest(t.Context(), "nope", "some text", "", "alice")
	var nfe *entities.NotFoundError
	assert.ErrorAs(t, err, &nfe)
}

func TestIngestService_Ingest_ChunksLongText(t *testing.T) {
	svc, llm, _, _, sol := newIngestFixture(t)
	llm.Candidates = nil

	paragraphs := make([]string, 40)
	for i := range paragraphs {
		paragraphs[i] = strings.Repeat("The system records every interaction for later analysis. ", 3)
	}
	text := strings.Join(paragraphs, "\n\n")

	_, err := svc.Ingest(t.Context(), sol.ID, text, "", "alice")
	require.NoError(t, err)
	assert.Greater(t, llm.ExtractCallCount, 1, "long input is extracted chunk by chunk")
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		wantCount int
	}{
		{
			name:      "short text fits in one chunk",
			text:      "This is a short text.",
			chunkSize: 100,
			overlap:   10,
			wantCount: 1,
		},
		{
			name:      "empty text returns single chunk",
			text:      "",
			chunkSize: 100,
			overlap:   10,
			wantCount: 1,
		},
		{
			name:      "text splits into multiple chunks",
			text:      "First paragraph.\n\nSecond paragraph.\n\nThird paragraph.\n\nFourth paragraph.",
			chunkSize: 40,
			overlap:   10,
			wantCount: 3,
		},
		{
			name:      "text exactly at chunk size",
			text:      "12345678901234567890",
			chunkSize: 20,
			overlap:   5,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkText(tt.text, tt.chunkSize, tt.overlap)
			assert.Equal(t, tt.wantCount, len(chunks))
		})
	}
}

func TestChunkText_OnlyWhitespace(t *testing.T) {
	chunks := ChunkText("   \n\n   \n\n   ", 10, 2)
	assert.Len(t, chunks, 1)
}

func TestOverlapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		n        int
		expected string
	}{
		{"snaps to word boundary", "Hello brave World", 11, "World"},
		{"overlap larger than text", "Hi", 10, "Hi"},
		{"zero overlap", "Hello", 0, "Hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, overlapText(tt.text, tt.n))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "trimmed", truncate("  trimmed  ", 10))
	assert.Equal(t, "exactly te", truncate("exactly ten characters plus", 10))

	// The cut snaps back to a rune boundary instead of splitting a
	// multi-byte character. "café" is 5 bytes; cutting at 4 would land
	// mid-rune.
	assert.Equal(t, "caf", truncate("café au lait", 4))
	assert.True(t, utf8.ValidString(truncate("héllo wörld", 6)))
}
