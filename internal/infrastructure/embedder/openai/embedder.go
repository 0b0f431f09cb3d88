// Package openai provides an Embedder implementation using OpenAI.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/cathedral-app/cathedral/internal/infrastructure/config"
)

// VectorSize is the native dimension of text-embedding-3-small vectors,
// used when the config does not request a reduced dimension.
const VectorSize = 1536

// Dimensions returns the vector dimension the given config will produce.
// The qdrant collection must be created with the same value.
func Dimensions(cfg config.EmbedderConfig) uint64 {
	if cfg.Dimensions > 0 {
		return uint64(cfg.Dimensions)
	}
	return VectorSize
}

// Embedder implements the Embedder interface using OpenAI.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel

	// requestDims is sent with each request when the config asks for a
	// reduced dimension; zero leaves the model's native size.
	requestDims int
}

// NewEmbedder creates a new OpenAI embedder.
func NewEmbedder(cfg config.EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if cfg.Dimensions < 0 {
		return nil, fmt.Errorf("embedder dimensions must be positive, got %d", cfg.Dimensions)
	}

	client := openai.NewClient(cfg.APIKey)

	model := openai.SmallEmbedding3
	if cfg.Model != "" {
		model = openai.EmbeddingModel(cfg.Model)
	}

	return &Embedder{
		client:      client,
		model:       model,
		requestDims: cfg.Dimensions,
	}, nil
}

// Dimensions returns the dimension of the vectors this embedder produces.
func (e *Embedder) Dimensions() uint64 {
	if e.requestDims > 0 {
		return uint64(e.requestDims)
	}
	return VectorSize
}

// Embed generates a vector embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		return nil, errors.New("no embeddings returned")
	}

	return embeddings[0], nil
}

// EmbedBatch generates vector embeddings for multiple texts.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      e.model,
		Input:      texts,
		Dimensions: e.requestDims,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embeddings: %w", err)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = data.Embedding
	}

	return embeddings, nil
}
