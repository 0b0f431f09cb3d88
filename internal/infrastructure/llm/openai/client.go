// Package openai provides an LLMClient implementation using OpenAI.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/ports"
	"github.com/cathedral-app/cathedral/internal/infrastructure/config"
)

const extractionPrompt = `You are a requirements analyst. Extract individual requirements from the given text.

Valid requirement types:
person, silence, justification, glossary_term, constraint, assumption, effect,
invariant, goal, obstacle, outcome, user_story, epic, limit, stakeholder,
functional_behavior, use_case

For each requirement, identify:
- req_type: One of the valid types above
- name: A short title (a few words)
- statement: The requirement statement, rephrased as a single clear sentence
- confidence: How confident you are (0.0-1.0)

If a passage clearly intends to state a requirement but cannot be parsed into
one, emit it with req_type "silence" and the passage as the statement.

Return ONLY a valid JSON array, no other text.

Example:
Input: "Users must be able to reset their password by email."
Output: [
  {"req_type": "functional_behavior", "name": "Password reset", "statement": "The system shall let a user reset their password via an email link.", "confidence": 0.9}
]`

const checkPrompt = `You are an automated requirement quality checker. Evaluate the requirement below against each check and report one finding per check.

Checks:
- spelling_grammar: statement is free of spelling and grammar errors
- readability_score: statement is readable; score it 0.0-1.0 (passes at 0.5 or above)
- glossary_compliance: terms are used consistently and unambiguously
- formal_language: statement uses normative language (shall/must) where appropriate
- type_correspondence: the statement matches the declared requirement type %q

Requirement name: %s
Statement: %s

For each check return:
- category: the check name
- passed: true or false
- description: what is wrong (empty when passed)
- score: 0.0-1.0 for readability_score, omit otherwise

Return ONLY a valid JSON array of five findings, no other text.`

// Client implements the LLMClient interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI LLM client.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	client := openai.NewClient(cfg.APIKey)

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// ExtractRequirements extracts candidate requirements from free text.
func (c *Client) ExtractRequirements(ctx context.Context, text string) ([]ports.CandidateRequirement, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractionPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)

	var candidates []ports.CandidateRequirement
	if err := json.Unmarshal([]byte(content), &candidates); err != nil {
		return nil, fmt.Errorf("parsing requirements JSON: %w (response: %s)", err, content)
	}

	return candidates, nil
}

// CheckStatement runs the automated quality checks against a requirement
// statement and returns one finding per check category.
func (c *Client) CheckStatement(ctx context.Context, reqType entities.RequirementType, name, statement string) ([]ports.CheckFinding, error) {
	prompt := fmt.Sprintf(checkPrompt, string(reqType), name, statement)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)

	var findings []ports.CheckFinding
	if err := json.Unmarshal([]byte(content), &findings); err != nil {
		return nil, fmt.Errorf("parsing findings JSON: %w (response: %s)", err, content)
	}

	// Drop anything outside the known categories; the model occasionally
	// invents extra checks.
	kept := findings[:0]
	for _, f := range findings {
		if entities.IsAutomatedCategory(f.Category) {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

// cleanJSONResponse removes markdown code blocks if present.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
