// Package gemini implements llm.Generator on top of the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/oukeidos/docsync/internal/httpclient"
	"github.com/oukeidos/docsync/internal/llm"
	"github.com/oukeidos/docsync/internal/logger"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-3-pro-preview"

// Client handles communication with the Gemini API.
type Client struct {
	client    *genai.Client
	modelName string
}

var _ llm.Generator = (*Client)(nil)

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey string, modelName string) (*Client, error) {
	// option.WithHTTPClient breaks the library's API key header injection
	// (403 on every call), so timeouts are enforced via context in Generate.
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Client{
		client:    client,
		modelName: modelName,
	}, nil
}

// Close closes the underlying genai client.
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) ModelID() string {
	return c.modelName
}

// Generate sends a single plain-text request. The system instruction is set
// per call so one client can serve documents with different prompts.
func (c *Client) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, httpclient.DefaultTimeout)
	defer cancel()

	model := c.client.GenerativeModel(c.modelName)
	model.ResponseMIMEType = "text/plain"
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxOutputTokens
	}
	model.SetMaxOutputTokens(int32(maxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	out, err := toResponse(resp)
	if err != nil {
		return out, err
	}
	logger.Debug("Gemini response received", "model", c.modelName, "usage_total", out.Usage.TotalTokens, "truncated", out.Truncated)
	return out, nil
}

// toResponse converts a Gemini reply. Usage survives a reply without text.
func toResponse(resp *genai.GenerateContentResponse) (*llm.Response, error) {
	out := &llm.Response{Truncated: hitTokenLimit(resp)}
	if resp != nil && resp.UsageMetadata != nil {
		out.Usage = llm.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	text, err := extractResponseText(resp)
	if err != nil {
		return &llm.Response{Usage: out.Usage}, apperrors.New(apperrors.KindValidation, "Gemini returned no text content.", err)
	}
	out.Text = text
	return out, nil
}

func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response received from Gemini")
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	return "", fmt.Errorf("no text parts found in Gemini response")
}

func hitTokenLimit(resp *genai.GenerateContentResponse) bool {
	if resp == nil {
		return false
	}
	for _, candidate := range resp.Candidates {
		if candidate != nil && candidate.FinishReason == genai.FinishReasonMaxTokens {
			return true
		}
	}
	return false
}
