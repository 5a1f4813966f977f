// Package llm defines the text generation contract shared by the backends.
package llm

import "context"

// DefaultMaxOutputTokens bounds a single generation request.
const DefaultMaxOutputTokens = 16384

// Request is one bounded, non-streaming generation call.
type Request struct {
	System          string
	Prompt          string
	MaxOutputTokens int
}

// Usage holds token counts reported by a backend.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add returns the element-wise sum of u and o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
		TotalTokens:  u.TotalTokens + o.TotalTokens,
	}
}

// Response is the text payload of a generation call.
type Response struct {
	Text string
	// Truncated is set when the backend stopped at the output token limit.
	Truncated bool
	Usage     Usage
}

// Generator produces text from a system instruction and a user prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}
