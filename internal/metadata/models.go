// Package metadata lists known backend models and their token pricing.
package metadata

// Provider names a generation backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Model describes one backend model and its price per million tokens (USD).
type Model struct {
	Provider         Provider
	ID               string
	Label            string
	InputPerMillion  float64
	OutputPerMillion float64
}

var Models = []Model{
	{
		Provider:         ProviderGemini,
		ID:               "gemini-3-flash-preview",
		Label:            "Gemini 3 Flash (preview)",
		InputPerMillion:  0.50,
		OutputPerMillion: 3.00,
	},
	{
		Provider:         ProviderGemini,
		ID:               "gemini-3-pro-preview",
		Label:            "Gemini 3 Pro (preview)",
		InputPerMillion:  2.00,
		OutputPerMillion: 12.00,
	},
	{
		Provider:         ProviderOpenAI,
		ID:               "gpt-5.2",
		Label:            "GPT-5.2",
		InputPerMillion:  1.75,
		OutputPerMillion: 14.00,
	},
}

const (
	DefaultOpenAIInputPerMillion  = 2.50
	DefaultOpenAIOutputPerMillion = 10.00
	DefaultGeminiInputPerMillion  = 2.00
	DefaultGeminiOutputPerMillion = 12.00
)

// Providers returns the supported provider names.
func Providers() []string {
	return []string{string(ProviderGemini), string(ProviderOpenAI)}
}

// ModelIDs returns the known model IDs for a provider.
func ModelIDs(p Provider) []string {
	var ids []string
	for _, m := range Models {
		if m.Provider == p {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Pricing looks up a model. Unknown models get the provider's default
// pricing and ok=false.
func Pricing(p Provider, modelID string) (Model, bool) {
	for _, m := range Models {
		if m.Provider == p && m.ID == modelID {
			return m, true
		}
	}
	if p == ProviderOpenAI {
		return Model{
			Provider:         p,
			ID:               "default",
			Label:            "Default OpenAI",
			InputPerMillion:  DefaultOpenAIInputPerMillion,
			OutputPerMillion: DefaultOpenAIOutputPerMillion,
		}, false
	}
	return Model{
		Provider:         p,
		ID:               "default",
		Label:            "Default Gemini",
		InputPerMillion:  DefaultGeminiInputPerMillion,
		OutputPerMillion: DefaultGeminiOutputPerMillion,
	}, false
}

// EstimateCost returns the approximate USD cost of a token count.
func (m Model) EstimateCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1e6*m.InputPerMillion + float64(outputTokens)/1e6*m.OutputPerMillion
}
