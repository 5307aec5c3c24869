package gemini

// generateRequest is the JSON body for a generateContent call.
type generateRequest struct {
	Contents         []requestContent  `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

// generationConfig mirrors the API's camelCase schema. Pointer fields are
// omitted from the payload when unset.
type generationConfig struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"topP,omitempty"`
	TopK        *int     `json:"topK,omitempty"`
}

func newGenerateRequest(prompt string, cfg *generationConfig) generateRequest {
	return generateRequest{
		Contents:         []requestContent{{Parts: []requestPart{{Text: prompt}}}},
		GenerationConfig: cfg,
	}
}

func defaultGenerationConfig() *generationConfig {
	temperature := 0.3
	topP := 0.8
	topK := 40
	return &generationConfig{
		Temperature: &temperature,
		TopP:        &topP,
		TopK:        &topK,
	}
}
