package gemini

// generateResponse is the JSON body of a generateContent reply.
type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
}

type candidate struct {
	Content      *candidateContent `json:"content"`
	FinishReason string            `json:"finishReason,omitempty"`
}

type candidateContent struct {
	Parts []responsePart `json:"parts"`
	Role  string         `json:"role,omitempty"`
}

// responsePart keeps Text as a pointer so an absent field is distinguishable
// from a present-but-empty string.
type responsePart struct {
	Text *string `json:"text"`
}

type promptFeedback struct {
	BlockReason   string         `json:"blockReason,omitempty"`
	SafetyRatings []safetyRating `json:"safetyRatings,omitempty"`
}

type safetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
}

// text walks the nested response one layer at a time so each kind of schema
// drift is caught and named separately. The second return value is the
// missing layer, or "" on success.
func (r *generateResponse) text() (string, string) {
	if len(r.Candidates) == 0 {
		return "", "candidates"
	}
	content := r.Candidates[0].Content
	if content == nil {
		return "", "content"
	}
	if len(content.Parts) == 0 {
		return "", "parts"
	}
	if content.Parts[0].Text == nil {
		return "", "text"
	}
	return *content.Parts[0].Text, ""
}
