package ai

import (
	"context"
	"encoding/json"
	"strings"
)

// minConfidence drops guesses the model itself isn't sure about.
const minConfidence = 0.5

// Advisor turns an unrecognized command into a suggested one.
type Advisor struct {
	ai AI
}

func NewAdvisor(ai AI) *Advisor {
	return &Advisor{ai: ai}
}

type advice struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// Suggest returns a corrected command, or "" when the model has none.
func (a *Advisor) Suggest(ctx context.Context, text string, verbs []string, history []Message) (string, error) {
	input := map[string]any{
		"text":    text,
		"verbs":   verbs,
		"history": history,
	}

	b, err := json.Marshal(input)
	if err != nil {
		return "", err
	}

	raw, err := a.ai.GetReply(ctx, CommandAdvisorPrompt, string(b))
	if err != nil {
		return "", err
	}

	var resp advice
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &resp); err != nil {
		return "", nil
	}
	if resp.Confidence < minConfidence {
		return "", nil
	}

	return strings.TrimSpace(resp.Suggestion), nil
}
