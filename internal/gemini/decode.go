package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodePayload extracts the structured JSON payload from a response.
//
// With responseMimeType set to application/json the model's answer is the
// concatenation of the non-thought candidate parts. The result is either
// a valid JSON document or a malformed-response error; callers never see
// both representations.
func decodePayload(resp *generateResponse) (json.RawMessage, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no candidates returned")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, fmt.Errorf("empty completion")
	}

	raw := json.RawMessage(text)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("malformed response payload: %.80q", text)
	}
	return raw, nil
}
