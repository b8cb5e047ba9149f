package model

import "encoding/json"

// TurnRequest represents one user utterance sent to the agent
type TurnRequest struct {
	SessionID string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
	Context   *TurnContext    `json:"context,omitempty"`
}

// Text returns the message when it is a JSON string, false otherwise
func (r TurnRequest) Text() (string, bool) {
	if len(r.Message) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(r.Message, &s); err != nil {
		return "", false
	}
	return s, true
}
