package model

import "time"

// Phase is the dialogue state of a session
type Phase string

const (
	PhaseAwaitingInput        Phase = "awaiting_input"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
)

// TurnContext is what a stateless client round-trips on every turn
type TurnContext struct {
	PendingFields        BookingFields  `json:"pending_fields"`
	AwaitingConfirmation bool           `json:"awaiting_confirmation"`
	LastProposed         *BookingFields `json:"last_proposed,omitempty"`
}

// SessionState is the per-conversation dialogue state
type SessionState struct {
	SessionID            string         `json:"session_id"`
	PendingFields        BookingFields  `json:"pending_fields"`
	AwaitingConfirmation bool           `json:"awaiting_confirmation"`
	LastProposed         *BookingFields `json:"last_proposed,omitempty"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// NewSessionState returns the initial state of a conversation
func NewSessionState(sessionID string) SessionState {
	return SessionState{SessionID: sessionID}
}

// Phase derives the dialogue phase from the confirmation flag
func (s SessionState) Phase() Phase {
	if s.AwaitingConfirmation {
		return PhaseAwaitingConfirmation
	}
	return PhaseAwaitingInput
}

// Context returns the view of the state handed to the extractor
func (s SessionState) Context() TurnContext {
	return TurnContext{
		PendingFields:        s.PendingFields,
		AwaitingConfirmation: s.AwaitingConfirmation,
	}
}

// WithContext overlays a client-supplied context onto the state.
// A stored proposal survives only while the client still reports awaiting confirmation.
func (s SessionState) WithContext(c TurnContext) SessionState {
	s.PendingFields = c.PendingFields.Clone()
	s.AwaitingConfirmation = c.AwaitingConfirmation
	switch {
	case !c.AwaitingConfirmation:
		s.LastProposed = nil
	case c.LastProposed != nil:
		p := c.LastProposed.Clone()
		s.LastProposed = &p
	}
	return s
}
