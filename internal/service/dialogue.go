package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"skybridge/internal/model"
)

const (
	MsgMalformedRequest = "Please send a message with your trip details."
	MsgConfirmed        = "Confirmed. I will fill the form and run search now."
	MsgUnavailable      = "AI parsing is unavailable right now. Add a valid OPENAI_API_KEY in server/.env and restart the backend."
	MsgGenericQuestion  = "Please provide the missing booking details."
)

var fieldQuestions = map[model.FieldName]string{
	model.FieldFrom:        "What is your departure city?",
	model.FieldTo:          "What is your destination city?",
	model.FieldDeparture:   "What is your departure date? Example: 2026-08-29.",
	model.FieldTripType:    "Is this one-way or round-trip?",
	model.FieldReturn:      "What is your return date?",
	model.FieldPassengers:  "How many passengers (1 to 9)?",
	model.FieldTravelClass: "Which class do you want: Economy, Premium Economy, or Business?",
}

// FieldQuestion returns the canned prompt for a field name, or a generic one
func FieldQuestion(field string) string {
	key := model.FieldName(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(field)), " ", "_"))
	if q, ok := fieldQuestions[key]; ok {
		return q
	}
	return MsgGenericQuestion
}

// BuildSummary renders a complete field set for confirmation
func BuildSummary(f model.BookingFields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I can fill: %s to %s, ", deref(f.From), deref(f.To))
	if f.IsRoundTrip() {
		fmt.Fprintf(&b, "round-trip, departure %s, return %s", deref(f.Departure), deref(f.Return))
	} else {
		fmt.Fprintf(&b, "one-way, departure %s, no return", deref(f.Departure))
	}
	passengers := 0
	if f.Passengers != nil {
		passengers = *f.Passengers
	}
	class := ""
	if f.TravelClass != nil {
		class = string(*f.TravelClass)
	}
	fmt.Fprintf(&b, ", %d passenger(s), %s. Confirm with yes/ja?", passengers, class)
	return b.String()
}

// MalformedRequest is the reply to a turn without a usable message
func MalformedRequest() model.NeedInfo {
	return model.NeedInfo{AssistantMessage: MsgMalformedRequest}
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithConfirmationMatcher replaces the default confirmation words
func WithConfirmationMatcher(m *ConfirmationMatcher) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.confirm = m
		}
	}
}

// WithClock sets the source of the today anchor
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithEngineLogger sets the engine logger
func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine drives one slot-filling dialogue turn. It holds no per-session state and is
// safe for concurrent use.
type Engine struct {
	extractor Extractor
	confirm   *ConfirmationMatcher
	now       func() time.Time
	logger    *zap.Logger
}

// NewEngine creates an engine. A nil extractor means extraction is not configured and
// every non-confirming turn answers ai_unavailable.
func NewEngine(extractor Extractor, opts ...EngineOption) *Engine {
	e := &Engine{
		extractor: extractor,
		confirm:   NewConfirmationMatcher(),
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Turn processes one user message against the given state and returns the reply with
// the next state. The input state is never modified.
func (e *Engine) Turn(ctx context.Context, message string, state model.SessionState) (model.Response, model.SessionState) {
	text := strings.TrimSpace(message)
	if text == "" {
		return MalformedRequest(), state
	}

	// Client-supplied context is untrusted: only canonical values survive
	state.PendingFields = NormalizeFields(state.PendingFields)
	if state.LastProposed != nil {
		p := NormalizeFields(*state.LastProposed)
		state.LastProposed = &p
	}

	next := state
	next.PendingFields = state.PendingFields.Clone()
	next.UpdatedAt = e.now()

	if state.AwaitingConfirmation && e.confirm.Matches(text) {
		committed := state.PendingFields.Clone()
		if state.LastProposed != nil {
			committed = state.LastProposed.Clone()
		}
		// An incomplete or invalid proposal is re-evaluated instead of committed
		if Validate(committed).Valid() {
			next.AwaitingConfirmation = false
			next.LastProposed = nil
			return model.ConfirmedFill{AssistantMessage: MsgConfirmed, ProposedFields: committed}, next
		}
	}

	// From here on any previous proposal is superseded
	next.AwaitingConfirmation = false
	next.LastProposed = nil

	if e.extractor == nil {
		return model.Unavailable{AssistantMessage: MsgUnavailable, Reason: model.ReasonNotConfigured}, next
	}

	result, err := e.extractor.Extract(ctx, model.ExtractionRequest{
		Message: text,
		Context: state.Context(),
		Today:   e.now().UTC().Format(isoDate),
	})
	if err != nil || result == nil {
		e.logger.Warn("extraction unavailable", zap.String("session_id", state.SessionID), zap.Error(err))
		return model.Unavailable{AssistantMessage: MsgUnavailable, Reason: model.ReasonExtractionFailed}, next
	}

	merged := Merge(state.PendingFields, NormalizeFields(result.Fields), result.RelativeDateInference)
	next.PendingFields = merged

	missing := fieldNames(EvaluateMissing(merged))
	ambiguities := nonBlank(result.Ambiguities)

	if len(missing) > 0 || len(ambiguities) > 0 {
		nextField := ""
		switch {
		case len(ambiguities) > 0:
			nextField = ambiguities[0]
		default:
			nextField = missing[0]
		}
		proposed := merged.Clone()
		return model.NeedInfo{
			AssistantMessage: FieldQuestion(nextField),
			MissingFields:    missing,
			Ambiguities:      ambiguities,
			ProposedFields:   &proposed,
		}, next
	}

	if outcome := ValidateRules(merged); !outcome.Valid() {
		e.logger.Debug("proposal rejected",
			zap.String("session_id", state.SessionID),
			zap.Int("rule", int(outcome.Rule)),
		)
		proposed := merged.Clone()
		return model.NeedInfo{
			AssistantMessage: outcome.Reason,
			MissingFields:    fieldNames(outcome.Fields),
			ProposedFields:   &proposed,
		}, next
	}

	snapshot := merged.Clone()
	next.AwaitingConfirmation = true
	next.LastProposed = &snapshot
	return model.ReadyToFill{AssistantMessage: BuildSummary(merged), ProposedFields: merged.Clone()}, next
}

func fieldNames(names []model.FieldName) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, string(n))
	}
	return out
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
