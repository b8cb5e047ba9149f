package model

// AnchorDeparture is the only anchor a relative date may be expressed against
const AnchorDeparture = "departure"

// ExtractionRequest is what the core hands to an extractor for one turn
type ExtractionRequest struct {
	Message string      `json:"message"`
	Context TurnContext `json:"context"`
	Today   string      `json:"today"` // YYYY-MM-DD anchor for relative year/month inference
}

// ExtractionResult is the best-effort structured guess returned by an extractor
type ExtractionResult struct {
	Fields                BookingFields          `json:"fields"`
	MissingFields         []string               `json:"missing_fields"`
	Ambiguities           []string               `json:"ambiguities"`
	AssistantMessage      string                 `json:"assistant_message"`
	RelativeDateInference *RelativeDateInference `json:"relative_date_inference,omitempty"`
}

// RelativeDateInference derives the return date as an offset from another field
type RelativeDateInference struct {
	OffsetDays *int   `json:"offset_days"`
	Anchor     string `json:"anchor"`
}

// Applies reports whether the inference is usable for deriving the return date
func (r *RelativeDateInference) Applies() bool {
	return r != nil && r.Anchor == AnchorDeparture && r.OffsetDays != nil
}
