package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"skybridge/internal/model"
	"skybridge/internal/utils"
)

const extractionSchemaName = "flight_request"

// buildExtractionPrompt is the system instruction shared by every adapter
func buildExtractionPrompt(today string) string {
	return strings.Join([]string{
		fmt.Sprintf("Today is %s.", today),
		"Extract flight booking fields from user text in English or Swedish.",
		"Understand natural phrasing such as '29th of August 2026' and '29 augusti 2026'.",
		"Understand relative return phrases such as 'return two days later' or 'tillbaka tva dagar senare'.",
		"Use context.pending_fields as memory.",
		"Normalize explicit dates to YYYY-MM-DD.",
		"If return date is relative to departure, set relative_date_inference.return_offset_days and anchor='departure'.",
		"If something is unclear, list it in ambiguities.",
		"Keep unknown fields null.",
	}, " ")
}

// outputShapeHint spells out the result shape for providers without strict schemas
const outputShapeHint = `Respond ONLY with a JSON object of this shape:
{"fields":{"from":string|null,"to":string|null,"trip_type":"one_way"|"round_trip"|null,"departure":"YYYY-MM-DD"|null,"return":"YYYY-MM-DD"|null,"passengers":number|null,"travel_class":"Economy"|"Premium Economy"|"Business"|null},"missing_fields":[string],"ambiguities":[string],"assistant_message":string,"relative_date_inference":{"return_offset_days":integer|null,"anchor":"departure"|null}}`

// buildUserContent is the user turn: the message plus the dialogue context as JSON
func buildUserContent(req model.ExtractionRequest) (string, error) {
	body, err := json.Marshal(struct {
		Message string            `json:"message"`
		Context model.TurnContext `json:"context"`
	}{
		Message: req.Message,
		Context: model.TurnContext{
			PendingFields:        req.Context.PendingFields,
			AwaitingConfirmation: req.Context.AwaitingConfirmation,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal extraction input: %w", err)
	}
	return string(body), nil
}

func nullable(typ string) []string {
	return []string{typ, "null"}
}

// extractionSchema is the strict JSON schema the extractor output must follow
func extractionSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"fields": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"from":         map[string]any{"type": nullable("string")},
					"to":           map[string]any{"type": nullable("string")},
					"trip_type":    map[string]any{"type": nullable("string"), "enum": []any{"one_way", "round_trip", nil}},
					"departure":    map[string]any{"type": nullable("string")},
					"return":       map[string]any{"type": nullable("string")},
					"passengers":   map[string]any{"type": nullable("number")},
					"travel_class": map[string]any{"type": nullable("string"), "enum": []any{"Economy", "Premium Economy", "Business", nil}},
				},
				"required": []string{"from", "to", "trip_type", "departure", "return", "passengers", "travel_class"},
			},
			"missing_fields":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"ambiguities":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"assistant_message": map[string]any{"type": "string"},
			"relative_date_inference": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"return_offset_days": map[string]any{"type": nullable("integer")},
					"anchor":             map[string]any{"type": nullable("string"), "enum": []any{model.AnchorDeparture, nil}},
				},
				"required": []string{"return_offset_days", "anchor"},
			},
		},
		"required": []string{"fields", "missing_fields", "ambiguities", "assistant_message", "relative_date_inference"},
	}
}

// extractionPayload is the raw extractor output. Numbers are decoded as float64
// because models routinely emit 2.0 for an integer.
type extractionPayload struct {
	Fields struct {
		From        *string  `json:"from"`
		To          *string  `json:"to"`
		TripType    *string  `json:"trip_type"`
		Departure   *string  `json:"departure"`
		Return      *string  `json:"return"`
		Passengers  *float64 `json:"passengers"`
		TravelClass *string  `json:"travel_class"`
	} `json:"fields"`
	MissingFields         []string `json:"missing_fields"`
	Ambiguities           []string `json:"ambiguities"`
	AssistantMessage      string   `json:"assistant_message"`
	RelativeDateInference *struct {
		ReturnOffsetDays *float64 `json:"return_offset_days"`
		Anchor           *string  `json:"anchor"`
	} `json:"relative_date_inference"`
}

// decodeExtraction parses model output into an ExtractionResult. Values are passed
// through as-is; canonicalisation happens in NormalizeFields.
func decodeExtraction(content string) (*model.ExtractionResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyResponse
	}

	var p extractionPayload
	if err := utils.ParseAIJSON(content, &p); err != nil {
		return nil, fmt.Errorf("failed to parse extractor output: %w", err)
	}

	result := &model.ExtractionResult{
		MissingFields:    p.MissingFields,
		Ambiguities:      p.Ambiguities,
		AssistantMessage: p.AssistantMessage,
	}
	result.Fields.From = p.Fields.From
	result.Fields.To = p.Fields.To
	result.Fields.Departure = p.Fields.Departure
	result.Fields.Return = p.Fields.Return
	if p.Fields.TripType != nil {
		tt := model.TripType(*p.Fields.TripType)
		result.Fields.TripType = &tt
	}
	if p.Fields.TravelClass != nil {
		tc := model.TravelClass(*p.Fields.TravelClass)
		result.Fields.TravelClass = &tc
	}
	result.Fields.Passengers = wholeNumber(p.Fields.Passengers)

	if rdi := p.RelativeDateInference; rdi != nil {
		inf := &model.RelativeDateInference{OffsetDays: wholeNumber(rdi.ReturnOffsetDays)}
		if rdi.Anchor != nil {
			inf.Anchor = *rdi.Anchor
		}
		result.RelativeDateInference = inf
	}

	return result, nil
}

// wholeNumber drops non-integral or out-of-range numbers
func wholeNumber(v *float64) *int {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v != math.Trunc(*v) {
		return nil
	}
	if *v > math.MaxInt32 || *v < math.MinInt32 {
		return nil
	}
	n := int(*v)
	return &n
}
