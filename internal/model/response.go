package model

// ResponseType tags a turn response on the wire
type ResponseType string

const (
	TypeNeedInfo      ResponseType = "need_info"
	TypeReadyToFill   ResponseType = "ready_to_fill"
	TypeConfirmedFill ResponseType = "confirmed_fill"
	TypeUnavailable   ResponseType = "ai_unavailable"
)

// UnavailableReason distinguishes a missing extractor from a failing one
type UnavailableReason string

const (
	ReasonNotConfigured    UnavailableReason = "not_configured"
	ReasonExtractionFailed UnavailableReason = "extraction_failed"
)

// Response is the outcome of one dialogue turn. The set of implementations is closed.
type Response interface {
	Type() ResponseType
	Message() string
	isResponse()
}

// NeedInfo asks the user for a missing, ambiguous or invalid field
type NeedInfo struct {
	AssistantMessage string
	MissingFields    []string
	Ambiguities      []string
	// ProposedFields is nil when the request itself was malformed
	ProposedFields *BookingFields
}

// ReadyToFill offers a complete, valid field set for confirmation
type ReadyToFill struct {
	AssistantMessage string
	ProposedFields   BookingFields
}

// ConfirmedFill commits the last proposal
type ConfirmedFill struct {
	AssistantMessage string
	ProposedFields   BookingFields
}

// Unavailable reports that no extraction could be performed this turn
type Unavailable struct {
	AssistantMessage string
	Reason           UnavailableReason
}

func (NeedInfo) Type() ResponseType      { return TypeNeedInfo }
func (ReadyToFill) Type() ResponseType   { return TypeReadyToFill }
func (ConfirmedFill) Type() ResponseType { return TypeConfirmedFill }
func (Unavailable) Type() ResponseType   { return TypeUnavailable }

func (r NeedInfo) Message() string      { return r.AssistantMessage }
func (r ReadyToFill) Message() string   { return r.AssistantMessage }
func (r ConfirmedFill) Message() string { return r.AssistantMessage }
func (r Unavailable) Message() string   { return r.AssistantMessage }

func (NeedInfo) isResponse()      {}
func (ReadyToFill) isResponse()   {}
func (ConfirmedFill) isResponse() {}
func (Unavailable) isResponse()   {}

// WireResponse is the JSON shape of a turn response
type WireResponse struct {
	Type             ResponseType      `json:"type"`
	AssistantMessage string            `json:"assistant_message"`
	MissingFields    *[]string         `json:"missing_fields,omitempty"`
	Ambiguities      *[]string         `json:"ambiguities,omitempty"`
	ProposedFields   *BookingFields    `json:"proposed_fields,omitempty"`
	Reason           UnavailableReason `json:"reason,omitempty"`
}

// Encode maps a response onto its wire shape
func Encode(r Response) WireResponse {
	switch v := r.(type) {
	case NeedInfo:
		w := WireResponse{Type: TypeNeedInfo, AssistantMessage: v.AssistantMessage}
		if v.ProposedFields != nil {
			w.MissingFields = nonNil(v.MissingFields)
			w.Ambiguities = nonNil(v.Ambiguities)
			w.ProposedFields = v.ProposedFields
		}
		return w
	case ReadyToFill:
		fields := v.ProposedFields
		return WireResponse{
			Type:             TypeReadyToFill,
			AssistantMessage: v.AssistantMessage,
			MissingFields:    nonNil(nil),
			Ambiguities:      nonNil(nil),
			ProposedFields:   &fields,
		}
	case ConfirmedFill:
		fields := v.ProposedFields
		return WireResponse{
			Type:             TypeConfirmedFill,
			AssistantMessage: v.AssistantMessage,
			ProposedFields:   &fields,
		}
	case Unavailable:
		return WireResponse{
			Type:             TypeUnavailable,
			AssistantMessage: v.AssistantMessage,
			Reason:           v.Reason,
		}
	}
	panic("model: unknown response type")
}


func nonNil(s []string) *[]string {
	if s == nil {
		s = []string{}
	}
	return &s
}
