package model

import "strings"

// TripType is the trip shape of a flight search
type TripType string

const (
	TripOneWay    TripType = "one_way"
	TripRoundTrip TripType = "round_trip"
)

// TravelClass is the cabin class of a flight search
type TravelClass string

const (
	ClassEconomy        TravelClass = "Economy"
	ClassPremiumEconomy TravelClass = "Premium Economy"
	ClassBusiness       TravelClass = "Business"
)

// FieldName identifies one booking slot on the wire
type FieldName string

const (
	FieldFrom        FieldName = "from"
	FieldTo          FieldName = "to"
	FieldDeparture   FieldName = "departure"
	FieldTripType    FieldName = "trip_type"
	FieldPassengers  FieldName = "passengers"
	FieldTravelClass FieldName = "travel_class"
	FieldReturn      FieldName = "return"
)

// FieldOrder is the fixed priority in which missing fields are asked for
var FieldOrder = []FieldName{
	FieldFrom,
	FieldTo,
	FieldDeparture,
	FieldTripType,
	FieldPassengers,
	FieldTravelClass,
	FieldReturn,
}

// BookingFields is the slot set of a flight search. Every field is nil until resolved.
type BookingFields struct {
	From        *string      `json:"from"`
	To          *string      `json:"to"`
	TripType    *TripType    `json:"trip_type"`
	Departure   *string      `json:"departure"` // YYYY-MM-DD
	Return      *string      `json:"return"`    // YYYY-MM-DD
	Passengers  *int         `json:"passengers"`
	TravelClass *TravelClass `json:"travel_class"`
}

// Clone returns a copy that shares no pointers with f
func (f BookingFields) Clone() BookingFields {
	return BookingFields{
		From:        clonePtr(f.From),
		To:          clonePtr(f.To),
		TripType:    clonePtr(f.TripType),
		Departure:   clonePtr(f.Departure),
		Return:      clonePtr(f.Return),
		Passengers:  clonePtr(f.Passengers),
		TravelClass: clonePtr(f.TravelClass),
	}
}

// Has reports whether the named field carries a usable value.
// Blank strings count as absent.
func (f BookingFields) Has(name FieldName) bool {
	switch name {
	case FieldFrom:
		return present(f.From)
	case FieldTo:
		return present(f.To)
	case FieldDeparture:
		return present(f.Departure)
	case FieldReturn:
		return present(f.Return)
	case FieldTripType:
		return f.TripType != nil && *f.TripType != ""
	case FieldTravelClass:
		return f.TravelClass != nil && *f.TravelClass != ""
	case FieldPassengers:
		return f.Passengers != nil
	}
	return false
}

// IsOneWay reports whether the trip type is resolved to one way
func (f BookingFields) IsOneWay() bool {
	return f.TripType != nil && *f.TripType == TripOneWay
}

// IsRoundTrip reports whether the trip type is resolved to round trip
func (f BookingFields) IsRoundTrip() bool {
	return f.TripType != nil && *f.TripType == TripRoundTrip
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
