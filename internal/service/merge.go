package service

import (
	"time"

	"skybridge/internal/model"
)

// Merge combines the pending fields with newly extracted ones.
//
// A present incoming value replaces the pending one; absent incoming values never
// erase anything. If return is still unset afterwards, a usable inference derives it
// from departure. A one-way trip always ends with return cleared. Neither input is
// modified.
func Merge(pending, incoming model.BookingFields, inference *model.RelativeDateInference) model.BookingFields {
	merged := pending.Clone()
	in := incoming.Clone()

	if in.Has(model.FieldFrom) {
		merged.From = in.From
	}
	if in.Has(model.FieldTo) {
		merged.To = in.To
	}
	if in.Has(model.FieldTripType) {
		merged.TripType = in.TripType
	}
	if in.Has(model.FieldDeparture) {
		merged.Departure = in.Departure
	}
	if in.Has(model.FieldReturn) {
		merged.Return = in.Return
	}
	if in.Has(model.FieldPassengers) {
		merged.Passengers = in.Passengers
	}
	if in.Has(model.FieldTravelClass) {
		merged.TravelClass = in.TravelClass
	}

	if !merged.Has(model.FieldReturn) && inference.Applies() && merged.Has(model.FieldDeparture) {
		if ret, ok := AddDays(*merged.Departure, *inference.OffsetDays); ok {
			merged.Return = &ret
		}
	}

	if merged.IsOneWay() {
		merged.Return = nil
	}

	return merged
}

// AddDays shifts an ISO date by a number of UTC calendar days
func AddDays(date string, days int) (string, bool) {
	anchor, err := time.ParseInLocation(isoDate, date, time.UTC)
	if err != nil {
		return "", false
	}
	return anchor.AddDate(0, 0, days).Format(isoDate), true
}
