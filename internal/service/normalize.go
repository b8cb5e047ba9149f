package service

import (
	"strings"
	"time"

	"skybridge/internal/model"
	"skybridge/internal/utils"
)

var travelClassAliases = []utils.AliasGroup{
	{Canonical: string(model.ClassBusiness), Aliases: []string{"business", "affär", "affar"}},
	{Canonical: string(model.ClassPremiumEconomy), Aliases: []string{"premium"}},
	{Canonical: string(model.ClassEconomy), Aliases: []string{"economy", "ekonomi", "coach", "standard"}},
}

var tripTypeAliases = []utils.AliasGroup{
	{Canonical: string(model.TripOneWay), Aliases: []string{"one way", "one-way", "oneway", "single", "enkel", "enkelresa", "enkelbiljett"}},
	{Canonical: string(model.TripRoundTrip), Aliases: []string{"round trip", "round-trip", "roundtrip", "return", "tur och retur", "tur-retur"}},
}

// dateLayouts are tried, in order, for dates the extractor failed to emit as ISO
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006.01.02",
	"02.01.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday, January 2, 2006",
}

// NormalizeFields maps raw extractor output onto canonical field values.
// Values that cannot be understood are dropped, never guessed.
func NormalizeFields(raw model.BookingFields) model.BookingFields {
	var out model.BookingFields

	out.From = trimmed(raw.From)
	out.To = trimmed(raw.To)
	if raw.Departure != nil {
		if d, ok := ToISODate(*raw.Departure); ok {
			out.Departure = &d
		}
	}
	if raw.Return != nil {
		if d, ok := ToISODate(*raw.Return); ok {
			out.Return = &d
		}
	}
	if raw.TripType != nil {
		if tt, ok := NormalizeTripType(string(*raw.TripType)); ok {
			out.TripType = &tt
		}
	}
	if raw.TravelClass != nil {
		if tc, ok := NormalizeTravelClass(string(*raw.TravelClass)); ok {
			out.TravelClass = &tc
		}
	}
	// Zero means "not understood"; negatives are kept so the range rule can report them
	if raw.Passengers != nil && *raw.Passengers != 0 {
		p := *raw.Passengers
		out.Passengers = &p
	}

	return out
}

// NormalizeTravelClass maps a free-text class onto the cabin enum
func NormalizeTravelClass(v string) (model.TravelClass, bool) {
	canonical, ok := utils.FuzzyMatchAlias(v, travelClassAliases)
	return model.TravelClass(canonical), ok
}

// NormalizeTripType maps a free-text trip shape onto the trip type enum
func NormalizeTripType(v string) (model.TripType, bool) {
	canonical, ok := utils.FuzzyMatchAlias(strings.ReplaceAll(v, "_", " "), tripTypeAliases)
	return model.TripType(canonical), ok
}

// ToISODate normalizes an explicit date to YYYY-MM-DD
func ToISODate(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if t, err := time.Parse(isoDate, v); err == nil {
		return t.Format(isoDate), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(isoDate), true
		}
	}
	return "", false
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
