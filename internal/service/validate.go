package service

import (
	"time"

	"skybridge/internal/model"
	"skybridge/internal/utils"
)

const (
	MinPassengers = 1
	MaxPassengers = 9
)

// isoDate is the layout of every normalized date field
const isoDate = "2006-01-02"

// Rule names a validation rule, in the order rules are applied
type Rule int

const (
	RuleNone Rule = iota
	RuleCompleteness
	RulePassengerRange
	RuleDistinctLocations
	RuleReturnAfterDeparture
)

// ValidationOutcome is Valid when Rule is RuleNone
type ValidationOutcome struct {
	Rule   Rule
	Reason string
	Fields []model.FieldName
}

// Valid reports whether every rule passed
func (o ValidationOutcome) Valid() bool {
	return o.Rule == RuleNone
}

// EvaluateMissing lists the fields failing the completeness rule in question order.
// return is only required for round trips.
func EvaluateMissing(f model.BookingFields) []model.FieldName {
	var missing []model.FieldName
	for _, name := range model.FieldOrder {
		if name == model.FieldReturn && !f.IsRoundTrip() {
			continue
		}
		if !f.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Validate applies the booking rules in priority order; the first failing rule wins.
// It never panics on partial input: absent fields fail completeness.
func Validate(f model.BookingFields) ValidationOutcome {
	if missing := EvaluateMissing(f); len(missing) > 0 {
		return ValidationOutcome{
			Rule:   RuleCompleteness,
			Reason: "Please provide the missing booking details.",
			Fields: missing,
		}
	}
	return ValidateRules(f)
}

// ValidateRules applies the range, distinctness and date-ordering rules to a
// complete field set.
func ValidateRules(f model.BookingFields) ValidationOutcome {
	if f.Passengers != nil && (*f.Passengers < MinPassengers || *f.Passengers > MaxPassengers) {
		return ValidationOutcome{
			Rule:   RulePassengerRange,
			Reason: "Passengers must be between 1 and 9. How many passengers?",
			Fields: []model.FieldName{model.FieldPassengers},
		}
	}

	if f.From != nil && f.To != nil && utils.FoldEqual(*f.From, *f.To) {
		return ValidationOutcome{
			Rule:   RuleDistinctLocations,
			Reason: "Departure and destination cannot be the same. Please provide different cities.",
			Fields: []model.FieldName{model.FieldFrom, model.FieldTo},
		}
	}

	if f.IsRoundTrip() && f.Departure != nil && f.Return != nil && !returnAfterDeparture(*f.Departure, *f.Return) {
		return ValidationOutcome{
			Rule:   RuleReturnAfterDeparture,
			Reason: "Return date must be after departure date. Please provide a valid return date.",
			Fields: []model.FieldName{model.FieldReturn},
		}
	}

	return ValidationOutcome{Rule: RuleNone}
}

// returnAfterDeparture compares calendar dates. Unparseable dates fail the rule.
func returnAfterDeparture(departure, ret string) bool {
	dep, err := time.Parse(isoDate, departure)
	if err != nil {
		return false
	}
	r, err := time.Parse(isoDate, ret)
	if err != nil {
		return false
	}
	return r.After(dep)
}
