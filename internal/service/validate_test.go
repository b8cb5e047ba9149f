package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"skybridge/internal/model"
)

func TestEvaluateMissing(t *testing.T) {
	tests := []struct {
		name   string
		fields model.BookingFields
		want   []model.FieldName
	}{
		{
			name:   "empty asks in fixed order without return",
			fields: model.BookingFields{},
			want: []model.FieldName{
				model.FieldFrom, model.FieldTo, model.FieldDeparture,
				model.FieldTripType, model.FieldPassengers, model.FieldTravelClass,
			},
		},
		{
			name: "round trip requires return",
			fields: func() model.BookingFields {
				f := roundTrip("Stockholm", "London", "2026-08-29", "", 2, model.ClassEconomy)
				f.Return = nil
				return f
			}(),
			want: []model.FieldName{model.FieldReturn},
		},
		{
			name:   "one way complete",
			fields: oneWay("Stockholm", "London", "2026-08-29", 1, model.ClassBusiness),
			want:   nil,
		},
		{
			name: "blank strings count as missing",
			fields: func() model.BookingFields {
				f := oneWay("  ", "London", "2026-08-29", 1, model.ClassBusiness)
				return f
			}(),
			want: []model.FieldName{model.FieldFrom},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, EvaluateMissing(tt.fields)); diff != "" {
				t.Errorf("EvaluateMissing() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		fields     model.BookingFields
		wantRule   Rule
		wantFields []model.FieldName
	}{
		{
			name:     "valid round trip",
			fields:   roundTrip("Stockholm", "London", "2026-08-29", "2026-08-31", 2, model.ClassEconomy),
			wantRule: RuleNone,
		},
		{
			name:       "incomplete",
			fields:     model.BookingFields{From: model.Ptr("Stockholm")},
			wantRule:   RuleCompleteness,
			wantFields: []model.FieldName{model.FieldTo, model.FieldDeparture, model.FieldTripType, model.FieldPassengers, model.FieldTravelClass},
		},
		{
			name:       "too many passengers",
			fields:     oneWay("Stockholm", "London", "2026-08-29", 10, model.ClassEconomy),
			wantRule:   RulePassengerRange,
			wantFields: []model.FieldName{model.FieldPassengers},
		},
		{
			name:       "negative passengers",
			fields:     oneWay("Stockholm", "London", "2026-08-29", -1, model.ClassEconomy),
			wantRule:   RulePassengerRange,
			wantFields: []model.FieldName{model.FieldPassengers},
		},
		{
			name:       "same city ignoring case",
			fields:     oneWay("Paris", "paris", "2026-08-29", 1, model.ClassEconomy),
			wantRule:   RuleDistinctLocations,
			wantFields: []model.FieldName{model.FieldFrom, model.FieldTo},
		},
		{
			name:       "passenger rule wins over distinctness",
			fields:     oneWay("Paris", "PARIS", "2026-08-29", 0, model.ClassEconomy),
			wantRule:   RulePassengerRange,
			wantFields: []model.FieldName{model.FieldPassengers},
		},
		{
			name:       "return same day",
			fields:     roundTrip("Stockholm", "London", "2026-08-29", "2026-08-29", 2, model.ClassEconomy),
			wantRule:   RuleReturnAfterDeparture,
			wantFields: []model.FieldName{model.FieldReturn},
		},
		{
			name:       "return before departure",
			fields:     roundTrip("Stockholm", "London", "2026-08-29", "2026-08-20", 2, model.ClassEconomy),
			wantRule:   RuleReturnAfterDeparture,
			wantFields: []model.FieldName{model.FieldReturn},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.fields)
			assert.Equal(t, tt.wantRule, got.Rule)
			assert.Equal(t, tt.wantRule == RuleNone, got.Valid())
			if diff := cmp.Diff(tt.wantFields, got.Fields); diff != "" {
				t.Errorf("Validate() fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
