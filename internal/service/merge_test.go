package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybridge/internal/model"
)

func TestMerge_IncomingOverridesOnlyWhenPresent(t *testing.T) {
	pending := roundTrip("Stockholm", "London", "2026-08-29", "2026-09-02", 2, model.ClassEconomy)
	incoming := model.BookingFields{
		To:         model.Ptr("Paris"),
		From:       model.Ptr("   "),
		Passengers: model.Ptr(3),
	}

	got := Merge(pending, incoming, nil)

	want := roundTrip("Stockholm", "Paris", "2026-08-29", "2026-09-02", 3, model.ClassEconomy)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	pending := model.BookingFields{From: model.Ptr("Stockholm")}
	incoming := model.BookingFields{To: model.Ptr("London")}

	got := Merge(pending, incoming, nil)
	*got.From = "Oslo"
	*got.To = "Berlin"

	assert.Equal(t, "Stockholm", *pending.From)
	assert.Nil(t, pending.To)
	assert.Equal(t, "London", *incoming.To)
}

func TestMerge_Monotonic(t *testing.T) {
	pending := roundTrip("Stockholm", "London", "2026-08-29", "2026-09-02", 2, model.ClassBusiness)
	got := Merge(pending, model.BookingFields{}, nil)

	for _, name := range model.FieldOrder {
		assert.True(t, got.Has(name), "field %s regressed", name)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	pending := model.BookingFields{From: model.Ptr("Göteborg")}
	incoming := roundTrip("Stockholm", "London", "2026-08-29", "", 2, model.ClassBusiness)
	incoming.Return = nil
	inference := &model.RelativeDateInference{OffsetDays: model.Ptr(3), Anchor: model.AnchorDeparture}

	once := Merge(pending, incoming, inference)
	twice := Merge(once, incoming, inference)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Merge() not idempotent (-once +twice):\n%s", diff)
	}
}

func TestMerge_RelativeReturn(t *testing.T) {
	pending := roundTrip("Stockholm", "London", "2026-08-29", "", 2, model.ClassEconomy)
	pending.Return = nil

	tests := []struct {
		name      string
		pending   model.BookingFields
		incoming  model.BookingFields
		inference *model.RelativeDateInference
		want      *string
	}{
		{
			name:      "derived from departure",
			pending:   pending,
			inference: &model.RelativeDateInference{OffsetDays: model.Ptr(2), Anchor: model.AnchorDeparture},
			want:      model.Ptr("2026-08-31"),
		},
		{
			name:      "crosses month boundary",
			pending:   pending,
			inference: &model.RelativeDateInference{OffsetDays: model.Ptr(7), Anchor: model.AnchorDeparture},
			want:      model.Ptr("2026-09-05"),
		},
		{
			name:      "explicit return wins",
			pending:   pending,
			incoming:  model.BookingFields{Return: model.Ptr("2026-09-10")},
			inference: &model.RelativeDateInference{OffsetDays: model.Ptr(2), Anchor: model.AnchorDeparture},
			want:      model.Ptr("2026-09-10"),
		},
		{
			name:      "unknown anchor ignored",
			pending:   pending,
			inference: &model.RelativeDateInference{OffsetDays: model.Ptr(2), Anchor: "today"},
			want:      nil,
		},
		{
			name:      "missing offset ignored",
			pending:   pending,
			inference: &model.RelativeDateInference{Anchor: model.AnchorDeparture},
			want:      nil,
		},
		{
			name:      "no departure to anchor on",
			pending:   model.BookingFields{From: model.Ptr("Stockholm")},
			inference: &model.RelativeDateInference{OffsetDays: model.Ptr(2), Anchor: model.AnchorDeparture},
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.pending, tt.incoming, tt.inference)
			if diff := cmp.Diff(tt.want, got.Return); diff != "" {
				t.Errorf("return mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMerge_OneWayClearsReturn(t *testing.T) {
	pending := roundTrip("Stockholm", "London", "2026-08-29", "2026-09-02", 2, model.ClassEconomy)
	trip := model.TripOneWay
	incoming := model.BookingFields{TripType: &trip}

	got := Merge(pending, incoming, nil)
	assert.Nil(t, got.Return)

	// inference cannot reintroduce a return on a one-way trip
	got = Merge(oneWay("Stockholm", "London", "2026-08-29", 1, model.ClassEconomy), model.BookingFields{},
		&model.RelativeDateInference{OffsetDays: model.Ptr(2), Anchor: model.AnchorDeparture})
	assert.Nil(t, got.Return)

	got = Merge(model.BookingFields{}, model.BookingFields{TripType: &trip, Return: model.Ptr("2026-09-02")}, nil)
	assert.Nil(t, got.Return)
}

func TestAddDays(t *testing.T) {
	got, ok := AddDays("2026-12-30", 3)
	require.True(t, ok)
	assert.Equal(t, "2027-01-02", got)

	got, ok = AddDays("2028-02-28", 1)
	require.True(t, ok)
	assert.Equal(t, "2028-02-29", got)

	_, ok = AddDays("29/08/2026", 1)
	assert.False(t, ok)
}
