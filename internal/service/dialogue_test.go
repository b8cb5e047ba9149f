package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybridge/internal/model"
)

var fixedNow = time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)

func newTestEngine(ex Extractor) *Engine {
	return NewEngine(ex, WithClock(func() time.Time { return fixedNow }))
}

func TestEngine_ScenarioA_PartialTripAsksForMore(t *testing.T) {
	stub := &stubExtractor{result: &model.ExtractionResult{
		Fields: model.BookingFields{
			From:       model.Ptr("Stockholm"),
			To:         model.Ptr("London"),
			Passengers: model.Ptr(2),
		},
	}}
	engine := newTestEngine(stub)

	resp, next := engine.Turn(context.Background(), "Stockholm to London for 2 passengers", model.NewSessionState("a"))

	info, ok := resp.(model.NeedInfo)
	require.True(t, ok, "got %T", resp)
	assert.Subset(t, info.MissingFields, []string{"trip_type", "departure", "travel_class"})
	assert.Equal(t, []string{"departure", "trip_type", "travel_class"}, info.MissingFields)
	assert.Equal(t, "What is your departure date? Example: 2026-08-29.", info.AssistantMessage)
	require.NotNil(t, info.ProposedFields)
	assert.Equal(t, "Stockholm", *info.ProposedFields.From)

	assert.Equal(t, "Stockholm", *next.PendingFields.From)
	assert.False(t, next.AwaitingConfirmation)
	assert.EqualValues(t, 1, stub.calls.Load())
	assert.Equal(t, "2026-08-01", stub.last.Today)
}

func TestEngine_ScenarioB_RelativeReturnReadyToFill(t *testing.T) {
	pending := roundTrip("Stockholm", "London", "2026-08-29", "", 2, model.ClassEconomy)
	pending.Return = nil

	stub := &stubExtractor{result: &model.ExtractionResult{
		RelativeDateInference: &model.RelativeDateInference{OffsetDays: model.Ptr(2), Anchor: model.AnchorDeparture},
	}}
	engine := newTestEngine(stub)

	state := model.NewSessionState("b")
	state.PendingFields = pending
	resp, next := engine.Turn(context.Background(), "return two days later", state)

	ready, ok := resp.(model.ReadyToFill)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, "2026-08-31", *ready.ProposedFields.Return)
	assert.Equal(t,
		"I can fill: Stockholm to London, round-trip, departure 2026-08-29, return 2026-08-31, 2 passenger(s), Economy. Confirm with yes/ja?",
		ready.AssistantMessage)

	assert.True(t, next.AwaitingConfirmation)
	require.NotNil(t, next.LastProposed)
	if diff := cmp.Diff(ready.ProposedFields, *next.LastProposed); diff != "" {
		t.Errorf("last proposed mismatch (-resp +state):\n%s", diff)
	}
	// the input state is untouched
	assert.Nil(t, state.PendingFields.Return)
	assert.False(t, state.AwaitingConfirmation)
}

func TestEngine_ScenarioC_ConfirmCommitsLastProposed(t *testing.T) {
	stub := &stubExtractor{err: errors.New("must not be called")}
	engine := newTestEngine(stub)

	proposed := roundTrip("Stockholm", "London", "2026-08-29", "2026-08-31", 2, model.ClassBusiness)
	state := model.NewSessionState("c")
	state.PendingFields = model.BookingFields{From: model.Ptr("Somewhere else")}
	state.AwaitingConfirmation = true
	state.LastProposed = &proposed

	for _, msg := range []string{"ja", " YES ", "bekräfta"} {
		t.Run(msg, func(t *testing.T) {
			resp, next := engine.Turn(context.Background(), msg, state)

			fill, ok := resp.(model.ConfirmedFill)
			require.True(t, ok, "got %T", resp)
			assert.Equal(t, MsgConfirmed, fill.AssistantMessage)
			if diff := cmp.Diff(proposed, fill.ProposedFields); diff != "" {
				t.Errorf("committed fields mismatch (-want +got):\n%s", diff)
			}
			assert.False(t, next.AwaitingConfirmation)
			assert.Nil(t, next.LastProposed)
		})
	}
	assert.Zero(t, stub.calls.Load(), "confirmation must not call the extractor")
}

func TestEngine_ConfirmWithoutSnapshotUsesPending(t *testing.T) {
	engine := newTestEngine(nil)

	pending := oneWay("Stockholm", "Oslo", "2026-09-01", 1, model.ClassEconomy)
	state := model.NewSessionState("c2")
	state.PendingFields = pending
	state.AwaitingConfirmation = true

	resp, _ := engine.Turn(context.Background(), "ok", state)
	fill, ok := resp.(model.ConfirmedFill)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, pending, fill.ProposedFields)
}

func TestEngine_ConfirmWordOutsideConfirmationIsExtracted(t *testing.T) {
	stub := &stubExtractor{result: &model.ExtractionResult{}}
	engine := newTestEngine(stub)

	resp, _ := engine.Turn(context.Background(), "yes", model.NewSessionState("c3"))
	assert.Equal(t, model.TypeNeedInfo, resp.Type())
	assert.EqualValues(t, 1, stub.calls.Load())
}

func TestEngine_NonConfirmingReplyClearsProposal(t *testing.T) {
	trip := model.TripOneWay
	stub := &stubExtractor{result: &model.ExtractionResult{
		Fields: model.BookingFields{Departure: model.Ptr("2026-09-05"), TripType: &trip},
	}}
	engine := newTestEngine(stub)

	proposed := oneWay("Stockholm", "Oslo", "2026-09-01", 1, model.ClassEconomy)
	state := model.NewSessionState("c4")
	state.PendingFields = proposed
	state.AwaitingConfirmation = true
	state.LastProposed = &proposed

	resp, next := engine.Turn(context.Background(), "actually the 5th of September", state)

	ready, ok := resp.(model.ReadyToFill)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, "2026-09-05", *ready.ProposedFields.Departure)
	assert.Equal(t,
		"I can fill: Stockholm to Oslo, one-way, departure 2026-09-05, no return, 1 passenger(s), Economy. Confirm with yes/ja?",
		ready.AssistantMessage)
	require.NotNil(t, next.LastProposed)
	assert.Equal(t, "2026-09-05", *next.LastProposed.Departure)
}

func TestEngine_ScenarioD_SameCityRejected(t *testing.T) {
	stub := &stubExtractor{result: &model.ExtractionResult{
		Fields: oneWay("Paris", "paris", "2026-08-29", 1, model.ClassEconomy),
	}}
	engine := newTestEngine(stub)

	resp, next := engine.Turn(context.Background(), "Paris to paris", model.NewSessionState("d"))

	info, ok := resp.(model.NeedInfo)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, "Departure and destination cannot be the same. Please provide different cities.", info.AssistantMessage)
	assert.Equal(t, []string{"from", "to"}, info.MissingFields)
	assert.Empty(t, info.Ambiguities)
	assert.False(t, next.AwaitingConfirmation)
}

func TestEngine_ValidationMessages(t *testing.T) {
	tests := []struct {
		name        string
		fields      model.BookingFields
		wantMessage string
		wantFields  []string
	}{
		{
			name:        "passengers out of range",
			fields:      oneWay("Stockholm", "London", "2026-08-29", 12, model.ClassEconomy),
			wantMessage: "Passengers must be between 1 and 9. How many passengers?",
			wantFields:  []string{"passengers"},
		},
		{
			name:        "return before departure",
			fields:      roundTrip("Stockholm", "London", "2026-08-29", "2026-08-28", 2, model.ClassEconomy),
			wantMessage: "Return date must be after departure date. Please provide a valid return date.",
			wantFields:  []string{"return"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(&stubExtractor{result: &model.ExtractionResult{Fields: tt.fields}})
			resp, _ := engine.Turn(context.Background(), "book it", model.NewSessionState("v"))

			info, ok := resp.(model.NeedInfo)
			require.True(t, ok, "got %T", resp)
			assert.Equal(t, tt.wantMessage, info.AssistantMessage)
			assert.Equal(t, tt.wantFields, info.MissingFields)
		})
	}
}

func TestEngine_AmbiguityAskedFirst(t *testing.T) {
	stub := &stubExtractor{result: &model.ExtractionResult{
		Fields:      model.BookingFields{From: model.Ptr("Stockholm")},
		Ambiguities: []string{"travel_class", "departure"},
	}}
	engine := newTestEngine(stub)

	resp, _ := engine.Turn(context.Background(), "Stockholm, fancy seats", model.NewSessionState("amb"))
	info := resp.(model.NeedInfo)
	assert.Equal(t, "Which class do you want: Economy, Premium Economy, or Business?", info.AssistantMessage)
	assert.Equal(t, []string{"travel_class", "departure"}, info.Ambiguities)

	stub.result.Ambiguities = []string{"which Paris?"}
	resp, _ = engine.Turn(context.Background(), "to Paris", model.NewSessionState("amb2"))
	assert.Equal(t, MsgGenericQuestion, resp.Message())
}

func TestEngine_ScenarioE_ExtractorDown(t *testing.T) {
	stub := &stubExtractor{err: errors.New("connection refused")}
	engine := newTestEngine(WithRetry(stub, "scenario-e", time.Second, nil))

	pending := model.BookingFields{From: model.Ptr("Stockholm"), To: model.Ptr("London")}
	state := model.NewSessionState("e")
	state.PendingFields = pending

	resp, next := engine.Turn(context.Background(), "on the 29th", state)

	unavailable, ok := resp.(model.Unavailable)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, model.ReasonExtractionFailed, unavailable.Reason)
	assert.Equal(t, MsgUnavailable, unavailable.AssistantMessage)
	assert.EqualValues(t, 2, stub.calls.Load())
	if diff := cmp.Diff(pending, next.PendingFields); diff != "" {
		t.Errorf("pending fields changed (-want +got):\n%s", diff)
	}
}

func TestEngine_NotConfigured(t *testing.T) {
	engine := newTestEngine(nil)

	proposed := oneWay("Stockholm", "Oslo", "2026-09-01", 1, model.ClassEconomy)
	state := model.NewSessionState("nc")
	state.AwaitingConfirmation = true
	state.LastProposed = &proposed

	resp, next := engine.Turn(context.Background(), "change to business", state)

	unavailable, ok := resp.(model.Unavailable)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, model.ReasonNotConfigured, unavailable.Reason)
	assert.False(t, next.AwaitingConfirmation)
	assert.Nil(t, next.LastProposed)
}

func TestEngine_EmptyMessage(t *testing.T) {
	stub := &stubExtractor{result: &model.ExtractionResult{}}
	engine := newTestEngine(stub)

	state := model.NewSessionState("empty")
	state.AwaitingConfirmation = true

	for _, msg := range []string{"", "   ", "\n\t"} {
		resp, next := engine.Turn(context.Background(), msg, state)
		info, ok := resp.(model.NeedInfo)
		require.True(t, ok)
		assert.Equal(t, MsgMalformedRequest, info.AssistantMessage)
		assert.Nil(t, info.ProposedFields)
		assert.Equal(t, state, next)
	}
	assert.Zero(t, stub.calls.Load())
}

func TestEngine_OneWayDropsExtractedReturn(t *testing.T) {
	trip := model.TripOneWay
	class := model.ClassPremiumEconomy
	stub := &stubExtractor{result: &model.ExtractionResult{
		Fields: model.BookingFields{
			From:        model.Ptr("Göteborg"),
			To:          model.Ptr("Berlin"),
			TripType:    &trip,
			Departure:   model.Ptr("29 augusti 2026"),
			Return:      model.Ptr("2026-09-02"),
			Passengers:  model.Ptr(1),
			TravelClass: &class,
		},
		RelativeDateInference: &model.RelativeDateInference{OffsetDays: model.Ptr(3), Anchor: model.AnchorDeparture},
	}}
	engine := newTestEngine(stub)

	resp, _ := engine.Turn(context.Background(), "enkelresa", model.NewSessionState("ow"))

	// "29 augusti 2026" is not ISO and no layout covers Swedish month names
	info, ok := resp.(model.NeedInfo)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, []string{"departure"}, info.MissingFields)
	assert.Nil(t, info.ProposedFields.Return)
}

func TestFieldQuestion(t *testing.T) {
	assert.Equal(t, "What is your departure city?", FieldQuestion("from"))
	assert.Equal(t, "Is this one-way or round-trip?", FieldQuestion("Trip Type"))
	assert.Equal(t, "How many passengers (1 to 9)?", FieldQuestion(" passengers "))
	assert.Equal(t, MsgGenericQuestion, FieldQuestion("seat"))
}

func TestEngine_ContextFieldsAreNormalized(t *testing.T) {
	weekly := model.TripType("weekly")
	cattle := model.TravelClass("Cattle")
	pending := model.BookingFields{
		From:        model.Ptr(" Stockholm "),
		To:          model.Ptr("London"),
		TripType:    &weekly,
		Departure:   model.Ptr("next friday"),
		Passengers:  model.Ptr(2),
		TravelClass: &cattle,
	}

	t.Run("non-canonical values are asked for again", func(t *testing.T) {
		stub := &stubExtractor{result: &model.ExtractionResult{}}
		engine := newTestEngine(stub)
		state := model.NewSessionState("norm")
		state.PendingFields = pending

		resp, next := engine.Turn(context.Background(), "that's all", state)

		info, ok := resp.(model.NeedInfo)
		require.True(t, ok, "got %T", resp)
		assert.Equal(t, []string{"departure", "trip_type", "travel_class"}, info.MissingFields)
		assert.Equal(t, "Stockholm", *info.ProposedFields.From)
		assert.Nil(t, next.PendingFields.TripType)
		assert.Nil(t, next.PendingFields.Departure)
		assert.Nil(t, next.PendingFields.TravelClass)
		assert.Nil(t, stub.last.Context.PendingFields.TripType)
	})

	t.Run("confirmation of an invalid proposal is not committed", func(t *testing.T) {
		stub := &stubExtractor{result: &model.ExtractionResult{}}
		engine := newTestEngine(stub)
		state := model.NewSessionState("norm-confirm")
		state.PendingFields = pending
		state.AwaitingConfirmation = true
		state.LastProposed = &pending

		resp, next := engine.Turn(context.Background(), "ja", state)

		assert.Equal(t, model.TypeNeedInfo, resp.Type())
		assert.False(t, next.AwaitingConfirmation)
		assert.Nil(t, next.LastProposed)
		assert.Equal(t, "weekly", string(*pending.TripType), "input state is not modified")
	})

	t.Run("aliases in context are canonicalised", func(t *testing.T) {
		engine := newTestEngine(nil)
		trip := model.TripType("one way")
		class := model.TravelClass("business")
		state := model.NewSessionState("norm-alias")
		state.PendingFields = model.BookingFields{
			From:        model.Ptr("Stockholm"),
			To:          model.Ptr("Oslo"),
			TripType:    &trip,
			Departure:   model.Ptr("2026/09/01"),
			Passengers:  model.Ptr(1),
			TravelClass: &class,
		}
		state.AwaitingConfirmation = true

		resp, _ := engine.Turn(context.Background(), "yes", state)

		fill, ok := resp.(model.ConfirmedFill)
		require.True(t, ok, "got %T", resp)
		if diff := cmp.Diff(oneWay("Stockholm", "Oslo", "2026-09-01", 1, model.ClassBusiness), fill.ProposedFields); diff != "" {
			t.Errorf("committed fields mismatch (-want +got):\n%s", diff)
		}
	})
}
