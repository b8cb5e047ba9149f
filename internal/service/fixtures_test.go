package service

import (
	"context"
	"sync/atomic"

	"skybridge/internal/model"
)

func roundTrip(from, to, departure, ret string, passengers int, class model.TravelClass) model.BookingFields {
	trip := model.TripRoundTrip
	return model.BookingFields{
		From:        model.Ptr(from),
		To:          model.Ptr(to),
		TripType:    &trip,
		Departure:   model.Ptr(departure),
		Return:      model.Ptr(ret),
		Passengers:  model.Ptr(passengers),
		TravelClass: &class,
	}
}

func oneWay(from, to, departure string, passengers int, class model.TravelClass) model.BookingFields {
	trip := model.TripOneWay
	return model.BookingFields{
		From:        model.Ptr(from),
		To:          model.Ptr(to),
		TripType:    &trip,
		Departure:   model.Ptr(departure),
		Passengers:  model.Ptr(passengers),
		TravelClass: &class,
	}
}

// stubExtractor returns canned results and counts calls
type stubExtractor struct {
	result *model.ExtractionResult
	err    error
	calls  atomic.Int32
	last   model.ExtractionRequest
}

func (s *stubExtractor) Extract(_ context.Context, req model.ExtractionRequest) (*model.ExtractionResult, error) {
	s.calls.Add(1)
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}
