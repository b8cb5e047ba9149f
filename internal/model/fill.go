package model

import "time"

// ConfirmedFillRecord is an audit row for a committed field set
type ConfirmedFillRecord struct {
	ID          int64     `json:"id" db:"id"`
	SessionID   string    `json:"session_id" db:"session_id"`
	From        string    `json:"from" db:"from_location"`
	To          string    `json:"to" db:"to_location"`
	TripType    string    `json:"trip_type" db:"trip_type"`
	Departure   string    `json:"departure" db:"departure_date"`
	Return      *string   `json:"return" db:"return_date"`
	Passengers  int       `json:"passengers" db:"passengers"`
	TravelClass string    `json:"travel_class" db:"travel_class"`
	ConfirmedAt time.Time `json:"confirmed_at" db:"confirmed_at"`
}

// NewConfirmedFillRecord flattens a committed field set into an audit row
func NewConfirmedFillRecord(sessionID string, f BookingFields, at time.Time) ConfirmedFillRecord {
	rec := ConfirmedFillRecord{
		SessionID:   sessionID,
		Return:      clonePtr(f.Return),
		ConfirmedAt: at.UTC(),
	}
	if f.From != nil {
		rec.From = *f.From
	}
	if f.To != nil {
		rec.To = *f.To
	}
	if f.TripType != nil {
		rec.TripType = string(*f.TripType)
	}
	if f.Departure != nil {
		rec.Departure = *f.Departure
	}
	if f.Passengers != nil {
		rec.Passengers = *f.Passengers
	}
	if f.TravelClass != nil {
		rec.TravelClass = string(*f.TravelClass)
	}
	return rec
}
