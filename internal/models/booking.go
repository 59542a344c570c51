package models

import "time"

type Booking struct {
	ID          int64 `json:"id"`
	TripID      int64 `json:"trip_id"`
	PassengerID int64 `json:"passenger_id"`

	BookedSeats  int64   `json:"booked_seats"`
	PriceAgreed  float64 `json:"price_agreed"`
	MeetingPoint string  `json:"meeting_point"`
	Notes        string  `json:"notes"`

	Status      string     `json:"status"`
	BookedAt    time.Time  `json:"booked_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Version     int64      `json:"version"`
}
