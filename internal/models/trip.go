package models

import "time"

type Trip struct {
	ID       int64 `json:"id"`
	DriverID int64 `json:"driver_id"`

	DepartureDate time.Time `json:"departure_date"`
	DepartureTime string    `json:"departure_time"` // "HH:MM"

	StartAddress string `json:"start_address"`
	StartCity    string `json:"start_city"`
	FinishAddress string `json:"finish_address"`
	FinishCity    string `json:"finish_city"`

	TotalSeats     int64   `json:"total_seats"`
	AvailableSeats int64   `json:"available_seats"`
	PricePerSeat   float64 `json:"price_per_seat"`
	Comment        string  `json:"comment"`

	AllowSmoking bool `json:"allow_smoking"`
	AllowAnimals bool `json:"allow_animals"`
	AllowLuggage bool `json:"allow_luggage"`

	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bookable reports whether new bookings are accepted for the trip.
func (t *Trip) Bookable() bool {
	return t.Status == TripStatusActive
}

// TripSearch describes a passenger search query.
type TripSearch struct {
	FromCity   string    `json:"from_city"`
	ToCity     string    `json:"to_city"`
	Date       time.Time `json:"date"`
	Passengers int64     `json:"passengers"`
	MaxPrice   float64   `json:"max_price"`
}
