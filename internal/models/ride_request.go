package models

import "time"

// RideRequest is a passenger-published seat request drivers can browse.
type RideRequest struct {
	ID          int64 `json:"id"`
	PassengerID int64 `json:"passenger_id"`

	DesiredDate     time.Time `json:"desired_date"`
	DesiredTime     string    `json:"desired_time"` // "HH:MM"
	TimeFlexibility int64     `json:"time_flexibility"` // ± минуты

	StartAddress  string `json:"start_address"`
	StartCity     string `json:"start_city"`
	FinishAddress string `json:"finish_address"`
	FinishCity    string `json:"finish_city"`

	RequiredSeats int64   `json:"required_seats"`
	MaxPrice      float64 `json:"max_price"`
	Comment       string  `json:"comment"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
