package models

import "time"

type User struct {
	ID           int64  `json:"id"`
	TelegramID   int64  `json:"telegram_id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone"`
	LanguageCode string `json:"language_code"`

	// Данные автомобиля (для водителей)
	HasCar   bool   `json:"has_car"`
	CarModel string `json:"car_model"`
	CarColor string `json:"car_color"`
	CarPlate string `json:"car_plate"`
	CarType  string `json:"car_type"`
	CarSeats int64  `json:"car_seats"`

	DriverRating        float64 `json:"driver_rating"`
	PassengerRating     float64 `json:"passenger_rating"`
	TotalDriverTrips    int64   `json:"total_driver_trips"`
	TotalPassengerTrips int64   `json:"total_passenger_trips"`

	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName собирает отображаемое имя пользователя.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// CarProfile is the whitelisted set of profile fields a user may update.
// Nil pointers mean "leave as is".
type CarProfile struct {
	Phone    *string `json:"phone,omitempty"`
	HasCar   *bool   `json:"has_car,omitempty"`
	CarModel *string `json:"car_model,omitempty"`
	CarColor *string `json:"car_color,omitempty"`
	CarPlate *string `json:"car_plate,omitempty"`
	CarType  *string `json:"car_type,omitempty"`
	CarSeats *int64  `json:"car_seats,omitempty"`
}
