package models

// Trip statuses. "full" means the seat inventory is exhausted but the trip has
// not departed; "completed" is the terminal post-ride state.
const (
	TripStatusActive     = "active"
	TripStatusFull       = "full"
	TripStatusInProgress = "in_progress"
	TripStatusCompleted  = "completed"
	TripStatusCancelled  = "cancelled"
)

// Booking statuses.
const (
	BookingStatusActive    = "active"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// User roles.
const (
	RolePassenger = "passenger"
	RoleDriver    = "driver"
	RoleBoth      = "both"
)

// Car types.
const (
	CarTypeSedan     = "sedan"
	CarTypeHatchback = "hatchback"
	CarTypeSUV       = "suv"
	CarTypeMinivan   = "minivan"
	CarTypeOther     = "other"
)

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

// Bot conversation steps.
const (
	StateMainMenu       = "main_menu"
	StateSearchFrom     = "search_from"
	StateSearchTo       = "search_to"
	StateSearchDate     = "search_date"
	StateTripFrom       = "trip_from"
	StateTripTo         = "trip_to"
	StateTripDate       = "trip_date"
	StateTripSeats      = "trip_seats"
	StateTripPrice      = "trip_price"
	StateBookingSeats   = "booking_seats"
	StateBookingConfirm = "booking_confirm"
	StateCarModel       = "car_model"
	StateCarPlate       = "car_plate"
	StatePhoneNumber    = "phone_number"
	StateReviewRating   = "review_rating"
	StateReviewComment  = "review_comment"
)

const (
	// DefaultRedisTTL время жизни состояния пользователя в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// ReminderHour час, в который отправляются напоминания о выезде
	ReminderHour = 9

	// MaxSeatsPerTrip верхняя граница мест в одной поездке
	MaxSeatsPerTrip = 10

	// DefaultRating стартовый рейтинг нового пользователя
	DefaultRating = 5.0

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000

	// DefaultPaginationSize размер пагинации по умолчанию
	DefaultPaginationSize = 8

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений
	RateLimitWindow = 60 // 1 минута в секундах

	// BookingRetryAttempts число повторов записи брони при конфликте версий
	BookingRetryAttempts = 3
)
