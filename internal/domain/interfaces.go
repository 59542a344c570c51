package domain

import (
	"context"
	"time"

	"poputka/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Repository interface {
	CreateOrUpdateUser(ctx context.Context, user *models.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateCarProfile(ctx context.Context, telegramID int64, profile models.CarProfile) (*models.User, error)
	UpdateUserActivity(ctx context.Context, telegramID int64) error
	IncrementDriverTrips(ctx context.Context, userID int64) error
	IncrementPassengerTrips(ctx context.Context, userID int64) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetActiveUsers(ctx context.Context, days int) ([]*models.User, error)

	CreateTrip(ctx context.Context, trip *models.Trip) error
	GetTrip(ctx context.Context, id int64) (*models.Trip, error)
	GetTripAvailability(ctx context.Context, id int64) (*models.TripAvailability, error)
	SearchTrips(ctx context.Context, search models.TripSearch) ([]*models.Trip, error)
	GetDriverTrips(ctx context.Context, driverID int64) ([]*models.Trip, error)
	GetDepartingTrips(ctx context.Context, from, to time.Time) ([]*models.Trip, error)
	StartTrip(ctx context.Context, tripID, driverID int64) error
	CompleteTrip(ctx context.Context, tripID, driverID int64) error
	CancelTrip(ctx context.Context, tripID, driverID int64) error

	CreateBookingWithLock(ctx context.Context, booking *models.Booking) error
	CancelBookingWithLock(ctx context.Context, bookingID, actorID int64) (*models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetUserBookings(ctx context.Context, passengerID int64) ([]*models.Booking, error)
	GetTripBookings(ctx context.Context, tripID int64) ([]*models.Booking, error)
	GetActiveTripBookings(ctx context.Context, tripID int64) ([]*models.Booking, error)
	GetAllBookings(ctx context.Context) ([]*models.Booking, error)
	GetBookingStats(ctx context.Context) (map[string]int, error)

	CreateRideRequest(ctx context.Context, req *models.RideRequest) error
	GetRideRequest(ctx context.Context, id int64) (*models.RideRequest, error)
	SearchRideRequests(ctx context.Context, fromCity, toCity string, date time.Time) ([]*models.RideRequest, error)
	GetPassengerRideRequests(ctx context.Context, passengerID int64) ([]*models.RideRequest, error)
	CloseRideRequest(ctx context.Context, id, passengerID int64, status string) error

	CreateReview(ctx context.Context, review *models.Review) error
	GetUserReviews(ctx context.Context, userID int64) ([]*models.Review, error)

	CreateMessage(ctx context.Context, msg *models.Message) error
	GetBookingMessages(ctx context.Context, bookingID int64) ([]*models.Message, error)
	MarkMessagesRead(ctx context.Context, bookingID, receiverID int64) error
	CountUnreadMessages(ctx context.Context, receiverID int64) (int, error)
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type SheetsWriter interface {
	UpdateUsersSheet(ctx context.Context, users []*models.User) error
	ReplaceBookingsSheet(ctx context.Context, bookings []*models.Booking) error
	UpdateTripsSheet(ctx context.Context, trips []*models.Trip) error
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type BookingService interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	CancelBooking(ctx context.Context, bookingID, actorID int64) (*models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetUserBookings(ctx context.Context, passengerID int64) ([]*models.Booking, error)
	GetTripBookings(ctx context.Context, tripID int64) ([]*models.Booking, error)
	GetTripAvailability(ctx context.Context, tripID int64) (*models.TripAvailability, error)
	GetBookingStats(ctx context.Context) (map[string]int, error)
}

type TripService interface {
	CreateTrip(ctx context.Context, trip *models.Trip) error
	GetTrip(ctx context.Context, id int64) (*models.Trip, error)
	SearchTrips(ctx context.Context, search models.TripSearch) ([]*models.Trip, error)
	GetDriverTrips(ctx context.Context, driverID int64) ([]*models.Trip, error)
	StartTrip(ctx context.Context, tripID, driverID int64) error
	CompleteTrip(ctx context.Context, tripID, driverID int64) error
	CancelTrip(ctx context.Context, tripID, driverID int64) error
}

type UserService interface {
	IsManager(telegramID int64) bool
	IsBlacklisted(telegramID int64) bool
	SaveUser(ctx context.Context, user *models.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateCarProfile(ctx context.Context, telegramID int64, profile models.CarProfile) (*models.User, error)
	UpdateUserActivity(ctx context.Context, telegramID int64) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetActiveUsers(ctx context.Context, days int) ([]*models.User, error)
}

type ReviewService interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetUserReviews(ctx context.Context, userID int64) ([]*models.Review, error)
}

type RideRequestService interface {
	CreateRideRequest(ctx context.Context, req *models.RideRequest) error
	GetRideRequest(ctx context.Context, id int64) (*models.RideRequest, error)
	SearchRideRequests(ctx context.Context, fromCity, toCity string, date time.Time) ([]*models.RideRequest, error)
	GetPassengerRideRequests(ctx context.Context, passengerID int64) ([]*models.RideRequest, error)
	CloseRideRequest(ctx context.Context, id, passengerID int64, status string) error
}

type MessageService interface {
	SendMessage(ctx context.Context, bookingID, senderID int64, content string) (*models.Message, error)
	GetDialog(ctx context.Context, bookingID, readerID int64) ([]*models.Message, error)
	CountUnread(ctx context.Context, receiverID int64) (int, error)
}
