package service

import (
	"context"
	"fmt"
	"time"

	"poputka/internal/database"
	"poputka/internal/domain"
	"poputka/internal/events"
	"poputka/internal/models"

	"github.com/rs/zerolog"
)

type TripService struct {
	repo         domain.Repository
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	maxTripDays  int
	logger       *zerolog.Logger
}

func NewTripService(repo domain.Repository, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, maxTripDays int, logger *zerolog.Logger) *TripService {
	if maxTripDays <= 0 {
		maxTripDays = 90
	}
	return &TripService{
		repo:         repo,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		maxTripDays:  maxTripDays,
		logger:       logger,
	}
}

// ValidateTripDate отсекает поездки в прошлом и слишком далёкие даты.
func (s *TripService) ValidateTripDate(date time.Time) error {
	if date.Before(time.Now().AddDate(0, 0, -1)) {
		return database.ErrPastDate
	}
	if date.After(time.Now().AddDate(0, 0, s.maxTripDays)) {
		return database.ErrDateTooFar
	}
	return nil
}

// CreateTrip публикует новую поездку. Водителем может стать только
// пользователь с машиной в профиле.
func (s *TripService) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if err := s.ValidateTripDate(trip.DepartureDate); err != nil {
		return err
	}
	if trip.TotalSeats < 1 || trip.TotalSeats > models.MaxSeatsPerTrip {
		return database.ErrInvalidSeats
	}

	driver, err := s.repo.GetUserByID(ctx, trip.DriverID)
	if err != nil {
		return err
	}
	if !driver.HasCar {
		return database.ErrForbidden
	}

	if trip.AvailableSeats == 0 {
		trip.AvailableSeats = trip.TotalSeats
	}

	if err := s.repo.CreateTrip(ctx, trip); err != nil {
		return err
	}

	s.publishTripEvent(events.EventTripCreated, trip)
	return nil
}

func (s *TripService) GetTrip(ctx context.Context, id int64) (*models.Trip, error) {
	return s.repo.GetTrip(ctx, id)
}

func (s *TripService) SearchTrips(ctx context.Context, search models.TripSearch) ([]*models.Trip, error) {
	return s.repo.SearchTrips(ctx, search)
}

func (s *TripService) GetDriverTrips(ctx context.Context, driverID int64) ([]*models.Trip, error) {
	return s.repo.GetDriverTrips(ctx, driverID)
}

func (s *TripService) StartTrip(ctx context.Context, tripID, driverID int64) error {
	if err := s.repo.StartTrip(ctx, tripID, driverID); err != nil {
		return err
	}
	if trip, err := s.repo.GetTrip(ctx, tripID); err == nil {
		s.publishTripEvent(events.EventTripStarted, trip)
	}
	return nil
}

// CompleteTrip завершает поездку: активные брони закрываются, счётчик
// поездок водителя растёт, экспорт получает свежие статусы. Счётчик
// пассажира увеличивается ещё при бронировании.
func (s *TripService) CompleteTrip(ctx context.Context, tripID, driverID int64) error {
	if err := s.repo.CompleteTrip(ctx, tripID, driverID); err != nil {
		return err
	}

	if err := s.repo.IncrementDriverTrips(ctx, driverID); err != nil {
		s.logger.Error().Err(err).Int64("driver_id", driverID).Msg("driver trip counter update failed")
	}

	bookings, err := s.repo.GetTripBookings(ctx, tripID)
	if err != nil {
		s.logger.Error().Err(err).Int64("trip_id", tripID).Msg("failed to load trip bookings after completion")
	}
	for _, booking := range bookings {
		if booking.Status != models.BookingStatusCompleted {
			continue
		}
		s.enqueueBookingSync(ctx, booking)
	}

	if trip, err := s.repo.GetTrip(ctx, tripID); err == nil {
		s.publishTripEvent(events.EventTripCompleted, trip)
	}
	return nil
}

// CancelTrip отменяет поездку вместе с активными бронями.
func (s *TripService) CancelTrip(ctx context.Context, tripID, driverID int64) error {
	if err := s.repo.CancelTrip(ctx, tripID, driverID); err != nil {
		return err
	}

	bookings, err := s.repo.GetTripBookings(ctx, tripID)
	if err != nil {
		s.logger.Error().Err(err).Int64("trip_id", tripID).Msg("failed to load trip bookings after cancellation")
	}
	for _, booking := range bookings {
		if booking.Status == models.BookingStatusCancelled {
			s.enqueueBookingSync(ctx, booking)
		}
	}

	if trip, err := s.repo.GetTrip(ctx, tripID); err == nil {
		s.publishTripEvent(events.EventTripCancelled, trip)
	}
	return nil
}

func (s *TripService) publishTripEvent(eventType string, trip *models.Trip) {
	if s.eventBus == nil {
		return
	}

	payload := events.TripEventPayload{
		TripID:         trip.ID,
		DriverID:       trip.DriverID,
		Status:         trip.Status,
		AvailableSeats: trip.AvailableSeats,
		Departure:      trip.DepartureDate,
		Route:          fmt.Sprintf("%s - %s", trip.StartCity, trip.FinishCity),
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("trip_id", trip.ID).Msg("publish event error")
	}
}

func (s *TripService) enqueueBookingSync(ctx context.Context, booking *models.Booking) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueTask(ctx, "update_status", booking.ID, booking, booking.Status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("sheets enqueue error")
	}
}
