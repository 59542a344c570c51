package service

import (
	"context"
	"errors"
	"fmt"

	"poputka/internal/database"
	"poputka/internal/domain"
	"poputka/internal/events"
	"poputka/internal/metrics"
	"poputka/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo         domain.Repository
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	logger       *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:         repo,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		logger:       logger,
	}
}

// CreateBooking бронирует места с повторами при проигрыше оптимистической
// блокировки. Повтор перечитывает поездку внутри транзакции, поэтому до
// вызывающего доходит либо успех, либо содержательная ошибка.
func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	var err error
	for attempt := 0; attempt < models.BookingRetryAttempts; attempt++ {
		err = s.repo.CreateBookingWithLock(ctx, booking)
		if err == nil {
			break
		}
		if !errors.Is(err, database.ErrConcurrentModification) {
			return err
		}
		metrics.IncSeatConflict()
		s.logger.Debug().
			Int64("trip_id", booking.TripID).
			Int64("passenger_id", booking.PassengerID).
			Int("attempt", attempt+1).
			Msg("seat race lost, retrying")
	}
	if err != nil {
		return fmt.Errorf("booking retries exhausted: %w", err)
	}

	metrics.IncBookingCreated()

	// Счётчик поездок пассажира растёт сразу после коммита брони
	if err := s.repo.IncrementPassengerTrips(ctx, booking.PassengerID); err != nil {
		s.logger.Error().Err(err).Int64("passenger_id", booking.PassengerID).Msg("passenger trip counter update failed")
	}

	s.publishBookingEvent(ctx, events.EventBookingCreated, booking, booking.PassengerID)
	s.enqueueSync(ctx, booking, "upsert")
	return nil
}

// CancelBooking отменяет бронь от имени пассажира или водителя поездки.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID int64) (*models.Booking, error) {
	var booking *models.Booking
	var err error
	for attempt := 0; attempt < models.BookingRetryAttempts; attempt++ {
		booking, err = s.repo.CancelBookingWithLock(ctx, bookingID, actorID)
		if err == nil {
			break
		}
		if !errors.Is(err, database.ErrConcurrentModification) {
			return nil, err
		}
		metrics.IncSeatConflict()
	}
	if err != nil {
		return nil, fmt.Errorf("cancel retries exhausted: %w", err)
	}

	metrics.IncBookingCancelled()
	s.publishBookingEvent(ctx, events.EventBookingCancelled, booking, actorID)
	s.enqueueSync(ctx, booking, "update_status")
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetUserBookings(ctx context.Context, passengerID int64) ([]*models.Booking, error) {
	return s.repo.GetUserBookings(ctx, passengerID)
}

func (s *BookingService) GetTripBookings(ctx context.Context, tripID int64) ([]*models.Booking, error) {
	return s.repo.GetTripBookings(ctx, tripID)
}

func (s *BookingService) GetTripAvailability(ctx context.Context, tripID int64) (*models.TripAvailability, error) {
	return s.repo.GetTripAvailability(ctx, tripID)
}

func (s *BookingService) GetBookingStats(ctx context.Context) (map[string]int, error) {
	return s.repo.GetBookingStats(ctx)
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		TripID:      booking.TripID,
		PassengerID: booking.PassengerID,
		Seats:       booking.BookedSeats,
		Price:       booking.PriceAgreed,
		Status:      booking.Status,
		ChangedByID: actorID,
	}

	// Маршрут и водитель добавляются по возможности, событие не критично
	if trip, err := s.repo.GetTrip(ctx, booking.TripID); err == nil {
		payload.DriverID = trip.DriverID
		payload.Departure = trip.DepartureDate
		payload.Route = fmt.Sprintf("%s - %s", trip.StartCity, trip.FinishCity)
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking *models.Booking, taskType string) {
	if s.sheetsWorker == nil {
		return
	}

	var status string
	if taskType == "update_status" {
		status = booking.Status
	}

	if err := s.sheetsWorker.EnqueueTask(ctx, taskType, booking.ID, booking, status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
