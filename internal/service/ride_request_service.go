package service

import (
	"context"
	"time"

	"poputka/internal/database"
	"poputka/internal/domain"
	"poputka/internal/models"

	"github.com/rs/zerolog"
)

type RideRequestService struct {
	repo        domain.Repository
	maxTripDays int
	logger      *zerolog.Logger
}

func NewRideRequestService(repo domain.Repository, maxTripDays int, logger *zerolog.Logger) *RideRequestService {
	if maxTripDays <= 0 {
		maxTripDays = 90
	}
	return &RideRequestService{
		repo:        repo,
		maxTripDays: maxTripDays,
		logger:      logger,
	}
}

// CreateRideRequest публикует запрос пассажира на места.
func (s *RideRequestService) CreateRideRequest(ctx context.Context, req *models.RideRequest) error {
	if req.DesiredDate.Before(time.Now().AddDate(0, 0, -1)) {
		return database.ErrPastDate
	}
	if req.DesiredDate.After(time.Now().AddDate(0, 0, s.maxTripDays)) {
		return database.ErrDateTooFar
	}
	if req.RequiredSeats < 1 || req.RequiredSeats > models.MaxSeatsPerTrip {
		return database.ErrInvalidSeats
	}

	if _, err := s.repo.GetUserByID(ctx, req.PassengerID); err != nil {
		return err
	}

	if err := s.repo.CreateRideRequest(ctx, req); err != nil {
		return err
	}

	s.logger.Info().
		Int64("request_id", req.ID).
		Int64("passenger_id", req.PassengerID).
		Str("route", req.StartCity+" - "+req.FinishCity).
		Msg("ride request created")
	return nil
}

func (s *RideRequestService) GetRideRequest(ctx context.Context, id int64) (*models.RideRequest, error) {
	return s.repo.GetRideRequest(ctx, id)
}

// SearchRideRequests отдаёт водителям активные запросы по маршруту и дате.
func (s *RideRequestService) SearchRideRequests(ctx context.Context, fromCity, toCity string, date time.Time) ([]*models.RideRequest, error) {
	return s.repo.SearchRideRequests(ctx, fromCity, toCity, date)
}

func (s *RideRequestService) GetPassengerRideRequests(ctx context.Context, passengerID int64) ([]*models.RideRequest, error) {
	return s.repo.GetPassengerRideRequests(ctx, passengerID)
}

// CloseRideRequest закрывает запрос; разрешено только автору.
func (s *RideRequestService) CloseRideRequest(ctx context.Context, id, passengerID int64, status string) error {
	if status != models.TripStatusCancelled && status != models.TripStatusCompleted {
		return database.ErrInvalidState
	}
	if err := s.repo.CloseRideRequest(ctx, id, passengerID, status); err != nil {
		return err
	}

	s.logger.Info().Int64("request_id", id).Str("status", status).Msg("ride request closed")
	return nil
}
