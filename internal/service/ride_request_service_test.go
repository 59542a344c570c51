package service

import (
	"context"
	"testing"
	"time"

	"poputka/internal/database"
	"poputka/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRideRequestServiceCreate(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	validRequest := func() *models.RideRequest {
		return &models.RideRequest{
			PassengerID:   7,
			DesiredDate:   time.Now().AddDate(0, 0, 3),
			DesiredTime:   "09:00",
			StartCity:     "Москва",
			FinishCity:    "Тверь",
			RequiredSeats: 2,
		}
	}

	t.Run("success", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewRideRequestService(repo, 90, &logger)

		req := validRequest()
		repo.On("GetUserByID", ctx, int64(7)).Return(&models.User{ID: 7}, nil).Once()
		repo.On("CreateRideRequest", ctx, req).Return(nil).Once()

		err := s.CreateRideRequest(ctx, req)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("past date", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewRideRequestService(repo, 90, &logger)

		req := validRequest()
		req.DesiredDate = time.Now().AddDate(0, 0, -5)

		err := s.CreateRideRequest(ctx, req)
		assert.ErrorIs(t, err, database.ErrPastDate)
		repo.AssertNotCalled(t, "CreateRideRequest", mock.Anything, mock.Anything)
	})

	t.Run("date too far", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewRideRequestService(repo, 30, &logger)

		req := validRequest()
		req.DesiredDate = time.Now().AddDate(0, 0, 45)

		err := s.CreateRideRequest(ctx, req)
		assert.ErrorIs(t, err, database.ErrDateTooFar)
	})

	t.Run("invalid seats", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewRideRequestService(repo, 90, &logger)

		req := validRequest()
		req.RequiredSeats = 0

		err := s.CreateRideRequest(ctx, req)
		assert.ErrorIs(t, err, database.ErrInvalidSeats)
	})

	t.Run("unknown passenger", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewRideRequestService(repo, 90, &logger)

		req := validRequest()
		repo.On("GetUserByID", ctx, int64(7)).Return(nil, database.ErrUserNotFound).Once()

		err := s.CreateRideRequest(ctx, req)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
		repo.AssertNotCalled(t, "CreateRideRequest", mock.Anything, mock.Anything)
	})
}

func TestRideRequestServiceClose(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("cancelled", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewRideRequestService(repo, 90, &logger)

		repo.On("CloseRideRequest", ctx, int64(5), int64(7), models.TripStatusCancelled).Return(nil).Once()

		err := s.CloseRideRequest(ctx, 5, 7, models.TripStatusCancelled)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("unsupported status", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewRideRequestService(repo, 90, &logger)

		err := s.CloseRideRequest(ctx, 5, 7, models.TripStatusActive)
		assert.ErrorIs(t, err, database.ErrInvalidState)
		repo.AssertNotCalled(t, "CloseRideRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign request", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewRideRequestService(repo, 90, &logger)

		repo.On("CloseRideRequest", ctx, int64(5), int64(8), models.TripStatusCancelled).
			Return(database.ErrForbidden).Once()

		err := s.CloseRideRequest(ctx, 5, 8, models.TripStatusCancelled)
		assert.ErrorIs(t, err, database.ErrForbidden)
	})
}

func TestRideRequestServiceSearch(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	s := NewRideRequestService(repo, 90, &logger)
	ctx := context.Background()

	date := time.Now().AddDate(0, 0, 2)
	found := []*models.RideRequest{{ID: 1, StartCity: "Москва", FinishCity: "Тверь"}}
	repo.On("SearchRideRequests", ctx, "Москва", "Тверь", date).Return(found, nil).Once()

	got, err := s.SearchRideRequests(ctx, "Москва", "Тверь", date)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	repo.AssertExpectations(t)
}
