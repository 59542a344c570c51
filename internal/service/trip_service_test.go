package service

import (
	"context"
	"io"
	"testing"
	"time"

	"poputka/internal/database"
	"poputka/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestTripServiceValidateDate(t *testing.T) {
	logger := zerolog.New(io.Discard)
	svc := NewTripService(nil, nil, nil, 30, &logger)
	now := time.Now()

	assert.ErrorIs(t, svc.ValidateTripDate(now.AddDate(0, 0, -2)), database.ErrPastDate)
	assert.ErrorIs(t, svc.ValidateTripDate(now.AddDate(0, 0, 31)), database.ErrDateTooFar)
	assert.NoError(t, svc.ValidateTripDate(now.AddDate(0, 0, 5)))
}

func TestTripServiceCreate(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := NewTripService(repo, bus, nil, 30, &logger)

		driver := &models.User{ID: 5, HasCar: true, Role: models.RoleBoth}
		trip := &models.Trip{DriverID: 5, DepartureDate: time.Now().AddDate(0, 0, 3), TotalSeats: 3}

		repo.On("GetUserByID", ctx, int64(5)).Return(driver, nil).Once()
		repo.On("CreateTrip", ctx, trip).Return(nil).Once()
		bus.On("PublishJSON", "trip_created", mock.Anything).Return(nil).Once()

		err := svc.CreateTrip(ctx, trip)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), trip.AvailableSeats)
		repo.AssertExpectations(t)
	})

	t.Run("driver without car", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewTripService(repo, nil, nil, 30, &logger)

		walker := &models.User{ID: 6, HasCar: false}
		trip := &models.Trip{DriverID: 6, DepartureDate: time.Now().AddDate(0, 0, 3), TotalSeats: 3}

		repo.On("GetUserByID", ctx, int64(6)).Return(walker, nil).Once()

		err := svc.CreateTrip(ctx, trip)
		assert.ErrorIs(t, err, database.ErrForbidden)
	})

	t.Run("bad seat count", func(t *testing.T) {
		svc := NewTripService(nil, nil, nil, 30, &logger)
		trip := &models.Trip{DriverID: 5, DepartureDate: time.Now().AddDate(0, 0, 3), TotalSeats: 0}
		assert.ErrorIs(t, svc.CreateTrip(ctx, trip), database.ErrInvalidSeats)
	})

	t.Run("past date", func(t *testing.T) {
		svc := NewTripService(nil, nil, nil, 30, &logger)
		trip := &models.Trip{DriverID: 5, DepartureDate: time.Now().AddDate(0, 0, -5), TotalSeats: 3}
		assert.ErrorIs(t, svc.CreateTrip(ctx, trip), database.ErrPastDate)
	})
}

func TestTripServiceComplete(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	repo := new(mockRepo)
	bus := new(mockEventBus)
	worker := new(mockWorker)
	svc := NewTripService(repo, bus, worker, 30, &logger)

	completed := &models.Booking{ID: 1, TripID: 9, PassengerID: 21, Status: models.BookingStatusCompleted}
	skipped := &models.Booking{ID: 2, TripID: 9, PassengerID: 22, Status: models.BookingStatusCancelled}
	trip := &models.Trip{ID: 9, DriverID: 5, Status: models.TripStatusCompleted}

	repo.On("CompleteTrip", ctx, int64(9), int64(5)).Return(nil).Once()
	repo.On("IncrementDriverTrips", ctx, int64(5)).Return(nil).Once()
	repo.On("GetTripBookings", ctx, int64(9)).Return([]*models.Booking{completed, skipped}, nil).Once()
	repo.On("GetTrip", ctx, int64(9)).Return(trip, nil).Once()
	worker.On("EnqueueTask", ctx, "update_status", int64(1), completed, models.BookingStatusCompleted).Return(nil).Once()
	bus.On("PublishJSON", "trip_completed", mock.Anything).Return(nil).Once()

	err := svc.CompleteTrip(ctx, 9, 5)
	assert.NoError(t, err)
	// Счётчик пассажира растёт при бронировании, завершение его не трогает
	repo.AssertNotCalled(t, "IncrementPassengerTrips", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
	worker.AssertExpectations(t)
}

func TestTripServiceCancel(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	repo := new(mockRepo)
	bus := new(mockEventBus)
	worker := new(mockWorker)
	svc := NewTripService(repo, bus, worker, 30, &logger)

	cancelled := &models.Booking{ID: 3, TripID: 9, PassengerID: 21, Status: models.BookingStatusCancelled}
	trip := &models.Trip{ID: 9, DriverID: 5, Status: models.TripStatusCancelled}

	repo.On("CancelTrip", ctx, int64(9), int64(5)).Return(nil).Once()
	repo.On("GetTripBookings", ctx, int64(9)).Return([]*models.Booking{cancelled}, nil).Once()
	repo.On("GetTrip", ctx, int64(9)).Return(trip, nil).Once()
	worker.On("EnqueueTask", ctx, "update_status", int64(3), cancelled, models.BookingStatusCancelled).Return(nil).Once()
	bus.On("PublishJSON", "trip_cancelled", mock.Anything).Return(nil).Once()

	err := svc.CancelTrip(ctx, 9, 5)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTripServiceStartForbidden(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	repo := new(mockRepo)
	svc := NewTripService(repo, nil, nil, 30, &logger)

	repo.On("StartTrip", ctx, int64(9), int64(99)).Return(database.ErrForbidden).Once()

	err := svc.StartTrip(ctx, 9, 99)
	assert.ErrorIs(t, err, database.ErrForbidden)
}
