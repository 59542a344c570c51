package database

import (
	"context"
	"testing"
	"time"

	"poputka/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	driver := createTestUser(t, db, 100, "driver")
	trip := createTestTrip(t, db, driver.ID, 4)

	assert.NotZero(t, trip.ID)
	assert.Equal(t, models.TripStatusActive, trip.Status)
	assert.Equal(t, int64(1), trip.Version)

	loaded, err := db.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.DriverID, loaded.DriverID)
	assert.Equal(t, "Москва", loaded.StartCity)
	assert.Equal(t, "09:30", loaded.DepartureTime)
	assert.Equal(t, int64(4), loaded.AvailableSeats)

	_, err = db.GetTrip(ctx, 9999)
	assert.ErrorIs(t, err, ErrTripNotFound)

	_, err = db.GetTripAvailability(ctx, 9999)
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestSearchTrips(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	driver := createTestUser(t, db, 100, "driver")
	date := time.Now().AddDate(0, 0, 2).Truncate(24 * time.Hour)

	cheap := &models.Trip{
		DriverID: driver.ID, DepartureDate: date, DepartureTime: "08:00",
		StartAddress: "вокзал", StartCity: "Казань",
		FinishAddress: "центр", FinishCity: "Самара",
		TotalSeats: 3, AvailableSeats: 3, PricePerSeat: 800,
	}
	require.NoError(t, db.CreateTrip(ctx, cheap))

	expensive := &models.Trip{
		DriverID: driver.ID, DepartureDate: date, DepartureTime: "10:00",
		StartAddress: "аэропорт", StartCity: "Казань",
		FinishAddress: "центр", FinishCity: "Самара",
		TotalSeats: 3, AvailableSeats: 3, PricePerSeat: 2000,
	}
	require.NoError(t, db.CreateTrip(ctx, expensive))

	otherDay := &models.Trip{
		DriverID: driver.ID, DepartureDate: date.AddDate(0, 0, 1), DepartureTime: "08:00",
		StartAddress: "вокзал", StartCity: "Казань",
		FinishAddress: "центр", FinishCity: "Самара",
		TotalSeats: 3, AvailableSeats: 3, PricePerSeat: 800,
	}
	require.NoError(t, db.CreateTrip(ctx, otherDay))

	t.Run("by route and date", func(t *testing.T) {
		trips, err := db.SearchTrips(ctx, models.TripSearch{FromCity: "Казань", ToCity: "Самара", Date: date})
		require.NoError(t, err)
		require.Len(t, trips, 2)
		// Дешёвые поездки выше в выдаче
		assert.Equal(t, cheap.ID, trips[0].ID)
	})

	t.Run("by max price", func(t *testing.T) {
		trips, err := db.SearchTrips(ctx, models.TripSearch{FromCity: "Казань", Date: date, MaxPrice: 1000})
		require.NoError(t, err)
		require.Len(t, trips, 1)
		assert.Equal(t, cheap.ID, trips[0].ID)
	})

	t.Run("by seats", func(t *testing.T) {
		trips, err := db.SearchTrips(ctx, models.TripSearch{FromCity: "Казань", Date: date, Passengers: 4})
		require.NoError(t, err)
		assert.Empty(t, trips)
	})

	t.Run("excludes non-active trips", func(t *testing.T) {
		require.NoError(t, db.CancelTrip(ctx, expensive.ID, driver.ID))
		trips, err := db.SearchTrips(ctx, models.TripSearch{FromCity: "Казань", ToCity: "Самара", Date: date})
		require.NoError(t, err)
		require.Len(t, trips, 1)
		assert.Equal(t, cheap.ID, trips[0].ID)
	})
}

func TestTripTransitions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	driver := createTestUser(t, db, 100, "driver")
	other := createTestUser(t, db, 101, "other")

	t.Run("only driver controls trip", func(t *testing.T) {
		trip := createTestTrip(t, db, driver.ID, 2)
		err := db.StartTrip(ctx, trip.ID, other.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("start then complete", func(t *testing.T) {
		trip := createTestTrip(t, db, driver.ID, 2)
		require.NoError(t, db.StartTrip(ctx, trip.ID, driver.ID))

		loaded, _ := db.GetTrip(ctx, trip.ID)
		assert.Equal(t, models.TripStatusInProgress, loaded.Status)

		// Начатую поездку нельзя начать второй раз или отменить
		assert.ErrorIs(t, db.StartTrip(ctx, trip.ID, driver.ID), ErrInvalidState)
		assert.ErrorIs(t, db.CancelTrip(ctx, trip.ID, driver.ID), ErrInvalidState)

		require.NoError(t, db.CompleteTrip(ctx, trip.ID, driver.ID))
		loaded, _ = db.GetTrip(ctx, trip.ID)
		assert.Equal(t, models.TripStatusCompleted, loaded.Status)

		// Завершение терминально
		assert.ErrorIs(t, db.CompleteTrip(ctx, trip.ID, driver.ID), ErrInvalidState)
	})

	t.Run("missing trip", func(t *testing.T) {
		assert.ErrorIs(t, db.StartTrip(ctx, 9999, driver.ID), ErrTripNotFound)
	})
}

func TestCompleteTripSettlesBookings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	driver := createTestUser(t, db, 100, "driver")
	passenger := createTestUser(t, db, 200, "passenger")
	trip := createTestTrip(t, db, driver.ID, 3)

	booking := &models.Booking{TripID: trip.ID, PassengerID: passenger.ID, BookedSeats: 2}
	require.NoError(t, db.CreateBookingWithLock(ctx, booking))

	require.NoError(t, db.CompleteTrip(ctx, trip.ID, driver.ID))

	settled, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, settled.Status)
	require.NotNil(t, settled.CompletedAt)

	// Отмена завершённой брони невозможна, места не возвращаются
	_, err = db.CancelBookingWithLock(ctx, booking.ID, passenger.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	avail, err := db.GetTripAvailability(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), avail.AvailableSeats)
}

func TestCancelTripCancelsBookings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	driver := createTestUser(t, db, 100, "driver")
	passenger := createTestUser(t, db, 200, "passenger")
	trip := createTestTrip(t, db, driver.ID, 3)

	booking := &models.Booking{TripID: trip.ID, PassengerID: passenger.ID, BookedSeats: 1}
	require.NoError(t, db.CreateBookingWithLock(ctx, booking))

	require.NoError(t, db.CancelTrip(ctx, trip.ID, driver.ID))

	cancelled, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	// Отменённая поездка не принимает новых броней
	other := createTestUser(t, db, 300, "other")
	err = db.CreateBookingWithLock(ctx, &models.Booking{TripID: trip.ID, PassengerID: other.ID, BookedSeats: 1})
	assert.ErrorIs(t, err, ErrTripUnavailable)
}

func TestGetDriverTrips(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	driver := createTestUser(t, db, 100, "driver")
	other := createTestUser(t, db, 101, "other")
	createTestTrip(t, db, driver.ID, 2)
	createTestTrip(t, db, driver.ID, 3)
	createTestTrip(t, db, other.ID, 2)

	trips, err := db.GetDriverTrips(ctx, driver.ID)
	require.NoError(t, err)
	assert.Len(t, trips, 2)
}
