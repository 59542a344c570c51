package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"poputka/internal/models"
)

const tripColumns = `id, driver_id, departure_date, departure_time, start_address, start_city,
                     finish_address, finish_city, total_seats, available_seats, price_per_seat,
                     comment, allow_smoking, allow_animals, allow_luggage, status, version,
                     created_at, updated_at`

func (db *DB) CreateTrip(ctx context.Context, trip *models.Trip) error {
	query := `INSERT INTO trips (
				driver_id, departure_date, departure_time, start_address, start_city,
				finish_address, finish_city, total_seats, available_seats, price_per_seat,
				comment, allow_smoking, allow_animals, allow_luggage, status, version,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	status := trip.Status
	if status == "" {
		status = models.TripStatusActive
	}
	result, err := db.ExecContext(ctx, query,
		trip.DriverID,
		trip.DepartureDate,
		trip.DepartureTime,
		trip.StartAddress,
		trip.StartCity,
		trip.FinishAddress,
		trip.FinishCity,
		trip.TotalSeats,
		trip.AvailableSeats,
		trip.PricePerSeat,
		trip.Comment,
		trip.AllowSmoking,
		trip.AllowAnimals,
		trip.AllowLuggage,
		status,
		1,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	trip.ID = id
	trip.Status = status
	trip.Version = 1
	trip.CreatedAt = now
	trip.UpdatedAt = now
	return nil
}

func (db *DB) GetTrip(ctx context.Context, id int64) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = ?`
	return scanTrip(db.QueryRowContext(ctx, query, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*models.Trip, error) {
	var t models.Trip
	var depTime, startCity, finishCity, comment sql.NullString
	err := row.Scan(
		&t.ID, &t.DriverID, &t.DepartureDate, &depTime, &t.StartAddress, &startCity,
		&t.FinishAddress, &finishCity, &t.TotalSeats, &t.AvailableSeats, &t.PricePerSeat,
		&comment, &t.AllowSmoking, &t.AllowAnimals, &t.AllowLuggage, &t.Status, &t.Version,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trip: %w", err)
	}
	t.DepartureTime = depTime.String
	t.StartCity = startCity.String
	t.FinishCity = finishCity.String
	t.Comment = comment.String
	return &t, nil
}

// GetTripAvailability возвращает только снимок мест и статуса.
func (db *DB) GetTripAvailability(ctx context.Context, id int64) (*models.TripAvailability, error) {
	query := `SELECT id, available_seats, total_seats, status FROM trips WHERE id = ?`
	var a models.TripAvailability
	err := db.QueryRowContext(ctx, query, id).Scan(&a.TripID, &a.AvailableSeats, &a.TotalSeats, &a.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip availability: %w", err)
	}
	return &a, nil
}

// SearchTrips ищет активные поездки по городам, дате и количеству мест.
func (db *DB) SearchTrips(ctx context.Context, search models.TripSearch) ([]*models.Trip, error) {
	passengers := search.Passengers
	if passengers < 1 {
		passengers = 1
	}

	query := `SELECT ` + tripColumns + ` FROM trips
              WHERE status = ? AND available_seats >= ?
                AND departure_date >= ? AND departure_date < ?`
	args := []any{
		models.TripStatusActive,
		passengers,
		search.Date,
		search.Date.AddDate(0, 0, 1),
	}

	if search.FromCity != "" {
		query += ` AND (start_city LIKE ? OR start_address LIKE ?)`
		pattern := "%" + search.FromCity + "%"
		args = append(args, pattern, pattern)
	}
	if search.ToCity != "" {
		query += ` AND (finish_city LIKE ? OR finish_address LIKE ?)`
		pattern := "%" + search.ToCity + "%"
		args = append(args, pattern, pattern)
	}
	if search.MaxPrice > 0 {
		query += ` AND price_per_seat <= ?`
		args = append(args, search.MaxPrice)
	}
	query += ` ORDER BY departure_date ASC, price_per_seat ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func (db *DB) GetDriverTrips(ctx context.Context, driverID int64) ([]*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE driver_id = ? ORDER BY departure_date DESC`
	rows, err := db.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get driver trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// GetDepartingTrips возвращает активные и заполненные поездки с выездом в заданном окне.
func (db *DB) GetDepartingTrips(ctx context.Context, from, to time.Time) ([]*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips
              WHERE status IN (?, ?) AND departure_date >= ? AND departure_date < ?
              ORDER BY departure_date ASC`
	rows, err := db.QueryContext(ctx, query, models.TripStatusActive, models.TripStatusFull, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get departing trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// GetTripsByDateRange возвращает поездки за период независимо от статуса,
// используется менеджерским экспортом.
func (db *DB) GetTripsByDateRange(ctx context.Context, from, to time.Time) ([]*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips
              WHERE departure_date >= ? AND departure_date < ?
              ORDER BY departure_date ASC`
	rows, err := db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get trips by date range: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// StartTrip переводит поездку в in_progress; разрешено только водителю
// и только из active/full.
func (db *DB) StartTrip(ctx context.Context, tripID, driverID int64) error {
	return db.transitionTrip(ctx, tripID, driverID, models.TripStatusInProgress,
		[]string{models.TripStatusActive, models.TripStatusFull}, false)
}

// CompleteTrip завершает поездку и помечает её активные брони выполненными.
func (db *DB) CompleteTrip(ctx context.Context, tripID, driverID int64) error {
	return db.transitionTrip(ctx, tripID, driverID, models.TripStatusCompleted,
		[]string{models.TripStatusActive, models.TripStatusFull, models.TripStatusInProgress}, true)
}

// CancelTrip отменяет поездку; активные брони отменяются без возврата мест.
func (db *DB) CancelTrip(ctx context.Context, tripID, driverID int64) error {
	return db.transitionTrip(ctx, tripID, driverID, models.TripStatusCancelled,
		[]string{models.TripStatusActive, models.TripStatusFull}, true)
}

// transitionTrip выполняет смену статуса по инициативе водителя и при
// необходимости закрывает активные брони поездки в той же транзакции.
func (db *DB) transitionTrip(ctx context.Context, tripID, driverID int64, to string, allowedFrom []string, settleBookings bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var ownerID int64
	var status string
	var version int64
	err = tx.QueryRowContext(ctx, `SELECT driver_id, status, version FROM trips WHERE id = ?`, tripID).
		Scan(&ownerID, &status, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTripNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load trip: %w", err)
	}

	if ownerID != driverID {
		return ErrForbidden
	}

	allowed := false
	for _, s := range allowedFrom {
		if status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidState
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`UPDATE trips SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
		to, now, tripID, version)
	if err != nil {
		return fmt.Errorf("failed to update trip status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrConcurrentModification
	}

	if settleBookings {
		bookingStatus := models.BookingStatusCompleted
		tsColumn := "completed_at"
		if to == models.TripStatusCancelled {
			bookingStatus = models.BookingStatusCancelled
			tsColumn = "cancelled_at"
		}
		query := fmt.Sprintf(
			`UPDATE bookings SET status = ?, %s = ?, version = version + 1 WHERE trip_id = ? AND status = ?`,
			tsColumn)
		if _, err := tx.ExecContext(ctx, query, bookingStatus, now, tripID, models.BookingStatusActive); err != nil {
			return fmt.Errorf("failed to settle trip bookings: %w", err)
		}
	}

	return tx.Commit()
}
