package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"poputka/internal/models"
)

const bookingColumns = `id, trip_id, passenger_id, booked_seats, price_agreed, meeting_point,
                        notes, status, booked_at, cancelled_at, completed_at, version`

// CreateBookingWithLock атомарно бронирует места: проверка статуса,
// вместимости и дубликата, вставка брони и списание мест идут в одной
// транзакции. Гонка за последние места решается CAS по version: при
// проигрыше возвращается ErrConcurrentModification, и вызывающий слой
// повторяет попытку.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	if booking.BookedSeats < 1 || booking.BookedSeats > models.MaxSeatsPerTrip {
		return ErrInvalidSeats
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var driverID int64
	var status string
	var availableSeats int64
	var pricePerSeat float64
	var version int64
	err = tx.QueryRowContext(ctx,
		`SELECT driver_id, status, available_seats, price_per_seat, version FROM trips WHERE id = ?`,
		booking.TripID).Scan(&driverID, &status, &availableSeats, &pricePerSeat, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTripNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load trip: %w", err)
	}

	if status != models.TripStatusActive {
		return ErrTripUnavailable
	}
	if driverID == booking.PassengerID {
		return ErrForbidden
	}
	if availableSeats < booking.BookedSeats {
		return ErrNoSeats
	}

	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE trip_id = ? AND passenger_id = ? AND status = ?`,
		booking.TripID, booking.PassengerID, models.BookingStatusActive).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check existing booking: %w", err)
	}
	if existing > 0 {
		return ErrDuplicateBooking
	}

	now := time.Now()
	// Фиксируется цена за место на момент брони, итог считается на выводе.
	booking.PriceAgreed = pricePerSeat

	result, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (trip_id, passenger_id, booked_seats, price_agreed, meeting_point, notes, status, booked_at, version)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		booking.TripID, booking.PassengerID, booking.BookedSeats, booking.PriceAgreed,
		booking.MeetingPoint, booking.Notes, models.BookingStatusActive, now)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	bookingID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get booking id: %w", err)
	}

	// Списание мест охраняется версией и повторной проверкой остатка.
	// Статус переключается на full ровно в момент обнуления мест.
	result, err = tx.ExecContext(ctx,
		`UPDATE trips
         SET available_seats = available_seats - ?,
             status = CASE WHEN available_seats - ? = 0 THEN ? ELSE status END,
             version = version + 1,
             updated_at = ?
         WHERE id = ? AND version = ? AND status = ? AND available_seats >= ?`,
		booking.BookedSeats, booking.BookedSeats, models.TripStatusFull,
		now, booking.TripID, version, models.TripStatusActive, booking.BookedSeats)
	if err != nil {
		return fmt.Errorf("failed to reserve seats: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	booking.ID = bookingID
	booking.Status = models.BookingStatusActive
	booking.BookedAt = now
	booking.Version = 1
	return nil
}

// CancelBookingWithLock отменяет бронь от имени пассажира или водителя.
// Места возвращаются в поездку только при отмене пассажиром, тогда же
// заполненная поездка снова становится active. Отмена водителем мест
// не освобождает.
func (db *DB) CancelBookingWithLock(ctx context.Context, bookingID, actorID int64) (*models.Booking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	booking, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, bookingID))
	if err != nil {
		return nil, err
	}

	var driverID int64
	var tripStatus string
	var tripVersion int64
	err = tx.QueryRowContext(ctx,
		`SELECT driver_id, status, version FROM trips WHERE id = ?`, booking.TripID).
		Scan(&driverID, &tripStatus, &tripVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load trip: %w", err)
	}

	if actorID != booking.PassengerID && actorID != driverID {
		return nil, ErrForbidden
	}
	if booking.Status != models.BookingStatusActive {
		return nil, ErrInvalidState
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, cancelled_at = ?, version = version + 1 WHERE id = ? AND version = ?`,
		models.BookingStatusCancelled, now, booking.ID, booking.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, ErrConcurrentModification
	}

	// Места возвращаются только пассажиру и только пока поездка не началась.
	if actorID == booking.PassengerID &&
		(tripStatus == models.TripStatusActive || tripStatus == models.TripStatusFull) {
		result, err = tx.ExecContext(ctx,
			`UPDATE trips
             SET available_seats = available_seats + ?,
                 status = ?,
                 version = version + 1,
                 updated_at = ?
             WHERE id = ? AND version = ?`,
			booking.BookedSeats, models.TripStatusActive, now, booking.TripID, tripVersion)
		if err != nil {
			return nil, fmt.Errorf("failed to return seats: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return nil, ErrConcurrentModification
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	booking.Status = models.BookingStatusCancelled
	booking.CancelledAt = &now
	booking.Version++
	return booking, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return scanBooking(db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var meetingPoint, notes sql.NullString
	var cancelledAt, completedAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.TripID, &b.PassengerID, &b.BookedSeats, &b.PriceAgreed, &meetingPoint,
		&notes, &b.Status, &b.BookedAt, &cancelledAt, &completedAt, &b.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	b.MeetingPoint = meetingPoint.String
	b.Notes = notes.String
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	return &b, nil
}

func (db *DB) GetUserBookings(ctx context.Context, passengerID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE passenger_id = ? ORDER BY booked_at DESC`
	return db.queryBookings(ctx, query, passengerID)
}

func (db *DB) GetTripBookings(ctx context.Context, tripID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE trip_id = ? ORDER BY booked_at ASC`
	return db.queryBookings(ctx, query, tripID)
}

// GetActiveTripBookings возвращает только действующие брони поездки.
func (db *DB) GetActiveTripBookings(ctx context.Context, tripID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE trip_id = ? AND status = ? ORDER BY booked_at ASC`
	return db.queryBookings(ctx, query, tripID, models.BookingStatusActive)
}

// GetAllBookings используется воркером выгрузки для полной синхронизации таблицы.
func (db *DB) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY booked_at ASC`
	return db.queryBookings(ctx, query)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// GetBookingStats считает агрегаты для /stats и экспорта.
func (db *DB) GetBookingStats(ctx context.Context) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan booking stats: %w", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}
