package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"poputka/internal/models"
)

const rideRequestColumns = `id, passenger_id, desired_date, desired_time, time_flexibility,
                            start_address, start_city, finish_address, finish_city,
                            required_seats, max_price, comment, status, created_at, updated_at`

func (db *DB) CreateRideRequest(ctx context.Context, req *models.RideRequest) error {
	query := `INSERT INTO ride_requests (
				passenger_id, desired_date, desired_time, time_flexibility,
				start_address, start_city, finish_address, finish_city,
				required_seats, max_price, comment, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	status := req.Status
	if status == "" {
		status = "active"
	}
	result, err := db.ExecContext(ctx, query,
		req.PassengerID,
		req.DesiredDate,
		req.DesiredTime,
		req.TimeFlexibility,
		req.StartAddress,
		req.StartCity,
		req.FinishAddress,
		req.FinishCity,
		req.RequiredSeats,
		req.MaxPrice,
		req.Comment,
		status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create ride request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	req.Status = status
	req.CreatedAt = now
	req.UpdatedAt = now
	return nil
}

func (db *DB) GetRideRequest(ctx context.Context, id int64) (*models.RideRequest, error) {
	query := `SELECT ` + rideRequestColumns + ` FROM ride_requests WHERE id = ?`
	return scanRideRequest(db.QueryRowContext(ctx, query, id))
}

func scanRideRequest(row rowScanner) (*models.RideRequest, error) {
	var r models.RideRequest
	var desiredTime, startCity, finishCity, comment sql.NullString
	var maxPrice sql.NullFloat64
	err := row.Scan(
		&r.ID, &r.PassengerID, &r.DesiredDate, &desiredTime, &r.TimeFlexibility,
		&r.StartAddress, &startCity, &r.FinishAddress, &finishCity,
		&r.RequiredSeats, &maxPrice, &comment, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRideRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ride request: %w", err)
	}
	r.DesiredTime = desiredTime.String
	r.StartCity = startCity.String
	r.FinishCity = finishCity.String
	r.Comment = comment.String
	r.MaxPrice = maxPrice.Float64
	return &r, nil
}

// SearchRideRequests выбирает активные заявки пассажиров по направлению
// и дате, чтобы водитель мог найти попутчиков для своей поездки.
func (db *DB) SearchRideRequests(ctx context.Context, fromCity, toCity string, date time.Time) ([]*models.RideRequest, error) {
	query := `SELECT ` + rideRequestColumns + ` FROM ride_requests
              WHERE status = 'active' AND desired_date >= ? AND desired_date < ?`
	args := []any{date, date.AddDate(0, 0, 1)}

	if fromCity != "" {
		query += ` AND (start_city LIKE ? OR start_address LIKE ?)`
		pattern := "%" + fromCity + "%"
		args = append(args, pattern, pattern)
	}
	if toCity != "" {
		query += ` AND (finish_city LIKE ? OR finish_address LIKE ?)`
		pattern := "%" + toCity + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY desired_date ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search ride requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.RideRequest
	for rows.Next() {
		req, err := scanRideRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (db *DB) GetPassengerRideRequests(ctx context.Context, passengerID int64) ([]*models.RideRequest, error) {
	query := `SELECT ` + rideRequestColumns + ` FROM ride_requests WHERE passenger_id = ? ORDER BY desired_date DESC`
	rows, err := db.QueryContext(ctx, query, passengerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get passenger ride requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.RideRequest
	for rows.Next() {
		req, err := scanRideRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// CloseRideRequest закрывает заявку; разрешено только её автору.
func (db *DB) CloseRideRequest(ctx context.Context, id, passengerID int64, status string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE ride_requests SET status = ?, updated_at = ? WHERE id = ? AND passenger_id = ? AND status = 'active'`,
		status, time.Now(), id, passengerID)
	if err != nil {
		return fmt.Errorf("failed to close ride request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		req, err := db.GetRideRequest(ctx, id)
		if err != nil {
			return err
		}
		if req.PassengerID != passengerID {
			return ErrForbidden
		}
		return ErrInvalidState
	}
	return nil
}
