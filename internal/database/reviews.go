package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"poputka/internal/models"
)

// CreateReview сохраняет отзыв и пересчитывает средний рейтинг получателя
// в той же транзакции. По одной брони допускается один отзыв от каждого
// участника в адрес другого.
func (db *DB) CreateReview(ctx context.Context, review *models.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return ErrInvalidRating
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	booking, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, review.BookingID))
	if err != nil {
		return err
	}
	if booking.Status != models.BookingStatusCompleted {
		return ErrInvalidState
	}

	var driverID int64
	err = tx.QueryRowContext(ctx, `SELECT driver_id FROM trips WHERE id = ?`, booking.TripID).Scan(&driverID)
	if err != nil {
		return fmt.Errorf("failed to load trip driver: %w", err)
	}
	// Отзыв оставляет один участник брони про другого.
	switch review.ReviewerID {
	case booking.PassengerID:
		review.ReviewedID = driverID
	case driverID:
		review.ReviewedID = booking.PassengerID
	default:
		return ErrForbidden
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reviews (booking_id, reviewer_id, reviewed_id, rating, punctuality, comfort, communication, comment, is_anonymous, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		review.BookingID, review.ReviewerID, review.ReviewedID, review.Rating,
		nullableRating(review.Punctuality), nullableRating(review.Comfort), nullableRating(review.Communication),
		review.Comment, review.IsAnonymous, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrReviewExists
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get review id: %w", err)
	}

	// Отзыв водителю обновляет driver_rating, пассажиру passenger_rating.
	asDriver := review.ReviewedID == driverID
	if err := recomputeRating(ctx, tx, review.ReviewedID, asDriver); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}

	review.ID = id
	review.CreatedAt = now
	return nil
}

// recomputeRating derives the user's average from stored reviews instead
// of incrementally adjusting it, so re-runs always converge.
func recomputeRating(ctx context.Context, tx *sql.Tx, userID int64, asDriver bool) error {
	column := "passenger_rating"
	role := "passenger"
	if asDriver {
		column = "driver_rating"
		role = "driver"
	}

	// Роль получателя в конкретной брони определяется по trips.driver_id.
	query := `SELECT COALESCE(AVG(r.rating), ?) FROM reviews r
              JOIN bookings b ON b.id = r.booking_id
              JOIN trips t ON t.id = b.trip_id
              WHERE r.reviewed_id = ? AND `
	if asDriver {
		query += `t.driver_id = r.reviewed_id`
	} else {
		query += `b.passenger_id = r.reviewed_id`
	}

	var avg float64
	if err := tx.QueryRowContext(ctx, query, models.DefaultRating, userID).Scan(&avg); err != nil {
		return fmt.Errorf("failed to compute %s rating: %w", role, err)
	}

	_, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s = ?, updated_at = ? WHERE id = ?`, column),
		avg, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update %s rating: %w", role, err)
	}
	return nil
}

func nullableRating(v int64) interface{} {
	if v < 1 || v > 5 {
		return nil
	}
	return v
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (db *DB) GetUserReviews(ctx context.Context, userID int64) ([]*models.Review, error) {
	query := `SELECT id, booking_id, reviewer_id, reviewed_id, rating, punctuality, comfort, communication, comment, is_anonymous, created_at
              FROM reviews WHERE reviewed_id = ? ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		var r models.Review
		var punctuality, comfort, communication sql.NullInt64
		var comment sql.NullString
		err := rows.Scan(&r.ID, &r.BookingID, &r.ReviewerID, &r.ReviewedID, &r.Rating,
			&punctuality, &comfort, &communication, &comment, &r.IsAnonymous, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		r.Punctuality = punctuality.Int64
		r.Comfort = comfort.Int64
		r.Communication = communication.Int64
		r.Comment = comment.String
		reviews = append(reviews, &r)
	}
	return reviews, rows.Err()
}
