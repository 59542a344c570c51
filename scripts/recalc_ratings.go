package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"poputka/internal/database"
	"poputka/internal/models"

	"github.com/rs/zerolog"
)

// Пересчитывает рейтинги всех пользователей по сохраненным отзывам.
// Нужен после ручных правок в таблице reviews.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	dbPath := flag.String("db", "./data/poputka.db", "path to sqlite db")
	flag.Parse()

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, err := db.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("get users: %w", err)
	}

	updated := 0
	for _, user := range users {
		driverAvg, err := averageRating(ctx, db, user.ID, true)
		if err != nil {
			return fmt.Errorf("driver rating for user %d: %w", user.ID, err)
		}
		passengerAvg, err := averageRating(ctx, db, user.ID, false)
		if err != nil {
			return fmt.Errorf("passenger rating for user %d: %w", user.ID, err)
		}

		if driverAvg == user.DriverRating && passengerAvg == user.PassengerRating {
			continue
		}

		_, err = db.ExecContext(ctx,
			`UPDATE users SET driver_rating = ?, passenger_rating = ?, updated_at = ? WHERE id = ?`,
			driverAvg, passengerAvg, time.Now(), user.ID)
		if err != nil {
			return fmt.Errorf("update user %d: %w", user.ID, err)
		}
		updated++
	}

	fmt.Printf("done: users=%d updated=%d\n", len(users), updated)
	return nil
}

func averageRating(ctx context.Context, db *database.DB, userID int64, asDriver bool) (float64, error) {
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
	if err := db.QueryRowContext(ctx, query, models.DefaultRating, userID).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}
