package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"poputka/internal/models"
)

const userColumns = `id, telegram_id, username, first_name, last_name, phone, language_code,
                     has_car, car_model, car_color, car_plate, car_type, car_seats,
                     driver_rating, passenger_rating, total_driver_trips, total_passenger_trips,
                     role, is_active, last_activity, created_at, updated_at`

func (db *DB) CreateOrUpdateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (
				telegram_id, username, first_name, last_name, phone, language_code,
				role, is_active, last_activity, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(telegram_id) DO UPDATE SET
                username = excluded.username,
                first_name = excluded.first_name,
                last_name = COALESCE(NULLIF(excluded.last_name, ''), last_name),
                language_code = COALESCE(NULLIF(excluded.language_code, ''), language_code),
                last_activity = excluded.last_activity,
                updated_at = excluded.updated_at`
	lastActivity := user.LastActivity
	if lastActivity.IsZero() {
		lastActivity = time.Now()
	}
	role := user.Role
	if role == "" {
		role = models.RolePassenger
	}
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.LanguageCode,
		role,
		true,
		lastActivity,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create or update user: %w", err)
	}

	stored, err := db.GetUserByTelegramID(ctx, user.TelegramID)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

func (db *DB) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = ?`
	return db.queryUser(ctx, query, telegramID)
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return db.queryUser(ctx, query, id)
}

func (db *DB) queryUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	var username, lastName, phone, langCode sql.NullString
	var carModel, carColor, carPlate, carType sql.NullString
	err := db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.TelegramID, &username, &u.FirstName, &lastName, &phone, &langCode,
		&u.HasCar, &carModel, &carColor, &carPlate, &carType, &u.CarSeats,
		&u.DriverRating, &u.PassengerRating, &u.TotalDriverTrips, &u.TotalPassengerTrips,
		&u.Role, &u.IsActive, &u.LastActivity, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.Username = username.String
	u.LastName = lastName.String
	u.Phone = phone.String
	u.LanguageCode = langCode.String
	u.CarModel = carModel.String
	u.CarColor = carColor.String
	u.CarPlate = carPlate.String
	u.CarType = carType.String
	return &u, nil
}

// UpdateCarProfile применяет только явно переданные поля профиля.
func (db *DB) UpdateCarProfile(ctx context.Context, telegramID int64, profile models.CarProfile) (*models.User, error) {
	user, err := db.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	if profile.Phone != nil {
		user.Phone = *profile.Phone
	}
	if profile.CarModel != nil {
		user.CarModel = *profile.CarModel
	}
	if profile.CarColor != nil {
		user.CarColor = *profile.CarColor
	}
	if profile.CarPlate != nil {
		user.CarPlate = *profile.CarPlate
	}
	if profile.CarType != nil {
		user.CarType = *profile.CarType
	}
	if profile.CarSeats != nil {
		user.CarSeats = *profile.CarSeats
	}
	if profile.HasCar != nil {
		user.Role = nextRole(user.Role, user.HasCar, *profile.HasCar)
		user.HasCar = *profile.HasCar
	}

	query := `UPDATE users SET phone = ?, has_car = ?, car_model = ?, car_color = ?,
	                 car_plate = ?, car_type = ?, car_seats = ?, role = ?, updated_at = ?
              WHERE telegram_id = ?`
	_, err = db.ExecContext(ctx, query,
		user.Phone, user.HasCar, user.CarModel, user.CarColor,
		user.CarPlate, user.CarType, user.CarSeats, user.Role, time.Now(),
		telegramID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update car profile: %w", err)
	}
	return user, nil
}

// nextRole flips passenger/both/driver when a car is added or removed.
func nextRole(role string, hadCar, hasCar bool) string {
	switch {
	case hasCar && !hadCar:
		if role == models.RolePassenger || role == "" {
			return models.RoleBoth
		}
	case !hasCar && hadCar:
		if role == models.RoleDriver || role == models.RoleBoth {
			return models.RolePassenger
		}
	}
	return role
}

func (db *DB) UpdateUserActivity(ctx context.Context, telegramID int64) error {
	query := `UPDATE users SET last_activity = ?, updated_at = ? WHERE telegram_id = ?`
	now := time.Now()
	_, err := db.ExecContext(ctx, query, now, now, telegramID)
	return err
}

// IncrementDriverTrips bumps the driver trip counter after a trip is published.
func (db *DB) IncrementDriverTrips(ctx context.Context, userID int64) error {
	query := `UPDATE users SET total_driver_trips = total_driver_trips + 1, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, time.Now(), userID)
	return err
}

// IncrementPassengerTrips bumps the passenger trip counter after a booking commits.
func (db *DB) IncrementPassengerTrips(ctx context.Context, userID int64) error {
	query := `UPDATE users SET total_passenger_trips = total_passenger_trips + 1, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, time.Now(), userID)
	return err
}

// UpdateUserRating stores a recomputed aggregate rating for the given side.
func (db *DB) UpdateUserRating(ctx context.Context, userID int64, asDriver bool, rating float64) error {
	column := "passenger_rating"
	if asDriver {
		column = "driver_rating"
	}
	query := fmt.Sprintf(`UPDATE users SET %s = ?, updated_at = ? WHERE id = ?`, column)
	_, err := db.ExecContext(ctx, query, rating, time.Now(), userID)
	return err
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		var username, lastName, phone, langCode sql.NullString
		var carModel, carColor, carPlate, carType sql.NullString
		err := rows.Scan(
			&u.ID, &u.TelegramID, &username, &u.FirstName, &lastName, &phone, &langCode,
			&u.HasCar, &carModel, &carColor, &carPlate, &carType, &u.CarSeats,
			&u.DriverRating, &u.PassengerRating, &u.TotalDriverTrips, &u.TotalPassengerTrips,
			&u.Role, &u.IsActive, &u.LastActivity, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Username = username.String
		u.LastName = lastName.String
		u.Phone = phone.String
		u.LanguageCode = langCode.String
		u.CarModel = carModel.String
		u.CarColor = carColor.String
		u.CarPlate = carPlate.String
		u.CarType = carType.String
		users = append(users, &u)
	}
	return users, rows.Err()
}

// GetActiveUsers возвращает пользователей с активностью за последние N дней.
func (db *DB) GetActiveUsers(ctx context.Context, days int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE last_activity >= ? ORDER BY last_activity DESC`
	cutoff := time.Now().AddDate(0, 0, -days)
	rows, err := db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get active users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		var username, lastName, phone, langCode sql.NullString
		var carModel, carColor, carPlate, carType sql.NullString
		err := rows.Scan(
			&u.ID, &u.TelegramID, &username, &u.FirstName, &lastName, &phone, &langCode,
			&u.HasCar, &carModel, &carColor, &carPlate, &carType, &u.CarSeats,
			&u.DriverRating, &u.PassengerRating, &u.TotalDriverTrips, &u.TotalPassengerTrips,
			&u.Role, &u.IsActive, &u.LastActivity, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Username = username.String
		u.LastName = lastName.String
		u.Phone = phone.String
		u.LanguageCode = langCode.String
		u.CarModel = carModel.String
		u.CarColor = carColor.String
		u.CarPlate = carPlate.String
		u.CarType = carType.String
		users = append(users, &u)
	}
	return users, rows.Err()
}
