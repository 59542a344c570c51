package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// busy_timeout смягчает SQLITE_BUSY при конкурирующих транзакциях
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	logger.Info().Str("path", path).Msg("database initialized")

	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Таблица пользователей
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            telegram_id INTEGER UNIQUE NOT NULL,
            username TEXT,
            first_name TEXT NOT NULL,
            last_name TEXT,
            phone TEXT,
            language_code TEXT,
            has_car BOOLEAN NOT NULL DEFAULT 0,
            car_model TEXT,
            car_color TEXT,
            car_plate TEXT,
            car_type TEXT,
            car_seats INTEGER NOT NULL DEFAULT 4,
            driver_rating REAL NOT NULL DEFAULT 5.0,
            passenger_rating REAL NOT NULL DEFAULT 5.0,
            total_driver_trips INTEGER NOT NULL DEFAULT 0,
            total_passenger_trips INTEGER NOT NULL DEFAULT 0,
            role TEXT NOT NULL DEFAULT 'passenger',
            is_active BOOLEAN NOT NULL DEFAULT 1,
            last_activity DATETIME NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Таблица поездок водителей
		`CREATE TABLE IF NOT EXISTS trips (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            driver_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            departure_date DATETIME NOT NULL,
            departure_time TEXT,
            start_address TEXT NOT NULL,
            start_city TEXT,
            finish_address TEXT NOT NULL,
            finish_city TEXT,
            total_seats INTEGER NOT NULL,
            available_seats INTEGER NOT NULL CHECK (available_seats >= 0),
            price_per_seat REAL NOT NULL,
            comment TEXT,
            allow_smoking BOOLEAN NOT NULL DEFAULT 0,
            allow_animals BOOLEAN NOT NULL DEFAULT 0,
            allow_luggage BOOLEAN NOT NULL DEFAULT 1,
            status TEXT NOT NULL DEFAULT 'active',
            version INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Таблица запросов пассажиров
		`CREATE TABLE IF NOT EXISTS ride_requests (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            passenger_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            desired_date DATETIME NOT NULL,
            desired_time TEXT,
            time_flexibility INTEGER NOT NULL DEFAULT 30,
            start_address TEXT NOT NULL,
            start_city TEXT,
            finish_address TEXT NOT NULL,
            finish_city TEXT,
            required_seats INTEGER NOT NULL DEFAULT 1,
            max_price REAL,
            comment TEXT,
            status TEXT NOT NULL DEFAULT 'active',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Таблица бронирований
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            trip_id INTEGER NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
            passenger_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            booked_seats INTEGER NOT NULL CHECK (booked_seats >= 1),
            price_agreed REAL NOT NULL,
            meeting_point TEXT,
            notes TEXT,
            status TEXT NOT NULL DEFAULT 'active',
            booked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            cancelled_at DATETIME,
            completed_at DATETIME,
            version INTEGER NOT NULL DEFAULT 1
        )`,

		// Таблица отзывов: один отзыв на бронирование
		`CREATE TABLE IF NOT EXISTS reviews (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            booking_id INTEGER UNIQUE NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
            reviewer_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            reviewed_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
            punctuality INTEGER,
            comfort INTEGER,
            communication INTEGER,
            comment TEXT,
            is_anonymous BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Таблица сообщений
		`CREATE TABLE IF NOT EXISTS messages (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            booking_id INTEGER REFERENCES bookings(id) ON DELETE CASCADE,
            sender_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            receiver_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            content TEXT NOT NULL,
            is_read BOOLEAN NOT NULL DEFAULT 0,
            sent_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Очередь синхронизации для экспорта
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            booking_id INTEGER NOT NULL,
            payload TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_users_telegram_id ON users(telegram_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_driver_id ON trips(driver_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_status ON trips(status)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_departure ON trips(departure_date)`,
		`CREATE INDEX IF NOT EXISTS idx_ride_requests_passenger ON ride_requests(passenger_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_trip_id ON bookings(trip_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_passenger_id ON bookings(passenger_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_booking_id ON messages(booking_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
