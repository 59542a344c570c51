package bot

import (
	"context"
	"fmt"
	"time"

	"poputka/internal/models"
)

// StartReminders schedules daily reminders for next-day departures.
func (b *Bot) StartReminders(ctx context.Context) {
	if b == nil || b.tg == nil {
		return
	}

	go func() {
		// Parse reminder hour from config (default if invalid)
		hour := models.ReminderHour
		if b.config.Bot.ReminderTime != "" {
			var m int
			_, err := fmt.Sscanf(b.config.Bot.ReminderTime, "%d:%d", &hour, &m)
			if err != nil {
				b.logger.Error().Err(err).Str("reminder_time", b.config.Bot.ReminderTime).Msg("Invalid reminder time format")
				return
			}
		}

		// First wait until next reminder time local time, then tick every 24h.
		wait := timeUntilNextHour(hour)
		timer := time.NewTimer(wait)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				b.sendTomorrowReminders(ctx)
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}

func (b *Bot) sendTomorrowReminders(ctx context.Context) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	trips, err := b.db.GetDepartingTrips(ctx, start, end)
	if err != nil {
		b.logger.Error().Err(err).Time("start", start).Time("end", end).Msg("reminder: get trips error")
		return
	}

	for _, trip := range trips {
		b.remindDriver(ctx, trip)
		b.remindPassengers(ctx, trip)
	}
}

func (b *Bot) remindDriver(ctx context.Context, trip *models.Trip) {
	driver, err := b.userService.GetUserByID(ctx, trip.DriverID)
	if err != nil {
		b.logger.Error().Err(err).Int64("driver_id", trip.DriverID).Msg("reminder: load driver error")
		return
	}
	if driver.TelegramID == 0 {
		return
	}

	text := fmt.Sprintf("Напоминание: завтра в %s у вас поездка %s. Пассажиров забронировано мест: %d.",
		trip.DepartureTime, routeLabel(trip.StartCity, trip.FinishCity), trip.TotalSeats-trip.AvailableSeats)
	if _, err := b.tg.SendMessage(driver.TelegramID, text); err != nil {
		b.logger.Error().Err(err).Int64("telegram_id", driver.TelegramID).Msg("reminder: send error")
	}
}

func (b *Bot) remindPassengers(ctx context.Context, trip *models.Trip) {
	bookings, err := b.db.GetActiveTripBookings(ctx, trip.ID)
	if err != nil {
		b.logger.Error().Err(err).Int64("trip_id", trip.ID).Msg("reminder: get bookings error")
		return
	}

	for _, booking := range bookings {
		passenger, err := b.userService.GetUserByID(ctx, booking.PassengerID)
		if err != nil {
			b.logger.Error().Err(err).Int64("passenger_id", booking.PassengerID).Msg("reminder: load passenger error")
			continue
		}
		if passenger.TelegramID == 0 {
			continue
		}

		text := fmt.Sprintf("Напоминание: завтра в %s ваша поездка %s. Мест забронировано: %d.",
			trip.DepartureTime, routeLabel(trip.StartCity, trip.FinishCity), booking.BookedSeats)
		if _, err := b.tg.SendMessage(passenger.TelegramID, text); err != nil {
			b.logger.Error().Err(err).Int64("telegram_id", passenger.TelegramID).Msg("reminder: send error")
		}
	}
}

func timeUntilNextHour(hour int) time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
