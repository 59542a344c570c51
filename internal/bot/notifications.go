package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"poputka/internal/events"
	"poputka/internal/models"
)

// subscribeNotifications подключает рассылку уведомлений к событиям домена.
// Водитель узнает о новых и отмененных бронях, пассажиры об отмене поездки.
func (b *Bot) subscribeNotifications() {
	if b.eventBus == nil {
		return
	}

	b.eventBus.Subscribe(events.EventBookingCreated, func(event *events.Event) error {
		return b.notifyDriverAboutBooking(event, "🎫 Новая бронь")
	})

	b.eventBus.Subscribe(events.EventBookingCancelled, func(event *events.Event) error {
		return b.notifyDriverAboutBooking(event, "⛔ Бронь отменена")
	})

	b.eventBus.Subscribe(events.EventTripCancelled, func(event *events.Event) error {
		return b.notifyPassengersAboutCancel(event)
	})
}

func (b *Bot) notifyDriverAboutBooking(event *events.Event, title string) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}
	if payload.DriverID == 0 {
		return nil
	}

	// Водитель сам изменил бронь, уведомлять его не нужно
	if payload.ChangedByID == payload.DriverID {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	driver, err := b.userService.GetUserByID(ctx, payload.DriverID)
	if err != nil {
		return err
	}
	if driver.TelegramID == 0 {
		return nil
	}

	text := fmt.Sprintf("%s: %s, %s, мест: %d",
		title, payload.Route, payload.Departure.Format(userDateLayout), payload.Seats)
	_, err = b.tg.SendMessage(driver.TelegramID, text)
	return err
}

func (b *Bot) notifyPassengersAboutCancel(event *events.Event) error {
	var payload events.TripEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bookings, err := b.bookingService.GetTripBookings(ctx, payload.TripID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("⛔ Поездка %s на %s отменена водителем. Бронь аннулирована.",
		payload.Route, payload.Departure.Format(userDateLayout))

	for _, booking := range bookings {
		if booking.Status == models.BookingStatusCompleted {
			continue
		}
		passenger, err := b.userService.GetUserByID(ctx, booking.PassengerID)
		if err != nil || passenger.TelegramID == 0 {
			continue
		}
		if _, err := b.tg.SendMessage(passenger.TelegramID, text); err != nil {
			b.logger.Error().Err(err).Int64("telegram_id", passenger.TelegramID).Msg("notify passenger error")
		}
	}

	return nil
}
