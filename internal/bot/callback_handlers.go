package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"poputka/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	data := callback.Data
	tgID := callback.From.ID
	chatID := callback.Message.Chat.ID

	// Отвечаем на callback сразу, чтобы убрать "часики"
	if err := b.tg.AnswerCallback(callback.ID, ""); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("answer callback error")
	}

	switch {
	case data == "back_to_main":
		b.clearUserState(ctx, tgID)
		b.sendMainMenu(ctx, chatID, "Главное меню 👇")

	case strings.HasPrefix(data, "trips_page:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "trips_page:"))
		b.sendSearchResults(ctx, chatID, tgID, page)

	case strings.HasPrefix(data, "trip:"):
		b.showTripCard(ctx, chatID, callbackInt64(data, "trip:"))

	case strings.HasPrefix(data, "book:"):
		b.startBookingDialog(ctx, chatID, tgID, callbackInt64(data, "book:"))

	case data == "confirm_booking":
		b.confirmBooking(ctx, chatID, tgID)

	case strings.HasPrefix(data, "cancel_booking:"):
		b.cancelBooking(ctx, chatID, tgID, callbackInt64(data, "cancel_booking:"))

	case strings.HasPrefix(data, "trip_start:"):
		b.changeTripStatus(ctx, chatID, tgID, callbackInt64(data, "trip_start:"), models.TripStatusInProgress)

	case strings.HasPrefix(data, "trip_complete:"):
		b.changeTripStatus(ctx, chatID, tgID, callbackInt64(data, "trip_complete:"), models.TripStatusCompleted)

	case strings.HasPrefix(data, "trip_cancel:"):
		b.changeTripStatus(ctx, chatID, tgID, callbackInt64(data, "trip_cancel:"), models.TripStatusCancelled)

	case data == "car_edit":
		b.setUserState(ctx, tgID, models.StateCarModel, map[string]interface{}{})
		b.askWithCancel(ctx, chatID, "Марка и цвет автомобиля через запятую, например:\nSkoda Octavia, белая")

	case data == "phone_edit":
		b.setUserState(ctx, tgID, models.StatePhoneNumber, map[string]interface{}{})
		b.askPhone(ctx, chatID)

	case strings.HasPrefix(data, "review:"):
		b.startReviewDialog(ctx, chatID, tgID, callbackInt64(data, "review:"))

	case strings.HasPrefix(data, "rate:"):
		b.handleRating(ctx, chatID, tgID, data)
	}
}

func (b *Bot) showTripCard(ctx context.Context, chatID, tripID int64) {
	trip, err := b.tripService.GetTrip(ctx, tripID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	driver, err := b.userService.GetUserByID(ctx, trip.DriverID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("driver_id", trip.DriverID).Msg("get driver error")
		driver = nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if trip.Bookable() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎫 Забронировать", fmt.Sprintf("book:%d", trip.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "back_to_main"),
	))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.tg.SendWithInlineKeyboard(chatID, formatTripCard(trip, driver), keyboard); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("send error")
	}
}

func (b *Bot) startBookingDialog(ctx context.Context, chatID, tgID, tripID int64) {
	trip, err := b.tripService.GetTrip(ctx, tripID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	if !trip.Bookable() {
		b.reply(chatID, "⚠️ Эта поездка больше не принимает бронирования.")
		return
	}

	b.setUserState(ctx, tgID, models.StateBookingSeats, map[string]interface{}{
		"trip_id": tripID,
	})
	b.askWithCancel(ctx, chatID, fmt.Sprintf("Сколько мест бронируем? Свободно: %d", trip.AvailableSeats))
}

func (b *Bot) confirmBooking(ctx context.Context, chatID, tgID int64) {
	state := b.getUserState(ctx, tgID)
	if state == nil || state.GetInt64("trip_id") == 0 || state.GetInt64("seats") == 0 {
		b.sendMainMenu(ctx, chatID, "Бронирование устарело, начните заново.")
		return
	}

	user, err := b.userService.GetUserByTelegramID(ctx, tgID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	trip, err := b.tripService.GetTrip(ctx, state.GetInt64("trip_id"))
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	booking := &models.Booking{
		TripID:      trip.ID,
		PassengerID: user.ID,
		BookedSeats: state.GetInt64("seats"),
	}

	start := time.Now()
	if err := b.bookingService.CreateBooking(ctx, booking); err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		b.clearUserState(ctx, tgID)
		return
	}

	route := routeLabel(trip.StartCity, trip.FinishCity)
	if b.metrics != nil {
		b.metrics.BookingsCreated.WithLabelValues(route).Inc()
		b.metrics.BookingDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}

	b.clearUserState(ctx, tgID)
	b.sendMainMenu(ctx, chatID, "✅ Место забронировано!\n\n"+formatBookingCard(booking, trip))
}

func (b *Bot) cancelBooking(ctx context.Context, chatID, tgID, bookingID int64) {
	user, err := b.userService.GetUserByTelegramID(ctx, tgID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	booking, err := b.bookingService.CancelBooking(ctx, bookingID, user.ID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	b.sendMainMenu(ctx, chatID, fmt.Sprintf("✅ Бронь #%d отменена. Места вернулись в продажу.", booking.ID))
}

func (b *Bot) changeTripStatus(ctx context.Context, chatID, tgID, tripID int64, target string) {
	user, err := b.userService.GetUserByTelegramID(ctx, tgID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	switch target {
	case models.TripStatusInProgress:
		err = b.tripService.StartTrip(ctx, tripID, user.ID)
	case models.TripStatusCompleted:
		err = b.tripService.CompleteTrip(ctx, tripID, user.ID)
	case models.TripStatusCancelled:
		err = b.tripService.CancelTrip(ctx, tripID, user.ID)
	default:
		return
	}
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	b.sendMainMenu(ctx, chatID, fmt.Sprintf("✅ Поездка #%d: %s", tripID, tripStatusText(target)))
}

func (b *Bot) startReviewDialog(ctx context.Context, chatID, tgID, bookingID int64) {
	booking, err := b.bookingService.GetBooking(ctx, bookingID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	if booking.Status != models.BookingStatusCompleted {
		b.reply(chatID, "⚠️ Отзыв можно оставить только после завершения поездки.")
		return
	}

	b.setUserState(ctx, tgID, models.StateReviewRating, map[string]interface{}{
		"booking_id": bookingID,
	})

	var row []tgbotapi.InlineKeyboardButton
	for i := 1; i <= 5; i++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			strings.Repeat("⭐", i), fmt.Sprintf("rate:%d:%d", bookingID, i)))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
	if _, err := b.tg.SendWithInlineKeyboard(chatID, "Как прошла поездка? Поставьте оценку:", keyboard); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("send error")
	}
}

func (b *Bot) handleRating(ctx context.Context, chatID, tgID int64, data string) {
	parts := strings.Split(strings.TrimPrefix(data, "rate:"), ":")
	if len(parts) != 2 {
		return
	}
	bookingID, _ := strconv.ParseInt(parts[0], 10, 64)
	rating, _ := strconv.ParseInt(parts[1], 10, 64)
	if bookingID == 0 || rating < 1 || rating > 5 {
		return
	}

	b.setUserState(ctx, tgID, models.StateReviewComment, map[string]interface{}{
		"booking_id": bookingID,
		"rating":     rating,
	})
	b.askWithCancel(ctx, chatID, "Добавьте комментарий или отправьте «-», чтобы пропустить:")
}

func (b *Bot) askPhone(ctx context.Context, chatID int64) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("📱 Поделиться телефоном"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelInput),
		),
	)
	keyboard.ResizeKeyboard = true
	keyboard.OneTimeKeyboard = true

	if _, err := b.tg.SendWithKeyboard(chatID, "Отправьте номер телефона или нажмите кнопку ниже:", keyboard); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("send error")
	}
}
