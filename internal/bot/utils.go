package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"poputka/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Кнопки главного меню
const (
	btnSearchTrip  = "🔍 Найти поездку"
	btnCreateTrip  = "🚗 Создать поездку"
	btnMyTrips     = "📋 Мои поездки"
	btnMyBookings  = "🎫 Мои брони"
	btnProfile     = "👤 Профиль"
	btnHelp        = "ℹ️ Помощь"
	btnCancelInput = "❌ Отмена"
)

const userDateLayout = "02.01.2006"

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSearchTrip),
			tgbotapi.NewKeyboardButton(btnCreateTrip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMyTrips),
			tgbotapi.NewKeyboardButton(btnMyBookings),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnProfile),
			tgbotapi.NewKeyboardButton(btnHelp),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelInput),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// cityKeyboard собирает подсказки из справочника городов по две в ряд.
// Без справочника остаётся только кнопка отмены.
func cityKeyboard(cities []models.City) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, city := range cities {
		row = append(row, tgbotapi.NewKeyboardButton(city.Name))
		if len(row) == 2 {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelInput)))

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// parseUserDate понимает "сегодня", "завтра" и дату в формате 02.01.2006.
func parseUserDate(input string) (time.Time, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "сегодня":
		return today, nil
	case "завтра":
		return today.Add(24 * time.Hour), nil
	}

	t, err := time.ParseInLocation(userDateLayout, strings.TrimSpace(input), now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("не удалось распознать дату %q", input)
	}
	return t, nil
}

// parseUserDateTime разбирает "02.01.2006 15:04" на дату и время отправления.
func parseUserDateTime(input string) (time.Time, string, error) {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) != 2 {
		return time.Time{}, "", fmt.Errorf("ожидается дата и время, например 15.06.2026 09:30")
	}

	date, err := parseUserDate(parts[0])
	if err != nil {
		return time.Time{}, "", err
	}

	if _, err := time.Parse("15:04", parts[1]); err != nil {
		return time.Time{}, "", fmt.Errorf("не удалось распознать время %q", parts[1])
	}

	return date, parts[1], nil
}

func parseSeats(input string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("введите число")
	}
	if n < 1 || n > models.MaxSeatsPerTrip {
		return 0, fmt.Errorf("число мест должно быть от 1 до %d", models.MaxSeatsPerTrip)
	}
	return n, nil
}

func parsePrice(input string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	p, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || p < 0 {
		return 0, fmt.Errorf("введите цену числом, например 450")
	}
	return p, nil
}

func routeLabel(fromCity, toCity string) string {
	return fromCity + " → " + toCity
}

func tripStatusText(status string) string {
	switch status {
	case models.TripStatusActive:
		return "🟢 Набор открыт"
	case models.TripStatusFull:
		return "🔴 Мест нет"
	case models.TripStatusInProgress:
		return "🚗 В пути"
	case models.TripStatusCompleted:
		return "🏁 Завершена"
	case models.TripStatusCancelled:
		return "⛔ Отменена"
	default:
		return status
	}
}

func bookingStatusText(status string) string {
	switch status {
	case models.BookingStatusActive:
		return "🟢 Активна"
	case models.BookingStatusCancelled:
		return "⛔ Отменена"
	case models.BookingStatusCompleted:
		return "🏁 Завершена"
	default:
		return status
	}
}

// formatTripCard собирает подробную карточку поездки.
func formatTripCard(trip *models.Trip, driver *models.User) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🚗 Поездка #%d\n", trip.ID))
	sb.WriteString(fmt.Sprintf("📍 %s\n", routeLabel(trip.StartCity, trip.FinishCity)))
	if trip.StartAddress != "" {
		sb.WriteString(fmt.Sprintf("🅰️ Отправление: %s\n", trip.StartAddress))
	}
	if trip.FinishAddress != "" {
		sb.WriteString(fmt.Sprintf("🅱️ Прибытие: %s\n", trip.FinishAddress))
	}
	sb.WriteString(fmt.Sprintf("🗓 %s в %s\n", trip.DepartureDate.Format(userDateLayout), trip.DepartureTime))
	sb.WriteString(fmt.Sprintf("💺 Свободно мест: %d из %d\n", trip.AvailableSeats, trip.TotalSeats))
	sb.WriteString(fmt.Sprintf("💰 Цена за место: %.0f ₽\n", trip.PricePerSeat))
	sb.WriteString(fmt.Sprintf("Статус: %s\n", tripStatusText(trip.Status)))

	if driver != nil {
		sb.WriteString(fmt.Sprintf("\n👤 Водитель: %s", driver.FullName()))
		if driver.DriverRating > 0 {
			sb.WriteString(fmt.Sprintf(" ⭐ %.1f", driver.DriverRating))
		}
		sb.WriteString("\n")
		if driver.CarModel != "" {
			car := driver.CarModel
			if driver.CarColor != "" {
				car += ", " + driver.CarColor
			}
			if driver.CarPlate != "" {
				car += ", " + driver.CarPlate
			}
			sb.WriteString(fmt.Sprintf("🚘 %s\n", car))
		}
	}

	if trip.Comment != "" {
		sb.WriteString(fmt.Sprintf("\n💬 %s\n", trip.Comment))
	}

	var extras []string
	if trip.AllowSmoking {
		extras = append(extras, "🚬 можно курить")
	}
	if trip.AllowAnimals {
		extras = append(extras, "🐾 можно с животными")
	}
	if trip.AllowLuggage {
		extras = append(extras, "🧳 багаж")
	}
	if len(extras) > 0 {
		sb.WriteString(strings.Join(extras, " · "))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatTripLine короткая строка поездки для списков.
func formatTripLine(trip *models.Trip) string {
	return fmt.Sprintf("#%d %s · %s %s · %d мест · %.0f ₽",
		trip.ID,
		routeLabel(trip.StartCity, trip.FinishCity),
		trip.DepartureDate.Format(userDateLayout),
		trip.DepartureTime,
		trip.AvailableSeats,
		trip.PricePerSeat)
}

func formatBookingCard(booking *models.Booking, trip *models.Trip) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🎫 Бронь #%d\n", booking.ID))
	if trip != nil {
		sb.WriteString(fmt.Sprintf("📍 %s\n", routeLabel(trip.StartCity, trip.FinishCity)))
		sb.WriteString(fmt.Sprintf("🗓 %s в %s\n", trip.DepartureDate.Format(userDateLayout), trip.DepartureTime))
	}
	sb.WriteString(fmt.Sprintf("💺 Мест: %d\n", booking.BookedSeats))
	if booking.PriceAgreed > 0 {
		sb.WriteString(fmt.Sprintf("💰 К оплате: %.0f ₽ (%.0f ₽/место)\n",
			booking.PriceAgreed*float64(booking.BookedSeats), booking.PriceAgreed))
	}
	if booking.MeetingPoint != "" {
		sb.WriteString(fmt.Sprintf("🤝 Место встречи: %s\n", booking.MeetingPoint))
	}
	sb.WriteString(fmt.Sprintf("Статус: %s\n", bookingStatusText(booking.Status)))

	return sb.String()
}

func formatProfile(user *models.User) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("👤 %s\n", user.FullName()))
	if user.Username != "" {
		sb.WriteString(fmt.Sprintf("@%s\n", user.Username))
	}
	if user.Phone != "" {
		sb.WriteString(fmt.Sprintf("📱 %s\n", user.Phone))
	}

	sb.WriteString(fmt.Sprintf("\n⭐ Рейтинг водителя: %.1f (поездок: %d)\n", user.DriverRating, user.TotalDriverTrips))
	sb.WriteString(fmt.Sprintf("⭐ Рейтинг пассажира: %.1f (поездок: %d)\n", user.PassengerRating, user.TotalPassengerTrips))

	if user.HasCar {
		sb.WriteString("\n🚘 Автомобиль: ")
		sb.WriteString(user.CarModel)
		if user.CarColor != "" {
			sb.WriteString(", " + user.CarColor)
		}
		if user.CarPlate != "" {
			sb.WriteString(", " + user.CarPlate)
		}
		sb.WriteString(fmt.Sprintf("\n💺 Мест для пассажиров: %d\n", user.CarSeats))
	} else {
		sb.WriteString("\n🚘 Автомобиль не указан\n")
	}

	return sb.String()
}

func callbackInt64(data, prefix string) int64 {
	id, _ := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	return id
}
