package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"poputka/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	chatID := msg.Chat.ID
	tgID := msg.From.ID

	if b.metrics != nil {
		b.metrics.MessagesProcessed.Inc()
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, update)
		return
	}

	// Контакт приходит при нажатии кнопки "Поделиться телефоном"
	if msg.Contact != nil {
		b.handlePhoneShared(ctx, chatID, tgID, msg.Contact.PhoneNumber)
		return
	}

	switch msg.Text {
	case btnCancelInput:
		b.clearUserState(ctx, tgID)
		b.sendMainMenu(ctx, chatID, "Действие отменено.")
		return
	case btnSearchTrip:
		b.startSearchDialog(ctx, chatID, tgID)
		return
	case btnCreateTrip:
		b.startCreateTripDialog(ctx, chatID, tgID)
		return
	case btnMyTrips:
		b.showMyTrips(ctx, chatID, tgID)
		return
	case btnMyBookings:
		b.showMyBookings(ctx, chatID, tgID)
		return
	case btnProfile:
		b.showProfile(ctx, chatID, tgID)
		return
	case btnHelp:
		b.sendHelp(chatID, b.userService.IsManager(tgID))
		return
	}

	state := b.getUserState(ctx, tgID)
	if state == nil || state.CurrentStep == "" || state.CurrentStep == models.StateMainMenu {
		b.sendMainMenu(ctx, chatID, "Выберите действие в меню 👇")
		return
	}

	switch state.CurrentStep {
	case models.StateSearchFrom:
		b.handleSearchFrom(ctx, chatID, tgID, state, msg.Text)
	case models.StateSearchTo:
		b.handleSearchTo(ctx, chatID, tgID, state, msg.Text)
	case models.StateSearchDate:
		b.handleSearchDate(ctx, chatID, tgID, state, msg.Text)
	case models.StateTripFrom:
		b.handleTripFrom(ctx, chatID, tgID, state, msg.Text)
	case models.StateTripTo:
		b.handleTripTo(ctx, chatID, tgID, state, msg.Text)
	case models.StateTripDate:
		b.handleTripDate(ctx, chatID, tgID, state, msg.Text)
	case models.StateTripSeats:
		b.handleTripSeats(ctx, chatID, tgID, state, msg.Text)
	case models.StateTripPrice:
		b.handleTripPrice(ctx, chatID, tgID, state, msg.Text)
	case models.StateBookingSeats:
		b.handleBookingSeats(ctx, chatID, tgID, state, msg.Text)
	case models.StateCarModel:
		b.handleCarModel(ctx, chatID, tgID, state, msg.Text)
	case models.StateCarPlate:
		b.handleCarPlate(ctx, chatID, tgID, state, msg.Text)
	case models.StatePhoneNumber:
		b.handlePhoneShared(ctx, chatID, tgID, msg.Text)
	case models.StateReviewComment:
		b.handleReviewComment(ctx, chatID, tgID, state, msg.Text)
	default:
		b.clearUserState(ctx, tgID)
		b.sendMainMenu(ctx, chatID, "Выберите действие в меню 👇")
	}
}

func (b *Bot) handleCommand(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	chatID := msg.Chat.ID
	tgID := msg.From.ID

	if b.metrics != nil {
		b.metrics.CommandsProcessed.Inc()
	}

	switch msg.Command() {
	case "start":
		b.registerUser(ctx, msg.From)
		b.clearUserState(ctx, tgID)
		b.sendMainMenu(ctx, chatID,
			"Привет! Я помогаю найти попутчиков: водители публикуют поездки, пассажиры бронируют места.")
	case "help":
		b.sendHelp(chatID, b.userService.IsManager(tgID))
	case "find":
		b.startSearchDialog(ctx, chatID, tgID)
	case "newtrip":
		b.startCreateTripDialog(ctx, chatID, tgID)
	case "mytrips":
		b.showMyTrips(ctx, chatID, tgID)
	case "mybookings":
		b.showMyBookings(ctx, chatID, tgID)
	case "profile":
		b.showProfile(ctx, chatID, tgID)
	case "cancel":
		b.clearUserState(ctx, tgID)
		b.sendMainMenu(ctx, chatID, "Действие отменено.")
	case "stats":
		if b.userService.IsManager(tgID) {
			b.handleManagerStats(ctx, chatID)
			return
		}
		b.reply(chatID, "Неизвестная команда. Наберите /help.")
	case "export":
		if b.userService.IsManager(tgID) {
			b.handleManagerExport(ctx, chatID)
			return
		}
		b.reply(chatID, "Неизвестная команда. Наберите /help.")
	case "sync":
		if b.userService.IsManager(tgID) {
			b.handleManagerSync(ctx, chatID)
			return
		}
		b.reply(chatID, "Неизвестная команда. Наберите /help.")
	default:
		b.reply(chatID, "Неизвестная команда. Наберите /help.")
	}
}

func (b *Bot) registerUser(ctx context.Context, from *tgbotapi.User) {
	if from == nil {
		return
	}
	user := &models.User{
		TelegramID:   from.ID,
		Username:     from.UserName,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		LanguageCode: from.LanguageCode,
	}
	if err := b.userService.SaveUser(ctx, user); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("telegram_id", from.ID).Msg("save user error")
	}
}

func (b *Bot) sendMainMenu(ctx context.Context, chatID int64, text string) {
	if _, err := b.tg.SendWithKeyboard(chatID, text, mainMenuKeyboard()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("send main menu error")
	}
}

func (b *Bot) sendHelp(chatID int64, isManager bool) {
	var sb strings.Builder
	sb.WriteString("Я бот для поиска попутчиков.\n\n")
	sb.WriteString("🔍 Найти поездку — поиск по маршруту и дате\n")
	sb.WriteString("🚗 Создать поездку — опубликовать свою поездку (нужен автомобиль в профиле)\n")
	sb.WriteString("📋 Мои поездки — ваши поездки как водителя\n")
	sb.WriteString("🎫 Мои брони — ваши бронирования как пассажира\n")
	sb.WriteString("👤 Профиль — телефон, автомобиль, рейтинги\n\n")
	sb.WriteString("Команды: /find /newtrip /mytrips /mybookings /profile /cancel")
	if isManager {
		sb.WriteString("\n\nМенеджеру: /stats /export /sync")
	}
	b.reply(chatID, sb.String())
}

// --- Поиск поездки ---

func (b *Bot) startSearchDialog(ctx context.Context, chatID, tgID int64) {
	b.setUserState(ctx, tgID, models.StateSearchFrom, map[string]interface{}{})
	b.askCity(ctx, chatID, "Откуда едете? Выберите или введите город:")
}

func (b *Bot) handleSearchFrom(ctx context.Context, chatID, tgID int64, state *models.UserState, text string) {
	city := strings.TrimSpace(text)
	if city == "" {
		b.reply(chatID, "Введите название города.")
		return
	}
	state.TempData["from_city"] = city
	b.setUserState(ctx, tgID, models.StateSearchTo, state.TempData)
	b.askCity(ctx, chatID, "Куда едете? Выберите или введите город:")
}

func (b *Bot) handleSearchTo(ctx context.Context, chatID, tgID int64, state *models.UserState, text string) {
	city := strings.TrimSpace(text)
	if city == "" {
		b.reply(chatID, "Введите название города.")
		return
	}
	state.TempData["to_city"] = city
	b.setUserState(ctx, tgID, models.StateSearchDate, state.TempData)
	b.askWithCancel(ctx, chatID, "На какую дату? Напишите «сегодня», «завтра» или дату в формате 15.06.2026:")
}

func (b *Bot) handleSearchDate(ctx context.Context, chatID, tgID int64, state *models.UserState, text string) {
	date, err := parseUserDate(text)
	if err != nil {
		b.reply(chatID, "⚠️ "+err.Error()+". Попробуйте еще раз.")
		return
	}

	state.TempData["date"] = date.Format(time.RFC3339)
	// Параметры остаются в состоянии, пагинация результатов перечитывает их оттуда
	b.setUserState(ctx, tgID, models.StateMainMenu, state.TempData)

	b.sendSearchResults(ctx, chatID, tgID, 0)
}

func (b *Bot) sendSearchResults(ctx context.Context, chatID, tgID int64, page int) {
	state := b.getUserState(ctx, tgID)
	if state == nil {
		b.sendMainMenu(ctx, chatID, "Поиск устарел, начните заново.")
		return
	}

	search := models.TripSearch{
		FromCity: state.GetString("from_city"),
		ToCity:   state.GetString("to_city"),
		Date:     state.GetTime("date"),
	}

	trips, err := b.tripService.SearchTrips(ctx, search)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("search trips error")
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	if len(trips) == 0 {
		b.sendMainMenu(ctx, chatID, fmt.Sprintf(
			"По маршруту %s на %s ничего не нашлось. Попробуйте другую дату.",
			routeLabel(search.FromCity, search.ToCity), search.Date.Format(userDateLayout)))
		return
	}

	b.sendTripsPage(ctx, chatID, trips, page, PaginationParams{
		Title:      fmt.Sprintf("🔍 %s, %s", routeLabel(search.FromCity, search.ToCity), search.Date.Format(userDateLayout)),
		ItemPrefix: "trip:",
		PagePrefix: "trips_page:",
	})
}

// --- Создание поездки ---

func (b *Bot) startCreateTripDialog(ctx context.Context, chatID, tgID int64) {
	user, err := b.userService.GetUserByTelegramID(ctx, tgID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	if !user.HasCar {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🚙 Указать автомобиль", "car_edit"),
			),
		)
		if _, err := b.tg.SendWithInlineKeyboard(chatID,
			"Чтобы публиковать поездки, сначала укажите автомобиль в профиле.", keyboard); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("send error")
		}
		return
	}

	b.setUserState(ctx, tgID, models.StateTripFrom, map[string]interface{}{})
	b.askCity(ctx, chatID, "Из какого города поедете?")
}

func (b *Bot) handleTripFrom(ctx context.Context, chatID, tgID int64, state *models.UserState, text string) {
	city := strings.TrimSpace(text)
	if city == "" {
		b.reply(chatID, "Введите название города.")
		return
	}
	state.TempData["from_city"] = city
	b.setUserState(ctx, tgID, models.StateTripTo, state.TempData)
	b.askCity(ctx, chatID, "В какой город?")
}

func (b *Bot) handleTripTo(ctx context.Context, chatID, tgID int64, state *models.UserState, text string) {
	city := strings.TrimSpace(text)
	if city == "" {
		b.reply(chatID, "Введите название города.")
		return
	}
	state.TempData["to_city"] = city
	b.setUserState(ctx, tgID, models.StateTripDate, state.TempData)
	b.askWithCancel(ctx, chatID, "Дата и время отправления, например 15.06.2026 09:30:")
}

func (b *Bot) handleTripDate(ctx context.Context, chatID, tgID int64, state *models.UserState, text string) {
	date, depTime, err := parseUserDateTime(text)
	if err != nil {
		b.reply(chatID, "⚠️ "+err.Error())
		return
	}

	state.TempData["date"] = date.Format(time.RFC3339)
	state.TempData["time"] = depTime
	b.setUserState(ctx, tgID, models.StateTripSeats, state.TempData)
	b.askWithCancel(ctx, chatID, "Сколько мест для пассажиров?")
}

func (b *Bot) handleTripSeats(ctx context.Context, chatID, tgID int64, state *models.UserState, text string) {
	seats, err := parseSeats(text)
	if err != nil {
		b.reply(chatID, "⚠️ "+err.Error())
		return
	}

	state.TempData["seats"] = seats
	b.setUserState(ctx, tgID, models.StateTripPrice, state.TempData)
	b.askWithCancel(ctx, chatID, "Цена за место в рублях?")
}

func (b *Bot) handleTripPrice(ctx context.Context, chatID, tgID int64, state *models.UserState, text string) {
	price, err := parsePrice(text)
	if err != nil {
		b.reply(chatID, "⚠️ "+err.Error())
		return
	}

	user, err := b.userService.GetUserByTelegramID(ctx, tgID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	trip := &models.Trip{
		DriverID:      user.ID,
		StartCity:     state.GetString("from_city"),
		FinishCity:    state.GetString("to_city"),
		DepartureDate: state.GetTime("date"),
		DepartureTime: state.GetString("time"),
		TotalSeats:    state.GetInt64("seats"),
		PricePerSeat:  price,
	}

	if err := b.tripService.CreateTrip(ctx, trip); err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, tgID)
	b.sendMainMenu(ctx, chatID, "✅ Поездка опубликована!\n\n"+formatTripCard(trip, user))
}

// --- Бронирование ---

func (b *Bot) handleBookingSeats(ctx context.Context, chatID, tgID int64, state *models.UserState, text string) {
	seats, err := parseSeats(text)
	if err != nil {
		b.reply(chatID, "⚠️ "+err.Error())
		return
	}

	tripID := state.GetInt64("trip_id")
	trip, err := b.tripService.GetTrip(ctx, tripID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	state.TempData["seats"] = seats
	b.setUserState(ctx, tgID, models.StateBookingConfirm, state.TempData)

	total := float64(seats) * trip.PricePerSeat
	text = fmt.Sprintf("Бронируем %d мест(а) на поездку %s, %s %s.\nИтого: %.0f ₽.\n\nПодтверждаете?",
		seats, routeLabel(trip.StartCity, trip.FinishCity),
		trip.DepartureDate.Format(userDateLayout), trip.DepartureTime, total)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", "confirm_booking"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "back_to_main"),
		),
	)
	if _, err := b.tg.SendWithInlineKeyboard(chatID, text, keyboard); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("send error")
	}
}

// --- Профиль ---

func (b *Bot) showProfile(ctx context.Context, chatID, tgID int64) {
	user, err := b.userService.GetUserByTelegramID(ctx, tgID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚙 Автомобиль", "car_edit"),
			tgbotapi.NewInlineKeyboardButtonData("📱 Телефон", "phone_edit"),
		),
	)
	if _, err := b.tg.SendWithInlineKeyboard(chatID, formatProfile(user), keyboard); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("send error")
	}
}

func (b *Bot) handleCarModel(ctx context.Context, chatID, tgID int64, state *models.UserState, text string) {
	input := strings.TrimSpace(text)
	if input == "" {
		b.reply(chatID, "Введите марку автомобиля.")
		return
	}

	model := input
	color := ""
	if idx := strings.Index(input, ","); idx > 0 {
		model = strings.TrimSpace(input[:idx])
		color = strings.TrimSpace(input[idx+1:])
	}

	state.TempData["car_model"] = model
	state.TempData["car_color"] = color
	b.setUserState(ctx, tgID, models.StateCarPlate, state.TempData)
	b.askWithCancel(ctx, chatID, "Госномер и число мест для пассажиров через пробел, например:\nА123ВС77 3")
}

func (b *Bot) handleCarPlate(ctx context.Context, chatID, tgID int64, state *models.UserState, text string) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		b.reply(chatID, "Введите госномер.")
		return
	}

	plate := parts[0]
	var seats int64 = 4
	if len(parts) > 1 {
		n, err := parseSeats(parts[1])
		if err != nil {
			b.reply(chatID, "⚠️ "+err.Error())
			return
		}
		seats = n
	}

	hasCar := true
	model := state.GetString("car_model")
	color := state.GetString("car_color")
	profile := models.CarProfile{
		HasCar:   &hasCar,
		CarModel: &model,
		CarPlate: &plate,
		CarSeats: &seats,
	}
	if color != "" {
		profile.CarColor = &color
	}

	user, err := b.userService.UpdateCarProfile(ctx, tgID, profile)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, tgID)
	b.sendMainMenu(ctx, chatID, "✅ Автомобиль сохранен!\n\n"+formatProfile(user))
}

func (b *Bot) handlePhoneShared(ctx context.Context, chatID, tgID int64, phone string) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		b.reply(chatID, "Введите номер телефона.")
		return
	}

	profile := models.CarProfile{Phone: &phone}
	if _, err := b.userService.UpdateCarProfile(ctx, tgID, profile); err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, tgID)
	b.sendMainMenu(ctx, chatID, "✅ Телефон сохранен.")
}

// --- Отзывы ---

func (b *Bot) handleReviewComment(ctx context.Context, chatID, tgID int64, state *models.UserState, text string) {
	comment := strings.TrimSpace(text)
	if comment == "-" {
		comment = ""
	}

	user, err := b.userService.GetUserByTelegramID(ctx, tgID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	bookingID := state.GetInt64("booking_id")
	booking, err := b.bookingService.GetBooking(ctx, bookingID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	trip, err := b.tripService.GetTrip(ctx, booking.TripID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	// Отзыв оставляется о второй стороне поездки
	reviewedID := trip.DriverID
	if user.ID == trip.DriverID {
		reviewedID = booking.PassengerID
	}

	review := &models.Review{
		BookingID:  bookingID,
		ReviewerID: user.ID,
		ReviewedID: reviewedID,
		Rating:     state.GetInt64("rating"),
		Comment:    comment,
	}

	if err := b.reviewService.CreateReview(ctx, review); err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		b.clearUserState(ctx, tgID)
		return
	}

	b.clearUserState(ctx, tgID)
	b.sendMainMenu(ctx, chatID, "✅ Спасибо за отзыв!")
}

// --- Списки ---

func (b *Bot) showMyTrips(ctx context.Context, chatID, tgID int64) {
	user, err := b.userService.GetUserByTelegramID(ctx, tgID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	trips, err := b.tripService.GetDriverTrips(ctx, user.ID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	if len(trips) == 0 {
		b.sendMainMenu(ctx, chatID, "У вас пока нет поездок. Создайте первую: 🚗 Создать поездку")
		return
	}

	for _, trip := range trips {
		keyboard := tripManageKeyboard(trip)
		if _, err := b.tg.SendWithInlineKeyboard(chatID, formatTripCard(trip, nil), keyboard); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("send error")
		}
	}
}

func (b *Bot) showMyBookings(ctx context.Context, chatID, tgID int64) {
	user, err := b.userService.GetUserByTelegramID(ctx, tgID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	bookings, err := b.bookingService.GetUserBookings(ctx, user.ID)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	if len(bookings) == 0 {
		b.sendMainMenu(ctx, chatID, "У вас пока нет броней. Найдите поездку: 🔍 Найти поездку")
		return
	}

	for _, booking := range bookings {
		trip, err := b.tripService.GetTrip(ctx, booking.TripID)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int64("trip_id", booking.TripID).Msg("get trip error")
			trip = nil
		}

		keyboard := bookingManageKeyboard(booking, trip)
		if _, err := b.tg.SendWithInlineKeyboard(chatID, formatBookingCard(booking, trip), keyboard); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("send error")
		}
	}
}

func tripManageKeyboard(trip *models.Trip) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	switch trip.Status {
	case models.TripStatusActive, models.TripStatusFull:
		row = append(row,
			tgbotapi.NewInlineKeyboardButtonData("▶️ В путь", fmt.Sprintf("trip_start:%d", trip.ID)),
			tgbotapi.NewInlineKeyboardButtonData("⛔ Отменить", fmt.Sprintf("trip_cancel:%d", trip.ID)),
		)
	case models.TripStatusInProgress:
		row = append(row,
			tgbotapi.NewInlineKeyboardButtonData("🏁 Завершить", fmt.Sprintf("trip_complete:%d", trip.ID)),
		)
	}
	if len(row) == 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "back_to_main"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

func bookingManageKeyboard(booking *models.Booking, trip *models.Trip) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	switch {
	case booking.Status == models.BookingStatusActive && (trip == nil || trip.Bookable() || trip.Status == models.TripStatusFull):
		row = append(row,
			tgbotapi.NewInlineKeyboardButtonData("⛔ Отменить бронь", fmt.Sprintf("cancel_booking:%d", booking.ID)),
		)
	case booking.Status == models.BookingStatusCompleted:
		row = append(row,
			tgbotapi.NewInlineKeyboardButtonData("⭐ Оценить", fmt.Sprintf("review:%d", booking.ID)),
		)
	}
	if len(row) == 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "back_to_main"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

// --- Вспомогательные обертки над состоянием ---

func (b *Bot) getUserState(ctx context.Context, tgID int64) *models.UserState {
	state, err := b.stateService.GetUserState(ctx, tgID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", tgID).Msg("get state error")
		return nil
	}
	if state != nil && state.TempData == nil {
		state.TempData = map[string]interface{}{}
	}
	return state
}

func (b *Bot) setUserState(ctx context.Context, tgID int64, step string, data map[string]interface{}) {
	if err := b.stateService.SetUserState(ctx, tgID, step, data); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", tgID).Str("step", step).Msg("set state error")
	}
}

func (b *Bot) clearUserState(ctx context.Context, tgID int64) {
	if err := b.stateService.ClearUserState(ctx, tgID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", tgID).Msg("clear state error")
	}
}

func (b *Bot) askWithCancel(ctx context.Context, chatID int64, text string) {
	if _, err := b.tg.SendWithKeyboard(chatID, text, cancelKeyboard()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("send error")
	}
}

func (b *Bot) askCity(ctx context.Context, chatID int64, text string) {
	if _, err := b.tg.SendWithKeyboard(chatID, text, cityKeyboard(b.cities)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("send error")
	}
}
