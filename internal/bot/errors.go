package bot

import (
	"errors"

	"poputka/internal/database"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, database.ErrTripNotFound) {
		return "⚠️ Поездка не найдена. Возможно, водитель уже удалил ее."
	}

	if errors.Is(err, database.ErrBookingNotFound) {
		return "⚠️ Бронь не найдена."
	}

	if errors.Is(err, database.ErrTripUnavailable) {
		return "⚠️ Эта поездка больше не принимает бронирования."
	}

	if errors.Is(err, database.ErrNoSeats) {
		return "⚠️ Свободных мест уже не хватает. Попробуйте выбрать другую поездку или меньше мест."
	}

	if errors.Is(err, database.ErrDuplicateBooking) {
		return "⚠️ У вас уже есть активная бронь на эту поездку."
	}

	if errors.Is(err, database.ErrForbidden) {
		return "⚠️ Это действие вам недоступно. Водитель не может бронировать места в своей поездке."
	}

	if errors.Is(err, database.ErrInvalidSeats) {
		return "⚠️ Укажите корректное число мест (от 1 и больше)."
	}

	if errors.Is(err, database.ErrInvalidState) {
		return "⚠️ Действие недоступно в текущем статусе поездки."
	}

	if errors.Is(err, database.ErrPastDate) {
		return "⚠️ Нельзя указать прошедшую дату."
	}

	if errors.Is(err, database.ErrDateTooFar) {
		return "⚠️ Слишком далекая дата. Пожалуйста, выберите более раннюю."
	}

	if errors.Is(err, database.ErrConcurrentModification) {
		return "⚠️ Места только что разобрали, не удалось сохранить. Пожалуйста, попробуйте еще раз."
	}

	if errors.Is(err, database.ErrReviewExists) {
		return "⚠️ Вы уже оставили отзыв по этой поездке."
	}

	if errors.Is(err, database.ErrInvalidRating) {
		return "⚠️ Оценка должна быть от 1 до 5."
	}

	// Default error message
	return "❌ Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже или обратитесь к поддержке."
}
