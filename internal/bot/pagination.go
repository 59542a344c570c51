package bot

import (
	"context"
	"fmt"
	"strings"

	"poputka/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type PaginationParams struct {
	Title      string
	ItemPrefix string
	PagePrefix string
}

// sendTripsPage отрисовывает страницу списка поездок с навигацией.
func (b *Bot) sendTripsPage(ctx context.Context, chatID int64, trips []*models.Trip, page int, params PaginationParams) {
	perPage := b.config.Bot.PaginationSize
	if perPage <= 0 {
		perPage = models.DefaultPaginationSize
	}

	totalPages := (len(trips) + perPage - 1) / perPage
	if page >= totalPages && totalPages > 0 {
		page = totalPages - 1
	}
	if page < 0 {
		page = 0
	}

	startIdx := page * perPage
	endIdx := startIdx + perPage
	if endIdx > len(trips) {
		endIdx = len(trips)
	}

	var message strings.Builder
	message.WriteString(params.Title)
	message.WriteString("\n\n")
	if totalPages > 1 {
		message.WriteString(fmt.Sprintf("Страница %d из %d\n\n", page+1, totalPages))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, trip := range trips[startIdx:endIdx] {
		message.WriteString(formatTripLine(trip))
		message.WriteString("\n")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("#%d подробнее", trip.ID),
				fmt.Sprintf("%s%d", params.ItemPrefix, trip.ID)),
		))
	}

	var navButtons []tgbotapi.InlineKeyboardButton
	if page > 0 {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData(
			"⬅️ Назад", fmt.Sprintf("%s%d", params.PagePrefix, page-1)))
	}
	if page < totalPages-1 {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData(
			"Вперед ➡️", fmt.Sprintf("%s%d", params.PagePrefix, page+1)))
	}
	if len(navButtons) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(navButtons...))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "back_to_main"),
	))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.tg.SendWithInlineKeyboard(chatID, message.String(), keyboard); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("send trips page error")
	}
}
