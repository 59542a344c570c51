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

// handleManagerStats показывает сводку по бронированиям и пользователям.
func (b *Bot) handleManagerStats(ctx context.Context, chatID int64) {
	stats, err := b.bookingService.GetBookingStats(ctx)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	users, err := b.userService.GetAllUsers(ctx)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	active, err := b.userService.GetActiveUsers(ctx, 30)
	if err != nil {
		b.reply(chatID, b.getErrorMessage(err))
		return
	}

	drivers := 0
	for _, u := range users {
		if u.HasCar {
			drivers++
		}
	}

	var sb strings.Builder
	sb.WriteString("📊 Статистика\n\n")
	sb.WriteString(fmt.Sprintf("Пользователей: %d (водителей: %d)\n", len(users), drivers))
	sb.WriteString(fmt.Sprintf("Активных за 30 дней: %d\n\n", len(active)))
	sb.WriteString("Брони по статусам:\n")
	sb.WriteString(fmt.Sprintf("  🟢 активных: %d\n", stats[models.BookingStatusActive]))
	sb.WriteString(fmt.Sprintf("  🏁 завершенных: %d\n", stats[models.BookingStatusCompleted]))
	sb.WriteString(fmt.Sprintf("  ⛔ отмененных: %d\n", stats[models.BookingStatusCancelled]))

	b.reply(chatID, sb.String())
}

// handleManagerExport выгружает Excel с поездками за месяц назад и месяц вперед.
func (b *Bot) handleManagerExport(ctx context.Context, chatID int64) {
	startDate := time.Now().AddDate(0, -1, 0)
	endDate := time.Now().AddDate(0, 1, 0)

	path, err := b.exportToExcel(ctx, startDate, endDate)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("excel export error")
		b.reply(chatID, "❌ Не удалось сформировать выгрузку.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("Выгрузка %s - %s",
		startDate.Format("02.01.2006"), endDate.Format("02.01.2006"))
	if _, err := b.tg.Send(doc); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("send document error")
		b.reply(chatID, "❌ Не удалось отправить файл.")
	}
}

// handleManagerSync запускает полную синхронизацию с Google Sheets.
func (b *Bot) handleManagerSync(ctx context.Context, chatID int64) {
	if b.sheetsWorker == nil {
		b.reply(chatID, "⚠️ Синхронизация с Google Sheets не настроена.")
		return
	}

	b.reply(chatID, "⏳ Запускаю синхронизацию...")

	go func() {
		syncCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := b.sheetsWorker.RunFullExport(syncCtx); err != nil {
			b.logger.Error().Err(err).Msg("full export error")
			b.reply(chatID, "❌ Синхронизация завершилась с ошибкой.")
			return
		}
		b.reply(chatID, "✅ Таблицы синхронизированы.")
	}()
}
