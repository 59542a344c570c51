package bot

import (
	"context"
	"os"
	"time"

	"poputka/internal/config"
	"poputka/internal/database"
	"poputka/internal/domain"
	"poputka/internal/events"
	"poputka/internal/metrics"
	"poputka/internal/models"
	"poputka/internal/service"
	"poputka/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Bot struct {
	tg             domain.TelegramService
	config         *config.Config
	db             *database.DB
	stateService   *service.StateService
	userService    domain.UserService
	tripService    domain.TripService
	bookingService domain.BookingService
	reviewService  domain.ReviewService
	sheetsWorker   *worker.SheetsWorker
	eventBus       *events.EventBus
	cities         []models.City
	metrics        *Metrics
	logger         *zerolog.Logger
}

func NewBot(
	tg domain.TelegramService,
	cfg *config.Config,
	db *database.DB,
	stateService *service.StateService,
	userService domain.UserService,
	tripService domain.TripService,
	bookingService domain.BookingService,
	reviewService domain.ReviewService,
	sheetsWorker *worker.SheetsWorker,
	eventBus *events.EventBus,
	cities []models.City,
	botMetrics *Metrics,
	logger *zerolog.Logger,
) *Bot {
	if eventBus == nil {
		eventBus = events.NewEventBus()
	}

	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	b := &Bot{
		tg:             tg,
		config:         cfg,
		db:             db,
		stateService:   stateService,
		userService:    userService,
		tripService:    tripService,
		bookingService: bookingService,
		reviewService:  reviewService,
		sheetsWorker:   sheetsWorker,
		eventBus:       eventBus,
		cities:         cities,
		metrics:        botMetrics,
		logger:         logger,
	}

	b.subscribeNotifications()

	return b
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tg.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tg.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	// Каждое обновление обрабатывается со своим таймаутом и request_id
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	b.withRecovery(func() {
		if update.CallbackQuery != nil {
			metrics.IncBotUpdate("callback")
			if b.userService.IsBlacklisted(update.CallbackQuery.From.ID) {
				return
			}
			b.trackActivity(update.CallbackQuery.From.ID)
			b.handleCallbackQuery(updateCtx, update)
			return
		}

		if update.Message == nil {
			return
		}

		userID := update.Message.From.ID
		metrics.IncBotUpdate("message")

		if b.userService.IsBlacklisted(userID) {
			return
		}

		// Менеджеры не ограничиваются по частоте
		if !b.userService.IsManager(userID) {
			allowed, err := b.stateService.CheckRateLimit(
				updateCtx, userID,
				b.config.Bot.RateLimitMessages,
				time.Duration(b.config.Bot.RateLimitWindow)*time.Second,
			)
			if err != nil {
				l.Error().Err(err).Int64("user_id", userID).Msg("rate limit check failed")
			}
			if !allowed {
				b.reply(update.Message.Chat.ID, "⏳ Слишком много сообщений. Подождите минуту.")
				return
			}
		}

		b.trackActivity(userID)
		b.handleMessage(updateCtx, update)
	})
}

// Stop stops receiving Telegram updates (best-effort).
func (b *Bot) Stop() {
	if b == nil || b.tg == nil {
		return
	}
	b.tg.StopReceivingUpdates()
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.tg.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send error")
	}
}
