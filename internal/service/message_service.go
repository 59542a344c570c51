package service

import (
	"context"
	"strings"

	"poputka/internal/database"
	"poputka/internal/domain"
	"poputka/internal/models"

	"github.com/rs/zerolog"
)

type MessageService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewMessageService(repo domain.Repository, logger *zerolog.Logger) *MessageService {
	return &MessageService{repo: repo, logger: logger}
}

// SendMessage отправляет сообщение в рамках брони. Писать могут только
// пассажир брони и водитель поездки, получатель вычисляется автоматически.
func (s *MessageService) SendMessage(ctx context.Context, bookingID, senderID int64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, database.ErrInvalidState
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	trip, err := s.repo.GetTrip(ctx, booking.TripID)
	if err != nil {
		return nil, err
	}

	var receiverID int64
	switch senderID {
	case booking.PassengerID:
		receiverID = trip.DriverID
	case trip.DriverID:
		receiverID = booking.PassengerID
	default:
		return nil, database.ErrForbidden
	}

	msg := &models.Message{
		BookingID:  bookingID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("booking_id", bookingID).
		Int64("sender_id", senderID).
		Msg("message sent")
	return msg, nil
}

// GetDialog возвращает переписку по брони и помечает входящие прочитанными.
func (s *MessageService) GetDialog(ctx context.Context, bookingID, readerID int64) ([]*models.Message, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	trip, err := s.repo.GetTrip(ctx, booking.TripID)
	if err != nil {
		return nil, err
	}
	if readerID != booking.PassengerID && readerID != trip.DriverID {
		return nil, database.ErrForbidden
	}

	messages, err := s.repo.GetBookingMessages(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkMessagesRead(ctx, bookingID, readerID); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", bookingID).Msg("mark messages read error")
	}
	return messages, nil
}

func (s *MessageService) CountUnread(ctx context.Context, receiverID int64) (int, error) {
	return s.repo.CountUnreadMessages(ctx, receiverID)
}
