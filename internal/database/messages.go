package database

import (
	"context"
	"fmt"
	"time"

	"poputka/internal/models"
)

func (db *DB) CreateMessage(ctx context.Context, msg *models.Message) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO messages (booking_id, sender_id, receiver_id, content, is_read, sent_at)
         VALUES (?, ?, ?, ?, 0, ?)`,
		msg.BookingID, msg.SenderID, msg.ReceiverID, msg.Content, now)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get message id: %w", err)
	}
	msg.ID = id
	msg.IsRead = false
	msg.SentAt = now
	return nil
}

func (db *DB) GetBookingMessages(ctx context.Context, bookingID int64) ([]*models.Message, error) {
	query := `SELECT id, booking_id, sender_id, receiver_id, content, is_read, sent_at
              FROM messages WHERE booking_id = ? ORDER BY sent_at ASC`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.BookingID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// MarkMessagesRead помечает прочитанными все входящие сообщения брони.
func (db *DB) MarkMessagesRead(ctx context.Context, bookingID, receiverID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE messages SET is_read = 1 WHERE booking_id = ? AND receiver_id = ? AND is_read = 0`,
		bookingID, receiverID)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

func (db *DB) CountUnreadMessages(ctx context.Context, receiverID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND is_read = 0`, receiverID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
