package models

import "time"

// Message is a booking-scoped note between a passenger and a driver.
type Message struct {
	ID         int64     `json:"id"`
	BookingID  int64     `json:"booking_id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	SentAt     time.Time `json:"sent_at"`
}
