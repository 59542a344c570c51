package models

import "time"

// Review is a one-per-booking rating left by one ride participant about the other.
type Review struct {
	ID        int64 `json:"id"`
	BookingID int64 `json:"booking_id"`

	ReviewerID int64 `json:"reviewer_id"`
	ReviewedID int64 `json:"reviewed_id"`

	Rating        int64 `json:"rating"` // 1-5
	Punctuality   int64 `json:"punctuality,omitempty"`
	Comfort       int64 `json:"comfort,omitempty"`
	Communication int64 `json:"communication,omitempty"`

	Comment     string    `json:"comment"`
	IsAnonymous bool      `json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
}
