package database

import "errors"

// Domain failures surfaced to callers via errors.Is. Each maps to one stable
// caller-facing code in the API layer and one message in the bot.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrTripNotFound        = errors.New("trip not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrRideRequestNotFound = errors.New("ride request not found")

	// ErrTripUnavailable: trip exists but is not in a bookable status.
	ErrTripUnavailable = errors.New("trip is not available for booking")

	// ErrInvalidSeats: non-positive or out-of-range seat count.
	ErrInvalidSeats = errors.New("invalid seat count")

	// ErrNoSeats: not enough free seats for the request.
	ErrNoSeats = errors.New("not enough available seats")

	// ErrDuplicateBooking: the passenger already holds an active booking on the trip.
	ErrDuplicateBooking = errors.New("active booking already exists for this trip")

	// ErrForbidden: the acting user is neither the passenger nor the trip driver.
	ErrForbidden = errors.New("not allowed to modify this booking")

	// ErrInvalidState: the operation is not valid for the current status.
	ErrInvalidState = errors.New("operation not valid in current status")

	// ErrConcurrentModification: optimistic version check failed, retry.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrReviewExists: the booking already has a review.
	ErrReviewExists = errors.New("review already exists for this booking")

	// ErrInvalidRating: rating outside the 1..5 scale.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrPastDate: trip or request date lies in the past.
	ErrPastDate = errors.New("date is in the past")

	// ErrDateTooFar: date is beyond the allowed planning horizon.
	ErrDateTooFar = errors.New("date is too far in the future")
)
