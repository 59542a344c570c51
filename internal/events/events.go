package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventBookingCompleted = "booking_completed"
	EventTripCreated      = "trip_created"
	EventTripStarted      = "trip_started"
	EventTripCompleted    = "trip_completed"
	EventTripCancelled    = "trip_cancelled"
	EventReviewCreated    = "review_created"
)

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID   int64     `json:"booking_id"`
	TripID      int64     `json:"trip_id"`
	PassengerID int64     `json:"passenger_id"`
	DriverID    int64     `json:"driver_id"`
	Seats       int64     `json:"seats"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	Departure   time.Time `json:"departure"`
	Route       string    `json:"route,omitempty"`
	ChangedByID int64     `json:"changed_by_id,omitempty"`
}

// TripEventPayload describes a trip lifecycle change.
type TripEventPayload struct {
	TripID         int64     `json:"trip_id"`
	DriverID       int64     `json:"driver_id"`
	Status         string    `json:"status"`
	AvailableSeats int64     `json:"available_seats"`
	Departure      time.Time `json:"departure"`
	Route          string    `json:"route,omitempty"`
}

// ReviewEventPayload describes a freshly stored review.
type ReviewEventPayload struct {
	ReviewID   int64 `json:"review_id"`
	BookingID  int64 `json:"booking_id"`
	ReviewerID int64 `json:"reviewer_id"`
	ReviewedID int64 `json:"reviewed_id"`
	Rating     int64 `json:"rating"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
