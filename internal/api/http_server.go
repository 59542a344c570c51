package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"poputka/internal/config"
	"poputka/internal/database"
	"poputka/internal/domain"
	"poputka/internal/metrics"
	"poputka/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HTTPServer отдаёт REST API поверх тех же сервисов, что использует бот.
type HTTPServer struct {
	cfg      config.APIConfig
	bookings domain.BookingService
	trips    domain.TripService
	users    domain.UserService
	requests domain.RideRequestService
	messages domain.MessageService
	server   *http.Server
	auth     *HTTPAuth
	log      *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	bookings domain.BookingService,
	trips domain.TripService,
	users domain.UserService,
	requests domain.RideRequestService,
	messages domain.MessageService,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		trips:    trips,
		users:    users,
		requests: requests,
		messages: messages,
		log:      logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/trips/search", srv.handleTripSearch)
	mux.HandleFunc("/api/v1/trips/my", srv.handleMyTrips)
	mux.HandleFunc("/api/v1/trips/", srv.handleTripByID)
	mux.HandleFunc("/api/v1/trips", srv.handleTrips)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/my", srv.handleMyBookings)
	mux.HandleFunc("/api/v1/requests/search", srv.handleRequestSearch)
	mux.HandleFunc("/api/v1/requests/my", srv.handleMyRequests)
	mux.HandleFunc("/api/v1/requests/", srv.handleRequestByID)
	mux.HandleFunc("/api/v1/requests", srv.handleRequests)
	mux.HandleFunc("/api/v1/messages/unread", srv.handleUnreadMessages)
	mux.HandleFunc("/healthz", srv.handleHealthz)
	mux.HandleFunc("/api/v1/stats", srv.handleStats)
	mux.Handle("/metrics", promhttp.Handler())

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// identity возвращает пользователя по заголовку с telegram id.
func (s *HTTPServer) identity(r *http.Request) (*models.User, error) {
	header := s.cfg.Auth.HeaderUserID
	if header == "" {
		header = "x-telegram-user-id"
	}
	raw := strings.TrimSpace(r.Header.Get(header))
	if raw == "" {
		return nil, fmt.Errorf("missing %s header", header)
	}
	telegramID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s header", header)
	}
	return s.users.GetUserByTelegramID(r.Context(), telegramID)
}

func (s *HTTPServer) handleTripSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	search := models.TripSearch{
		FromCity: strings.TrimSpace(q.Get("from")),
		ToCity:   strings.TrimSpace(q.Get("to")),
	}
	if search.FromCity == "" || search.ToCity == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		search.Date = date
	}
	if raw := strings.TrimSpace(q.Get("passengers")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid passengers value")
			return
		}
		search.Passengers = n
	}
	if raw := strings.TrimSpace(q.Get("max_price")); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || p < 0 {
			writeError(w, http.StatusBadRequest, "invalid max_price value")
			return
		}
		search.MaxPrice = p
	}

	trips, err := s.trips.SearchTrips(r.Context(), search)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"trips": trips})
}

type createTripRequest struct {
	DepartureDate string  `json:"departure_date"`
	DepartureTime string  `json:"departure_time"`
	StartCity     string  `json:"start_city"`
	StartAddress  string  `json:"start_address"`
	FinishCity    string  `json:"finish_city"`
	FinishAddress string  `json:"finish_address"`
	TotalSeats    int64   `json:"total_seats"`
	PricePerSeat  float64 `json:"price_per_seat"`
	Comment       string  `json:"comment"`
	AllowSmoking  bool    `json:"allow_smoking"`
	AllowAnimals  bool    `json:"allow_animals"`
	AllowLuggage  bool    `json:"allow_luggage"`
}

func (s *HTTPServer) handleTrips(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user, err := s.identity(r)
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}

	var body createTripRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	departure, err := time.Parse("2006-01-02", strings.TrimSpace(body.DepartureDate))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid departure_date; expected YYYY-MM-DD")
		return
	}

	trip := &models.Trip{
		DriverID:      user.ID,
		DepartureDate: departure,
		DepartureTime: strings.TrimSpace(body.DepartureTime),
		StartCity:     strings.TrimSpace(body.StartCity),
		StartAddress:  strings.TrimSpace(body.StartAddress),
		FinishCity:    strings.TrimSpace(body.FinishCity),
		FinishAddress: strings.TrimSpace(body.FinishAddress),
		TotalSeats:    body.TotalSeats,
		PricePerSeat:  body.PricePerSeat,
		Comment:       strings.TrimSpace(body.Comment),
		AllowSmoking:  body.AllowSmoking,
		AllowAnimals:  body.AllowAnimals,
		AllowLuggage:  body.AllowLuggage,
	}
	if trip.StartCity == "" || trip.FinishCity == "" {
		writeError(w, http.StatusBadRequest, "start_city and finish_city are required")
		return
	}

	if err := s.trips.CreateTrip(r.Context(), trip); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"trip": trip})
}

func (s *HTTPServer) handleMyTrips(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user, err := s.identity(r)
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}

	trips, err := s.trips.GetDriverTrips(r.Context(), user.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"trips": trips})
}

// handleTripByID обслуживает /api/v1/trips/{id}, {id}/availability и
// действия водителя {id}/start|complete|cancel.
func (s *HTTPServer) handleTripByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/trips/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	tripID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid trip id")
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		trip, err := s.trips.GetTrip(r.Context(), tripID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"trip": trip})
		return
	}

	switch parts[1] {
	case "availability":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		availability, err := s.bookings.GetTripAvailability(r.Context(), tripID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, availability)
	case "start", "complete", "cancel":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		user, err := s.identity(r)
		if err != nil {
			s.writeIdentityError(w, err)
			return
		}

		switch parts[1] {
		case "start":
			err = s.trips.StartTrip(r.Context(), tripID, user.ID)
		case "complete":
			err = s.trips.CompleteTrip(r.Context(), tripID, user.ID)
		case "cancel":
			err = s.trips.CancelTrip(r.Context(), tripID, user.ID)
		}
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

type createBookingRequest struct {
	TripID       int64  `json:"trip_id"`
	Seats        int64  `json:"seats"`
	MeetingPoint string `json:"meeting_point"`
	Notes        string `json:"notes"`
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user, err := s.identity(r)
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}

	var body createBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.TripID == 0 {
		writeError(w, http.StatusBadRequest, "trip_id is required")
		return
	}

	booking := &models.Booking{
		TripID:       body.TripID,
		PassengerID:  user.ID,
		BookedSeats:  body.Seats,
		MeetingPoint: strings.TrimSpace(body.MeetingPoint),
		Notes:        strings.TrimSpace(body.Notes),
	}

	if err := s.bookings.CreateBooking(r.Context(), booking); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"booking": booking})
}

func (s *HTTPServer) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user, err := s.identity(r)
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}

	bookings, err := s.bookings.GetUserBookings(r.Context(), user.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// handleBookingByID обслуживает /api/v1/bookings/{id} и {id}/cancel.
func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/bookings/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	if rest == "my" {
		s.handleMyBookings(w, r)
		return
	}

	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	bookingID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		booking, err := s.bookings.GetBooking(r.Context(), bookingID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"booking": booking})
		return
	}

	if parts[1] == "messages" {
		s.handleBookingMessages(w, r, bookingID)
		return
	}

	if parts[1] != "cancel" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user, err := s.identity(r)
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}

	booking, err := s.bookings.CancelBooking(r.Context(), bookingID, user.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"booking": booking})
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := s.bookings.GetBookingStats(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": stats})
}

// writeDomainError переводит доменные ошибки в HTTP-коды.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrTripNotFound),
		errors.Is(err, database.ErrBookingNotFound),
		errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrRideRequestNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrInvalidSeats),
		errors.Is(err, database.ErrInvalidRating),
		errors.Is(err, database.ErrPastDate),
		errors.Is(err, database.ErrDateTooFar):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNoSeats),
		errors.Is(err, database.ErrTripUnavailable),
		errors.Is(err, database.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrDuplicateBooking),
		errors.Is(err, database.ErrReviewExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("internal API error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *HTTPServer) writeIdentityError(w http.ResponseWriter, err error) {
	if errors.Is(err, database.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	writeError(w, http.StatusUnauthorized, err.Error())
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)
		metrics.IncHTTP(r.URL.Path)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
