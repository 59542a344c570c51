package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"poputka/internal/models"
)

type createRideRequestBody struct {
	DesiredDate     string  `json:"desired_date"`
	DesiredTime     string  `json:"desired_time"`
	TimeFlexibility int64   `json:"time_flexibility"`
	StartCity       string  `json:"start_city"`
	StartAddress    string  `json:"start_address"`
	FinishCity      string  `json:"finish_city"`
	FinishAddress   string  `json:"finish_address"`
	RequiredSeats   int64   `json:"required_seats"`
	MaxPrice        float64 `json:"max_price"`
	Comment         string  `json:"comment"`
}

func (s *HTTPServer) handleRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user, err := s.identity(r)
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}

	var body createRideRequestBody
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	desired, err := time.Parse("2006-01-02", strings.TrimSpace(body.DesiredDate))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid desired_date; expected YYYY-MM-DD")
		return
	}
	if strings.TrimSpace(body.StartCity) == "" || strings.TrimSpace(body.FinishCity) == "" {
		writeError(w, http.StatusBadRequest, "start_city and finish_city are required")
		return
	}

	req := &models.RideRequest{
		PassengerID:     user.ID,
		DesiredDate:     desired,
		DesiredTime:     strings.TrimSpace(body.DesiredTime),
		TimeFlexibility: body.TimeFlexibility,
		StartCity:       strings.TrimSpace(body.StartCity),
		StartAddress:    strings.TrimSpace(body.StartAddress),
		FinishCity:      strings.TrimSpace(body.FinishCity),
		FinishAddress:   strings.TrimSpace(body.FinishAddress),
		RequiredSeats:   body.RequiredSeats,
		MaxPrice:        body.MaxPrice,
		Comment:         strings.TrimSpace(body.Comment),
	}

	if err := s.requests.CreateRideRequest(r.Context(), req); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"request": req})
}

func (s *HTTPServer) handleRequestSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	fromCity := strings.TrimSpace(q.Get("from"))
	toCity := strings.TrimSpace(q.Get("to"))

	var date time.Time
	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		date = parsed
	} else {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	requests, err := s.requests.SearchRideRequests(r.Context(), fromCity, toCity, date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (s *HTTPServer) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user, err := s.identity(r)
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}

	requests, err := s.requests.GetPassengerRideRequests(r.Context(), user.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

// handleRequestByID обслуживает /api/v1/requests/{id} и {id}/close.
func (s *HTTPServer) handleRequestByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/requests/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	requestID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		req, err := s.requests.GetRideRequest(r.Context(), requestID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"request": req})
		return
	}

	if parts[1] != "close" {
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

	var body struct {
		Status string `json:"status"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status := strings.TrimSpace(body.Status)
	if status == "" {
		status = models.TripStatusCancelled
	}

	if err := s.requests.CloseRideRequest(r.Context(), requestID, user.ID, status); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleBookingMessages обслуживает переписку по брони:
// GET читает диалог и помечает входящие прочитанными, POST отправляет сообщение.
func (s *HTTPServer) handleBookingMessages(w http.ResponseWriter, r *http.Request, bookingID int64) {
	user, err := s.identity(r)
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		messages, err := s.messages.GetDialog(r.Context(), bookingID, user.ID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
	case http.MethodPost:
		var body struct {
			Content string `json:"content"`
		}
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(body.Content) == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}

		msg, err := s.messages.SendMessage(r.Context(), bookingID, user.ID, body.Content)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"message": msg})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleUnreadMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user, err := s.identity(r)
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}

	count, err := s.messages.CountUnread(r.Context(), user.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"unread": count})
}
