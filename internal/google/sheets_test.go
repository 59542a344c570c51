package google

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"poputka/internal/models"
)

func TestBookingRowValues(t *testing.T) {
	bookedAt := time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC)

	booking := &models.Booking{
		ID:           123,
		TripID:       456,
		PassengerID:  789,
		BookedSeats:  2,
		PriceAgreed:  500,
		MeetingPoint: "Метро Речной вокзал",
		Status:       models.BookingStatusActive,
		BookedAt:     bookedAt,
	}

	values := bookingRowValues(booking)

	if len(values) != 9 {
		t.Fatalf("Expected 9 columns, got %d", len(values))
	}
	if values[0] != int64(123) || values[1] != int64(456) || values[2] != int64(789) {
		t.Errorf("Unexpected id columns: %v", values[:3])
	}
	if values[5] != "Метро Речной вокзал" {
		t.Errorf("Expected meeting point, got %v", values[5])
	}
	if values[6] != models.BookingStatusActive {
		t.Errorf("Expected status, got %v", values[6])
	}
	if values[7] != "2025-12-20 10:00:00" {
		t.Errorf("Unexpected booked_at format: %v", values[7])
	}
}

func TestCacheOperations(t *testing.T) {
	s := &SheetsService{
		rowCache: make(map[int64]int),
	}

	s.setCachedRow(100, 5)
	row, ok := s.getCachedRow(100)
	if !ok || row != 5 {
		t.Errorf("Expected row 5, got %d (ok=%v)", row, ok)
	}

	s.setCachedRow(200, 10)
	s.ClearCache()
	_, ok = s.getCachedRow(200)
	if ok {
		t.Errorf("Expected cache to be cleared")
	}
}

func TestTripStatusLabel(t *testing.T) {
	cases := map[string]string{
		models.TripStatusActive:     "Набор открыт",
		models.TripStatusFull:       "Мест нет",
		models.TripStatusInProgress: "В пути",
		models.TripStatusCompleted:  "Завершена",
		models.TripStatusCancelled:  "Отменена",
		"weird":                     "weird",
	}

	for status, want := range cases {
		if got := tripStatusLabel(status); got != want {
			t.Errorf("tripStatusLabel(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestGetServiceAccountEmail(t *testing.T) {
	s := &SheetsService{}

	t.Run("ValidCredentials", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "creds.json")
		content := `{"client_email": "service@project.iam.gserviceaccount.com"}`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write creds: %v", err)
		}

		email, err := s.GetServiceAccountEmail(path)
		if err != nil {
			t.Fatalf("GetServiceAccountEmail: %v", err)
		}
		if email != "service@project.iam.gserviceaccount.com" {
			t.Errorf("Unexpected email: %s", email)
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := s.GetServiceAccountEmail(filepath.Join(t.TempDir(), "missing.json"))
		if err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
			t.Fatalf("write creds: %v", err)
		}
		_, err := s.GetServiceAccountEmail(path)
		if err == nil {
			t.Error("Expected error for invalid json")
		}
	})
}
