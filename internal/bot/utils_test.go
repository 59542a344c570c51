package bot

import (
	"testing"
	"time"

	"poputka/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserDate(t *testing.T) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	t.Run("today keyword", func(t *testing.T) {
		d, err := parseUserDate("Сегодня")
		require.NoError(t, err)
		assert.Equal(t, today, d)
	})

	t.Run("tomorrow keyword", func(t *testing.T) {
		d, err := parseUserDate("завтра")
		require.NoError(t, err)
		assert.Equal(t, today.Add(24*time.Hour), d)
	})

	t.Run("explicit date", func(t *testing.T) {
		d, err := parseUserDate("15.06.2027")
		require.NoError(t, err)
		assert.Equal(t, 2027, d.Year())
		assert.Equal(t, time.June, d.Month())
		assert.Equal(t, 15, d.Day())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseUserDate("послезавтра")
		assert.Error(t, err)
	})
}

func TestParseUserDateTime(t *testing.T) {
	d, depTime, err := parseUserDateTime("15.06.2027 09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", depTime)
	assert.Equal(t, 15, d.Day())

	_, _, err = parseUserDateTime("15.06.2027")
	assert.Error(t, err)

	_, _, err = parseUserDateTime("15.06.2027 930")
	assert.Error(t, err)
}

func TestParseSeats(t *testing.T) {
	n, err := parseSeats(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = parseSeats("0")
	assert.Error(t, err)

	_, err = parseSeats("11")
	assert.Error(t, err)

	_, err = parseSeats("три")
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	p, err := parsePrice("450,50")
	require.NoError(t, err)
	assert.Equal(t, 450.5, p)

	_, err = parsePrice("-5")
	assert.Error(t, err)

	_, err = parsePrice("дорого")
	assert.Error(t, err)
}

func TestFormatTripCard(t *testing.T) {
	trip := &models.Trip{
		ID:             42,
		StartCity:      "Москва",
		FinishCity:     "Тверь",
		DepartureDate:  time.Date(2027, 6, 15, 0, 0, 0, 0, time.UTC),
		DepartureTime:  "09:30",
		TotalSeats:     4,
		AvailableSeats: 2,
		PricePerSeat:   450,
		Status:         models.TripStatusActive,
		AllowLuggage:   true,
	}
	driver := &models.User{
		FirstName:    "Иван",
		LastName:     "Петров",
		DriverRating: 4.8,
		CarModel:     "Skoda Octavia",
		CarColor:     "белая",
		CarPlate:     "А123ВС77",
	}

	card := formatTripCard(trip, driver)
	assert.Contains(t, card, "Москва → Тверь")
	assert.Contains(t, card, "15.06.2027 в 09:30")
	assert.Contains(t, card, "Свободно мест: 2 из 4")
	assert.Contains(t, card, "Иван Петров")
	assert.Contains(t, card, "⭐ 4.8")
	assert.Contains(t, card, "Skoda Octavia, белая, А123ВС77")
	assert.Contains(t, card, "🧳 багаж")
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "🟢 Набор открыт", tripStatusText(models.TripStatusActive))
	assert.Equal(t, "🔴 Мест нет", tripStatusText(models.TripStatusFull))
	assert.Equal(t, "🏁 Завершена", tripStatusText(models.TripStatusCompleted))
	assert.Equal(t, "🟢 Активна", bookingStatusText(models.BookingStatusActive))
	assert.Equal(t, "неизвестно", bookingStatusText("неизвестно"))
}

func TestCallbackInt64(t *testing.T) {
	assert.Equal(t, int64(17), callbackInt64("book:17", "book:"))
	assert.Equal(t, int64(0), callbackInt64("book:oops", "book:"))
}

func TestMainMenuKeyboard(t *testing.T) {
	kb := mainMenuKeyboard()
	require.Len(t, kb.Keyboard, 3)
	assert.Equal(t, btnSearchTrip, kb.Keyboard[0][0].Text)
	assert.True(t, kb.ResizeKeyboard)
}

func TestCityKeyboard(t *testing.T) {
	cities := []models.City{{Name: "Москва"}, {Name: "Тверь"}, {Name: "Казань"}}
	kb := cityKeyboard(cities)
	require.Len(t, kb.Keyboard, 3)
	assert.Equal(t, "Москва", kb.Keyboard[0][0].Text)
	assert.Equal(t, "Тверь", kb.Keyboard[0][1].Text)
	assert.Equal(t, "Казань", kb.Keyboard[1][0].Text)
	assert.Equal(t, btnCancelInput, kb.Keyboard[2][0].Text)

	empty := cityKeyboard(nil)
	require.Len(t, empty.Keyboard, 1)
	assert.Equal(t, btnCancelInput, empty.Keyboard[0][0].Text)
}
