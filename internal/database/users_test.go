package database

import (
	"context"
	"testing"

	"poputka/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func int64Ptr(n int64) *int64 { return &n }

func TestCreateOrUpdateUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	user := &models.User{
		TelegramID: 12345,
		Username:   "ivan",
		FirstName:  "Иван",
		LastName:   "Петров",
	}
	require.NoError(t, db.CreateOrUpdateUser(ctx, user))
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RolePassenger, user.Role)
	assert.Equal(t, models.DefaultRating, user.DriverRating)

	// Повторный заход обновляет профиль, но не трогает заполненные поля
	again := &models.User{TelegramID: 12345, Username: "ivan_new", FirstName: "Иван"}
	require.NoError(t, db.CreateOrUpdateUser(ctx, again))
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "ivan_new", again.Username)
	assert.Equal(t, "Петров", again.LastName)
}

func TestGetUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	created := createTestUser(t, db, 500, "anna")

	byTelegram, err := db.GetUserByTelegramID(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byTelegram.ID)

	byID, err := db.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), byID.TelegramID)

	_, err = db.GetUserByTelegramID(ctx, 999999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateCarProfile(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	createTestUser(t, db, 700, "sergey")

	updated, err := db.UpdateCarProfile(ctx, 700, models.CarProfile{
		HasCar:   boolPtr(true),
		CarModel: strPtr("Lada Vesta"),
		CarColor: strPtr("белый"),
		CarPlate: strPtr("А123ВС77"),
		CarSeats: int64Ptr(4),
	})
	require.NoError(t, err)
	assert.True(t, updated.HasCar)
	assert.Equal(t, "Lada Vesta", updated.CarModel)
	assert.Equal(t, int64(4), updated.CarSeats)
	// Пассажир с машиной становится both
	assert.Equal(t, models.RoleBoth, updated.Role)

	// Частичное обновление не сбрасывает остальные поля
	updated, err = db.UpdateCarProfile(ctx, 700, models.CarProfile{
		CarColor: strPtr("чёрный"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lada Vesta", updated.CarModel)
	assert.Equal(t, "чёрный", updated.CarColor)
	assert.Equal(t, models.RoleBoth, updated.Role)

	// Продажа машины возвращает роль passenger
	updated, err = db.UpdateCarProfile(ctx, 700, models.CarProfile{
		HasCar: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, updated.HasCar)
	assert.Equal(t, models.RolePassenger, updated.Role)

	_, err = db.UpdateCarProfile(ctx, 999999, models.CarProfile{HasCar: boolPtr(true)})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTripCounters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	user := createTestUser(t, db, 800, "olga")

	require.NoError(t, db.IncrementDriverTrips(ctx, user.ID))
	require.NoError(t, db.IncrementDriverTrips(ctx, user.ID))
	require.NoError(t, db.IncrementPassengerTrips(ctx, user.ID))

	loaded, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.TotalDriverTrips)
	assert.Equal(t, int64(1), loaded.TotalPassengerTrips)
}

func TestUpdateUserRating(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	user := createTestUser(t, db, 900, "fedor")

	require.NoError(t, db.UpdateUserRating(ctx, user.ID, true, 4.5))
	require.NoError(t, db.UpdateUserRating(ctx, user.ID, false, 3.0))

	loaded, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, loaded.DriverRating)
	assert.Equal(t, 3.0, loaded.PassengerRating)
}
