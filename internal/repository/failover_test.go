package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"poputka/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockStateRepo struct {
	mock.Mock
}

func (m *mockStateRepo) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserState), args.Error(1)
}

func (m *mockStateRepo) SetState(ctx context.Context, state *models.UserState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockStateRepo) ClearState(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockStateRepo) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}

// searchDialogState имитирует пассажира посреди диалога поиска поездки.
func searchDialogState(userID int64) *models.UserState {
	return &models.UserState{
		UserID:      userID,
		CurrentStep: models.StateSearchDate,
		TempData: map[string]interface{}{
			"from": "Москва",
			"to":   "Тверь",
		},
	}
}

func bookingDialogState(userID, tripID int64) *models.UserState {
	return &models.UserState{
		UserID:      userID,
		CurrentStep: models.StateBookingSeats,
		TempData:    map[string]interface{}{"trip_id": tripID},
	}
}

func TestFailoverStateRepository(t *testing.T) {
	redis := new(mockStateRepo)
	memory := new(mockStateRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverStateRepository(redis, memory, &logger)
	ctx := context.Background()

	t.Run("redis healthy", func(t *testing.T) {
		state := searchDialogState(1)
		redis.On("GetState", ctx, int64(1)).Return(state, nil).Once()

		got, err := repo.GetState(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, "Москва", got.GetString("from"))
		redis.AssertExpectations(t)
	})

	t.Run("redis down, dialog survives in memory", func(t *testing.T) {
		state := bookingDialogState(2, 17)
		redis.On("GetState", ctx, int64(2)).Return(nil, errors.New("connection refused")).Once()
		memory.On("GetState", ctx, int64(2)).Return(state, nil).Once()

		got, err := repo.GetState(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, int64(17), got.GetInt64("trip_id"))
		assert.True(t, repo.isDown.Load())
		redis.AssertExpectations(t)
		memory.AssertExpectations(t)
	})

	t.Run("recovery after interval", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * recoveryInterval)

		state := searchDialogState(3)
		redis.On("GetState", ctx, int64(3)).Return(state, nil).Once()

		got, err := repo.GetState(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, models.StateSearchDate, got.CurrentStep)
		assert.False(t, repo.isDown.Load())
		redis.AssertExpectations(t)
	})

	t.Run("failed recovery keeps memory fallback", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * recoveryInterval)

		redis.On("GetState", ctx, int64(33)).Return(nil, errors.New("still down")).Once()
		memory.On("GetState", ctx, int64(33)).Return(nil, nil).Once()

		_, err := repo.GetState(ctx, 33)
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		redis.AssertExpectations(t)
		memory.AssertExpectations(t)
	})

	t.Run("recent failure skips recovery probe", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now()

		memory.On("GetState", ctx, int64(34)).Return(nil, nil).Once()

		_, err := repo.GetState(ctx, 34)
		assert.NoError(t, err)
		// Redis не трогали: с последней ошибки прошло меньше минуты
		redis.AssertNotCalled(t, "GetState", ctx, int64(34))
		memory.AssertExpectations(t)
	})

	t.Run("writes follow the same switch", func(t *testing.T) {
		repo.isDown.Store(false)
		state := bookingDialogState(4, 20)
		redis.On("SetState", ctx, state).Return(errors.New("write failed")).Once()
		memory.On("SetState", ctx, state).Return(nil).Once()

		err := repo.SetState(ctx, state)
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		redis.AssertExpectations(t)
		memory.AssertExpectations(t)
	})

	t.Run("writes while down go to memory", func(t *testing.T) {
		repo.isDown.Store(true)
		state := searchDialogState(44)
		memory.On("SetState", ctx, state).Return(nil).Once()

		assert.NoError(t, repo.SetState(ctx, state))
		memory.AssertExpectations(t)
	})

	t.Run("clear after booking confirm", func(t *testing.T) {
		repo.isDown.Store(false)
		redis.On("ClearState", ctx, int64(5)).Return(errors.New("fail")).Once()
		memory.On("ClearState", ctx, int64(5)).Return(nil).Once()

		assert.NoError(t, repo.ClearState(ctx, 5))
		assert.True(t, repo.isDown.Load())
		memory.AssertExpectations(t)
	})

	t.Run("rate limit degrades with the rest", func(t *testing.T) {
		repo.isDown.Store(false)
		redis.On("CheckRateLimit", ctx, int64(6), 20, time.Minute).Return(false, errors.New("fail")).Once()
		memory.On("CheckRateLimit", ctx, int64(6), 20, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, 6, 20, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, repo.isDown.Load())
		memory.AssertExpectations(t)
	})
}
