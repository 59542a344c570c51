package service

import (
	"context"
	"errors"
	"testing"

	"poputka/internal/config"
	"poputka/internal/database"
	"poputka/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newUserService(repo *mockRepo) *UserService {
	cfg := &config.Config{
		Managers:  []int64{100, 200},
		Blacklist: []int64{666},
	}
	logger := zerolog.Nop()
	return NewUserService(repo, cfg, &logger)
}

func TestUserServiceAccessLists(t *testing.T) {
	s := newUserService(new(mockRepo))

	assert.True(t, s.IsManager(100))
	assert.True(t, s.IsManager(200))
	assert.False(t, s.IsManager(300))

	assert.True(t, s.IsBlacklisted(666))
	assert.False(t, s.IsBlacklisted(100))
}

func TestUserServiceSaveUser(t *testing.T) {
	repo := new(mockRepo)
	s := newUserService(repo)
	ctx := context.Background()

	user := &models.User{TelegramID: 42, Username: "driver42", FirstName: "Иван"}
	repo.On("CreateOrUpdateUser", ctx, user).Return(nil).Once()

	err := s.SaveUser(ctx, user)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUserServiceGetUser(t *testing.T) {
	repo := new(mockRepo)
	s := newUserService(repo)
	ctx := context.Background()

	t.Run("by telegram id", func(t *testing.T) {
		expected := &models.User{ID: 1, TelegramID: 42}
		repo.On("GetUserByTelegramID", ctx, int64(42)).Return(expected, nil).Once()

		user, err := s.GetUserByTelegramID(ctx, 42)
		assert.NoError(t, err)
		assert.Equal(t, expected, user)
	})

	t.Run("not found", func(t *testing.T) {
		repo.On("GetUserByTelegramID", ctx, int64(99)).Return(nil, database.ErrUserNotFound).Once()

		user, err := s.GetUserByTelegramID(ctx, 99)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
		assert.Nil(t, user)
	})

	t.Run("by internal id", func(t *testing.T) {
		expected := &models.User{ID: 7, TelegramID: 77}
		repo.On("GetUserByID", ctx, int64(7)).Return(expected, nil).Once()

		user, err := s.GetUserByID(ctx, 7)
		assert.NoError(t, err)
		assert.Equal(t, expected, user)
	})
}

func TestUserServiceUpdateCarProfile(t *testing.T) {
	repo := new(mockRepo)
	s := newUserService(repo)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		hasCar := true
		model := "Lada Vesta"
		profile := models.CarProfile{HasCar: &hasCar, CarModel: &model}
		updated := &models.User{TelegramID: 42, HasCar: true, Role: models.RoleDriver}

		repo.On("UpdateCarProfile", ctx, int64(42), mock.MatchedBy(func(p models.CarProfile) bool {
			return p.HasCar != nil && *p.HasCar && p.CarModel != nil && *p.CarModel == "Lada Vesta"
		})).Return(updated, nil).Once()

		user, err := s.UpdateCarProfile(ctx, 42, profile)
		assert.NoError(t, err)
		assert.True(t, user.HasCar)
		assert.Equal(t, models.RoleDriver, user.Role)
	})

	t.Run("repo error", func(t *testing.T) {
		repo.On("UpdateCarProfile", ctx, int64(43), mock.Anything).
			Return(nil, errors.New("db down")).Once()

		user, err := s.UpdateCarProfile(ctx, 43, models.CarProfile{})
		assert.Error(t, err)
		assert.Nil(t, user)
	})

	repo.AssertExpectations(t)
}

func TestUserServiceLists(t *testing.T) {
	repo := new(mockRepo)
	s := newUserService(repo)
	ctx := context.Background()

	all := []*models.User{{ID: 1}, {ID: 2}}
	repo.On("GetAllUsers", ctx).Return(all, nil).Once()
	repo.On("GetActiveUsers", ctx, 30).Return(all[:1], nil).Once()
	repo.On("UpdateUserActivity", ctx, int64(42)).Return(nil).Once()

	users, err := s.GetAllUsers(ctx)
	assert.NoError(t, err)
	assert.Len(t, users, 2)

	active, err := s.GetActiveUsers(ctx, 30)
	assert.NoError(t, err)
	assert.Len(t, active, 1)

	assert.NoError(t, s.UpdateUserActivity(ctx, 42))
	repo.AssertExpectations(t)
}
