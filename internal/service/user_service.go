package service

import (
	"context"

	"poputka/internal/config"
	"poputka/internal/domain"
	"poputka/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo         domain.Repository
	config       *config.Config
	logger       *zerolog.Logger
	managersMap  map[int64]bool
	blacklistMap map[int64]bool
}

func NewUserService(repo domain.Repository, config *config.Config, logger *zerolog.Logger) *UserService {
	managersMap := make(map[int64]bool)
	for _, id := range config.Managers {
		managersMap[id] = true
	}

	blacklistMap := make(map[int64]bool)
	for _, id := range config.Blacklist {
		blacklistMap[id] = true
	}

	return &UserService{
		repo:         repo,
		config:       config,
		logger:       logger,
		managersMap:  managersMap,
		blacklistMap: blacklistMap,
	}
}

func (s *UserService) IsManager(telegramID int64) bool {
	return s.managersMap[telegramID]
}

func (s *UserService) IsBlacklisted(telegramID int64) bool {
	return s.blacklistMap[telegramID]
}

// SaveUser регистрирует пользователя при первом заходе и обновляет
// профиль при повторных.
func (s *UserService) SaveUser(ctx context.Context, user *models.User) error {
	return s.repo.CreateOrUpdateUser(ctx, user)
}

func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.repo.GetUserByTelegramID(ctx, telegramID)
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// UpdateCarProfile принимает только разрешённые поля анкеты автомобиля.
// Смена признака has_car автоматически переключает роль пользователя.
func (s *UserService) UpdateCarProfile(ctx context.Context, telegramID int64, profile models.CarProfile) (*models.User, error) {
	user, err := s.repo.UpdateCarProfile(ctx, telegramID, profile)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("telegram_id", telegramID).
		Str("role", user.Role).
		Bool("has_car", user.HasCar).
		Msg("car profile updated")
	return user, nil
}

func (s *UserService) UpdateUserActivity(ctx context.Context, telegramID int64) error {
	return s.repo.UpdateUserActivity(ctx, telegramID)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

func (s *UserService) GetActiveUsers(ctx context.Context, days int) ([]*models.User, error) {
	return s.repo.GetActiveUsers(ctx, days)
}
