package service

import (
	"context"

	"poputka/internal/domain"
	"poputka/internal/events"
	"poputka/internal/models"

	"github.com/rs/zerolog"
)

type ReviewService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewReviewService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateReview сохраняет отзыв по завершённой брони. Рейтинг получателя
// пересчитывается в хранилище атомарно с записью отзыва.
func (s *ReviewService) CreateReview(ctx context.Context, review *models.Review) error {
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return err
	}

	if s.eventBus != nil {
		payload := events.ReviewEventPayload{
			ReviewID:   review.ID,
			BookingID:  review.BookingID,
			ReviewerID: review.ReviewerID,
			ReviewedID: review.ReviewedID,
			Rating:     review.Rating,
		}
		if err := s.eventBus.PublishJSON(events.EventReviewCreated, payload); err != nil {
			s.logger.Error().Err(err).Int64("review_id", review.ID).Msg("publish event error")
		}
	}

	return nil
}

func (s *ReviewService) GetUserReviews(ctx context.Context, userID int64) ([]*models.Review, error) {
	return s.repo.GetUserReviews(ctx, userID)
}
