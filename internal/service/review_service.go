package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/catalog-service/internal/domain"
	"github.com/spec-kit/catalog-service/internal/events"
	"github.com/spec-kit/catalog-service/internal/repository"
	apperrors "github.com/spec-kit/catalog-service/pkg/util"
)

// ReviewService coordinates review workflows and the derived product rating.
type ReviewService struct {
	reviews    repository.ReviewRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
}

// ReviewDependencies bundles collaborators for the review service.
type ReviewDependencies struct {
	ReviewRepo  repository.ReviewRepository
	ProductRepo repository.ProductRepository
	Dispatcher  events.Dispatcher
}

// ReviewInput describes a review creation payload.
type ReviewInput struct {
	ProductID int64
	Grade     int
	Comment   string
}

// NewReviewService constructs the service.
func NewReviewService(deps ReviewDependencies) *ReviewService {
	return &ReviewService{
		reviews:    deps.ReviewRepo,
		products:   deps.ProductRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ListReviews returns all active reviews.
func (s *ReviewService) ListReviews(ctx context.Context) ([]domain.Review, error) {
	result, err := s.reviews.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ListProductReviews returns active reviews of an active product.
func (s *ReviewService) ListProductReviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	if _, err := s.products.GetActiveByID(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product not found or inactive", nil)
		}
		return nil, apperrors.MapError(err)
	}
	result, err := s.reviews.ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// CreateReview posts a buyer's review for an active product. The repository
// runs the uniqueness guard, the insert and the rating recomputation in one
// transaction; a prior review for the pair, active or soft-deleted, rejects
// the request.
func (s *ReviewService) CreateReview(ctx context.Context, buyer *domain.User, input ReviewInput) (*domain.Review, error) {
	if input.Grade < domain.MinGrade || input.Grade > domain.MaxGrade {
		return nil, apperrors.NewValidationError("grade must be between 1 and 5", nil)
	}

	product, err := s.products.GetActiveByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product not found or inactive", nil)
		}
		return nil, apperrors.MapError(err)
	}

	review := &domain.Review{
		UserID:    buyer.ID,
		ProductID: product.ID,
		Comment:   strings.TrimSpace(input.Comment),
		Grade:     input.Grade,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, apperrors.NewConflict("only one review per product", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.publishReviewEvents(ctx, actorFor(buyer), review.ProductID,
		events.EventReviewCreated,
		events.ReviewCreatedPayload{ReviewID: review.ID, Grade: review.Grade})
	return review, nil
}

// DeleteReview soft-deletes a review; the rating is recomputed in the same
// transaction as the flip.
func (s *ReviewService) DeleteReview(ctx context.Context, admin *domain.User, reviewID int64) error {
	review, err := s.reviews.GetActiveByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("review doesn't exist or is inactive", nil)
		}
		return apperrors.MapError(err)
	}

	if err := s.reviews.Deactivate(ctx, review.ID, review.ProductID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("review doesn't exist or is inactive", nil)
		}
		return apperrors.MapError(err)
	}

	s.publishReviewEvents(ctx, actorFor(admin), review.ProductID,
		events.EventReviewDeleted,
		events.ReviewDeletedPayload{ReviewID: review.ID})
	return nil
}

// RecomputeRating refreshes a product's aggregate from its active review set.
// Safe to call at any time; recomputing with no intervening review change is
// a no-op on the stored value.
func (s *ReviewService) RecomputeRating(ctx context.Context, productID int64) (float64, error) {
	avg, err := s.reviews.ActiveAverageGrade(ctx, productID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if err := s.products.UpdateRating(ctx, productID, avg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFound("product not found", nil)
		}
		return 0, apperrors.MapError(err)
	}
	return avg, nil
}

func (s *ReviewService) publishReviewEvents(ctx context.Context, actor events.Actor, productID int64, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	s.publish(ctx, events.Event{
		Type:      eventType,
		ProductID: productID,
		Actor:     actor,
		Payload:   payload,
	})

	rating, err := s.reviews.ActiveAverageGrade(ctx, productID)
	if err != nil {
		return
	}
	s.publish(ctx, events.Event{
		Type:      events.EventProductRatingChanged,
		ProductID: productID,
		Actor:     actor,
		Payload:   events.ProductRatingChangedPayload{Rating: rating},
	})
}

func (s *ReviewService) publish(ctx context.Context, event events.Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
