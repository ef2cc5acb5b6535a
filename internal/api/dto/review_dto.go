package dto

import (
	"time"

	"github.com/spec-kit/catalog-service/internal/domain"
)

// ReviewCreateRequest payload.
type ReviewCreateRequest struct {
	ProductID int64  `json:"product_id"`
	Grade     int    `json:"grade"`
	Comment   string `json:"comment"`
}

// ReviewResponse public review representation.
type ReviewResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Grade     int       `json:"grade"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"comment_date"`
	IsActive  bool      `json:"is_active"`
}

// NewReviewResponse maps the domain model.
func NewReviewResponse(review *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		UserID:    review.UserID,
		ProductID: review.ProductID,
		Grade:     review.Grade,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
		IsActive:  review.IsActive,
	}
}

// NewReviewList maps a slice of domain models.
func NewReviewList(reviews []domain.Review) []ReviewResponse {
	result := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		result = append(result, NewReviewResponse(&reviews[i]))
	}
	return result
}
