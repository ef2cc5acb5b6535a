package events

import (
	"time"

	"github.com/spec-kit/catalog-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProductCreated       EventType = "product_created"
	EventProductUpdated       EventType = "product_updated"
	EventProductDeleted       EventType = "product_deleted"
	EventReviewCreated        EventType = "review_created"
	EventReviewDeleted        EventType = "review_deleted"
	EventProductRatingChanged EventType = "product_rating_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ProductID int64       `json:"product_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ProductCreatedPayload payload.
type ProductCreatedPayload struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
}

// ProductUpdatedPayload payload.
type ProductUpdatedPayload struct {
	CategoryID int64 `json:"category_id"`
}

// ProductDeletedPayload payload.
type ProductDeletedPayload struct {
	CategoryID int64 `json:"category_id"`
}

// ReviewCreatedPayload payload.
type ReviewCreatedPayload struct {
	ReviewID int64 `json:"review_id"`
	Grade    int   `json:"grade"`
}

// ReviewDeletedPayload payload.
type ReviewDeletedPayload struct {
	ReviewID int64 `json:"review_id"`
}

// ProductRatingChangedPayload payload.
type ProductRatingChangedPayload struct {
	Rating float64 `json:"rating"`
}
