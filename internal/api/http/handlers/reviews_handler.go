package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/catalog-service/internal/api/dto"
	"github.com/spec-kit/catalog-service/internal/service"
	apperrors "github.com/spec-kit/catalog-service/pkg/util"
)

// ReviewsHandler exposes review endpoints.
type ReviewsHandler struct {
	reviews *service.ReviewService
}

// NewReviewsHandler constructs handler.
func NewReviewsHandler(reviews *service.ReviewService) *ReviewsHandler {
	return &ReviewsHandler{reviews: reviews}
}

// List handles GET /reviews.
func (h *ReviewsHandler) List(c *fiber.Ctx) error {
	reviews, err := h.reviews.ListReviews(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReviewList(reviews)})
}

// ListByProduct handles GET /products/:id/reviews.
func (h *ReviewsHandler) ListByProduct(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	reviews, err := h.reviews.ListProductReviews(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReviewList(reviews)})
}

// Create handles POST /reviews.
func (h *ReviewsHandler) Create(c *fiber.Ctx) error {
	buyer, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	var req dto.ReviewCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ProductID == 0 {
		return apperrors.NewValidationError("product_id required", nil)
	}

	review, err := h.reviews.CreateReview(c.Context(), buyer, service.ReviewInput{
		ProductID: req.ProductID,
		Grade:     req.Grade,
		Comment:   req.Comment,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewReviewResponse(review)})
}

// Delete handles DELETE /reviews/:id.
func (h *ReviewsHandler) Delete(c *fiber.Ctx) error {
	admin, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.reviews.DeleteReview(c.Context(), admin, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "review deleted"}})
}
