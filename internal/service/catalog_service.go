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

// ProductCache is the read-through cache consulted by product lookups.
// *cache.CatalogCache satisfies it.
type ProductCache interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, bool)
	SetProduct(ctx context.Context, product *domain.Product)
}

// CatalogService coordinates category and product workflows.
type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
	cache      ProductCache
}

// CatalogDependencies bundles collaborators for the catalog service.
type CatalogDependencies struct {
	CategoryRepo repository.CategoryRepository
	ProductRepo  repository.ProductRepository
	Dispatcher   events.Dispatcher
	Cache        ProductCache
}

// CategoryInput describes category create/update payloads.
type CategoryInput struct {
	Name     string
	ParentID *int64
}

// ProductInput describes product create/update payloads.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	ImageURL    string
	Stock       int
	CategoryID  int64
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		categories: deps.CategoryRepo,
		products:   deps.ProductRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
	}
}

// ListCategories returns all active categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	result, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// CreateCategory creates a category, validating the optional parent.
func (s *CatalogService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	if input.ParentID != nil {
		if _, err := s.categories.GetActiveByID(ctx, *input.ParentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("parent category not found", nil)
			}
			return nil, apperrors.MapError(err)
		}
	}

	category := &domain.Category{
		Name:     strings.TrimSpace(input.Name),
		ParentID: input.ParentID,
		IsActive: true,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// UpdateCategory updates an active category.
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*domain.Category, error) {
	category, err := s.categories.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category not found", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if input.ParentID != nil {
		if *input.ParentID == id {
			return nil, apperrors.NewValidationError("category cannot be its own parent", nil)
		}
		if _, err := s.categories.GetActiveByID(ctx, *input.ParentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("parent category not found", nil)
			}
			return nil, apperrors.MapError(err)
		}
	}

	category.Name = strings.TrimSpace(input.Name)
	category.ParentID = input.ParentID
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// DeleteCategory soft-deletes a category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	category, err := s.categories.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("category not found", nil)
		}
		return apperrors.MapError(err)
	}
	category.IsActive = false
	if err := s.categories.Update(ctx, category); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListProducts returns active products belonging to active categories.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	result, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ListProductsByCategory returns active products of an active category.
func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	if _, err := s.categories.GetActiveByID(ctx, categoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category not found", nil)
		}
		return nil, apperrors.MapError(err)
	}
	result, err := s.products.ListActiveByCategory(ctx, categoryID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// GetProduct returns an active product, consulting the cache first. A product
// whose category went inactive is reported as a dangling reference. The
// category is re-validated even on a cache hit: a cached payload must not
// outlive its category's soft deletion.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetProduct(ctx, id); ok {
			if err := s.requireActiveCategory(ctx, cached.CategoryID); err != nil {
				return nil, err
			}
			return cached, nil
		}
	}

	product, err := s.products.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product not found", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.requireActiveCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetProduct(ctx, product)
	}
	return product, nil
}

// CreateProduct creates a product bound to the calling seller.
func (s *CatalogService) CreateProduct(ctx context.Context, seller *domain.User, input ProductInput) (*domain.Product, error) {
	if err := s.requireActiveCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
		Rating:      0,
		CategoryID:  input.CategoryID,
		SellerID:    seller.ID,
		IsActive:    true,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventProductCreated,
		ProductID: product.ID,
		Actor:     actorFor(seller),
		Payload: events.ProductCreatedPayload{
			CategoryID: product.CategoryID,
			Name:       product.Name,
		},
	})
	return product, nil
}

// UpdateProduct updates an active product owned by the calling seller.
func (s *CatalogService) UpdateProduct(ctx context.Context, seller *domain.User, id int64, input ProductInput) (*domain.Product, error) {
	product, err := s.ownedActiveProduct(ctx, seller, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Price = input.Price
	product.ImageURL = input.ImageURL
	product.Stock = input.Stock
	product.CategoryID = input.CategoryID
	if err := s.products.Update(ctx, product); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventProductUpdated,
		ProductID: product.ID,
		Actor:     actorFor(seller),
		Payload:   events.ProductUpdatedPayload{CategoryID: product.CategoryID},
	})
	return product, nil
}

// DeleteProduct soft-deletes an active product owned by the calling seller.
func (s *CatalogService) DeleteProduct(ctx context.Context, seller *domain.User, id int64) (*domain.Product, error) {
	product, err := s.ownedActiveProduct(ctx, seller, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}

	product.IsActive = false
	if err := s.products.Update(ctx, product); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventProductDeleted,
		ProductID: product.ID,
		Actor:     actorFor(seller),
		Payload:   events.ProductDeletedPayload{CategoryID: product.CategoryID},
	})
	return product, nil
}

func (s *CatalogService) ownedActiveProduct(ctx context.Context, seller *domain.User, id int64) (*domain.Product, error) {
	product, err := s.products.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product not found", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if product.SellerID != seller.ID {
		return nil, apperrors.NewForbidden("you can only manage your own products")
	}
	return product, nil
}

func (s *CatalogService) requireActiveCategory(ctx context.Context, categoryID int64) error {
	if _, err := s.categories.GetActiveByID(ctx, categoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("category not found", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *CatalogService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorFor(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: user.ID, Role: user.Role}
}
