package dto

import "github.com/spec-kit/catalog-service/internal/domain"

// CategoryRequest payload for category create/update.
type CategoryRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

// CategoryResponse public category representation.
type CategoryResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
	IsActive bool   `json:"is_active"`
}

// ProductRequest payload for product create/update.
type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock"`
	CategoryID  int64   `json:"category_id"`
}

// ProductResponse public product representation.
type ProductResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock"`
	Rating      float64 `json:"rating"`
	CategoryID  int64   `json:"category_id"`
	SellerID    int64   `json:"seller_id"`
	IsActive    bool    `json:"is_active"`
}

// NewCategoryResponse maps the domain model.
func NewCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:       category.ID,
		Name:     category.Name,
		ParentID: category.ParentID,
		IsActive: category.IsActive,
	}
}

// NewCategoryList maps a slice of domain models.
func NewCategoryList(categories []domain.Category) []CategoryResponse {
	result := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		result = append(result, NewCategoryResponse(&categories[i]))
	}
	return result
}

// NewProductResponse maps the domain model.
func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		ImageURL:    product.ImageURL,
		Stock:       product.Stock,
		Rating:      product.Rating,
		CategoryID:  product.CategoryID,
		SellerID:    product.SellerID,
		IsActive:    product.IsActive,
	}
}

// NewProductList maps a slice of domain models.
func NewProductList(products []domain.Product) []ProductResponse {
	result := make([]ProductResponse, 0, len(products))
	for i := range products {
		result = append(result, NewProductResponse(&products[i]))
	}
	return result
}
