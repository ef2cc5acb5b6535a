package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/catalog-service/internal/domain"
)

// ProductRepository encapsulates product persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetActiveByID(ctx context.Context, id int64) (*domain.Product, error)
	ListActive(ctx context.Context) ([]domain.Product, error)
	ListActiveByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
	UpdateRating(ctx context.Context, id int64, rating float64) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates the repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, name, description, price, image_url, stock, rating, category_id, seller_id, is_active`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (name, description, price, image_url, stock, rating, category_id, seller_id, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		product.Name,
		product.Description,
		product.Price,
		product.ImageURL,
		product.Stock,
		product.Rating,
		product.CategoryID,
		product.SellerID,
		product.IsActive,
	).Scan(&product.ID)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET name=$1, description=$2, price=$3, image_url=$4, stock=$5,
            category_id=$6, is_active=$7
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		product.Name,
		product.Description,
		product.Price,
		product.ImageURL,
		product.Stock,
		product.CategoryID,
		product.IsActive,
		product.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	const query = `
        SELECT ` + productColumns + `
        FROM products WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *productRepository) GetActiveByID(ctx context.Context, id int64) (*domain.Product, error) {
	const query = `
        SELECT ` + productColumns + `
        FROM products WHERE id=$1 AND is_active = TRUE`
	return r.fetchSingle(ctx, query, id)
}

func (r *productRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Product, error) {
	var product domain.Product
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.ImageURL,
		&product.Stock,
		&product.Rating,
		&product.CategoryID,
		&product.SellerID,
		&product.IsActive,
	); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListActive returns active products whose category is also active.
func (r *productRepository) ListActive(ctx context.Context) ([]domain.Product, error) {
	const query = `
        SELECT p.id, p.name, p.description, p.price, p.image_url, p.stock, p.rating,
               p.category_id, p.seller_id, p.is_active
        FROM products p
        JOIN categories c ON c.id = p.category_id
        WHERE p.is_active = TRUE AND c.is_active = TRUE
        ORDER BY p.id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) ListActiveByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	const query = `
        SELECT ` + productColumns + `
        FROM products WHERE category_id=$1 AND is_active = TRUE
        ORDER BY id`
	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// UpdateRating writes the derived aggregate. Only the rating recomputation
// path calls this.
func (r *productRepository) UpdateRating(ctx context.Context, id int64, rating float64) error {
	const query = `UPDATE products SET rating=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, rating, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var result []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.ImageURL,
			&product.Stock,
			&product.Rating,
			&product.CategoryID,
			&product.SellerID,
			&product.IsActive,
		); err != nil {
			return nil, err
		}
		result = append(result, product)
	}
	return result, rows.Err()
}
