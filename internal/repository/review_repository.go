package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/catalog-service/internal/domain"
)

// ReviewRepository encapsulates review persistence together with the two
// invariants that live at this boundary: the one-review-per-(user,product)
// guard and the product rating aggregate. Create and Deactivate run their
// review mutation and the rating recomputation in a single transaction, so a
// committed review is never observable alongside a stale aggregate.
type ReviewRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	GetActiveByID(ctx context.Context, id int64) (*domain.Review, error)
	ListActive(ctx context.Context) ([]domain.Review, error)
	ListActiveByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
	ExistsForUserAndProduct(ctx context.Context, userID, productID int64) (bool, error)
	Create(ctx context.Context, review *domain.Review) error
	Deactivate(ctx context.Context, id, productID int64) error
	ActiveAverageGrade(ctx context.Context, productID int64) (float64, error)
}

type reviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository instantiates the repository.
func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &reviewRepository{pool: pool}
}

const reviewColumns = `id, user_id, product_id, comment, grade, comment_date, is_active`

// recomputeRatingSQL refreshes the derived aggregate from the active review
// set; an empty set yields 0, not NULL.
const recomputeRatingSQL = `
    UPDATE products SET rating = COALESCE(
        (SELECT AVG(grade)::float8 FROM reviews WHERE product_id=$1 AND is_active = TRUE), 0)
    WHERE id=$1`

func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	const query = `
        SELECT ` + reviewColumns + `
        FROM reviews WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *reviewRepository) GetActiveByID(ctx context.Context, id int64) (*domain.Review, error) {
	const query = `
        SELECT ` + reviewColumns + `
        FROM reviews WHERE id=$1 AND is_active = TRUE`
	return r.fetchSingle(ctx, query, id)
}

func (r *reviewRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Review, error) {
	var review domain.Review
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&review.ID,
		&review.UserID,
		&review.ProductID,
		&review.Comment,
		&review.Grade,
		&review.CreatedAt,
		&review.IsActive,
	); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListActive(ctx context.Context) ([]domain.Review, error) {
	const query = `
        SELECT ` + reviewColumns + `
        FROM reviews WHERE is_active = TRUE
        ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

func (r *reviewRepository) ListActiveByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	const query = `
        SELECT ` + reviewColumns + `
        FROM reviews WHERE product_id=$1 AND is_active = TRUE
        ORDER BY id`
	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

// ExistsForUserAndProduct reports whether any review row exists for the pair,
// soft-deleted rows included.
func (r *reviewRepository) ExistsForUserAndProduct(ctx context.Context, userID, productID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id=$1 AND product_id=$2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, productID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts the review and refreshes the product rating in one
// transaction. The uniqueness guard runs inside the same transaction; the
// unique index on (user_id, product_id) backstops it against concurrent
// inserts, and both paths report ErrDuplicateReview.
func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const existsQuery = `SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id=$1 AND product_id=$2)`
	var exists bool
	if err := tx.QueryRow(ctx, existsQuery, review.UserID, review.ProductID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrDuplicateReview
	}

	const insertQuery = `
        INSERT INTO reviews (user_id, product_id, comment, grade, is_active)
        VALUES ($1,$2,$3,$4,TRUE)
        RETURNING id, comment_date`
	if err := tx.QueryRow(ctx, insertQuery,
		review.UserID,
		review.ProductID,
		review.Comment,
		review.Grade,
	).Scan(&review.ID, &review.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return err
	}
	review.IsActive = true

	if _, err := tx.Exec(ctx, recomputeRatingSQL, review.ProductID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Deactivate soft-deletes an active review and refreshes the product rating
// in one transaction. Returns pgx.ErrNoRows when the review is missing or
// already inactive.
func (r *reviewRepository) Deactivate(ctx context.Context, id, productID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `UPDATE reviews SET is_active = FALSE WHERE id=$1 AND is_active = TRUE`
	cmd, err := tx.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, recomputeRatingSQL, productID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ActiveAverageGrade computes the mean grade over active reviews, 0 when the
// set is empty.
func (r *reviewRepository) ActiveAverageGrade(ctx context.Context, productID int64) (float64, error) {
	const query = `
        SELECT COALESCE(AVG(grade)::float8, 0)
        FROM reviews WHERE product_id=$1 AND is_active = TRUE`
	var avg float64
	if err := r.pool.QueryRow(ctx, query, productID).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanReviews(rows pgx.Rows) ([]domain.Review, error) {
	var result []domain.Review
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.ProductID,
			&review.Comment,
			&review.Grade,
			&review.CreatedAt,
			&review.IsActive,
		); err != nil {
			return nil, err
		}
		result = append(result, review)
	}
	return result, rows.Err()
}
