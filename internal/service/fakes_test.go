package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/catalog-service/internal/domain"
	"github.com/spec-kit/catalog-service/internal/repository"
)

// In-memory repository fakes mirroring the Postgres implementations,
// including the review repository's transactional contract: review mutations
// refresh the owning product's rating before returning.

type fakeUserRepo struct {
	seq   int64
	users map[string]*domain.User
	// createErr simulates insert-level failures such as a unique violation
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	f.seq++
	user.ID = f.seq
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.Email]; !ok {
		return pgx.ErrNoRows
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetActiveByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := f.users[email]; ok && u.IsActive {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeCategoryRepo struct {
	seq        int64
	categories map[int64]*domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[int64]*domain.Category)}
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	f.seq++
	category.ID = f.seq
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	if _, ok := f.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	if c, ok := f.categories[id]; ok {
		return c, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCategoryRepo) GetActiveByID(_ context.Context, id int64) (*domain.Category, error) {
	if c, ok := f.categories[id]; ok && c.IsActive {
		return c, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCategoryRepo) ListActive(_ context.Context) ([]domain.Category, error) {
	var result []domain.Category
	for _, c := range f.categories {
		if c.IsActive {
			result = append(result, *c)
		}
	}
	return result, nil
}

type fakeProductRepo struct {
	seq      int64
	products map[int64]*domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*domain.Product)}
}

func (f *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	f.seq++
	product.ID = f.seq
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, product *domain.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeProductRepo) GetActiveByID(_ context.Context, id int64) (*domain.Product, error) {
	if p, ok := f.products[id]; ok && p.IsActive {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeProductRepo) ListActive(_ context.Context) ([]domain.Product, error) {
	var result []domain.Product
	for _, p := range f.products {
		if p.IsActive {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakeProductRepo) ListActiveByCategory(_ context.Context, categoryID int64) ([]domain.Product, error) {
	var result []domain.Product
	for _, p := range f.products {
		if p.IsActive && p.CategoryID == categoryID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakeProductRepo) UpdateRating(_ context.Context, id int64, rating float64) error {
	p, ok := f.products[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Rating = rating
	return nil
}

type fakeReviewRepo struct {
	seq      int64
	reviews  []*domain.Review
	products *fakeProductRepo
}

func newFakeReviewRepo(products *fakeProductRepo) *fakeReviewRepo {
	return &fakeReviewRepo{products: products}
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id int64) (*domain.Review, error) {
	for _, r := range f.reviews {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeReviewRepo) GetActiveByID(_ context.Context, id int64) (*domain.Review, error) {
	for _, r := range f.reviews {
		if r.ID == id && r.IsActive {
			return r, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeReviewRepo) ListActive(_ context.Context) ([]domain.Review, error) {
	var result []domain.Review
	for _, r := range f.reviews {
		if r.IsActive {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReviewRepo) ListActiveByProduct(_ context.Context, productID int64) ([]domain.Review, error) {
	var result []domain.Review
	for _, r := range f.reviews {
		if r.IsActive && r.ProductID == productID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReviewRepo) ExistsForUserAndProduct(_ context.Context, userID, productID int64) (bool, error) {
	for _, r := range f.reviews {
		if r.UserID == userID && r.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	exists, _ := f.ExistsForUserAndProduct(ctx, review.UserID, review.ProductID)
	if exists {
		return repository.ErrDuplicateReview
	}
	f.seq++
	review.ID = f.seq
	review.IsActive = true
	f.reviews = append(f.reviews, review)
	return f.recompute(review.ProductID)
}

func (f *fakeReviewRepo) Deactivate(_ context.Context, id, productID int64) error {
	for _, r := range f.reviews {
		if r.ID == id && r.IsActive {
			r.IsActive = false
			return f.recompute(productID)
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeReviewRepo) ActiveAverageGrade(_ context.Context, productID int64) (float64, error) {
	sum, count := 0, 0
	for _, r := range f.reviews {
		if r.IsActive && r.ProductID == productID {
			sum += r.Grade
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return float64(sum) / float64(count), nil
}

func (f *fakeReviewRepo) recompute(productID int64) error {
	avg, _ := f.ActiveAverageGrade(context.Background(), productID)
	return f.products.UpdateRating(context.Background(), productID, avg)
}
