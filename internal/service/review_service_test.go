package service

import (
	"context"
	"sync"
	"testing"

	"github.com/spec-kit/catalog-service/internal/domain"
	"github.com/spec-kit/catalog-service/internal/events"
	apperrors "github.com/spec-kit/catalog-service/pkg/util"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) typesSeen() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		result = append(result, e.Type)
	}
	return result
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", status)
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.HTTPStatus != status {
		t.Fatalf("status = %d (%s), want %d", domainErr.HTTPStatus, domainErr.Message, status)
	}
}

type reviewFixture struct {
	service    *ReviewService
	products   *fakeProductRepo
	reviews    *fakeReviewRepo
	dispatcher *recordingDispatcher
	product    *domain.Product
	buyer      *domain.User
	admin      *domain.User
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	products := newFakeProductRepo()
	reviews := newFakeReviewRepo(products)
	dispatcher := &recordingDispatcher{}

	product := &domain.Product{Name: "Walnut Desk", CategoryID: 1, SellerID: 10, IsActive: true}
	if err := products.Create(context.Background(), product); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	return &reviewFixture{
		service: NewReviewService(ReviewDependencies{
			ReviewRepo:  reviews,
			ProductRepo: products,
			Dispatcher:  dispatcher,
		}),
		products:   products,
		reviews:    reviews,
		dispatcher: dispatcher,
		product:    product,
		buyer:      &domain.User{ID: 1, Email: "b@x.com", Role: domain.RoleBuyer, IsActive: true},
		admin:      &domain.User{ID: 99, Email: "a@x.com", Role: domain.RoleAdmin, IsActive: true},
	}
}

func TestCreateReviewUpdatesRating(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	review, err := fx.service.CreateReview(ctx, fx.buyer, ReviewInput{ProductID: fx.product.ID, Grade: 4, Comment: "solid"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if review.ID == 0 || !review.IsActive {
		t.Fatalf("review not persisted as active: %+v", review)
	}
	if fx.product.Rating != 4.0 {
		t.Fatalf("rating = %v, want 4.0", fx.product.Rating)
	}

	second := &domain.User{ID: 2, Email: "b2@x.com", Role: domain.RoleBuyer, IsActive: true}
	if _, err := fx.service.CreateReview(ctx, second, ReviewInput{ProductID: fx.product.ID, Grade: 5}); err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if fx.product.Rating != 4.5 {
		t.Fatalf("rating = %v, want 4.5", fx.product.Rating)
	}
}

func TestDeleteReviewRevertsRating(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	if _, err := fx.service.CreateReview(ctx, fx.buyer, ReviewInput{ProductID: fx.product.ID, Grade: 4}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second := &domain.User{ID: 2, Email: "b2@x.com", Role: domain.RoleBuyer, IsActive: true}
	graded5, err := fx.service.CreateReview(ctx, second, ReviewInput{ProductID: fx.product.ID, Grade: 5})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if fx.product.Rating != 4.5 {
		t.Fatalf("rating = %v, want 4.5", fx.product.Rating)
	}

	if err := fx.service.DeleteReview(ctx, fx.admin, graded5.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if fx.product.Rating != 4.0 {
		t.Fatalf("rating = %v, want 4.0 after soft delete", fx.product.Rating)
	}
}

func TestCreateReviewDuplicatePair(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	first, err := fx.service.CreateReview(ctx, fx.buyer, ReviewInput{ProductID: fx.product.ID, Grade: 3})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = fx.service.CreateReview(ctx, fx.buyer, ReviewInput{ProductID: fx.product.ID, Grade: 5})
	assertStatus(t, err, 409)

	// a soft-deleted review still blocks re-reviewing
	if err := fx.service.DeleteReview(ctx, fx.admin, first.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, err = fx.service.CreateReview(ctx, fx.buyer, ReviewInput{ProductID: fx.product.ID, Grade: 5})
	assertStatus(t, err, 409)
}

func TestCreateReviewGradeBounds(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	for _, grade := range []int{0, -1, 6} {
		_, err := fx.service.CreateReview(ctx, fx.buyer, ReviewInput{ProductID: fx.product.ID, Grade: grade})
		assertStatus(t, err, 400)
	}
	for grade := domain.MinGrade; grade <= domain.MaxGrade; grade++ {
		buyer := &domain.User{ID: int64(100 + grade), Email: "x", Role: domain.RoleBuyer, IsActive: true}
		if _, err := fx.service.CreateReview(ctx, buyer, ReviewInput{ProductID: fx.product.ID, Grade: grade}); err != nil {
			t.Fatalf("grade %d rejected: %v", grade, err)
		}
	}
}

func TestCreateReviewInactiveProduct(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	fx.product.IsActive = false
	_, err := fx.service.CreateReview(ctx, fx.buyer, ReviewInput{ProductID: fx.product.ID, Grade: 4})
	assertStatus(t, err, 404)

	_, err = fx.service.CreateReview(ctx, fx.buyer, ReviewInput{ProductID: 777, Grade: 4})
	assertStatus(t, err, 404)
}

func TestDeleteReviewMissingOrInactive(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	err := fx.service.DeleteReview(ctx, fx.admin, 123)
	assertStatus(t, err, 404)

	review, err := fx.service.CreateReview(ctx, fx.buyer, ReviewInput{ProductID: fx.product.ID, Grade: 4})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := fx.service.DeleteReview(ctx, fx.admin, review.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	err = fx.service.DeleteReview(ctx, fx.admin, review.ID)
	assertStatus(t, err, 404)
}

func TestRecomputeRating(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	// empty active set defines the aggregate as zero
	rating, err := fx.service.RecomputeRating(ctx, fx.product.ID)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if rating != 0 {
		t.Fatalf("rating = %v, want 0 for empty review set", rating)
	}

	if _, err := fx.service.CreateReview(ctx, fx.buyer, ReviewInput{ProductID: fx.product.ID, Grade: 3}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// idempotent: repeated recompute leaves the stored value unchanged
	for i := 0; i < 2; i++ {
		rating, err = fx.service.RecomputeRating(ctx, fx.product.ID)
		if err != nil {
			t.Fatalf("recompute failed: %v", err)
		}
		if rating != 3.0 || fx.product.Rating != 3.0 {
			t.Fatalf("rating = %v stored %v, want 3.0", rating, fx.product.Rating)
		}
	}
}

func TestReviewEventsPublished(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	review, err := fx.service.CreateReview(ctx, fx.buyer, ReviewInput{ProductID: fx.product.ID, Grade: 4})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := fx.service.DeleteReview(ctx, fx.admin, review.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	want := []events.EventType{
		events.EventReviewCreated,
		events.EventProductRatingChanged,
		events.EventReviewDeleted,
		events.EventProductRatingChanged,
	}
	got := fx.dispatcher.typesSeen()
	if len(got) != len(want) {
		t.Fatalf("event count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestListProductReviews(t *testing.T) {
	fx := newReviewFixture(t)
	ctx := context.Background()

	if _, err := fx.service.CreateReview(ctx, fx.buyer, ReviewInput{ProductID: fx.product.ID, Grade: 4}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	listed, err := fx.service.ListProductReviews(ctx, fx.product.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d reviews, want 1", len(listed))
	}

	fx.product.IsActive = false
	_, err = fx.service.ListProductReviews(ctx, fx.product.ID)
	assertStatus(t, err, 404)
}
