package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPublishInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var seen []Event
	d.Subscribe(EventProductRatingChanged, func(_ context.Context, e Event) error {
		seen = append(seen, e)
		return nil
	})
	d.Subscribe(EventProductDeleted, func(_ context.Context, e Event) error {
		t.Fatalf("handler for unrelated type invoked: %+v", e)
		return nil
	})

	event := Event{
		ID:        "evt-1",
		Type:      EventProductRatingChanged,
		ProductID: 7,
		Timestamp: time.Now(),
	}
	if err := d.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(seen) != 1 || seen[0].ID != "evt-1" || seen[0].ProductID != 7 {
		t.Fatalf("handler saw %+v", seen)
	}
}

func TestPublishContinuesPastFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher()

	calls := 0
	d.Subscribe(EventReviewCreated, func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})
	d.Subscribe(EventReviewCreated, func(context.Context, Event) error {
		calls++
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventReviewCreated}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventProductCreated}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
}
