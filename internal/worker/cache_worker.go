package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/catalog-service/internal/cache"
	"github.com/spec-kit/catalog-service/internal/events"
)

// StartCacheWorker subscribes cache invalidation to catalog mutation events,
// so cached product payloads never outlive a rating or catalog change.
func StartCacheWorker(dispatcher events.Dispatcher, catalogCache *cache.CatalogCache, logger *zap.Logger) {
	if dispatcher == nil || catalogCache == nil {
		return
	}

	invalidate := func(ctx context.Context, event events.Event) error {
		catalogCache.InvalidateProduct(ctx, event.ProductID)
		logger.Debug("product cache invalidated",
			zap.Int64("product_id", event.ProductID),
			zap.String("event_type", string(event.Type)))
		return nil
	}

	dispatcher.Subscribe(events.EventProductUpdated, invalidate)
	dispatcher.Subscribe(events.EventProductDeleted, invalidate)
	dispatcher.Subscribe(events.EventReviewCreated, invalidate)
	dispatcher.Subscribe(events.EventReviewDeleted, invalidate)
	dispatcher.Subscribe(events.EventProductRatingChanged, invalidate)
}
