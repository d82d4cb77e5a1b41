package ports

import (
	"context"

	"github.com/okpanku/ministry-api/internal/core/domain"
)

// EventPublisher publishes permit lifecycle events to a message broker.
// Publishing is best effort: a broker outage must never fail a request.
type EventPublisher interface {
	PublishSubmission(ctx context.Context, ev *domain.SubmissionEvent) error
	PublishClearance(ctx context.Context, ev *domain.ClearanceEvent) error
}

// CacheService provides read-through caching with explicit invalidation.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
