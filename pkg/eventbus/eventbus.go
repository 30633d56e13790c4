// Package eventbus fans applicant events out to open listing views.
package eventbus

import (
	"context"

	"hospital-recruitment-backend/internal/domain"
)

// Channel is the Redis pub/sub channel applicant events travel on.
const Channel = "applicants:events"

// subscriberBuffer bounds how far a slow subscriber may lag before events are dropped.
const subscriberBuffer = 32

// Bus publishes and subscribes to applicant events.
type Bus interface {
	domain.EventPublisher
	domain.EventSubscriber
	Close() error
}

// deliver hands ev to ch without blocking the publisher.
func deliver(ch chan domain.ApplicantEvent, ev domain.ApplicantEvent) bool {
	select {
	case ch <- ev:
		return true
	default:
		return false
	}
}

// closedContext reports whether ctx has already been cancelled.
func closedContext(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
