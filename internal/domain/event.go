package domain

import (
	"context"
	"time"
)

// Applicant event types
const (
	EventRecordCreated       = "created"
	EventRecordUpdated       = "updated"
	EventRecordStatusChanged = "status_changed"
)

// ApplicantEvent notifies open listing views that an intake record changed.
type ApplicantEvent struct {
	Type       string     `json:"type"`
	Kind       IntakeKind `json:"kind"`
	RecordID   string     `json:"record_id"`
	Department string     `json:"department,omitempty"`
	At         time.Time  `json:"at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event ApplicantEvent) error
}

type EventSubscriber interface {
	// Subscribe delivers events until ctx is done or the returned cancel is called.
	Subscribe(ctx context.Context) (<-chan ApplicantEvent, func(), error)
}
