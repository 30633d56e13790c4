package domain

import (
	"context"
	"strconv"
)

// IntakeKind names an origin table.
type IntakeKind string

const (
	IntakeResumeDeposit   IntakeKind = "resume_deposit"
	IntakeApplicationForm IntakeKind = "application_form"
)

func (k IntakeKind) Valid() bool {
	return k == IntakeResumeDeposit || k == IntakeApplicationForm
}

// Intake status vocabulary accepted on status updates.
const (
	IntakeStatusPending  = "pending"
	IntakeStatusApproved = "approved"
	IntakeStatusRejected = "rejected"
	IntakeStatusHired    = "hired"
)

// RawApplicantRecord is a submitted document as stored in its origin table.
// Its shape depends on the intake form that produced it.
type RawApplicantRecord map[string]any

// ID returns the primary key of the record in its origin table.
func (r RawApplicantRecord) ID() string {
	return r.String("id")
}

// String returns a top-level scalar field as a string, or "" when absent.
func (r RawApplicantRecord) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// FilterScope selects which identity an intake listing is filtered by.
type FilterScope string

const (
	ScopeNone       FilterScope = ""
	ScopeID         FilterScope = "id"
	ScopeUserID     FilterScope = "userId"
	ScopeLineID     FilterScope = "lineId"
	ScopeEmail      FilterScope = "email"
	ScopeDepartment FilterScope = "department"
	ScopeAdmin      FilterScope = "admin"
)

// IntakeFilter is one listing query against an origin table.
type IntakeFilter struct {
	Scope FilterScope
	Value string
	Limit int // 0 = no cap
}

// IntakeSource lists raw records from one origin table.
type IntakeSource interface {
	List(ctx context.Context, filter IntakeFilter) ([]RawApplicantRecord, error)
}

// IntakeRepository defines data access for one origin table
type IntakeRepository interface {
	IntakeSource
	GetByID(ctx context.Context, id string) (RawApplicantRecord, error)
	Create(ctx context.Context, doc RawApplicantRecord) (RawApplicantRecord, error)
	Replace(ctx context.Context, id string, doc RawApplicantRecord) (RawApplicantRecord, error)
	UpdateStatus(ctx context.Context, id string, status string) (RawApplicantRecord, error)
}

// IntakeUsecase defines business logic for one origin table
type IntakeUsecase interface {
	Kind() IntakeKind
	List(ctx context.Context, filter IntakeFilter) ([]RawApplicantRecord, error)
	Get(ctx context.Context, id string) (RawApplicantRecord, error)
	Submit(ctx context.Context, doc RawApplicantRecord) (RawApplicantRecord, error)
	Replace(ctx context.Context, id string, doc RawApplicantRecord) (RawApplicantRecord, error)
	UpdateStatus(ctx context.Context, id string, status string) (RawApplicantRecord, error)
}
