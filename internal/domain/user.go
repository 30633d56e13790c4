package domain

import (
	"context"
	"strings"
	"time"
)

// Staff roles
const (
	RoleAdmin           = "admin"
	RoleDepartmentAdmin = "department_admin"
	RoleApplicant       = "applicant"
)

// StaffUser is a local account linked to the identity provider subject.
type StaffUser struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	LineID     string    `json:"line_id,omitempty"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID     string
	Email      string
	LineID     string
	Role       string
	Department string
}

// IsAdmin reports whether the caller may use admin listings (scoped or not).
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin || p.Role == RoleDepartmentAdmin
}

// Owns reports whether record was submitted by the caller.
func (p Principal) Owns(record RawApplicantRecord) bool {
	if p.UserID != "" && record.String("userId") == p.UserID {
		return true
	}
	if p.LineID != "" && record.String("lineId") == p.LineID {
		return true
	}
	if p.Email != "" && strings.EqualFold(record.String("email"), p.Email) {
		return true
	}
	return false
}

type StaffUserRepository interface {
	GetByID(ctx context.Context, id string) (*StaffUser, error)
	// ListByDepartments returns department admins of any of the given departments.
	ListByDepartments(ctx context.Context, departments []string) ([]StaffUser, error)
}

type AuthUsecase interface {
	GetCurrentUser(ctx context.Context, id string) (*StaffUser, error)
}
