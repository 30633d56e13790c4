package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/internal/reconcile"
	"hospital-recruitment-backend/pkg/apperror"
	"hospital-recruitment-backend/pkg/audit"
	"hospital-recruitment-backend/pkg/email"
	"hospital-recruitment-backend/pkg/logger"
	"hospital-recruitment-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// Notifier sends new-submission emails; *email.EmailService satisfies it.
type Notifier interface {
	IsConfigured() bool
	SendSubmissionNotice(recipients []string, data email.SubmissionEmailData) error
}

// IntakeConfig holds per-deployment settings of the intake usecases
type IntakeConfig struct {
	AdminListLimit int
	ReviewBaseURL  string // frontend base for review links in emails
}

type intakeUsecase struct {
	kind      domain.IntakeKind
	repo      domain.IntakeRepository
	staffRepo domain.StaffUserRepository
	events    domain.EventPublisher
	notifier  Notifier
	audit     *audit.Logger
	validate  *validator.Validate
	cfg       IntakeConfig
}

// NewIntakeUsecase creates the usecase serving one origin table
func NewIntakeUsecase(
	kind domain.IntakeKind,
	repo domain.IntakeRepository,
	staffRepo domain.StaffUserRepository,
	events domain.EventPublisher,
	notifier Notifier,
	auditLogger *audit.Logger,
	validate *validator.Validate,
	cfg IntakeConfig,
) domain.IntakeUsecase {
	return &intakeUsecase{
		kind:      kind,
		repo:      repo,
		staffRepo: staffRepo,
		events:    events,
		notifier:  notifier,
		audit:     auditLogger,
		validate:  validate,
		cfg:       cfg,
	}
}

// submission is the validated part of a submitted document
type submission struct {
	FirstName    string `validate:"required,valid_name,no_emoji"`
	LastName     string `validate:"required,valid_name,no_emoji"`
	Email        string `validate:"omitempty,email"`
	Phone        string `validate:"valid_phone"`
	IDCardNumber string `validate:"thai_id"`
}

type statusUpdate struct {
	Status string `validate:"required,oneof=pending approved rejected hired"`
}

var formNames = map[domain.IntakeKind]string{
	domain.IntakeResumeDeposit:   "ฝากประวัติ",
	domain.IntakeApplicationForm: "ใบสมัครงาน",
}

func (uc *intakeUsecase) Kind() domain.IntakeKind {
	return uc.kind
}

// List applies the caller's visibility to filter before querying.
// Applicants always see their own records; department admins only their department.
func (uc *intakeUsecase) List(ctx context.Context, filter domain.IntakeFilter) ([]domain.RawApplicantRecord, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	switch p.Role {
	case domain.RoleAdmin:
		if filter.Scope == domain.ScopeNone || filter.Scope == domain.ScopeAdmin {
			filter = domain.IntakeFilter{Scope: domain.ScopeAdmin, Limit: uc.capLimit(filter.Limit)}
		}
	case domain.RoleDepartmentAdmin:
		if filter.Scope == domain.ScopeNone || filter.Scope == domain.ScopeAdmin || filter.Scope == domain.ScopeDepartment {
			filter = domain.IntakeFilter{Scope: domain.ScopeDepartment, Value: p.Department, Limit: uc.capLimit(filter.Limit)}
		}
	default:
		explicitID := ""
		if filter.Scope == domain.ScopeID {
			explicitID = filter.Value
		}
		filter = domain.IdentityHints{ID: explicitID, UserID: p.UserID, LineID: p.LineID, Email: p.Email}.Filter(0)
		if filter.Scope == domain.ScopeNone {
			return []domain.RawApplicantRecord{}, nil
		}
	}

	records, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	visible := make([]domain.RawApplicantRecord, 0, len(records))
	for _, r := range records {
		if uc.canAccess(p, r) {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

func (uc *intakeUsecase) Get(ctx context.Context, id string) (domain.RawApplicantRecord, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	rec, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !uc.canAccess(p, rec) {
		uc.denied(ctx, p, id, "read")
		return nil, apperror.Forbidden("You can only view your own records")
	}
	return rec, nil
}

// Submit stores a new document, then publishes and notifies. Publish and
// email failures are logged; the stored record is still returned.
func (uc *intakeUsecase) Submit(ctx context.Context, doc domain.RawApplicantRecord) (domain.RawApplicantRecord, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if err := uc.validateDocument(doc); err != nil {
		return nil, err
	}

	doc = cloneRecord(doc)
	if !p.IsAdmin() {
		// Ownership always comes from the session
		delete(doc, "status")
		doc["userId"] = p.UserID
		if p.LineID != "" {
			doc["lineId"] = p.LineID
		}
		if doc.String("email") == "" && p.Email != "" {
			doc["email"] = p.Email
		}
	}

	created, err := uc.repo.Create(ctx, doc)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	dept := recordDepartment(created)
	uc.audit.Record(ctx, audit.Event{
		Action:    audit.ActionSubmitted,
		Kind:      string(uc.kind),
		RecordID:  created.ID(),
		ActorID:   p.UserID,
		ActorRole: p.Role,
		Email:     created.String("email"),
	})
	uc.publish(ctx, domain.EventRecordCreated, created.ID(), dept)
	uc.notifySubmission(ctx, created, dept)

	return created, nil
}

// Replace overwrites a stored document. The ownership keys of the stored
// record are kept for non-admin callers.
func (uc *intakeUsecase) Replace(ctx context.Context, id string, doc domain.RawApplicantRecord) (domain.RawApplicantRecord, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	existing, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !uc.canAccess(p, existing) {
		uc.denied(ctx, p, id, "replace")
		return nil, apperror.Forbidden("You can only edit your own records")
	}
	if err := uc.validateDocument(doc); err != nil {
		return nil, err
	}

	doc = cloneRecord(doc)
	if !p.IsAdmin() {
		for _, key := range []string{"userId", "lineId"} {
			if v, ok := existing[key]; ok {
				doc[key] = v
			} else {
				delete(doc, key)
			}
		}
	}

	updated, err := uc.repo.Replace(ctx, id, doc)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Record not found")
		}
		return nil, apperror.Internal(err)
	}

	uc.audit.Record(ctx, audit.Event{
		Action:    audit.ActionReplaced,
		Kind:      string(uc.kind),
		RecordID:  id,
		ActorID:   p.UserID,
		ActorRole: p.Role,
	})
	uc.publish(ctx, domain.EventRecordUpdated, id, recordDepartment(updated))
	return updated, nil
}

func (uc *intakeUsecase) UpdateStatus(ctx context.Context, id string, status string) (domain.RawApplicantRecord, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if !p.IsAdmin() {
		uc.denied(ctx, p, id, "status")
		return nil, apperror.Forbidden("Only admins can change application status")
	}

	req := statusUpdate{Status: strings.ToLower(strings.TrimSpace(status))}
	if err := uc.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), ", "))
	}

	existing, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !uc.canAccess(p, existing) {
		uc.denied(ctx, p, id, "status")
		return nil, apperror.Forbidden("Record belongs to another department")
	}

	updated, err := uc.repo.UpdateStatus(ctx, id, storedStatus(uc.kind, req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Record not found")
		}
		return nil, apperror.Internal(err)
	}

	uc.audit.Record(ctx, audit.Event{
		Action:    audit.ActionStatusChanged,
		Kind:      string(uc.kind),
		RecordID:  id,
		ActorID:   p.UserID,
		ActorRole: p.Role,
		OldStatus: existing.String("status"),
		NewStatus: updated.String("status"),
	})
	uc.publish(ctx, domain.EventRecordStatusChanged, id, recordDepartment(updated))
	return updated, nil
}

func (uc *intakeUsecase) load(ctx context.Context, id string) (domain.RawApplicantRecord, error) {
	rec, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Record not found")
		}
		return nil, apperror.Internal(err)
	}
	return rec, nil
}

func (uc *intakeUsecase) canAccess(p domain.Principal, rec domain.RawApplicantRecord) bool {
	switch p.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleDepartmentAdmin:
		return p.Department != "" && strings.EqualFold(recordDepartment(rec), p.Department)
	default:
		return p.Owns(rec)
	}
}

func (uc *intakeUsecase) capLimit(limit int) int {
	if limit <= 0 || (uc.cfg.AdminListLimit > 0 && limit > uc.cfg.AdminListLimit) {
		return uc.cfg.AdminListLimit
	}
	return limit
}

func (uc *intakeUsecase) validateDocument(doc domain.RawApplicantRecord) error {
	sub := submission{
		FirstName:    doc.String("firstName"),
		LastName:     doc.String("lastName"),
		Email:        strings.TrimSpace(doc.String("email")),
		Phone:        doc.String("phone"),
		IDCardNumber: doc.String("idCardNumber"),
	}
	if err := uc.validate.Struct(sub); err != nil {
		return apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), ", "))
	}

	for _, d := range reconcile.Normalize(doc).Documents {
		if d.FileName == "" && d.FilePath == "" {
			continue
		}
		if err := validation.ValidateDocumentRef(d.FileName, d.FilePath); err != nil {
			return apperror.BadRequest(fmt.Sprintf("เอกสาร %s: %v", d.FileName, err))
		}
	}
	return nil
}

func (uc *intakeUsecase) denied(ctx context.Context, p domain.Principal, id, op string) {
	uc.audit.Record(ctx, audit.Event{
		Action:    audit.ActionAccessDenied,
		Kind:      string(uc.kind),
		RecordID:  id,
		ActorID:   p.UserID,
		ActorRole: p.Role,
		Reason:    op,
	})
}

func (uc *intakeUsecase) publish(ctx context.Context, eventType, id, dept string) {
	if uc.events == nil {
		return
	}
	ev := domain.ApplicantEvent{
		Type:       eventType,
		Kind:       uc.kind,
		RecordID:   id,
		Department: dept,
		At:         time.Now().UTC(),
	}
	if err := uc.events.Publish(ctx, ev); err != nil {
		logger.Log.Warn("Failed to publish applicant event", "type", eventType, "record_id", id, "error", err)
	}
}

func (uc *intakeUsecase) notifySubmission(ctx context.Context, rec domain.RawApplicantRecord, dept string) {
	if uc.notifier == nil || !uc.notifier.IsConfigured() {
		return
	}

	var recipients []string
	if dept != "" && uc.staffRepo != nil {
		admins, err := uc.staffRepo.ListByDepartments(ctx, []string{dept})
		if err != nil {
			logger.Log.Warn("Failed to load department admins", "department", dept, "error", err)
		}
		for _, a := range admins {
			recipients = append(recipients, a.Email)
		}
	}

	kind := reconcile.Classify(rec).Kind()
	data := email.SubmissionEmailData{
		FormName:    formNames[uc.kind],
		RecordID:    rec.ID(),
		FullName:    strings.TrimSpace(rec.String("firstName") + " " + rec.String("lastName")),
		Position:    reconcile.ResolvePosition(rec, kind),
		Department:  dept,
		ApplicantTo: rec.String("email"),
	}
	if uc.cfg.ReviewBaseURL != "" {
		data.ReviewURL = fmt.Sprintf("%s/admin/applicants?id=%s", uc.cfg.ReviewBaseURL, rec.ID())
	}

	if err := uc.notifier.SendSubmissionNotice(recipients, data); err != nil {
		logger.Log.Error("Failed to send submission email", "record_id", rec.ID(), "error", err)
	}
}

// recordDepartment is the department a record is listed under
func recordDepartment(rec domain.RawApplicantRecord) string {
	return reconcile.ResolveDepartment(rec, reconcile.Classify(rec).Kind())
}

// storedStatus converts a status to the vocabulary of the table it is written to
func storedStatus(kind domain.IntakeKind, status string) string {
	if kind == domain.IntakeResumeDeposit {
		return strings.ToUpper(status)
	}
	return status
}

func cloneRecord(doc domain.RawApplicantRecord) domain.RawApplicantRecord {
	out := make(domain.RawApplicantRecord, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
