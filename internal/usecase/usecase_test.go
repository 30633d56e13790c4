package usecase_test

import (
	"context"
	"testing"

	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/internal/usecase"
	"hospital-recruitment-backend/pkg/audit"
	"hospital-recruitment-backend/pkg/email"
	"hospital-recruitment-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock Repositories
type MockIntakeRepo struct {
	mock.Mock
}

func (m *MockIntakeRepo) record(args mock.Arguments) (domain.RawApplicantRecord, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.RawApplicantRecord), args.Error(1)
}

func (m *MockIntakeRepo) List(ctx context.Context, f domain.IntakeFilter) ([]domain.RawApplicantRecord, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawApplicantRecord), args.Error(1)
}
func (m *MockIntakeRepo) GetByID(ctx context.Context, id string) (domain.RawApplicantRecord, error) {
	return m.record(m.Called(ctx, id))
}
func (m *MockIntakeRepo) Create(ctx context.Context, doc domain.RawApplicantRecord) (domain.RawApplicantRecord, error) {
	return m.record(m.Called(ctx, doc))
}
func (m *MockIntakeRepo) Replace(ctx context.Context, id string, doc domain.RawApplicantRecord) (domain.RawApplicantRecord, error) {
	return m.record(m.Called(ctx, id, doc))
}
func (m *MockIntakeRepo) UpdateStatus(ctx context.Context, id string, status string) (domain.RawApplicantRecord, error) {
	return m.record(m.Called(ctx, id, status))
}

type MockStaffRepo struct {
	mock.Mock
}

func (m *MockStaffRepo) GetByID(ctx context.Context, id string) (*domain.StaffUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StaffUser), args.Error(1)
}
func (m *MockStaffRepo) ListByDepartments(ctx context.Context, departments []string) ([]domain.StaffUser, error) {
	args := m.Called(ctx, departments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StaffUser), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev domain.ApplicantEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) IsConfigured() bool {
	return m.Called().Bool(0)
}
func (m *MockNotifier) SendSubmissionNotice(recipients []string, data email.SubmissionEmailData) error {
	return m.Called(recipients, data).Error(0)
}

type intakeFixture struct {
	repo     *MockIntakeRepo
	staff    *MockStaffRepo
	events   *MockPublisher
	notifier *MockNotifier
	uc       domain.IntakeUsecase
}

func newIntakeFixture(kind domain.IntakeKind) *intakeFixture {
	f := &intakeFixture{
		repo:     new(MockIntakeRepo),
		staff:    new(MockStaffRepo),
		events:   new(MockPublisher),
		notifier: new(MockNotifier),
	}
	f.uc = usecase.NewIntakeUsecase(kind, f.repo, f.staff, f.events, f.notifier,
		audit.NewWithZap(zap.NewNop()), validation.New(),
		usecase.IntakeConfig{AdminListLimit: 100, ReviewBaseURL: "https://hr.example.org"})
	return f
}

func as(p domain.Principal) context.Context {
	return domain.WithPrincipal(context.Background(), p)
}

var (
	applicant = domain.Principal{UserID: "u-1", Email: "somchai@example.com", Role: domain.RoleApplicant}
	admin     = domain.Principal{UserID: "a-1", Role: domain.RoleAdmin}
	icuAdmin  = domain.Principal{UserID: "d-1", Role: domain.RoleDepartmentAdmin, Department: "ICU"}
)

func TestIntakeList(t *testing.T) {
	t.Run("Should fail when no caller is on the context", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeResumeDeposit)
		_, err := f.uc.List(context.Background(), domain.IntakeFilter{Scope: domain.ScopeAdmin})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "User not authenticated")
	})

	t.Run("Applicant filters are replaced by the session identity", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeResumeDeposit)
		own := domain.RawApplicantRecord{"id": "r-1", "userId": "u-1"}
		f.repo.On("List", mock.Anything, domain.IntakeFilter{Scope: domain.ScopeUserID, Value: "u-1"}).
			Return([]domain.RawApplicantRecord{own}, nil)

		recs, err := f.uc.List(as(applicant), domain.IntakeFilter{Scope: domain.ScopeEmail, Value: "victim@example.com"})

		require.NoError(t, err)
		assert.Equal(t, []domain.RawApplicantRecord{own}, recs)
		f.repo.AssertExpectations(t)
	})

	t.Run("Applicant lookup by id hides records of other people", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeResumeDeposit)
		f.repo.On("List", mock.Anything, domain.IntakeFilter{Scope: domain.ScopeID, Value: "r-9"}).
			Return([]domain.RawApplicantRecord{{"id": "r-9", "userId": "u-2"}}, nil)

		recs, err := f.uc.List(as(applicant), domain.IntakeFilter{Scope: domain.ScopeID, Value: "r-9"})

		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("Department admin is forced to their department", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeApplicationForm)
		f.repo.On("List", mock.Anything, domain.IntakeFilter{Scope: domain.ScopeDepartment, Value: "ICU", Limit: 100}).
			Return([]domain.RawApplicantRecord{{"id": "a-1", "department": "ICU"}}, nil)

		recs, err := f.uc.List(as(icuAdmin), domain.IntakeFilter{Scope: domain.ScopeDepartment, Value: "ER"})

		require.NoError(t, err)
		assert.Len(t, recs, 1)
	})

	t.Run("Admin listing limit is capped", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeApplicationForm)
		f.repo.On("List", mock.Anything, domain.IntakeFilter{Scope: domain.ScopeAdmin, Limit: 100}).
			Return([]domain.RawApplicantRecord{}, nil)

		_, err := f.uc.List(as(admin), domain.IntakeFilter{Scope: domain.ScopeAdmin, Limit: 5000})

		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})
}

func TestIntakeGet(t *testing.T) {
	t.Run("Should fail when record belongs to someone else", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeResumeDeposit)
		f.repo.On("GetByID", mock.Anything, "r-2").Return(domain.RawApplicantRecord{"id": "r-2", "userId": "u-2"}, nil)

		_, err := f.uc.Get(as(applicant), "r-2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only view your own records")
	})

	t.Run("Missing record is not found", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeResumeDeposit)
		f.repo.On("GetByID", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

		_, err := f.uc.Get(as(admin), "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Record not found")
	})
}

func TestIntakeSubmit(t *testing.T) {
	t.Run("Should fail if required fields are missing", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeApplicationForm)

		_, err := f.uc.Submit(as(applicant), domain.RawApplicantRecord{"email": "not-an-email"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ชื่อ: จำเป็นต้องกรอก")
		assert.Contains(t, err.Error(), "อีเมล")
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should force ownership from the session and notify", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeApplicationForm)
		doc := domain.RawApplicantRecord{
			"firstName":       "สมชาย",
			"lastName":        "ใจดี",
			"userId":          "hacker_try",
			"status":          "approved",
			"appliedPosition": "Nurse",
			"department":      "ICU",
		}
		f.repo.On("Create", mock.Anything, mock.MatchedBy(func(d domain.RawApplicantRecord) bool {
			_, hasStatus := d["status"]
			return d["userId"] == "u-1" && d["email"] == "somchai@example.com" && !hasStatus
		})).Return(domain.RawApplicantRecord{
			"id": "n-1", "firstName": "สมชาย", "lastName": "ใจดี", "userId": "u-1",
			"appliedPosition": "Nurse", "department": "ICU", "status": "pending",
		}, nil)
		f.events.On("Publish", mock.Anything, mock.MatchedBy(func(ev domain.ApplicantEvent) bool {
			return ev.Type == domain.EventRecordCreated && ev.RecordID == "n-1" && ev.Department == "ICU"
		})).Return(nil)
		f.notifier.On("IsConfigured").Return(true)
		f.staff.On("ListByDepartments", mock.Anything, []string{"ICU"}).
			Return([]domain.StaffUser{{Email: "icu-head@example.org"}}, nil)
		f.notifier.On("SendSubmissionNotice", []string{"icu-head@example.org"}, mock.MatchedBy(func(d email.SubmissionEmailData) bool {
			return d.FullName == "สมชาย ใจดี" && d.Position == "Nurse" &&
				d.ReviewURL == "https://hr.example.org/admin/applicants?id=n-1"
		})).Return(nil)

		rec, err := f.uc.Submit(as(applicant), doc)

		require.NoError(t, err)
		assert.Equal(t, "n-1", rec.ID())
		assert.Equal(t, "hacker_try", doc["userId"], "caller document is not mutated")
		f.repo.AssertExpectations(t)
		f.events.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})
}

func TestIntakeReplace(t *testing.T) {
	t.Run("Missing record is not found", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeResumeDeposit)
		f.repo.On("GetByID", mock.Anything, "gone").Return(nil, domain.ErrNotFound)

		_, err := f.uc.Replace(as(admin), "gone", domain.RawApplicantRecord{"firstName": "A", "lastName": "B"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Record not found")
		f.repo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalid document leaves the stored one untouched", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeResumeDeposit)
		f.repo.On("GetByID", mock.Anything, "r-1").Return(domain.RawApplicantRecord{"id": "r-1", "userId": "u-1"}, nil)

		_, err := f.uc.Replace(as(applicant), "r-1", domain.RawApplicantRecord{"firstName": ""})

		require.Error(t, err)
		f.repo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Owner keeps the stored identity keys", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeResumeDeposit)
		f.repo.On("GetByID", mock.Anything, "r-1").Return(domain.RawApplicantRecord{"id": "r-1", "userId": "u-1"}, nil)
		f.repo.On("Replace", mock.Anything, "r-1", mock.MatchedBy(func(d domain.RawApplicantRecord) bool {
			return d["userId"] == "u-1"
		})).Return(domain.RawApplicantRecord{"id": "r-1", "userId": "u-1", "firstName": "A"}, nil)
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

		rec, err := f.uc.Replace(as(applicant), "r-1", domain.RawApplicantRecord{
			"firstName": "A", "lastName": "B", "userId": "u-other",
		})

		require.NoError(t, err)
		assert.Equal(t, "A", rec.String("firstName"))
		f.repo.AssertExpectations(t)
	})
}

func TestIntakeUpdateStatus(t *testing.T) {
	t.Run("Should fail if caller is not an admin", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeApplicationForm)
		_, err := f.uc.UpdateStatus(as(applicant), "a-1", "approved")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only admins")
	})

	t.Run("Should reject statuses outside the vocabulary", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeApplicationForm)
		_, err := f.uc.UpdateStatus(as(admin), "a-1", "lost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "สถานะ")
	})

	t.Run("Resume deposits store upper case statuses", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeResumeDeposit)
		f.repo.On("GetByID", mock.Anything, "r-1").Return(domain.RawApplicantRecord{"id": "r-1", "status": "PENDING"}, nil)
		f.repo.On("UpdateStatus", mock.Anything, "r-1", "APPROVED").
			Return(domain.RawApplicantRecord{"id": "r-1", "status": "APPROVED"}, nil)
		f.events.On("Publish", mock.Anything, mock.MatchedBy(func(ev domain.ApplicantEvent) bool {
			return ev.Type == domain.EventRecordStatusChanged
		})).Return(nil)

		rec, err := f.uc.UpdateStatus(as(admin), "r-1", "Approved")

		require.NoError(t, err)
		assert.Equal(t, "APPROVED", rec.String("status"))
		f.repo.AssertExpectations(t)
	})

	t.Run("Department admin cannot touch other departments", func(t *testing.T) {
		f := newIntakeFixture(domain.IntakeApplicationForm)
		f.repo.On("GetByID", mock.Anything, "a-9").Return(domain.RawApplicantRecord{"id": "a-9", "department": "ER"}, nil)

		_, err := f.uc.UpdateStatus(as(icuAdmin), "a-9", "rejected")

		require.Error(t, err)
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthGetCurrentUser(t *testing.T) {
	repo := new(MockStaffRepo)
	uc := usecase.NewAuthUsecase(repo)

	t.Run("Should fail when caller asks for another account", func(t *testing.T) {
		_, err := uc.GetCurrentUser(as(applicant), "u-2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "own account")
	})

	t.Run("Should return the stored staff user", func(t *testing.T) {
		repo.On("GetByID", mock.Anything, "u-1").Return(&domain.StaffUser{ID: "u-1", Role: domain.RoleApplicant}, nil)
		user, err := uc.GetCurrentUser(as(applicant), "u-1")
		require.NoError(t, err)
		assert.Equal(t, "u-1", user.ID)
	})
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	uc := usecase.NewHealthUsecase(map[string]usecase.Pinger{
		"db":    fakePinger{},
		"redis": usecase.PingFunc(func(context.Context) error { return assert.AnError }),
		"none":  nil,
	})

	status := uc.Check(context.Background())

	assert.Equal(t, map[string]string{"status": "degraded", "db": "up", "redis": "down"}, status)
}

func TestIntakeSubmitDocuments(t *testing.T) {
	f := newIntakeFixture(domain.IntakeResumeDeposit)

	_, err := f.uc.Submit(as(applicant), domain.RawApplicantRecord{
		"firstName": "สมชาย",
		"lastName":  "ใจดี",
		"documents": []any{
			map[string]any{"documentType": "cv", "fileName": "cv.pdf", "filePath": "uploads/u-1/cv.pdf"},
			map[string]any{"documentType": "other", "fileName": "setup.exe", "filePath": "uploads/u-1/setup.exe"},
		},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup.exe")
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
