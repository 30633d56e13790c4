package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/internal/reconcile"
	"hospital-recruitment-backend/internal/usecase"
	"hospital-recruitment-backend/pkg/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// stubSource records the filters it receives and answers through list.
type stubSource struct {
	mu      sync.Mutex
	filters []domain.IntakeFilter
	list    func(ctx context.Context, f domain.IntakeFilter) ([]domain.RawApplicantRecord, error)
}

func (s *stubSource) List(ctx context.Context, f domain.IntakeFilter) ([]domain.RawApplicantRecord, error) {
	s.mu.Lock()
	s.filters = append(s.filters, f)
	s.mu.Unlock()
	if s.list == nil {
		return []domain.RawApplicantRecord{}, nil
	}
	return s.list(ctx, f)
}

func (s *stubSource) calls() []domain.IntakeFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.IntakeFilter(nil), s.filters...)
}

func returning(recs ...domain.RawApplicantRecord) *stubSource {
	return &stubSource{list: func(context.Context, domain.IntakeFilter) ([]domain.RawApplicantRecord, error) {
		return recs, nil
	}}
}

func failing(err error) *stubSource {
	return &stubSource{list: func(context.Context, domain.IntakeFilter) ([]domain.RawApplicantRecord, error) {
		return nil, err
	}}
}

func blocking() *stubSource {
	return &stubSource{list: func(ctx context.Context, _ domain.IntakeFilter) ([]domain.RawApplicantRecord, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
}

func rd(id string) domain.RawApplicantRecord {
	return domain.RawApplicantRecord{"id": id, "expectedPosition": "Nurse", "status": "PENDING"}
}

func af(id string) domain.RawApplicantRecord {
	return domain.RawApplicantRecord{"id": id, "appliedPosition": "Pharmacist", "status": "approved"}
}

func ids(apps []domain.NormalizedApplicant) []string {
	out := make([]string, 0, len(apps))
	for _, a := range apps {
		out = append(out, a.ID)
	}
	return out
}

var testCfg = usecase.ApplicantConfig{AdminListLimit: 100, FallbackListLimit: 200, FetchTimeout: time.Second}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("No hints means no queries and an empty result", func(t *testing.T) {
		a, b := returning(rd("x")), returning(af("z"))
		uc := usecase.NewApplicantUsecase(a, b, testCfg)

		res, err := uc.Reconcile(ctx, domain.IdentityHints{}, domain.ReconcileOptions{})

		require.NoError(t, err)
		assert.NotNil(t, res.Applicants)
		assert.Empty(t, res.Applicants)
		assert.Empty(t, a.calls())
		assert.Empty(t, b.calls())
	})

	t.Run("Resume deposits come before application forms", func(t *testing.T) {
		uc := usecase.NewApplicantUsecase(returning(rd("x"), rd("y")), returning(af("z")), testCfg)

		res, err := uc.Reconcile(ctx, domain.IdentityHints{Admin: true}, domain.ReconcileOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y", "z"}, ids(res.Applicants))
		assert.Equal(t, domain.SourceResumeDeposit, res.Applicants[0].Source)
		assert.Equal(t, domain.SourceApplicationForm, res.Applicants[2].Source)
		assert.Empty(t, res.SourceErrors)
		assert.False(t, res.FallbackUsed)
	})

	t.Run("Duplicate ids are kept unless dedup is on", func(t *testing.T) {
		uc := usecase.NewApplicantUsecase(returning(rd("x")), returning(af("x"), af("w")), testCfg)
		hints := domain.IdentityHints{Admin: true}

		res, err := uc.Reconcile(ctx, hints, domain.ReconcileOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "x", "w"}, ids(res.Applicants))

		res, err = uc.Reconcile(ctx, hints, domain.ReconcileOptions{DedupByID: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "w"}, ids(res.Applicants))
		assert.Equal(t, domain.SourceResumeDeposit, res.Applicants[0].Source)
	})

	t.Run("Both sources receive the strongest hint", func(t *testing.T) {
		a, b := returning(rd("x")), returning()
		uc := usecase.NewApplicantUsecase(a, b, testCfg)

		_, err := uc.Reconcile(ctx, domain.IdentityHints{UserID: "u-1", Email: "a@b.com", Admin: true}, domain.ReconcileOptions{})

		require.NoError(t, err)
		want := domain.IntakeFilter{Scope: domain.ScopeUserID, Value: "u-1"}
		assert.Equal(t, []domain.IntakeFilter{want}, a.calls())
		assert.Equal(t, []domain.IntakeFilter{want}, b.calls())
	})

	t.Run("Unscoped admin listing is capped", func(t *testing.T) {
		a := returning()
		uc := usecase.NewApplicantUsecase(a, returning(), testCfg)

		_, err := uc.Reconcile(ctx, domain.IdentityHints{Admin: true}, domain.ReconcileOptions{})

		require.NoError(t, err)
		assert.Equal(t, []domain.IntakeFilter{{Scope: domain.ScopeAdmin, Limit: 100}}, a.calls())
	})

	t.Run("One failing source yields a partial result", func(t *testing.T) {
		uc := usecase.NewApplicantUsecase(returning(rd("x")), failing(errors.New("connection refused")), testCfg)

		res, err := uc.Reconcile(ctx, domain.IdentityHints{Admin: true}, domain.ReconcileOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, ids(res.Applicants))
		require.Len(t, res.SourceErrors, 1)
		assert.Equal(t, domain.IntakeApplicationForm, res.SourceErrors[0].Kind)
		assert.False(t, res.SourceErrors[0].Timeout)
		assert.Contains(t, res.SourceErrors[0].Message, "connection refused")
	})

	t.Run("A slow source is cut off and flagged as timed out", func(t *testing.T) {
		cfg := testCfg
		cfg.FetchTimeout = 20 * time.Millisecond
		uc := usecase.NewApplicantUsecase(blocking(), returning(af("z")), cfg)

		res, err := uc.Reconcile(ctx, domain.IdentityHints{Admin: true}, domain.ReconcileOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"z"}, ids(res.Applicants))
		require.Len(t, res.SourceErrors, 1)
		assert.Equal(t, domain.IntakeResumeDeposit, res.SourceErrors[0].Kind)
		assert.True(t, res.SourceErrors[0].Timeout)
	})

	t.Run("Both sources failing is an error", func(t *testing.T) {
		uc := usecase.NewApplicantUsecase(failing(errors.New("a")), failing(errors.New("b")), testCfg)

		res, err := uc.Reconcile(ctx, domain.IdentityHints{Admin: true}, domain.ReconcileOptions{})

		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrAllSourcesFailed)
	})

	t.Run("Empty exact match falls back to fuzzy email matching", func(t *testing.T) {
		rdSource := &stubSource{list: func(_ context.Context, f domain.IntakeFilter) ([]domain.RawApplicantRecord, error) {
			if f.Scope != domain.ScopeAdmin {
				return []domain.RawApplicantRecord{}, nil
			}
			match := rd("r-7")
			match["email"] = "john.doe@x.com"
			other := rd("r-8")
			other["email"] = "someone@else.com"
			return []domain.RawApplicantRecord{other, match}, nil
		}}
		afSource := returning()
		uc := usecase.NewApplicantUsecase(rdSource, afSource, testCfg)

		res, err := uc.Reconcile(ctx, domain.IdentityHints{Email: "john.doe@y.com"}, domain.ReconcileOptions{})

		require.NoError(t, err)
		assert.True(t, res.FallbackUsed)
		assert.Equal(t, []string{"r-7"}, ids(res.Applicants))
		assert.Equal(t, []domain.IntakeFilter{
			{Scope: domain.ScopeEmail, Value: "john.doe@y.com"},
			{Scope: domain.ScopeAdmin, Limit: 200},
		}, rdSource.calls())
		assert.Len(t, afSource.calls(), 1)
	})

	t.Run("Applicant fallback ignores loosely related emails and audits disclosures", func(t *testing.T) {
		rdSource := &stubSource{list: func(_ context.Context, f domain.IntakeFilter) ([]domain.RawApplicantRecord, error) {
			if f.Scope != domain.ScopeAdmin {
				return []domain.RawApplicantRecord{}, nil
			}
			own := rd("r-1")
			own["email"] = "joanna.k@mail.com"
			unrelated := rd("r-2")
			unrelated["email"] = "jo@other.org"
			return []domain.RawApplicantRecord{own, unrelated}, nil
		}}
		core, logs := observer.New(zap.InfoLevel)
		cfg := testCfg
		cfg.Audit = audit.NewWithZap(zap.New(core))
		uc := usecase.NewApplicantUsecase(rdSource, returning(), cfg)

		res, err := uc.Reconcile(ctx, domain.IdentityHints{UserID: "u-1", Email: "joanna@x.com", SelfService: true}, domain.ReconcileOptions{})

		require.NoError(t, err)
		assert.True(t, res.FallbackUsed)
		assert.Equal(t, []string{"r-1"}, ids(res.Applicants))
		entries := logs.FilterMessage(string(audit.ActionFallbackDisclosed)).All()
		if assert.Len(t, entries, 1) {
			fields := entries[0].ContextMap()
			assert.Equal(t, "r-1", fields["record_id"])
			assert.Equal(t, "u-1", fields["actor_id"])
			assert.Equal(t, string(reconcile.MatchLocalPart), fields["reason"])
		}
	})

	t.Run("Applicant with a short local part gets nothing from the fallback", func(t *testing.T) {
		victim := rd("v-1")
		victim["email"] = "joanna.k@other.org"
		rdSource := &stubSource{list: func(_ context.Context, f domain.IntakeFilter) ([]domain.RawApplicantRecord, error) {
			if f.Scope != domain.ScopeAdmin {
				return []domain.RawApplicantRecord{}, nil
			}
			return []domain.RawApplicantRecord{victim}, nil
		}}
		uc := usecase.NewApplicantUsecase(rdSource, returning(), testCfg)

		res, err := uc.Reconcile(ctx, domain.IdentityHints{UserID: "u-2", Email: "an@x.com", SelfService: true}, domain.ReconcileOptions{})

		require.NoError(t, err)
		assert.Empty(t, res.Applicants)
	})

	t.Run("Admin listings never use the fallback", func(t *testing.T) {
		a := returning()
		uc := usecase.NewApplicantUsecase(a, returning(), testCfg)

		res, err := uc.Reconcile(ctx, domain.IdentityHints{Department: "ICU"}, domain.ReconcileOptions{})

		require.NoError(t, err)
		assert.Empty(t, res.Applicants)
		assert.False(t, res.FallbackUsed)
		assert.Len(t, a.calls(), 1)
	})

	t.Run("Cancelled request returns the context error", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		uc := usecase.NewApplicantUsecase(blocking(), blocking(), testCfg)

		_, err := uc.Reconcile(cctx, domain.IdentityHints{Admin: true}, domain.ReconcileOptions{})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestReconcileListLimit(t *testing.T) {
	tests := []struct {
		name      string
		hints     domain.IdentityHints
		requested int
		want      domain.IntakeFilter
	}{
		{"default cap", domain.IdentityHints{Admin: true}, 0, domain.IntakeFilter{Scope: domain.ScopeAdmin, Limit: 100}},
		{"smaller limit is honoured", domain.IdentityHints{Admin: true}, 20, domain.IntakeFilter{Scope: domain.ScopeAdmin, Limit: 20}},
		{"larger limit is capped", domain.IdentityHints{Admin: true}, 1000, domain.IntakeFilter{Scope: domain.ScopeAdmin, Limit: 100}},
		{"department listing is capped too", domain.IdentityHints{Department: "ICU"}, 0, domain.IntakeFilter{Scope: domain.ScopeDepartment, Value: "ICU", Limit: 100}},
		{"identity lookups are not capped", domain.IdentityHints{LineID: "L1"}, 20, domain.IntakeFilter{Scope: domain.ScopeLineID, Value: "L1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := returning(rd("x"))
			uc := usecase.NewApplicantUsecase(a, returning(), testCfg)

			_, err := uc.Reconcile(context.Background(), tt.hints, domain.ReconcileOptions{Limit: tt.requested})

			require.NoError(t, err)
			assert.Equal(t, []domain.IntakeFilter{tt.want}, a.calls())
		})
	}
}
