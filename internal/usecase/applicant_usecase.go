package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/internal/reconcile"
	"hospital-recruitment-backend/pkg/audit"
	"hospital-recruitment-backend/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ApplicantConfig holds the listing caps and fetch timeout of the aggregator
type ApplicantConfig struct {
	AdminListLimit    int
	FallbackListLimit int
	FetchTimeout      time.Duration
	// SelfServiceBound limits local-part matching when an applicant hits the
	// fallback. The zero value uses reconcile.DefaultSelfServiceBound.
	SelfServiceBound reconcile.LocalPartBound
	// Audit receives one entry per record the fallback discloses. May be nil.
	Audit *audit.Logger
}

type applicantUsecase struct {
	resumeDeposits   domain.IntakeSource
	applicationForms domain.IntakeSource
	cfg              ApplicantConfig
}

// NewApplicantUsecase creates the aggregator over both intake sources
func NewApplicantUsecase(resumeDeposits, applicationForms domain.IntakeSource, cfg ApplicantConfig) domain.ApplicantUsecase {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.SelfServiceBound == (reconcile.LocalPartBound{}) {
		cfg.SelfServiceBound = reconcile.DefaultSelfServiceBound
	}
	return &applicantUsecase{
		resumeDeposits:   resumeDeposits,
		applicationForms: applicationForms,
		cfg:              cfg,
	}
}

type sourceFetch struct {
	records  []domain.RawApplicantRecord
	err      error
	timedOut bool
}

// Reconcile fetches both sources, merges them, and normalizes the result.
// One failing source yields a partial result; both failing is ErrAllSourcesFailed.
func (uc *applicantUsecase) Reconcile(ctx context.Context, hints domain.IdentityHints, opts domain.ReconcileOptions) (*domain.ReconcileResult, error) {
	result := &domain.ReconcileResult{Applicants: []domain.NormalizedApplicant{}}

	filter := hints.Filter(uc.listLimit(opts.Limit))
	if filter.Scope == domain.ScopeNone {
		return result, nil
	}

	var rd, af sourceFetch
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rd = uc.fetch(gctx, uc.resumeDeposits, filter)
		return nil
	})
	g.Go(func() error {
		af = uc.fetch(gctx, uc.applicationForms, filter)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if rd.err != nil && af.err != nil {
		return nil, fmt.Errorf("%w: resume deposits: %w; application forms: %w",
			domain.ErrAllSourcesFailed, rd.err, af.err)
	}
	result.SourceErrors = appendSourceError(result.SourceErrors, domain.IntakeResumeDeposit, rd)
	result.SourceErrors = appendSourceError(result.SourceErrors, domain.IntakeApplicationForm, af)

	merged := reconcile.Merge(rd.records, af.records, opts.DedupByID)

	if len(merged) == 0 && hints.HasCorrelation() {
		fb := uc.fetch(ctx, uc.resumeDeposits, domain.IntakeFilter{
			Scope: domain.ScopeAdmin,
			Limit: uc.cfg.FallbackListLimit,
		})
		if fb.err != nil {
			result.SourceErrors = appendSourceError(result.SourceErrors, domain.IntakeResumeDeposit, fb)
		} else {
			merged = uc.fallbackMatches(ctx, fb.records, hints)
			result.FallbackUsed = true
		}
	}

	result.Applicants = reconcile.NormalizeAll(merged)
	return result, nil
}

// fallbackMatches keeps the fuzzy matches of records and audits each one handed out.
// Applicants looking up themselves get the bounded local-part rule.
func (uc *applicantUsecase) fallbackMatches(ctx context.Context, records []domain.RawApplicantRecord, hints domain.IdentityHints) []domain.RawApplicantRecord {
	bound := reconcile.LocalPartBound{}
	actorRole := ""
	if hints.SelfService {
		bound = uc.cfg.SelfServiceBound
		actorRole = domain.RoleApplicant
	}

	var out []domain.RawApplicantRecord
	for _, r := range records {
		rule := reconcile.MatchBounded(r, hints, bound)
		if rule == reconcile.MatchNone {
			continue
		}
		out = append(out, r)
		uc.cfg.Audit.Record(ctx, audit.Event{
			Action:    audit.ActionFallbackDisclosed,
			Kind:      string(domain.IntakeResumeDeposit),
			RecordID:  r.ID(),
			ActorID:   hints.UserID,
			ActorRole: actorRole,
			Email:     hints.Email,
			Reason:    string(rule),
		})
	}
	return out
}

func (uc *applicantUsecase) listLimit(requested int) int {
	if requested <= 0 || (uc.cfg.AdminListLimit > 0 && requested > uc.cfg.AdminListLimit) {
		return uc.cfg.AdminListLimit
	}
	return requested
}

// fetch lists one source under its own timeout
func (uc *applicantUsecase) fetch(ctx context.Context, src domain.IntakeSource, filter domain.IntakeFilter) sourceFetch {
	fctx, cancel := context.WithTimeout(ctx, uc.cfg.FetchTimeout)
	defer cancel()

	records, err := src.List(fctx, filter)
	if err != nil {
		return sourceFetch{
			err:      err,
			timedOut: errors.Is(fctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil,
		}
	}
	return sourceFetch{records: records}
}

func appendSourceError(errs []domain.SourceError, kind domain.IntakeKind, f sourceFetch) []domain.SourceError {
	if f.err == nil {
		return errs
	}
	logger.Log.Warn("Intake source failed", "kind", kind, "timeout", f.timedOut, "error", f.err)
	return append(errs, domain.SourceError{
		Kind:    kind,
		Message: f.err.Error(),
		Timeout: f.timedOut,
	})
}
