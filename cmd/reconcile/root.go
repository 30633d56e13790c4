package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"hospital-recruitment-backend/config"
	"hospital-recruitment-backend/internal/client/intake"
	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/internal/usecase"
	"hospital-recruitment-backend/pkg/logger"

	"github.com/spf13/cobra"
)

type options struct {
	resumeDepositURL   string
	applicationFormURL string
	token              string
	output             string
	timeout            time.Duration
	limit              int
	dedup              bool
	hints              domain.IdentityHints
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Merge resume deposits and application forms into one applicant listing",
		Long: `Fetches both intake endpoints of a running deployment with the same identity
hints the listing page uses, merges and normalizes the records and prints them.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.resumeDepositURL, "resume-deposit-url", cfg.ResumeDepositURL, "resume deposit endpoint (RESUME_DEPOSIT_URL)")
	f.StringVar(&opts.applicationFormURL, "application-form-url", cfg.ApplicationFormURL, "application form endpoint (APPLICATION_FORM_URL)")
	f.StringVar(&opts.token, "token", os.Getenv("RECONCILE_TOKEN"), "bearer token (RECONCILE_TOKEN)")
	f.StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	f.DurationVar(&opts.timeout, "timeout", cfg.UpstreamFetchTimeout, "per-source fetch timeout")
	f.IntVar(&opts.limit, "limit", 0, "admin listing cap (0 uses ADMIN_LIST_LIMIT)")
	f.BoolVar(&opts.dedup, "dedup", cfg.DedupByID, "drop repeated record ids")

	f.StringVar(&opts.hints.ID, "id", "", "explicit record id")
	f.StringVar(&opts.hints.UserID, "user-id", "", "submitting user id")
	f.StringVar(&opts.hints.LineID, "line-id", "", "LINE id")
	f.StringVar(&opts.hints.Email, "email", "", "applicant email")
	f.StringVar(&opts.hints.Department, "department", "", "department listing")
	f.BoolVar(&opts.hints.Admin, "admin", false, "unscoped admin listing")

	cmd.AddCommand(newReplaceCmd(cfg))
	return cmd
}

func run(ctx context.Context, opts *options, cfg *config.Config) error {
	if opts.resumeDepositURL == "" || opts.applicationFormURL == "" {
		return errors.New("both --resume-deposit-url and --application-form-url are required")
	}
	render, err := rendererFor(opts.output)
	if err != nil {
		return err
	}

	clientOpts := clientOptions(opts.token)
	aggregator := usecase.NewApplicantUsecase(
		intake.NewClient(opts.resumeDepositURL, domain.IntakeResumeDeposit, clientOpts...),
		intake.NewClient(opts.applicationFormURL, domain.IntakeApplicationForm, clientOpts...),
		usecase.ApplicantConfig{
			AdminListLimit:    cfg.AdminListLimit,
			FallbackListLimit: cfg.FallbackListLimit,
			FetchTimeout:      opts.timeout,
		},
	)

	result, err := aggregator.Reconcile(ctx, opts.hints, domain.ReconcileOptions{DedupByID: opts.dedup, Limit: opts.limit})
	if err != nil {
		return err
	}
	for _, se := range result.SourceErrors {
		logger.Log.Warn("Source failed", "kind", se.Kind, "timeout", se.Timeout, "error", se.Message)
	}

	out, err := render(result)
	if err != nil {
		return fmt.Errorf("render %s: %w", opts.output, err)
	}
	_, err = os.Stdout.Write(out)
	return err
}

func clientOptions(token string) []intake.Option {
	if token == "" {
		return nil
	}
	return []intake.Option{intake.WithToken(token)}
}
