package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"hospital-recruitment-backend/config"
	"hospital-recruitment-backend/internal/client/intake"
	"hospital-recruitment-backend/internal/domain"
	"hospital-recruitment-backend/internal/reconcile"

	"github.com/spf13/cobra"
)

type replaceOptions struct {
	kind   string
	id     string
	file   string
	token  string
	output string
}

type replacer interface {
	Replace(ctx context.Context, id string, doc domain.RawApplicantRecord) (domain.RawApplicantRecord, error)
}

func newReplaceCmd(cfg *config.Config) *cobra.Command {
	opts := &replaceOptions{}

	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Save a full intake document and print the stored record normalized",
		Long: `Sends the document in --file (or stdin when --file is "-") as a full replace of
record --id on the endpoint of --kind, then prints the canonical stored record in the
reconciled applicant shape.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			endpoint := cfg.ResumeDepositURL
			switch domain.IntakeKind(opts.kind) {
			case domain.IntakeResumeDeposit:
			case domain.IntakeApplicationForm:
				endpoint = cfg.ApplicationFormURL
			default:
				return fmt.Errorf("unknown kind %q (want %s or %s)", opts.kind, domain.IntakeResumeDeposit, domain.IntakeApplicationForm)
			}
			if endpoint == "" {
				return fmt.Errorf("no endpoint configured for %s", opts.kind)
			}
			if opts.id == "" {
				return errors.New("--id is required")
			}
			render, err := rendererFor(opts.output)
			if err != nil {
				return err
			}

			in := io.Reader(os.Stdin)
			if opts.file != "-" {
				f, err := os.Open(opts.file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			client := intake.NewClient(endpoint, domain.IntakeKind(opts.kind), clientOptions(opts.token)...)
			return runReplace(cmd.Context(), client, opts.id, in, render, os.Stdout)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.kind, "kind", string(domain.IntakeApplicationForm), "intake kind: resume_deposit or application_form")
	f.StringVar(&opts.id, "id", "", "record id")
	f.StringVar(&opts.file, "file", "-", "JSON document to save (- for stdin)")
	f.StringVar(&opts.token, "token", os.Getenv("RECONCILE_TOKEN"), "bearer token (RECONCILE_TOKEN)")
	f.StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")

	return cmd
}

func runReplace(ctx context.Context, r replacer, id string, in io.Reader, render renderer, out io.Writer) error {
	var doc domain.RawApplicantRecord
	if err := json.NewDecoder(in).Decode(&doc); err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	if doc == nil {
		return errors.New("document must be a JSON object")
	}

	stored, err := r.Replace(ctx, id, doc)
	if err != nil {
		return err
	}

	b, err := render(reconcile.Normalize(stored))
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}
