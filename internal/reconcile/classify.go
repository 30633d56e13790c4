package reconcile

import "hospital-recruitment-backend/internal/domain"

// Classification tells which intake flow produced a raw record.
type Classification struct {
	IsResumeDeposit   bool `json:"isResumeDeposit"`
	IsApplicationForm bool `json:"isApplicationForm"`
}

// Classify inspects the distinguishing position key of each intake form.
// A key that is present with a null value still counts.
func Classify(record domain.RawApplicantRecord) Classification {
	_, rd := record["expectedPosition"]
	_, af := record["appliedPosition"]
	return Classification{IsResumeDeposit: rd, IsApplicationForm: af}
}

// Kind collapses the flags. Application form wins when both are set.
func (c Classification) Kind() domain.SourceKind {
	switch {
	case c.IsApplicationForm:
		return domain.SourceApplicationForm
	case c.IsResumeDeposit:
		return domain.SourceResumeDeposit
	default:
		return domain.SourceUnknown
	}
}
