package domain

import "context"

// SourceKind is the intake flow a raw record was classified into.
type SourceKind string

const (
	SourceResumeDeposit   SourceKind = "resume_deposit"
	SourceApplicationForm SourceKind = "application_form"
	SourceUnknown         SourceKind = "unknown"
)

// Display status buckets
const (
	StatusBucketApproved = "approved"
	StatusBucketPending  = "pending"
	StatusBucketRejected = "rejected"
	StatusBucketUnknown  = "unknown"
)

// NormalizedApplicant is the reconciled view of one intake record. Every leaf
// is present; absent source fields become "" / false / [].
type NormalizedApplicant struct {
	ID                        string              `json:"id"`
	Source                    SourceKind          `json:"source"`
	UserID                    string              `json:"userId"`
	LineID                    string              `json:"lineId"`
	Email                     string              `json:"email"`
	Prefix                    string              `json:"prefix"`
	FirstName                 string              `json:"firstName"`
	LastName                  string              `json:"lastName"`
	FullName                  string              `json:"fullName"`
	AppliedPosition           string              `json:"appliedPosition"`
	Department                string              `json:"department"`
	ExpectedSalary            string              `json:"expectedSalary"`
	Phone                     string              `json:"phone"`
	BirthDate                 string              `json:"birthDate"`
	Nationality               string              `json:"nationality"`
	Religion                  string              `json:"religion"`
	IDCardNumber              string              `json:"idCardNumber"`
	Gender                    string              `json:"gender"`
	MaritalStatus             string              `json:"maritalStatus"`
	Status                    ApplicantStatus     `json:"status"`
	Education                 []Education         `json:"education"`
	WorkExperience            []WorkExperience    `json:"workExperience"`
	Documents                 []Document          `json:"documents"`
	PreviousGovernmentService []GovernmentService `json:"previousGovernmentService"`
	RegisteredAddress         Address             `json:"registeredAddress"`
	CurrentAddressDetail      Address             `json:"currentAddressDetail"`
	EmergencyAddress          Address             `json:"emergencyAddress"`
	EmergencyWorkplace        Address             `json:"emergencyWorkplace"`
	MedicalRights             MedicalRights       `json:"medicalRights"`
	CreatedAt                 string              `json:"createdAt"`
	UpdatedAt                 string              `json:"updatedAt"`
}

type ApplicantStatus struct {
	Code  string `json:"code"`  // one of the StatusBucket* values
	Label string `json:"label"` // display text
	Raw   string `json:"raw"`
}

type Education struct {
	Level       string `json:"level"`
	Institution string `json:"institution"`
	Major       string `json:"major"`
	Year        string `json:"year"`
	GPA         string `json:"gpa"`
}

type WorkExperience struct {
	Position  string `json:"position"`
	Company   string `json:"company"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Salary    string `json:"salary"`
	Reason    string `json:"reason"`
}

type Document struct {
	DocumentType string `json:"documentType"`
	FilePath     string `json:"filePath"`
	FileName     string `json:"fileName"`
}

type GovernmentService struct {
	Position   string `json:"position"`
	Department string `json:"department"`
	Reason     string `json:"reason"`
	Date       string `json:"date"`
}

type Address struct {
	HouseNumber   string `json:"houseNumber"`
	VillageNumber string `json:"villageNumber"`
	Alley         string `json:"alley"`
	Road          string `json:"road"`
	SubDistrict   string `json:"subDistrict"`
	District      string `json:"district"`
	Province      string `json:"province"`
	PostalCode    string `json:"postalCode"`
	Phone         string `json:"phone"`
	Mobile        string `json:"mobile"`
}

type MedicalRights struct {
	HasUniversalHealthcare      bool   `json:"hasUniversalHealthcare"`
	UniversalHealthcareHospital string `json:"universalHealthcareHospital"`
	HasSocialSecurity           bool   `json:"hasSocialSecurity"`
	SocialSecurityHospital      string `json:"socialSecurityHospital"`
	HasCivilServantRights       bool   `json:"hasCivilServantRights"`
	OtherRights                 string `json:"otherRights"`
}

// IdentityHints are the inputs a listing page has for locating a person's records.
type IdentityHints struct {
	ID          string // explicit record id
	UserID      string
	LineID      string
	Email       string
	Department  string // department-scoped admin listing
	Admin       bool   // unscoped admin listing
	SelfService bool   // an applicant looking up their own records
}

// Filter picks the single strongest hint:
// id > user id > LINE id > email > department admin > admin. Admin listings
// of either kind are capped at adminLimit.
func (h IdentityHints) Filter(adminLimit int) IntakeFilter {
	switch {
	case h.ID != "":
		return IntakeFilter{Scope: ScopeID, Value: h.ID}
	case h.UserID != "":
		return IntakeFilter{Scope: ScopeUserID, Value: h.UserID}
	case h.LineID != "":
		return IntakeFilter{Scope: ScopeLineID, Value: h.LineID}
	case h.Email != "":
		return IntakeFilter{Scope: ScopeEmail, Value: h.Email}
	case h.Department != "":
		return IntakeFilter{Scope: ScopeDepartment, Value: h.Department, Limit: adminLimit}
	case h.Admin:
		return IntakeFilter{Scope: ScopeAdmin, Limit: adminLimit}
	default:
		return IntakeFilter{Scope: ScopeNone}
	}
}

// HasCorrelation reports whether hints carry anything the fuzzy fallback can match on.
func (h IdentityHints) HasCorrelation() bool {
	return h.UserID != "" || h.LineID != "" || h.Email != ""
}

type ReconcileOptions struct {
	DedupByID bool
	Limit     int // admin listing cap; 0 or anything above the configured cap uses the cap
}

// SourceError records a failed intake source in an otherwise usable result.
type SourceError struct {
	Kind    IntakeKind `json:"kind"`
	Message string     `json:"message"`
	Timeout bool       `json:"timeout"`
}

type ReconcileResult struct {
	Applicants   []NormalizedApplicant `json:"applicants"`
	SourceErrors []SourceError         `json:"source_errors,omitempty"`
	FallbackUsed bool                  `json:"fallback_used"`
}

// ApplicantUsecase merges both intake sources into the normalized view.
type ApplicantUsecase interface {
	Reconcile(ctx context.Context, hints IdentityHints, opts ReconcileOptions) (*ReconcileResult, error)
}
