package reconcile

import (
	"strings"

	"hospital-recruitment-backend/internal/domain"
)

// Normalize maps a raw intake record into the shape listing views consume.
// It never fails: malformed or missing fields degrade to empty values.
func Normalize(record domain.RawApplicantRecord) domain.NormalizedApplicant {
	if record == nil {
		record = domain.RawApplicantRecord{}
	}
	kind := Classify(record).Kind()

	prefix := field(record, "prefix")
	first := field(record, "firstName")
	last := field(record, "lastName")

	return domain.NormalizedApplicant{
		ID:                        field(record, "id"),
		Source:                    kind,
		UserID:                    field(record, "userId"),
		LineID:                    field(record, "lineId"),
		Email:                     field(record, "email"),
		Prefix:                    prefix,
		FirstName:                 first,
		LastName:                  last,
		FullName:                  strings.TrimSpace(strings.TrimSpace(prefix+first) + " " + last),
		AppliedPosition:           ResolvePosition(record, kind),
		Department:                ResolveDepartment(record, kind),
		ExpectedSalary:            field(record, "expectedSalary"),
		Phone:                     field(record, "phone", "mobile"),
		BirthDate:                 field(record, "birthDate"),
		Nationality:               field(record, "nationality"),
		Religion:                  field(record, "religion"),
		IDCardNumber:              field(record, "idCardNumber", "nationalId"),
		Gender:                    GenderLabel(field(record, "gender")),
		MaritalStatus:             MaritalStatusLabel(field(record, "maritalStatus")),
		Status:                    NormalizeStatus(field(record, "status")),
		Education:                 education(record["education"]),
		WorkExperience:            workExperience(record["workExperience"]),
		Documents:                 documents(record["documents"]),
		PreviousGovernmentService: governmentService(record["previousGovernmentService"]),
		RegisteredAddress:         address(record["registeredAddress"]),
		CurrentAddressDetail:      address(record["currentAddressDetail"]),
		EmergencyAddress:          address(record["emergencyAddress"]),
		EmergencyWorkplace:        address(record["emergencyWorkplace"]),
		MedicalRights:             medicalRights(record["medicalRights"]),
		CreatedAt:                 field(record, "createdAt"),
		UpdatedAt:                 field(record, "updatedAt"),
	}
}

// NormalizeAll normalizes records in order. The result is never nil.
func NormalizeAll(records []domain.RawApplicantRecord) []domain.NormalizedApplicant {
	out := make([]domain.NormalizedApplicant, 0, len(records))
	for _, r := range records {
		out = append(out, Normalize(r))
	}
	return out
}

func education(v any) []domain.Education {
	items := objects(v)
	out := make([]domain.Education, 0, len(items))
	for _, e := range items {
		out = append(out, domain.Education{
			Level:       field(e, "level"),
			Institution: field(e, "institution", "school"),
			Major:       field(e, "major"),
			Year:        field(e, "year", "graduationYear"),
			GPA:         field(e, "gpa"),
		})
	}
	return out
}

func workExperience(v any) []domain.WorkExperience {
	items := objects(v)
	out := make([]domain.WorkExperience, 0, len(items))
	for _, w := range items {
		out = append(out, domain.WorkExperience{
			Position:  field(w, "position"),
			Company:   field(w, "company"),
			StartDate: field(w, "startDate"),
			EndDate:   field(w, "endDate"),
			Salary:    field(w, "salary"),
			Reason:    field(w, "reason", "description"),
		})
	}
	return out
}

func documents(v any) []domain.Document {
	items := objects(v)
	out := make([]domain.Document, 0, len(items))
	for _, d := range items {
		out = append(out, domain.Document{
			DocumentType: field(d, "documentType"),
			FilePath:     field(d, "filePath"),
			FileName:     field(d, "fileName"),
		})
	}
	return out
}

func governmentService(v any) []domain.GovernmentService {
	items := objects(v)
	out := make([]domain.GovernmentService, 0, len(items))
	for _, g := range items {
		out = append(out, domain.GovernmentService{
			Position:   field(g, "position"),
			Department: field(g, "department"),
			Reason:     field(g, "reason"),
			Date:       field(g, "date"),
		})
	}
	return out
}

func address(v any) domain.Address {
	a := object(v)
	return domain.Address{
		HouseNumber:   field(a, "houseNumber"),
		VillageNumber: field(a, "villageNumber"),
		Alley:         field(a, "alley"),
		Road:          field(a, "road"),
		SubDistrict:   field(a, "subDistrict"),
		District:      field(a, "district"),
		Province:      field(a, "province"),
		PostalCode:    field(a, "postalCode"),
		Phone:         field(a, "phone"),
		Mobile:        field(a, "mobile"),
	}
}

func medicalRights(v any) domain.MedicalRights {
	m := object(v)
	return domain.MedicalRights{
		HasUniversalHealthcare:      flag(m["hasUniversalHealthcare"]),
		UniversalHealthcareHospital: field(m, "universalHealthcareHospital"),
		HasSocialSecurity:           flag(m["hasSocialSecurity"]),
		SocialSecurityHospital:      field(m, "socialSecurityHospital"),
		HasCivilServantRights:       flag(m["hasCivilServantRights"]),
		OtherRights:                 field(m, "otherRights"),
	}
}
