package reconcile

import (
	"strings"

	"hospital-recruitment-backend/internal/domain"
)

var statusBuckets = map[string]string{
	"approved":   domain.StatusBucketApproved,
	"hired":      domain.StatusBucketApproved,
	"อนุมัติ":    domain.StatusBucketApproved,
	"pending":    domain.StatusBucketPending,
	"รอพิจารณา":  domain.StatusBucketPending,
	"rejected":   domain.StatusBucketRejected,
	"ไม่อนุมัติ": domain.StatusBucketRejected,
}

var statusLabels = map[string]string{
	domain.StatusBucketApproved: "อนุมัติ",
	domain.StatusBucketPending:  "รอพิจารณา",
	domain.StatusBucketRejected: "ไม่อนุมัติ",
}

var genderLabels = map[string]string{
	"MALE":   "ชาย",
	"FEMALE": "หญิง",
}

var maritalLabels = map[string]string{
	"SINGLE":   "โสด",
	"MARRIED":  "สมรส",
	"DIVORCED": "หย่าร้าง",
	"WIDOWED":  "หม้าย",
}

// NormalizeStatus maps both intake vocabularies into display buckets.
// Unrecognized values land in the unknown bucket and are shown verbatim.
func NormalizeStatus(raw string) domain.ApplicantStatus {
	trimmed := strings.TrimSpace(raw)
	bucket, ok := statusBuckets[strings.ToLower(trimmed)]
	if !ok {
		return domain.ApplicantStatus{Code: domain.StatusBucketUnknown, Label: raw, Raw: raw}
	}
	return domain.ApplicantStatus{Code: bucket, Label: statusLabels[bucket], Raw: raw}
}

func GenderLabel(v string) string {
	return translate(genderLabels, v)
}

func MaritalStatusLabel(v string) string {
	return translate(maritalLabels, v)
}

func translate(table map[string]string, v string) string {
	if label, ok := table[strings.ToUpper(strings.TrimSpace(v))]; ok {
		return label
	}
	return v
}
