package reconcile

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"hospital-recruitment-backend/internal/domain"

	"golang.org/x/text/unicode/norm"
)

// UnspecifiedPosition is shown when no position field carries a value.
const UnspecifiedPosition = "ไม่ระบุ"

// fieldRule is the precedence table of one logical field.
type fieldRule struct {
	preferred map[domain.SourceKind][]string
	fallback  []string
	sentinel  string
}

var positionRule = fieldRule{
	preferred: map[domain.SourceKind][]string{
		domain.SourceApplicationForm: {"appliedPosition"},
		domain.SourceResumeDeposit:   {"expectedPosition"},
	},
	fallback: []string{"appliedPosition", "expectedPosition", "staff_position", "jobPosition"},
	sentinel: UnspecifiedPosition,
}

var departmentRule = fieldRule{
	fallback: []string{"department", "staff_department", "departmentName", "department_name", "department.name"},
	sentinel: "",
}

func (r fieldRule) candidates(kind domain.SourceKind) []string {
	pref := r.preferred[kind]
	out := make([]string, 0, len(pref)+len(r.fallback))
	out = append(out, pref...)
	return append(out, r.fallback...)
}

// ResolvePosition returns the applied/expected position of a record.
func ResolvePosition(record domain.RawApplicantRecord, kind domain.SourceKind) string {
	return ResolveField(record, positionRule.candidates(kind), positionRule.sentinel)
}

// ResolveDepartment returns the department of a record, or "".
func ResolveDepartment(record domain.RawApplicantRecord, kind domain.SourceKind) string {
	return ResolveField(record, departmentRule.candidates(kind), departmentRule.sentinel)
}

// ResolveField returns the normalized value of the first usable candidate path,
// or sentinel when none is usable.
func ResolveField(record domain.RawApplicantRecord, candidates []string, sentinel string) string {
	for _, path := range candidates {
		v, ok := lookup(record, path)
		if !ok {
			continue
		}
		if s, ok := usable(v); ok {
			return NormalizeValue(s)
		}
	}
	return sentinel
}

// usable rejects non-strings, blanks and stringified null/undefined.
func usable(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}
	switch strings.ToLower(trimmed) {
	case "null", "undefined":
		return "", false
	}
	return s, true
}

// NormalizeValue undoes query-string encoding that leaked into stored values.
// A value that is not valid percent-encoding is kept as is.
func NormalizeValue(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "+", " "))
	if decoded, err := url.PathUnescape(s); err == nil && utf8.ValidString(decoded) {
		s = strings.TrimSpace(decoded)
	}
	return norm.NFC.String(s)
}
